package parts

import (
	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/scroll"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// Scenery is a mask entity for static world features like walls or water.
// It never moves on its own; when created with scrolling enabled it shifts
// its footprint to follow the step's scrolling order, so it must be placed
// after the order's emitter in the z-order.
type Scenery struct {
	stage.MaskBase
	scrolls bool
}

// NewScenery creates a scenery entity from a footprint. With scrolls set,
// the footprint follows scrolling orders.
func NewScenery(char rune, footprint *grid.Mask, scrolls bool) *Scenery {
	return &Scenery{
		MaskBase: stage.NewMaskBase(char, footprint),
		scrolls:  scrolls,
	}
}

// Update follows the current scrolling order, if the scenery scrolls.
func (s *Scenery) Update(up stage.Update) error {
	if !s.scrolls {
		return nil
	}
	if m, ok := scroll.Current(up.Plot); ok {
		m.ShiftMask(s.Footprint())
	}
	return nil
}
