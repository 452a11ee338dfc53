// Package scroll implements the world-scrolling protocol: a convention,
// layered entirely on the Plot's published keys, that lets entities agree
// on a single rigid-body displacement of the visible world within one step.
//
// One entity computes the displacement and calls Order before any
// scroll-aware entity's turn in the same step; consumers read it with
// Current and subtract it from their own coordinates so they appear to move
// with the world (egocentric entities stay put instead, producing the
// illusion that the world moves around them). Ordering the emitter before
// every consumer in the z-order is the game author's responsibility; the
// engine does not know about scrolling at all.
//
// A second Order within the same step is a protocol violation and fails
// fast: last-write-wins would scroll half the world by one amount and half
// by another, with no diagnostic.
package scroll

import (
	"fmt"

	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// Motion is a rigid displacement of the game window over the world:
// positive Rows moves the window down, positive Cols moves it right.
// Entities that follow the world subtract a Motion from their coordinates.
type Motion struct {
	Rows, Cols int
}

// Predefined motions, named for the direction the window travels.
var (
	North     = Motion{-1, 0}
	Northeast = Motion{-1, 1}
	East      = Motion{0, 1}
	Southeast = Motion{1, 1}
	South     = Motion{1, 0}
	Southwest = Motion{1, -1}
	West      = Motion{0, -1}
	Northwest = Motion{-1, -1}
)

// Shift returns the point displaced to follow the world under m
// (coordinates move opposite to the window).
func (m Motion) Shift(p grid.Point) grid.Point {
	return grid.P(p.Row-m.Rows, p.Col-m.Cols)
}

// ShiftMask displaces a footprint in place to follow the world under m.
func (m Motion) ShiftMask(fp *grid.Mask) {
	fp.Shift(-m.Rows, -m.Cols)
}

// ShiftGrid displaces a character grid in place to follow the world under
// m, filling vacated cells with fill.
func (m Motion) ShiftGrid(g *grid.Grid, fill rune) {
	g.Shift(-m.Rows, -m.Cols, fill)
}

const (
	orderKey       = "scroll/order"
	egocentricsKey = "scroll/egocentrics"
	permitsKey     = "scroll/permits"
)

// permitTable holds, per egocentric entity, the permitted motions keyed by
// the frame they apply to. Entities declare permits for the next frame
// while consumers check the current one, so both frames stay live.
type permitTable map[rune]map[int]map[Motion]bool

// Order issues the step's scrolling order. It fails with a ProtocolError
// if an order was already issued this step, and rejects motions that any
// registered egocentric entity has not permitted for this step.
func Order(p *stage.Plot, m Motion) error {
	if regs := egocentrics(p); len(regs) > 0 && !IsPossible(p, m) {
		return fmt.Errorf("scroll: motion (%d,%d) not permitted by every egocentric entity", m.Rows, m.Cols)
	}
	return p.Publish(orderKey, m)
}

// Current returns the scrolling order issued during this step, if any.
// Absence means a zero displacement.
func Current(p *stage.Plot) (Motion, bool) {
	v, ok := p.Lookup(orderKey)
	if !ok {
		return Motion{}, false
	}
	return v.(Motion), true
}

// RegisterEgocentric marks an entity as egocentric: the world scrolls
// around it, so orders must be vetted against the motions it permits.
// Registering more than once is harmless.
func RegisterEgocentric(p *stage.Plot, id rune) {
	regs := egocentrics(p)
	regs[id] = true
	p.Set(egocentricsKey, regs)
}

// Permit declares the motions that would be legal for the egocentric
// entity during the next step. Calling it again within the same step adds
// to the set; a new step starts the set afresh.
func Permit(p *stage.Plot, id rune, motions ...Motion) error {
	if !egocentrics(p)[id] {
		return fmt.Errorf("scroll: entity %q is not registered as egocentric", id)
	}
	all := permits(p)
	frames := all[id]
	if frames == nil {
		frames = make(map[int]map[Motion]bool)
		all[id] = frames
	}
	next := p.Frame() + 1
	if frames[next] == nil {
		frames[next] = make(map[Motion]bool)
	}
	for _, m := range motions {
		frames[next][m] = true
	}
	for f := range frames {
		if f < p.Frame() {
			delete(frames, f)
		}
	}
	p.Set(permitsKey, all)
	return nil
}

// IsPossible reports whether every registered egocentric entity has
// permitted the motion for the current step. An entity with no current
// permits blocks all motion.
func IsPossible(p *stage.Plot, m Motion) bool {
	all := permits(p)
	for id := range egocentrics(p) {
		if !all[id][p.Frame()][m] {
			return false
		}
	}
	return true
}

func egocentrics(p *stage.Plot) map[rune]bool {
	if v, ok := p.Get(egocentricsKey); ok {
		return v.(map[rune]bool)
	}
	return make(map[rune]bool)
}

func permits(p *stage.Plot) permitTable {
	if v, ok := p.Get(permitsKey); ok {
		return v.(permitTable)
	}
	return make(permitTable)
}
