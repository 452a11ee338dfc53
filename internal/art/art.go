// Package art builds ready-to-start engines from ASCII art. A Blueprint
// pairs the art with factories for the background and for each character
// claimed by a mask or point entity; Build parses the art, carves out the
// claimed characters, and registers everything on a fresh engine.
package art

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// BackgroundFactory constructs the background entity from the curtain
// carved out of the art (claimed cells already replaced by the beneath
// character).
type BackgroundFactory func(curtain *grid.Grid) (stage.Background, error)

// MaskFactory constructs a mask entity from its identity and the footprint
// of that character's occurrences in the art.
type MaskFactory func(char rune, footprint *grid.Mask) (stage.MaskEntity, error)

// PointFactory constructs a point entity from its identity and the single
// position where that character occurs in the art.
type PointFactory func(char rune, pos grid.Point) (stage.PointEntity, error)

// Blueprint describes a game board as ASCII art plus entity factories.
type Blueprint struct {
	// Art is the board, one string per row. Short rows are padded with
	// Beneath. Every character claimed by a factory is carved out of the
	// background curtain; everything else stays in the curtain verbatim.
	Art []string

	// Beneath fills carved-out and padded cells in the curtain. The zero
	// value means a space.
	Beneath rune

	// Background constructs the single background entity. Required.
	Background BackgroundFactory

	// Masks and Points map claimed characters to their factories. A
	// character may appear in at most one of the two maps. Mask characters
	// may be absent from the art (empty footprint); point characters must
	// occur exactly once.
	Masks  map[rune]MaskFactory
	Points map[rune]PointFactory

	// ZOrder optionally fixes the z-order, back to front, as a permutation
	// of all claimed characters. When empty, masks precede points and each
	// group is ordered by character code.
	ZOrder []rune

	// Occlusion selects occluded visibility layers in observations.
	Occlusion bool
}

// Build parses the blueprint and returns an engine ready for Start.
func Build(bp Blueprint) (*stage.Engine, error) {
	if len(bp.Art) == 0 {
		return nil, &stage.ConfigError{Msg: "blueprint has no art"}
	}
	if bp.Background == nil {
		return nil, &stage.ConfigError{Msg: "blueprint has no background factory"}
	}
	for ch := range bp.Points {
		if _, dup := bp.Masks[ch]; dup {
			return nil, &stage.ConfigError{Char: ch, Msg: "claimed as both mask and point"}
		}
	}

	beneath := bp.Beneath
	if beneath == 0 {
		beneath = ' '
	}
	board := grid.FromLines(bp.Art, beneath)
	rows, cols := board.Rows(), board.Cols()

	curtain := board.Clone()
	footprints := make(map[rune]*grid.Mask, len(bp.Masks))
	for ch := range bp.Masks {
		footprints[ch] = grid.NewMask(rows, cols)
	}
	positions := make(map[rune][]grid.Point, len(bp.Points))

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := grid.P(r, c)
			ch := board.Get(p)
			if fp, ok := footprints[ch]; ok {
				fp.Set(p, true)
				curtain.Set(p, beneath)
				continue
			}
			if _, ok := bp.Points[ch]; ok {
				positions[ch] = append(positions[ch], p)
				curtain.Set(p, beneath)
			}
		}
	}

	for ch := range bp.Points {
		if n := len(positions[ch]); n != 1 {
			return nil, &stage.ConfigError{Char: ch, Msg: fmt.Sprintf("point character occurs %d times, want exactly 1", n)}
		}
	}

	eng := stage.NewEngine(stage.Config{Rows: rows, Cols: cols, OcclusionInLayers: bp.Occlusion})

	bg, err := bp.Background(curtain)
	if err != nil {
		return nil, err
	}
	if err := eng.SetBackground(bg); err != nil {
		return nil, err
	}

	for _, ch := range sortedChars(bp.Masks) {
		ent, err := bp.Masks[ch](ch, footprints[ch])
		if err != nil {
			return nil, err
		}
		if err := eng.AddMask(ent); err != nil {
			return nil, err
		}
	}
	for _, ch := range sortedChars(bp.Points) {
		ent, err := bp.Points[ch](ch, positions[ch][0])
		if err != nil {
			return nil, err
		}
		if err := eng.AddPoint(ent); err != nil {
			return nil, err
		}
	}

	if len(bp.ZOrder) > 0 {
		if err := eng.SetZOrder(bp.ZOrder); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

func sortedChars[V any](m map[rune]V) []rune {
	chars := make([]rune, 0, len(m))
	for ch := range m {
		chars = append(chars, ch)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return chars
}
