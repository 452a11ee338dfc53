// Package parts provides prefabricated entity building blocks: a Walker
// base for point entities that move around obstacle-laden boards, and a
// Scenery mask entity for static world features. Games embed or instantiate
// these instead of re-deriving movement and scrolling mechanics.
package parts

import (
	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/scroll"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// Walker is a point-entity base that knows how to walk: it refuses to step
// onto impassable characters or off the board, and it can take part in the
// scrolling protocol on either side (following the world or staying put as
// the egocentric center). Embed it and implement Update.
type Walker struct {
	stage.PointBase
	impassable map[rune]bool
}

// NewWalker creates a walker base at the given position. Every character in
// impassable blocks movement.
func NewWalker(char rune, pos grid.Point, impassable string) Walker {
	blocked := make(map[rune]bool, len(impassable))
	for _, ch := range impassable {
		blocked[ch] = true
	}
	return Walker{
		PointBase:  stage.NewPointBase(char, pos),
		impassable: blocked,
	}
}

// Passable reports whether the walker may stand at p: inside the board and
// not covered by an impassable character on the board as composited so far.
func (w *Walker) Passable(up stage.Update, p grid.Point) bool {
	if !up.Board.InBounds(p) {
		return false
	}
	return !w.impassable[up.Board.Get(p)]
}

// Move attempts to step by (dr, dc) and reports whether the step was taken.
// Blocked steps leave the walker in place.
func (w *Walker) Move(up stage.Update, dr, dc int) bool {
	dst := w.Position().Add(dr, dc)
	if !w.Passable(up, dst) {
		return false
	}
	w.MoveTo(dst)
	return true
}

// Teleport places the walker at pos regardless of obstacles. The position
// must lie inside the board.
func (w *Walker) Teleport(pos grid.Point) {
	w.MoveTo(pos)
}

// FollowScroll applies the step's scrolling order, if any, so the walker
// stays fixed relative to the world. Egocentric walkers must not call this.
func (w *Walker) FollowScroll(up stage.Update) {
	if m, ok := scroll.Current(up.Plot); ok {
		w.MoveTo(m.Shift(w.Position()))
	}
}

// MakeEgocentric registers the walker as the scrolling center. Call once,
// during the initialization update.
func (w *Walker) MakeEgocentric(up stage.Update) {
	scroll.RegisterEgocentric(up.Plot, w.Character())
}

// PermitScroll declares which of the candidate motions would be legal next
// step: those that keep the stationary walker over a passable cell. Only
// egocentric walkers may call it.
func (w *Walker) PermitScroll(up stage.Update, candidates ...scroll.Motion) error {
	legal := candidates[:0:0]
	for _, m := range candidates {
		// Under order m the world shifts opposite to the window, so the
		// cell that ends up beneath the stationary walker currently sits
		// at the walker's position displaced by the motion itself.
		under := w.Position().Add(m.Rows, m.Cols)
		if w.Passable(up, under) {
			legal = append(legal, m)
		}
	}
	return scroll.Permit(up.Plot, w.Character(), legal...)
}
