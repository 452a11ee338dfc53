// Package crop cuts fixed-size windows out of observations, for showing a
// small viewport onto a large board. Croppers transform whole observations
// (board and layers together) so downstream rendering code never needs to
// know whether it is looking at the full board or a window.
package crop

import (
	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// FixedWindow crops a Rows x Cols window whose top-left corner sits at
// Origin. Cells outside the source board are filled with Pad.
type FixedWindow struct {
	Rows, Cols int
	Origin     grid.Point
	Pad        rune
}

// Crop returns the windowed observation.
func (w FixedWindow) Crop(obs stage.Observation) stage.Observation {
	return cut(obs, w.Origin, w.Rows, w.Cols, w.Pad)
}

// TrackingWindow crops a Rows x Cols window kept centered on one entity,
// located through its visibility layer. When Clamp is set the window never
// leaves the board (it stops sliding at the edges); otherwise it follows
// the entity exactly and pads cells beyond the board with Pad.
//
// If the tracked entity is dead or fully occluded, the window stays where
// it last was. A TrackingWindow carries that memory, so reuse one value per
// episode and call Crop through a pointer.
type TrackingWindow struct {
	Rows, Cols int
	Track      rune
	Pad        rune
	Clamp      bool

	origin  grid.Point
	sighted bool
}

// Crop returns the windowed observation centered on the tracked entity.
func (w *TrackingWindow) Crop(obs stage.Observation) stage.Observation {
	if pos, ok := locate(obs.Layers[w.Track]); ok {
		w.origin = grid.P(pos.Row-w.Rows/2, pos.Col-w.Cols/2)
		w.sighted = true
	}
	origin := w.origin
	if w.Clamp {
		origin = clampOrigin(origin, w.Rows, w.Cols, obs.Board.Rows(), obs.Board.Cols())
		w.origin = origin
	}
	return cut(obs, origin, w.Rows, w.Cols, w.Pad)
}

// locate returns the first set cell of a layer in row-major order.
func locate(layer *grid.Mask) (grid.Point, bool) {
	if layer == nil {
		return grid.Point{}, false
	}
	for r := 0; r < layer.Rows(); r++ {
		for c := 0; c < layer.Cols(); c++ {
			if layer.Get(grid.P(r, c)) {
				return grid.P(r, c), true
			}
		}
	}
	return grid.Point{}, false
}

func clampOrigin(origin grid.Point, rows, cols, boardRows, boardCols int) grid.Point {
	if max := boardRows - rows; origin.Row > max {
		origin.Row = max
	}
	if max := boardCols - cols; origin.Col > max {
		origin.Col = max
	}
	if origin.Row < 0 {
		origin.Row = 0
	}
	if origin.Col < 0 {
		origin.Col = 0
	}
	return origin
}

func cut(obs stage.Observation, origin grid.Point, rows, cols int, pad rune) stage.Observation {
	if pad == 0 {
		pad = ' '
	}
	board := grid.NewGrid(rows, cols, pad)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			src := grid.P(origin.Row+r, origin.Col+c)
			if obs.Board.InBounds(src) {
				board.Set(grid.P(r, c), obs.Board.Get(src))
			}
		}
	}

	layers := make(map[rune]*grid.Mask, len(obs.Layers))
	for ch, layer := range obs.Layers {
		cropped := grid.NewMask(rows, cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				src := grid.P(origin.Row+r, origin.Col+c)
				if layer.Get(src) {
					cropped.Set(grid.P(r, c), true)
				}
			}
		}
		layers[ch] = cropped
	}
	return stage.Observation{Board: board, Layers: layers}
}
