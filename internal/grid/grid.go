// Package grid provides the board primitives for gridstage: fixed-size
// rectangular grids of character cells, boolean masks over those grids, and
// board coordinates. It contains no external dependencies to keep the engine
// core pure and testable.
package grid

import "strings"

// Point is a (row, col) board coordinate. Row 0 is the top row.
type Point struct {
	Row, Col int
}

// P is shorthand for constructing a Point.
func P(row, col int) Point {
	return Point{Row: row, Col: col}
}

// Add returns the point offset by (dr, dc).
func (p Point) Add(dr, dc int) Point {
	return Point{Row: p.Row + dr, Col: p.Col + dc}
}

// Grid is a fixed-size 2D buffer of character cells.
// Cells are stored in row-major order: index = row*cols + col.
type Grid struct {
	rows  int
	cols  int
	cells []rune
}

// NewGrid creates a grid of the given dimensions filled with the fill rune.
func NewGrid(rows, cols int, fill rune) *Grid {
	g := &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]rune, rows*cols),
	}
	g.Fill(fill)
	return g
}

// FromLines creates a grid from equal-length strings, one per row.
// Short rows are padded with the fill rune.
func FromLines(lines []string, fill rune) *Grid {
	rows := len(lines)
	cols := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > cols {
			cols = n
		}
	}
	g := NewGrid(rows, cols, fill)
	for r, line := range lines {
		for c, ch := range []rune(line) {
			g.Set(P(r, c), ch)
		}
	}
	return g
}

// Rows returns the grid height.
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the grid width.
func (g *Grid) Cols() int {
	return g.cols
}

func (g *Grid) index(p Point) int {
	return p.Row*g.cols + p.Col
}

// InBounds reports whether the point is within the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// Get returns the rune at p, or the zero rune when out of bounds.
func (g *Grid) Get(p Point) rune {
	if !g.InBounds(p) {
		return 0
	}
	return g.cells[g.index(p)]
}

// Set places a rune at p. Out-of-bounds coordinates are silently ignored.
func (g *Grid) Set(p Point, ch rune) {
	if g.InBounds(p) {
		g.cells[g.index(p)] = ch
	}
}

// Fill sets every cell to the given rune.
func (g *Grid) Fill(ch rune) {
	for i := range g.cells {
		g.cells[i] = ch
	}
}

// CopyFrom overwrites this grid's cells with those of src.
// Both grids must have identical dimensions.
func (g *Grid) CopyFrom(src *Grid) {
	if g.rows != src.rows || g.cols != src.cols {
		panic("grid: CopyFrom dimension mismatch")
	}
	copy(g.cells, src.cells)
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]rune, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Equal reports whether two grids have the same dimensions and contents.
func (g *Grid) Equal(other *Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i, ch := range g.cells {
		if ch != other.cells[i] {
			return false
		}
	}
	return true
}

// Shift displaces the grid contents by (dr, dc) in place: the cell at
// (r, c) moves to (r+dr, c+dc). Cells shifted off the edge are lost and
// vacated cells are filled with the fill rune.
func (g *Grid) Shift(dr, dc int, fill rune) {
	shifted := NewGrid(g.rows, g.cols, fill)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			dst := P(r+dr, c+dc)
			if shifted.InBounds(dst) {
				shifted.Set(dst, g.Get(P(r, c)))
			}
		}
	}
	copy(g.cells, shifted.cells)
}

// Row returns a copy of the given row as a string.
func (g *Grid) Row(row int) string {
	if row < 0 || row >= g.rows {
		return ""
	}
	return string(g.cells[row*g.cols : (row+1)*g.cols])
}

// String renders the grid with rows joined by newlines.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.rows*g.cols + g.rows)
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(g.Row(r))
	}
	return sb.String()
}
