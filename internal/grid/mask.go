package grid

import "strings"

// Mask is a fixed-size 2D buffer of boolean cells, used as an entity
// footprint over the board. Cells are stored in row-major order.
type Mask struct {
	rows  int
	cols  int
	cells []bool
}

// NewMask creates an all-false mask of the given dimensions.
func NewMask(rows, cols int) *Mask {
	return &Mask{
		rows:  rows,
		cols:  cols,
		cells: make([]bool, rows*cols),
	}
}

// MaskFromLines creates a mask from strings, one per row: cells matching
// the marker rune are true, everything else (including padding on short
// rows) is false.
func MaskFromLines(lines []string, marker rune) *Mask {
	rows := len(lines)
	cols := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > cols {
			cols = n
		}
	}
	m := NewMask(rows, cols)
	for r, line := range lines {
		for c, ch := range []rune(line) {
			if ch == marker {
				m.Set(P(r, c), true)
			}
		}
	}
	return m
}

// Rows returns the mask height.
func (m *Mask) Rows() int {
	return m.rows
}

// Cols returns the mask width.
func (m *Mask) Cols() int {
	return m.cols
}

func (m *Mask) index(p Point) int {
	return p.Row*m.cols + p.Col
}

// InBounds reports whether the point is within the mask.
func (m *Mask) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < m.rows && p.Col >= 0 && p.Col < m.cols
}

// Get returns the cell at p, or false when out of bounds.
func (m *Mask) Get(p Point) bool {
	if !m.InBounds(p) {
		return false
	}
	return m.cells[m.index(p)]
}

// Set assigns the cell at p. Out-of-bounds coordinates are silently ignored.
func (m *Mask) Set(p Point, v bool) {
	if m.InBounds(p) {
		m.cells[m.index(p)] = v
	}
}

// Clear sets every cell to false.
func (m *Mask) Clear() {
	for i := range m.cells {
		m.cells[i] = false
	}
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}
	return n
}

// Any reports whether at least one cell is true.
func (m *Mask) Any() bool {
	for _, v := range m.cells {
		if v {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	cells := make([]bool, len(m.cells))
	copy(cells, m.cells)
	return &Mask{rows: m.rows, cols: m.cols, cells: cells}
}

// Equal reports whether two masks have the same dimensions and contents.
func (m *Mask) Equal(other *Mask) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i, v := range m.cells {
		if v != other.cells[i] {
			return false
		}
	}
	return true
}

// Subtract clears every cell of this mask that is set in other.
// Both masks must have identical dimensions.
func (m *Mask) Subtract(other *Mask) {
	if m.rows != other.rows || m.cols != other.cols {
		panic("grid: Subtract dimension mismatch")
	}
	for i, v := range other.cells {
		if v {
			m.cells[i] = false
		}
	}
}

// Shift displaces the mask contents by (dr, dc) in place: the cell at
// (r, c) moves to (r+dr, c+dc). Cells shifted off the edge are lost and
// vacated cells become false.
func (m *Mask) Shift(dr, dc int) {
	shifted := NewMask(m.rows, m.cols)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			dst := P(r+dr, c+dc)
			if shifted.InBounds(dst) && m.Get(P(r, c)) {
				shifted.Set(dst, true)
			}
		}
	}
	copy(m.cells, shifted.cells)
}

// String renders the mask with '*' for true cells and '.' for false ones.
func (m *Mask) String() string {
	var sb strings.Builder
	sb.Grow(m.rows*m.cols + m.rows)
	for r := 0; r < m.rows; r++ {
		if r > 0 {
			sb.WriteRune('\n')
		}
		for c := 0; c < m.cols; c++ {
			if m.Get(P(r, c)) {
				sb.WriteRune('*')
			} else {
				sb.WriteRune('.')
			}
		}
	}
	return sb.String()
}
