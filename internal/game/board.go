package game

import (
	"bufio"
	"io"
)

// InitialFields returns the starting position for a board of the given size:
// White on even rows and odd columns, Black on odd rows and even columns.
func InitialFields(size int) Fields {
	f := NewFields(size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			switch {
			case r%2 == 0 && c%2 == 1:
				f[r][c] = White
			case r%2 == 1 && c%2 == 0:
				f[r][c] = Black
			}
		}
	}
	return f
}

// NewFields returns an empty size x size grid.
func NewFields(size int) Fields {
	f := make(Fields, size)
	for r := range f {
		f[r] = make([]Player, size)
	}
	return f
}

// Size is the length of a side of the grid.
func (f Fields) Size() int { return len(f) }

// At returns the value of a cell.
func (f Fields) At(c Coords) Player { return f[c.Row][c.Col] }

// Clone returns a deep copy, so callers can mutate it without touching f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for r, row := range f {
		out[r] = append([]Player(nil), row...)
	}
	return out
}

// Swap exchanges the contents of the two cells of m. Swapping is its own
// inverse, which is what lets history be walked in both directions.
func (f Fields) Swap(m Move) {
	a, b := m.Src, m.Dst
	f[a.Row][a.Col], f[b.Row][b.Col] = f[b.Row][b.Col], f[a.Row][a.Col]
}

// Equal reports whether both grids hold the same values cell for cell.
func (f Fields) Equal(o Fields) bool {
	if len(f) != len(o) {
		return false
	}
	for r := range f {
		if len(f[r]) != len(o[r]) {
			return false
		}
		for c := range f[r] {
			if f[r][c] != o[r][c] {
				return false
			}
		}
	}
	return true
}

// WriteBoard writes one line per row using '.' for empty, '+' for white
// and '-' for black cells, returning the number of bytes written.
func (f Fields) WriteBoard(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, row := range f {
		for _, p := range row {
			ch := byte('.')
			switch p {
			case White:
				ch = '+'
			case Black:
				ch = '-'
			}
			if err := bw.WriteByte(ch); err != nil {
				return n, err
			}
			n++
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}
