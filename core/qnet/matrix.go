package qnet

// Matrix is a dense integer matrix indexed by row (place URI, sorted) and
// column (transition URI, sorted). It is rebuilt wholesale on every
// structural change to the owning net; construction is not treated as a
// hot path, so there is no incremental-update path (see
// DESIGN.md for the tradeoff).
type Matrix struct {
	rows   []string // place URIs, sorted
	cols   []string // transition URIs, sorted
	values [][]int
	rowIdx map[string]int
	colIdx map[string]int
}

func newMatrix(rows, cols []string, fill func(rowURI, colURI string) int) *Matrix {
	m := &Matrix{
		rows:   rows,
		cols:   cols,
		values: make([][]int, len(rows)),
		rowIdx: make(map[string]int, len(rows)),
		colIdx: make(map[string]int, len(cols)),
	}
	for i, r := range rows {
		m.rowIdx[r] = i
	}
	for j, c := range cols {
		m.colIdx[c] = j
	}
	for i, r := range rows {
		row := make([]int, len(cols))
		for j, c := range cols {
			row[j] = fill(r, c)
		}
		m.values[i] = row
	}
	return m
}

// Value returns the dense matrix as a row-major slice of slices. Callers
// must not mutate the returned slices.
func (m *Matrix) Value() [][]int {
	return m.values
}

// At returns the element for (placeURI, transitionURI), or 0 if either is
// not a row/column of this matrix.
func (m *Matrix) At(rowURI, colURI string) int {
	i, ok := m.rowIdx[rowURI]
	if !ok {
		return 0
	}
	j, ok := m.colIdx[colURI]
	if !ok {
		return 0
	}
	return m.values[i][j]
}

// ColumnSum returns the sum of a transition's column — used by the
// enabling check to test "has at least one input/output arc".
func (m *Matrix) ColumnSum(colURI string) int {
	j, ok := m.colIdx[colURI]
	if !ok {
		return 0
	}
	sum := 0
	for _, row := range m.values {
		sum += row[j]
	}
	return sum
}

// subtract computes a - b element-wise over the same row/col index space
// (used for the incidence matrix C = O - I).
func subtract(a, b *Matrix) *Matrix {
	rows := a.rows
	cols := a.cols
	return newMatrix(rows, cols, func(r, c string) int {
		return a.At(r, c) - b.At(r, c)
	})
}
