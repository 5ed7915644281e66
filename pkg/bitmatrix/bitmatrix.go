// Package bitmatrix implements square Boolean matrices with bitset rows.
//
// Rows are [bitset.BitSet] values, so row unions and the Boolean product
// run a machine word at a time. The matrix closure method of the
// reducibility engine is built on [Matrix.Mul] and [Matrix.Or].
package bitmatrix

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Matrix is an n×n Boolean matrix. The zero value is a 0×0 matrix.
type Matrix struct {
	n    int
	rows []*bitset.BitSet
}

// New returns an all-false n×n matrix.
func New(n int) *Matrix {
	m := &Matrix{n: n, rows: make([]*bitset.BitSet, n)}
	for i := range m.rows {
		m.rows[i] = bitset.New(uint(n))
	}
	return m
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n)
	for i := range n {
		m.Set(i, i)
	}
	return m
}

// Size returns n.
func (m *Matrix) Size() int { return m.n }

// Set sets entry (i, j).
func (m *Matrix) Set(i, j int) { m.rows[i].Set(uint(j)) }

// Clear clears entry (i, j).
func (m *Matrix) Clear(i, j int) { m.rows[i].Clear(uint(j)) }

// Test reports entry (i, j).
func (m *Matrix) Test(i, j int) bool { return m.rows[i].Test(uint(j)) }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) *bitset.BitSet { return m.rows[i].Clone() }

// Ones returns the column indices set in row i, ascending.
func (m *Matrix) Ones(i int) []int {
	row := m.rows[i]
	out := make([]int, 0, row.Count())
	for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
		out = append(out, int(j))
	}
	return out
}

// Count returns the number of true entries.
func (m *Matrix) Count() int {
	total := 0
	for _, r := range m.rows {
		total += int(r.Count())
	}
	return total
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{n: m.n, rows: make([]*bitset.BitSet, m.n)}
	for i, r := range m.rows {
		c.rows[i] = r.Clone()
	}
	return c
}

// Equal reports whether both matrices have the same size and entries.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.n != o.n {
		return false
	}
	for i := range m.rows {
		if !m.rows[i].Equal(o.rows[i]) {
			return false
		}
	}
	return true
}

// Or returns m ∨ o. Both matrices must have the same size.
func (m *Matrix) Or(o *Matrix) *Matrix {
	out := m.Clone()
	for i := range out.rows {
		out.rows[i].InPlaceUnion(o.rows[i])
	}
	return out
}

// Mul returns the Boolean product m·o: entry (i, j) is true iff some k has
// m(i, k) and o(k, j). Row i of the result is the union of the rows of o
// selected by row i of m.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	out := New(m.n)
	for i, row := range m.rows {
		for k, ok := row.NextSet(0); ok; k, ok = row.NextSet(k + 1) {
			out.rows[i].InPlaceUnion(o.rows[k])
		}
	}
	return out
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	out := New(m.n)
	for i := range m.rows {
		for _, j := range m.Ones(i) {
			out.Set(j, i)
		}
	}
	return out
}

// Complement returns ¬m.
func (m *Matrix) Complement() *Matrix {
	out := &Matrix{n: m.n, rows: make([]*bitset.BitSet, m.n)}
	for i, r := range m.rows {
		out.rows[i] = r.Complement()
	}
	return out
}

// Step performs one closure round, returning m ∨ m·m and whether it
// differs from m.
func (m *Matrix) Step() (*Matrix, bool) {
	next := m.Or(m.Mul(m))
	return next, !next.Equal(m)
}

// Closure returns the transitive (non-reflexive) closure by repeated
// squaring. It converges in at most ⌈log₂ n⌉ + 1 rounds.
func (m *Matrix) Closure() *Matrix {
	c := m.Clone()
	for changed := true; changed; {
		c, changed = c.Step()
	}
	return c
}

// String renders the matrix as rows of 0 and 1.
func (m *Matrix) String() string {
	var b strings.Builder
	for i := range m.rows {
		for j := range m.n {
			if m.Test(i, j) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Rows returns the matrix as a [][]bool, for serialisation.
func (m *Matrix) Rows() [][]bool {
	out := make([][]bool, m.n)
	for i := range m.rows {
		out[i] = make([]bool, m.n)
		for _, j := range m.Ones(i) {
			out[i][j] = true
		}
	}
	return out
}
