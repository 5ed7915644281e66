package bitmatrix

import (
	"slices"
	"testing"
)

func path(n int) *Matrix {
	m := New(n)
	for i := 0; i+1 < n; i++ {
		m.Set(i, i+1)
	}
	return m
}

func TestMatrix_SetTest(t *testing.T) {
	m := New(3)
	m.Set(0, 2)
	if !m.Test(0, 2) || m.Test(2, 0) {
		t.Error("Set/Test mismatch")
	}
	m.Clear(0, 2)
	if m.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", m.Count())
	}
}

func TestMatrix_Mul(t *testing.T) {
	m := path(4)
	sq := m.Mul(m)
	want := New(4)
	want.Set(0, 2)
	want.Set(1, 3)
	if !sq.Equal(want) {
		t.Errorf("Mul() =\n%vwant\n%v", sq, want)
	}
	if !m.Mul(Identity(4)).Equal(m) {
		t.Error("m·I should equal m")
	}
}

func TestMatrix_Closure(t *testing.T) {
	tests := []struct {
		n    int
		want int // entries in the closure of a path on n nodes
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{5, 10},
		{17, 136},
	}
	for _, tt := range tests {
		c := path(tt.n).Closure()
		if c.Count() != tt.want {
			t.Errorf("path(%d) closure has %d entries, want %d", tt.n, c.Count(), tt.want)
		}
		for i := range tt.n {
			if c.Test(i, i) {
				t.Errorf("path(%d) closure is reflexive at %d", tt.n, i)
			}
		}
	}
}

func TestMatrix_StepConverges(t *testing.T) {
	m := path(16)
	rounds := 0
	for changed := true; changed; rounds++ {
		m, changed = m.Step()
	}
	// ⌈log₂ 16⌉ + 1
	if rounds > 5 {
		t.Errorf("closure took %d rounds, want <= 5", rounds)
	}
}

func TestMatrix_OnesTransposeComplement(t *testing.T) {
	m := New(3)
	m.Set(0, 1)
	m.Set(0, 2)
	if got := m.Ones(0); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Ones(0) = %v", got)
	}
	tr := m.Transpose()
	if !tr.Test(1, 0) || !tr.Test(2, 0) || tr.Count() != 2 {
		t.Errorf("Transpose() =\n%v", tr)
	}
	comp := m.Complement()
	if comp.Count() != 7 || comp.Test(0, 1) {
		t.Errorf("Complement() =\n%v", comp)
	}
}

func TestMatrix_OrDoesNotAlias(t *testing.T) {
	a, b := New(2), New(2)
	b.Set(1, 0)
	c := a.Or(b)
	if a.Test(1, 0) {
		t.Error("Or mutated receiver")
	}
	if !c.Test(1, 0) {
		t.Error("Or lost entry")
	}
}

func TestMatrix_Rows(t *testing.T) {
	m := path(2)
	rows := m.Rows()
	if !rows[0][1] || rows[1][0] {
		t.Errorf("Rows() = %v", rows)
	}
	if m.String() != "01\n00\n" {
		t.Errorf("String() = %q", m.String())
	}
}
