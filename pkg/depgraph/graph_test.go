package depgraph

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/circuit/circuittest"
	"github.com/matzehuels/qreuse/pkg/dag"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

func build(t *testing.T, c *circuit.Circuit) *Graph {
	t.Helper()
	g, err := Build(c)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func edgesOf(g *Graph) [][2]int {
	var out [][2]int
	for i := range g.Len() {
		for _, j := range g.Successors(i) {
			out = append(out, [2]int{g.Qubit(i), g.Qubit(j)})
		}
	}
	return out
}

func TestBuild_Chain(t *testing.T) {
	g := build(t, circuittest.Chain(4))

	want := [][2]int{{0, 1}, {1, 2}, {2, 3}}
	if got := edgesOf(g); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	if n := len(g.Conflicts()); n != 0 {
		t.Errorf("Conflicts() = %d pairs, want 0", n)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if !g.Precedes(0, 3) {
		t.Error("q0 should precede q3")
	}
}

func TestBuild_Entangled(t *testing.T) {
	g := build(t, circuittest.Entangled(4))

	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if n := len(g.Conflicts()); n != 6 {
		t.Errorf("Conflicts() = %d pairs, want 6", n)
	}
}

func TestBuild_TwoChains(t *testing.T) {
	g := build(t, circuittest.TwoChains())

	if got := g.Qubits(); !slices.Equal(got, []int{0, 2, 1, 3}) {
		t.Errorf("node order = %v, want [0 2 1 3]", got)
	}
	// q0→q1 and q2→q3 are the chains; q0→q3 is the one cross edge.
	want := [][2]int{{0, 1}, {0, 3}, {2, 3}}
	if got := edgesOf(g); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	i2, _ := g.Node(2)
	i1, _ := g.Node(1)
	if g.Precedes(i2, i1) {
		t.Error("q2 should not precede q1")
	}
	wantConf := []Pair{{A: 0, B: 2}, {A: 1, B: 2}, {A: 1, B: 3}}
	if got := g.Conflicts(); !slices.Equal(got, wantConf) {
		t.Errorf("Conflicts() = %v, want %v", got, wantConf)
	}
}

func TestBuild_Interleaved(t *testing.T) {
	g := build(t, circuittest.Interleaved())

	want := [][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}}
	if got := edgesOf(g); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	wantConf := []Pair{{A: 0, B: 1}, {A: 2, B: 3}}
	if got := g.Conflicts(); !slices.Equal(got, wantConf) {
		t.Errorf("Conflicts() = %v, want %v", got, wantConf)
	}

	ordered := circuit.NewBuilder("").CX(0, 1).CX(2, 3).CX(0, 1).CX(2, 3).MeasureAll().Ordered().MustBuild()
	if og := build(t, ordered); og.EdgeCount() != 0 || len(og.Conflicts()) != 6 {
		t.Errorf("ordered: %d edges, %d conflicts, want 0 and 6", og.EdgeCount(), len(og.Conflicts()))
	}
}

func TestBuild_RandomBlocksNeverCross(t *testing.T) {
	for seed := range uint64(30) {
		c, _ := circuittest.RandomBlocks(circuittest.Seeded(seed), 3, 4, 15)
		g := build(t, c)
		// Qubits of different blocks are never live together.
		for _, p := range g.Conflicts() {
			if p.A/4 != p.B/4 {
				t.Fatalf("seed %d: conflict %v spans two blocks", seed, p)
			}
		}
	}
}

func TestBuild_Mixed(t *testing.T) {
	// h2 cx01 m0 h1 cx12 m1 m2: q2's leading h is deferred, so q0 hands
	// its slot to q2.
	c := circuit.NewBuilder("").H(2).CX(0, 1).Measure(0).H(1).CX(1, 2).Measure(1, 2).MustBuild()
	g := build(t, c)

	if got := edgesOf(g); !slices.Equal(got, [][2]int{{0, 2}}) {
		t.Errorf("edges = %v, want [[0 2]]", got)
	}
	if got := g.Conflicts(); !slices.Equal(got, []Pair{{0, 1}, {1, 2}}) {
		t.Errorf("Conflicts() = %v", got)
	}

	ordered := circuit.NewBuilder("").H(2).CX(0, 1).Measure(0).H(1).CX(1, 2).Measure(1, 2).Ordered().MustBuild()
	og := build(t, ordered)
	if og.EdgeCount() != 0 {
		t.Errorf("ordered EdgeCount() = %d, want 0", og.EdgeCount())
	}
}

func TestBuild_Malformed(t *testing.T) {
	c := circuit.NewBuilder("").Measure(0).X(0).MustBuild()
	_, err := Build(c)
	var mc *qerrors.MalformedCircuitError
	if !errors.As(err, &mc) {
		t.Fatalf("Build() error = %v, want MalformedCircuitError", err)
	}
	if mc.Qubit != 0 || mc.Index != 1 {
		t.Errorf("got qubit=%d index=%d", mc.Qubit, mc.Index)
	}
}

func TestBuild_Empty(t *testing.T) {
	g := build(t, circuit.NewBuilder("").MustBuild())
	if g.Len() != 0 || g.EdgeCount() != 0 {
		t.Errorf("empty graph has %d nodes, %d edges", g.Len(), g.EdgeCount())
	}
}

func TestBuild_NodesTopological(t *testing.T) {
	for seed := range uint64(30) {
		g := build(t, circuittest.Random(circuittest.Seeded(seed), 8, 30))
		for i := range g.Len() {
			for _, j := range g.Successors(i) {
				if j <= i {
					t.Fatalf("seed %d: edge %d→%d points backwards", seed, i, j)
				}
			}
		}
	}
}

func TestBuild_CoveringClosureIsPrecedence(t *testing.T) {
	for seed := range uint64(50) {
		g := build(t, circuittest.Random(circuittest.Seeded(seed), 10, 40))

		if !g.Matrix().Closure().Equal(g.PrecedenceMatrix()) {
			t.Fatalf("seed %d: closure of covering edges differs from precedence", seed)
		}
		// No covering edge is implied by a two-step path.
		m := g.Matrix()
		if sq := m.Mul(g.PrecedenceMatrix()); sq.Count() > 0 {
			for i := range g.Len() {
				for _, j := range g.Successors(i) {
					if sq.Test(i, j) {
						t.Fatalf("seed %d: edge %d→%d is transitive", seed, i, j)
					}
				}
			}
		}
		// Conflicts are exactly the incomparable pairs.
		conflicts := make(map[Pair]bool)
		for _, p := range g.Conflicts() {
			conflicts[p] = true
		}
		for a := range g.Len() {
			for b := a + 1; b < g.Len(); b++ {
				incomparable := !g.Precedes(a, b) && !g.Precedes(b, a)
				p := g.pair(a, b)
				if conflicts[p] != incomparable {
					t.Fatalf("seed %d: pair %v conflict=%v incomparable=%v", seed, p, conflicts[p], incomparable)
				}
			}
		}
	}
}

func TestBiadjacency(t *testing.T) {
	g := build(t, circuittest.Chain(2))
	b := g.Biadjacency()
	if b.Test(1, 0) {
		t.Error("q0 can hand its slot to q1; B(1,0) should be clear")
	}
	if !b.Test(0, 1) || !b.Test(0, 0) || !b.Test(1, 1) {
		t.Errorf("Biadjacency() =\n%v", b)
	}
}

func TestDAG(t *testing.T) {
	g := build(t, circuittest.TwoChains())
	d := g.DAG()

	if d.NodeCount() != 4 || d.EdgeCount() != 3 {
		t.Fatalf("DAG has %d nodes, %d edges", d.NodeCount(), d.EdgeCount())
	}
	if got := d.NodeIDs(); !slices.Equal(got, []int{0, 2, 1, 3}) {
		t.Errorf("NodeIDs() = %v", got)
	}
	n, _ := d.Node(1)
	if n.Meta[MetaStart] != 2 || n.Meta[MetaEnd] != 5 || n.Label != "q1" {
		t.Errorf("node q1 = %+v", n)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if got := d.RowCount(); got != 2 {
		t.Errorf("RowCount() = %d, want 2", got)
	}
	for _, q := range []int{1, 3} {
		if n, _ := d.Node(q); n.Row != 1 {
			t.Errorf("q%d row = %d, want 1", q, n.Row)
		}
	}
}

func TestFromDAG(t *testing.T) {
	d := dag.New(nil)
	for _, id := range []int{5, 7, 9} {
		_ = d.AddNode(dag.Node{ID: id})
	}
	_ = d.AddEdge(dag.Edge{From: 5, To: 7})
	_ = d.AddEdge(dag.Edge{From: 7, To: 9})
	_ = d.AddEdge(dag.Edge{From: 5, To: 9})

	a, err := FromDAG(d)
	if err != nil {
		t.Fatalf("FromDAG() error: %v", err)
	}
	if a.Len() != 3 || a.Qubit(0) != 5 {
		t.Errorf("Len()=%d Qubit(0)=%d", a.Len(), a.Qubit(0))
	}
	if got := a.Successors(0); !slices.Equal(got, []int{1}) {
		t.Errorf("Successors(0) = %v, want [1]", got)
	}
	if d.EdgeCount() != 3 {
		t.Error("FromDAG must not modify its input")
	}

	_ = d.AddEdge(dag.Edge{From: 9, To: 5})
	if _, err := FromDAG(d); !qerrors.Is(err, qerrors.ErrCodeInvalidInput) {
		t.Errorf("FromDAG(cyclic) error = %v, want INVALID_INPUT", err)
	}
}
