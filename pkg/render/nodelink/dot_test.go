package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/qreuse/pkg/circuit/circuittest"
	"github.com/matzehuels/qreuse/pkg/depgraph"
)

func twoChainsDAG(t *testing.T) *depgraph.Graph {
	t.Helper()
	g, err := depgraph.Build(circuittest.TwoChains())
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	g := twoChainsDAG(t)
	dot := ToDOT(g.DAG(), Options{})
	for _, want := range []string{"digraph G {", `0 [label="q0"];`, "0 -> 1;", "2 -> 3;", "{ rank=same; 0; 2; }", "{ rank=same; 1; 3; }"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "dashed") {
		t.Error("no conflicts requested but dashed edges drawn")
	}
	if dot != ToDOT(g.DAG(), Options{}) {
		t.Error("ToDOT is not deterministic")
	}
}

func TestToDOT_SlotsAndConflicts(t *testing.T) {
	g := twoChainsDAG(t)
	var conflicts [][2]int
	for _, p := range g.Conflicts() {
		conflicts = append(conflicts, [2]int{p.A, p.B})
	}
	dot := ToDOT(g.DAG(), Options{
		Slots:     map[int]int{0: 0, 1: 0, 2: 1, 3: 1},
		Conflicts: conflicts,
		Detailed:  true,
	})
	if !strings.Contains(dot, `q1 @0`) || !strings.Contains(dot, `q3 @1`) {
		t.Errorf("slot labels missing:\n%s", dot)
	}
	if got := strings.Count(dot, "style=dashed"); got != 3 {
		t.Errorf("dashed conflict edges = %d, want 3", got)
	}
	if !strings.Contains(dot, palette[1]) {
		t.Error("slot colour missing")
	}
	if !strings.Contains(dot, "start: ") {
		t.Error("detailed labels should include metadata")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if plain := []byte("<svg><g/></svg>"); string(normalizeViewBox(plain)) != string(plain) {
		t.Error("input without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := RenderSVG(ToDOT(twoChainsDAG(t).DAG(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output is not SVG")
	}
}
