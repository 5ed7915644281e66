package dag

import (
	"errors"
	"slices"
	"testing"
)

func chain(ids ...int) *DAG {
	g := New(nil)
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	for i := 1; i < len(ids); i++ {
		_ = g.AddEdge(Edge{From: ids[i-1], To: ids[i]})
	}
	return g
}

func TestAddNode_Errors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{ID: -1}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(-1) = %v, want ErrInvalidNodeID", err)
	}
	_ = g.AddNode(Node{ID: 0})
	if err := g.AddNode(Node{ID: 0}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
	n, _ := g.Node(0)
	if n.Meta == nil {
		t.Error("node Meta should be initialised")
	}
}

func TestAddEdge_Errors(t *testing.T) {
	g := chain(0, 1)
	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"unknown source", Edge{From: 5, To: 1}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: 0, To: 5}, ErrUnknownTargetNode},
		{"self loop", Edge{From: 1, To: 1}, ErrSelfLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() = %v, want %v", err, tt.want)
			}
		})
	}
	if err := g.AddEdge(Edge{From: 0, To: 1}); err != nil {
		t.Errorf("duplicate AddEdge() = %v, want nil", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d after duplicate, want 1", g.EdgeCount())
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []int{4, 1, 3} {
		_ = g.AddNode(Node{ID: id})
	}
	if got := g.NodeIDs(); !slices.Equal(got, []int{4, 1, 3}) {
		t.Errorf("NodeIDs() = %v, want [4 1 3]", got)
	}
	if got := len(g.Sources()); got != 3 {
		t.Errorf("Sources() = %d nodes, want 3", got)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := chain(0, 1, 2)
	g.RemoveEdge(0, 1)
	if g.HasEdge(0, 1) || g.EdgeCount() != 1 {
		t.Errorf("edge 0→1 still present: %v", g.Edges())
	}
	if g.InDegree(1) != 0 || g.OutDegree(0) != 0 {
		t.Error("adjacency not updated")
	}
	g.RemoveEdge(7, 8)
}

func TestValidate(t *testing.T) {
	g := chain(0, 1, 2)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	_ = g.AddEdge(Edge{From: 2, To: 0})
	if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("Validate() = %v, want ErrGraphHasCycle", err)
	}
}

func TestTopologicalOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []int{3, 0, 2, 1} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: 2, To: 3})
	_ = g.AddEdge(Edge{From: 1, To: 0})

	got, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() error: %v", err)
	}
	if want := []int{2, 3, 1, 0}; !slices.Equal(got, want) {
		t.Errorf("TopologicalOrder() = %v, want %v", got, want)
	}

	_ = g.AddEdge(Edge{From: 0, To: 1})
	if _, err := g.TopologicalOrder(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("TopologicalOrder() error = %v, want ErrGraphHasCycle", err)
	}
}

func TestRows(t *testing.T) {
	g := chain(0, 1)
	_ = g.AddNode(Node{ID: 2, Row: 1})
	g.SetRows(map[int]int{1: 1, 9: 4})
	if got := g.RowIDs(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("RowIDs() = %v", got)
	}
	if got := len(g.NodesInRow(1)); got != 2 {
		t.Errorf("NodesInRow(1) = %d nodes, want 2", got)
	}
	if g.RowCount() != 2 {
		t.Errorf("RowCount() = %d", g.RowCount())
	}
}

func TestClone(t *testing.T) {
	g := chain(0, 1)
	g.Meta()["name"] = "x"
	c := g.Clone()
	c.RemoveEdge(0, 1)
	c.Meta()["name"] = "y"
	if !g.HasEdge(0, 1) || g.Meta()["name"] != "x" {
		t.Error("Clone shares state with original")
	}
}
