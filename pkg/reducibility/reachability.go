package reducibility

import (
	"context"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/depgraph"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// Reachability computes the closure with one breadth-first walk per node
// over a gonum directed graph.
type Reachability struct {
	Limits budget.Limits
}

// Method returns MethodReachability.
func (*Reachability) Method() Method { return MethodReachability }

// MinWidth computes the closure and matches over its rows.
func (r *Reachability) MinWidth(ctx context.Context, v depgraph.View) (int, error) {
	c, err := r.Closure(ctx, v)
	if err != nil {
		return 0, err
	}
	meter := budget.NewMeter(ctx, string(MethodReachability), r.Limits)
	return minWidth(c.Size(), rowCandidates(c), meter)
}

// Closure walks the graph breadth-first from every node.
func (r *Reachability) Closure(ctx context.Context, v depgraph.View) (*bitmatrix.Matrix, error) {
	g := toGonum(v)
	if _, err := topo.Sort(g); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "dependency graph is not acyclic")
	}

	meter := budget.NewMeter(ctx, string(MethodReachability), r.Limits)
	c := bitmatrix.New(v.Len())
	for u := range v.Len() {
		var stepErr error
		var bf traverse.BreadthFirst
		bf.Walk(g, g.Node(int64(u)), func(n graph.Node, _ int) bool {
			if stepErr = meter.Tick(); stepErr != nil {
				return true
			}
			if id := int(n.ID()); id != u {
				c.Set(u, id)
			}
			return false
		})
		if stepErr != nil {
			return nil, stepErr
		}
	}
	return c, nil
}

func toGonum(v depgraph.View) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for u := range v.Len() {
		g.AddNode(simple.Node(u))
	}
	for u := range v.Len() {
		for _, w := range v.Successors(u) {
			g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(w)})
		}
	}
	return g
}
