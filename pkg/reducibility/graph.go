package reducibility

import (
	"context"
	"iter"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/depgraph"
)

// GraphSearch matches tails to heads found by depth-first search through
// the covering DAG on demand.
type GraphSearch struct {
	Limits budget.Limits
}

// Method returns MethodGraph.
func (*GraphSearch) Method() Method { return MethodGraph }

// MinWidth runs Kuhn's algorithm with DFS-discovered candidates.
func (s *GraphSearch) MinWidth(ctx context.Context, v depgraph.View) (int, error) {
	meter := budget.NewMeter(ctx, string(MethodGraph), s.Limits)
	var stepErr error
	cand := func(u int) iter.Seq[int] {
		return func(yield func(int) bool) {
			if stepErr != nil {
				return
			}
			stepErr = reachable(v, u, meter, yield)
		}
	}
	w, err := minWidth(v.Len(), cand, meter)
	if err != nil {
		return 0, err
	}
	if stepErr != nil {
		return 0, stepErr
	}
	return w, nil
}

// Closure materialises reachability with one DFS per node.
func (s *GraphSearch) Closure(ctx context.Context, v depgraph.View) (*bitmatrix.Matrix, error) {
	meter := budget.NewMeter(ctx, string(MethodGraph), s.Limits)
	c := bitmatrix.New(v.Len())
	for u := range v.Len() {
		err := reachable(v, u, meter, func(w int) bool {
			c.Set(u, w)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// reachable yields every node reachable from u in pre-order, excluding u.
// It stops early when yield returns false and reports a budget error from
// meter.
func reachable(v depgraph.View, u int, meter *budget.Meter, yield func(int) bool) error {
	seen := make([]bool, v.Len())
	seen[u] = true
	stack := []int{u}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := meter.Tick(); err != nil {
			return err
		}
		succ := v.Successors(curr)
		for i := len(succ) - 1; i >= 0; i-- {
			w := succ[i]
			if seen[w] {
				continue
			}
			seen[w] = true
			if !yield(w) {
				return nil
			}
			stack = append(stack, w)
		}
	}
	return nil
}
