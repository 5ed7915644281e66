package reduction

import (
	"context"

	"github.com/matzehuels/qreuse/pkg/depgraph"
	"github.com/matzehuels/qreuse/pkg/emit"
)

// Greedy places qubits in live-range order into the most recently freed
// compatible slot.
type Greedy struct{}

// Heuristic returns HeuristicGreedy.
func (*Greedy) Heuristic() Heuristic { return HeuristicGreedy }

// Assign never backtracks and never fails. A slot is compatible with q
// when its last occupant reaches q in the closure; among compatible slots
// the one whose occupant was measured last wins, ties going to the lower
// slot index.
func (*Greedy) Assign(ctx context.Context, p *Problem) (emit.Assignment, error) {
	g := p.Graph
	slotOf := make([]int, g.Len())
	var last []int // slot -> node placed most recently
	for q := range g.Len() {
		if q%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return emit.Assignment{}, err
			}
		}
		best := -1
		for s, prev := range last {
			if !p.Closure.Test(prev, q) {
				continue
			}
			if best < 0 || g.Range(prev).End > g.Range(last[best]).End {
				best = s
			}
		}
		if best < 0 {
			best = len(last)
			last = append(last, q)
		} else {
			last[best] = q
		}
		slotOf[q] = best
	}
	return toAssignment(g, slotOf), nil
}

// toAssignment converts node-indexed slots to a qubit-keyed Assignment,
// renumbering slots 0..K-1 in order of their first occupant.
func toAssignment(g *depgraph.Graph, slotOf []int) emit.Assignment {
	remap := make(map[int]int)
	a := emit.Assignment{Slots: make(map[int]int, len(slotOf))}
	for i, s := range slotOf {
		r, ok := remap[s]
		if !ok {
			r = len(remap)
			remap[s] = r
		}
		a.Slots[g.Qubit(i)] = r
	}
	a.Width = len(remap)
	return a
}
