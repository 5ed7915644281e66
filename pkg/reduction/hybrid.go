package reduction

import (
	"context"
	"slices"

	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/emit"
)

// moveFactor bounds local re-optimisation to moveFactor·|Q| move attempts.
const moveFactor = 4

// Hybrid runs MRV and then empties the highest slot where it can.
type Hybrid struct {
	Limits budget.Limits
}

// Heuristic returns HeuristicHybrid.
func (*Hybrid) Heuristic() Heuristic { return HeuristicHybrid }

// Assign never returns a budget error: when the MRV search exhausts its
// budget the baseline comes from a single MRV pass instead.
func (h *Hybrid) Assign(ctx context.Context, p *Problem) (emit.Assignment, error) {
	if p.Graph.Len() == 0 {
		return toAssignment(p.Graph, nil), nil
	}
	conflicts := conflictLists(p.Closure)
	base, err := (&MRV{Limits: h.Limits}).search(ctx, p, conflicts)
	switch {
	case IsBudgetExceeded(err):
		base = singlePass(conflicts)
	case err != nil:
		return emit.Assignment{}, err
	}
	improve(base, conflicts)
	return toAssignment(p.Graph, base), nil
}

// improve moves nodes out of the highest slot into the lowest compatible
// lower slot. A slot that empties is dropped and the next highest becomes
// the target. It stops when a pass moves nothing or the attempt budget is
// spent.
func improve(slotOf []int, conflicts [][]int) {
	n := len(slotOf)
	width := slices.Max(slotOf) + 1
	members := make([][]int, width)
	for q, s := range slotOf {
		members[s] = append(members[s], q)
	}
	fits := func(q, s int) bool {
		for _, r := range conflicts[q] {
			if slotOf[r] == s {
				return false
			}
		}
		return true
	}

	attempts := 0
	for width > 1 && attempts < moveFactor*n {
		top := width - 1
		moved := false
		var stay []int
		for _, q := range members[top] {
			if attempts >= moveFactor*n {
				stay = append(stay, q)
				continue
			}
			attempts++
			target := -1
			for s := range top {
				if fits(q, s) {
					target = s
					break
				}
			}
			if target < 0 {
				stay = append(stay, q)
				continue
			}
			slotOf[q] = target
			members[target] = append(members[target], q)
			moved = true
		}
		members[top] = stay
		if len(stay) == 0 {
			width--
			members = members[:width]
			continue
		}
		if !moved {
			return
		}
	}
}
