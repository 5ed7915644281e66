package reduction

import (
	"context"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/emit"
)

// MRV is the most-constrained-first backtracking search.
type MRV struct {
	Limits budget.Limits
}

// Heuristic returns HeuristicMRV.
func (*MRV) Heuristic() Heuristic { return HeuristicMRV }

// Assign searches k = max(Lower, 1) … Target slots and returns the first
// complete assignment. If no k up to Target succeeds, it returns one
// non-backtracking pass, which may exceed Target.
func (m *MRV) Assign(ctx context.Context, p *Problem) (emit.Assignment, error) {
	slotOf, err := m.search(ctx, p, conflictLists(p.Closure))
	if err != nil {
		return emit.Assignment{}, err
	}
	return toAssignment(p.Graph, slotOf), nil
}

func (m *MRV) search(ctx context.Context, p *Problem, conflicts [][]int) ([]int, error) {
	if p.Graph.Len() == 0 {
		return nil, nil
	}
	meter := budget.NewMeter(ctx, string(HeuristicMRV), m.Limits)
	for k := max(p.Lower, 1); k <= p.Target; k++ {
		st := newCSP(conflicts, k)
		ok, err := st.solve(0, meter)
		if err != nil {
			return nil, err
		}
		if ok {
			return st.slotOf, nil
		}
	}
	return singlePass(conflicts), nil
}

// conflictLists returns, per node, the nodes incomparable to it.
func conflictLists(closure *bitmatrix.Matrix) [][]int {
	n := closure.Size()
	out := make([][]int, n)
	for a := range n {
		for b := a + 1; b < n; b++ {
			if !closure.Test(a, b) && !closure.Test(b, a) {
				out[a] = append(out[a], b)
				out[b] = append(out[b], a)
			}
		}
	}
	return out
}

// csp is the backtracking state for a fixed slot count k.
type csp struct {
	k         int
	conflicts [][]int
	slotOf    []int     // node -> slot, -1 unassigned
	conf      [][]int32 // slot -> node -> conflicting occupants
	free      []int     // node -> used slots without a conflicting occupant
	used      int
}

func newCSP(conflicts [][]int, k int) *csp {
	n := len(conflicts)
	st := &csp{k: k, conflicts: conflicts, slotOf: make([]int, n), free: make([]int, n)}
	for i := range st.slotOf {
		st.slotOf[i] = -1
	}
	return st
}

// legal counts q's candidate slots: compatible used slots plus one fresh
// slot while fewer than k are in use.
func (st *csp) legal(q int) int {
	if st.used < st.k {
		return st.free[q] + 1
	}
	return st.free[q]
}

// pick returns the unassigned node with the fewest legal slots. Nodes are
// numbered by live-range start then qubit identifier, so scanning in index
// order and keeping the first minimum applies that tie-break.
func (st *csp) pick() int {
	best, bestLegal := -1, 0
	for q, s := range st.slotOf {
		if s >= 0 {
			continue
		}
		if l := st.legal(q); best < 0 || l < bestLegal {
			best, bestLegal = q, l
		}
	}
	return best
}

func (st *csp) open() {
	if len(st.conf) == st.used {
		st.conf = append(st.conf, make([]int32, len(st.slotOf)))
	}
	st.used++
	for r := range st.free {
		st.free[r]++
	}
}

func (st *csp) close() {
	st.used--
	for r := range st.free {
		st.free[r]--
	}
}

func (st *csp) place(q, s int) {
	st.slotOf[q] = s
	row := st.conf[s]
	for _, r := range st.conflicts[q] {
		row[r]++
		if row[r] == 1 {
			st.free[r]--
		}
	}
}

func (st *csp) unplace(q, s int) {
	st.slotOf[q] = -1
	row := st.conf[s]
	for _, r := range st.conflicts[q] {
		row[r]--
		if row[r] == 0 {
			st.free[r]++
		}
	}
}

// viable is the forward check after placing q: every unassigned node
// affected by the move still has a legal slot.
func (st *csp) viable(q int, openedLast bool) bool {
	if openedLast {
		for r, s := range st.slotOf {
			if s < 0 && st.legal(r) == 0 {
				return false
			}
		}
		return true
	}
	for _, r := range st.conflicts[q] {
		if st.slotOf[r] < 0 && st.legal(r) == 0 {
			return false
		}
	}
	return true
}

func (st *csp) solve(assigned int, meter *budget.Meter) (bool, error) {
	if assigned == len(st.slotOf) {
		return true, nil
	}
	if err := meter.Tick(); err != nil {
		return false, err
	}
	q := st.pick()
	limit := st.used
	if st.used < st.k {
		limit++
	}
	for s := range limit {
		fresh := s == st.used
		if !fresh && st.conf[s][q] > 0 {
			continue
		}
		if fresh {
			st.open()
		}
		st.place(q, s)
		if st.viable(q, fresh && st.used == st.k) {
			ok, err := st.solve(assigned+1, meter)
			if err != nil || ok {
				return ok, err
			}
		}
		st.unplace(q, s)
		if fresh {
			st.close()
		}
	}
	return false, nil
}

// singlePass is one non-backtracking MRV pass with unbounded slots: the
// most constrained node takes its lowest legal slot.
func singlePass(conflicts [][]int) []int {
	st := newCSP(conflicts, len(conflicts))
	for range conflicts {
		q := st.pick()
		s := 0
		for s < st.used && st.conf[s][q] > 0 {
			s++
		}
		if s == st.used {
			st.open()
		}
		st.place(q, s)
	}
	return st.slotOf
}
