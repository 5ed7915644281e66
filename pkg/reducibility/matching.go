package reducibility

import (
	"iter"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
)

// candidates yields the heads reachable from tail u.
type candidates func(u int) iter.Seq[int]

// minWidth returns n minus the size of a maximum matching between tails
// and heads, found with Kuhn's augmenting paths. Tails are tried in index
// order and heads in the order cand yields them, so the result is
// deterministic.
func minWidth(n int, cand candidates, meter *budget.Meter) (int, error) {
	if n == 0 {
		return 0, nil
	}
	matchHead := make([]int, n) // head -> tail
	for i := range matchHead {
		matchHead[i] = -1
	}
	visited := make([]int, n) // head -> phase stamp
	phase := 0

	var stepErr error
	var augment func(u int) bool
	augment = func(u int) bool {
		if err := meter.Tick(); err != nil {
			stepErr = err
			return false
		}
		for v := range cand(u) {
			if visited[v] == phase {
				continue
			}
			visited[v] = phase
			if matchHead[v] < 0 || augment(matchHead[v]) {
				matchHead[v] = u
				return true
			}
			if stepErr != nil {
				return false
			}
		}
		return false
	}

	matched := 0
	for u := range n {
		phase++
		if augment(u) {
			matched++
		}
		if stepErr != nil {
			return 0, stepErr
		}
	}
	return n - matched, nil
}

// rowCandidates enumerates set bits of closure rows.
func rowCandidates(closure *bitmatrix.Matrix) candidates {
	return func(u int) iter.Seq[int] {
		row := closure.Row(u)
		return func(yield func(int) bool) {
			for v, ok := row.NextSet(0); ok; v, ok = row.NextSet(v + 1) {
				if !yield(int(v)) {
					return
				}
			}
		}
	}
}
