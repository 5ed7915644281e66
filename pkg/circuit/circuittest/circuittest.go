// Package circuittest provides circuit fixtures for tests across the
// analysis packages.
package circuittest

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/qreuse/pkg/circuit"
)

// Chain returns n qubits that each finish before the next starts:
// q0→q1→…→q(n-1). Minimum width 1.
func Chain(n int) *circuit.Circuit {
	b := circuit.NewBuilder("chain")
	for q := range n {
		b.H(q).Measure(q)
	}
	return b.MustBuild()
}

// Entangled returns n qubits joined by one n-qubit gate, so every pair is
// live simultaneously. Minimum width n.
func Entangled(n int) *circuit.Circuit {
	b := circuit.NewBuilder("entangled")
	qs := make([]int, n)
	for q := range n {
		qs[q] = q
		b.H(q)
	}
	if n > 1 {
		b.Gate("mcx", qs...)
	}
	return b.MeasureAll().MustBuild()
}

// TwoChains returns two reuse chains, q0→q1 and q2→q3, with the fewest
// cross edges any circuit allows: q0 is measured before q3 starts, so
// q0→q3 is the only one. Removing it would need a schedule in which q0
// outlives q3 while q2 outlives q1, and no single order has both.
// Conflicts are {q0,q2}, {q1,q2} and {q1,q3}. Minimum width 2.
func TwoChains() *circuit.Circuit {
	return circuit.NewBuilder("two-chains").
		CX(0, 2).Measure(0).
		CX(2, 1).Measure(2).
		CX(1, 3).Measure(1, 3).
		MustBuild()
}

// Interleaved returns two independent Bell-style blocks, {q0,q1} and
// {q2,q3}, whose gates alternate in the input. Scheduled, the first block
// finishes before the second opens. Minimum width 2, or 4 when ordered.
func Interleaved() *circuit.Circuit {
	return circuit.NewBuilder("interleaved").
		CX(0, 1).CX(2, 3).CX(0, 1).CX(2, 3).
		MeasureAll().
		MustBuild()
}

// Random returns a valid static circuit on up to qubits qubits with about
// ops gates. Qubits are measured at random points once they have been used,
// and every remaining qubit is measured at the end.
func Random(rng *rand.Rand, qubits, ops int) *circuit.Circuit {
	b := circuit.NewBuilder("random")
	active := make([]int, qubits)
	for q := range qubits {
		active[q] = q
	}
	used := make(map[int]bool)

	for range ops {
		if len(active) == 0 {
			break
		}
		if len(active) > 1 && rng.IntN(3) == 0 {
			i, j := rng.IntN(len(active)), rng.IntN(len(active)-1)
			if j >= i {
				j++
			}
			b.CX(active[i], active[j])
			used[active[i]], used[active[j]] = true, true
		} else {
			i := rng.IntN(len(active))
			b.H(active[i])
			used[active[i]] = true
		}
		if rng.IntN(4) == 0 {
			i := rng.IntN(len(active))
			if q := active[i]; used[q] {
				b.Measure(q)
				active = slices.Delete(active, i, i+1)
			}
		}
	}
	return b.MeasureAll().MustBuild()
}

// RandomBlocks returns blocks independent Random circuits on disjoint
// qubit ranges, the i-th on qubits [i*qubits, (i+1)*qubits), with their
// operations shuffled together. Each block keeps its own operation order.
// The parts are returned alongside, relabelled onto the same qubits.
func RandomBlocks(rng *rand.Rand, blocks, qubits, ops int) (*circuit.Circuit, []*circuit.Circuit) {
	parts := make([]*circuit.Circuit, blocks)
	queues := make([][]circuit.Operation, blocks)
	for i := range blocks {
		b := circuit.NewBuilder("block")
		for _, op := range Random(rng, qubits, ops).Ops() {
			for k := range op.Qubits {
				op.Qubits[k] += i * qubits
			}
			b.Append(op)
		}
		parts[i] = b.MustBuild()
		queues[i] = parts[i].Ops()
	}

	b := circuit.NewBuilder("random-blocks")
	for {
		var open []int
		for i, q := range queues {
			if len(q) > 0 {
				open = append(open, i)
			}
		}
		if len(open) == 0 {
			break
		}
		i := open[rng.IntN(len(open))]
		b.Append(queues[i][0])
		queues[i] = queues[i][1:]
	}
	return b.MustBuild(), parts
}

// Seeded returns a deterministic generator for Random.
func Seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
