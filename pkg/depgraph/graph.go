// Package depgraph builds the qubit dependency graph of a static circuit.
//
// # Model
//
// Each logical qubit is live over a range of schedule positions, from its
// first operation to its measurement (see [circuit.Circuit.Schedule]).
// Qubit a precedes qubit b when a is measured strictly before b's first
// operation; b can then take over a's physical slot after a reset. The
// precedence relation is an interval order, hence transitive.
//
// The graph stores its covering relation: an edge a → b exists when a
// precedes b and no c satisfies a precedes c precedes b. Two qubits whose
// live ranges overlap form a conflict and can never share a slot.
//
// # Node Indices
//
// Nodes are numbered 0..Len()-1 in order of live-range start, ties broken
// by the lower qubit identifier. This is a topological order: every edge
// goes from a lower to a higher index. The analytic accessors
// ([Graph.Successors], [Graph.Precedes], [Graph.Matrix], ...) take node
// indices; [Graph.Qubit] and [Graph.Node] convert between the two.
// [Graph.Conflicts] and [Graph.DAG] speak in qubit identifiers.
//
// # Construction
//
// [Build] sweeps the schedule once. When a qubit opens it conflicts with
// every qubit still open, and its covering predecessors are the sealed
// qubits whose measurement comes at or after the latest start among all
// sealed qubits, found by binary search on the seal-ordered list.
//
// [circuit.Circuit.Schedule]: github.com/matzehuels/qreuse/pkg/circuit
package depgraph

import (
	"cmp"
	"slices"
	"sort"

	"github.com/matzehuels/qreuse/pkg/circuit"
)

// Pair is an unordered pair of logical qubits, stored with A < B.
type Pair struct {
	A int `json:"a" msgpack:"a"`
	B int `json:"b" msgpack:"b"`
}

// Graph is an immutable dependency graph. It is safe for concurrent use.
type Graph struct {
	circuit   *circuit.Circuit
	schedule  []circuit.Operation
	qubits    []int       // node index -> qubit
	index     map[int]int // qubit -> node index
	ranges    []circuit.LiveRange
	succ      [][]int
	pred      [][]int
	edges     int
	conflicts []Pair
}

// Build derives the dependency graph of c. It returns the circuit's
// *errors.MalformedCircuitError when c violates the static-circuit
// lifecycle.
func Build(c *circuit.Circuit) (*Graph, error) {
	sched, err := c.Schedule()
	if err != nil {
		return nil, err
	}

	ranges := circuit.RangesOf(sched)
	slices.SortFunc(ranges, func(a, b circuit.LiveRange) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.Qubit, b.Qubit))
	})

	n := len(ranges)
	g := &Graph{
		circuit:  c,
		schedule: sched,
		qubits:   make([]int, n),
		index:    make(map[int]int, n),
		ranges:   ranges,
		succ:     make([][]int, n),
		pred:     make([][]int, n),
	}
	for i, r := range ranges {
		g.qubits[i] = r.Qubit
		g.index[r.Qubit] = i
	}
	g.sweep()
	return g, nil
}

func (g *Graph) sweep() {
	opens := make(map[int][]int) // position -> node indices opening there
	seals := make(map[int]int)   // position -> node index measured there
	for i, r := range g.ranges {
		opens[r.Start] = append(opens[r.Start], i)
		seals[r.End] = i
	}

	open := make(map[int]struct{})
	var sealed []int // node indices in seal order
	maxStart := -1

	for pos := range g.schedule {
		for _, q := range opens[pos] {
			for o := range open {
				g.conflicts = append(g.conflicts, g.pair(o, q))
			}
			open[q] = struct{}{}
			if maxStart < 0 {
				continue
			}
			from := sort.Search(len(sealed), func(k int) bool { return g.ranges[sealed[k]].End >= maxStart })
			for _, p := range sealed[from:] {
				g.succ[p] = append(g.succ[p], q)
				g.pred[q] = append(g.pred[q], p)
				g.edges++
			}
		}
		if s, ok := seals[pos]; ok {
			delete(open, s)
			sealed = append(sealed, s)
			maxStart = max(maxStart, g.ranges[s].Start)
		}
	}

	for i := range g.pred {
		slices.Sort(g.pred[i])
		slices.Sort(g.succ[i])
	}
	slices.SortFunc(g.conflicts, func(a, b Pair) int {
		return cmp.Or(cmp.Compare(a.A, b.A), cmp.Compare(a.B, b.B))
	})
}

func (g *Graph) pair(i, j int) Pair {
	a, b := g.qubits[i], g.qubits[j]
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Circuit returns the circuit the graph was built from.
func (g *Graph) Circuit() *circuit.Circuit { return g.circuit }

// Schedule returns a copy of the schedule the live ranges refer to.
func (g *Graph) Schedule() []circuit.Operation {
	out := make([]circuit.Operation, len(g.schedule))
	for i, op := range g.schedule {
		op.Qubits = slices.Clone(op.Qubits)
		op.Params = slices.Clone(op.Params)
		out[i] = op
	}
	return out
}

// Len returns the number of nodes, equal to the circuit width.
func (g *Graph) Len() int { return len(g.qubits) }

// Qubit returns the logical qubit of node i.
func (g *Graph) Qubit(i int) int { return g.qubits[i] }

// Qubits returns the logical qubits in node order.
func (g *Graph) Qubits() []int { return slices.Clone(g.qubits) }

// Node returns the node index of qubit q.
func (g *Graph) Node(q int) (int, bool) {
	i, ok := g.index[q]
	return i, ok
}

// Range returns the live range of node i.
func (g *Graph) Range(i int) circuit.LiveRange { return g.ranges[i] }

// Successors returns the covering successors of node i, ascending. The
// slice must not be modified.
func (g *Graph) Successors(i int) []int { return g.succ[i] }

// Predecessors returns the covering predecessors of node i, ascending. The
// slice must not be modified.
func (g *Graph) Predecessors(i int) []int { return g.pred[i] }

// EdgeCount returns the number of covering edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Precedes reports whether node a is measured before node b opens.
func (g *Graph) Precedes(a, b int) bool { return g.ranges[a].Precedes(g.ranges[b]) }

// Overlaps reports whether nodes a and b conflict. A node does not conflict
// with itself.
func (g *Graph) Overlaps(a, b int) bool { return a != b && g.ranges[a].Overlaps(g.ranges[b]) }

// Conflicts returns the conflicting qubit pairs, sorted.
func (g *Graph) Conflicts() []Pair { return slices.Clone(g.conflicts) }
