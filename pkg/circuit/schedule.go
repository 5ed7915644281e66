package circuit

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// LiveRange is the span of schedule positions a logical qubit occupies,
// from its first operation to its measurement, both inclusive.
type LiveRange struct {
	Qubit int
	Start int
	End   int
}

// Precedes reports whether r is sealed strictly before o opens.
func (r LiveRange) Precedes(o LiveRange) bool { return r.End < o.Start }

// Overlaps reports whether the two ranges share at least one position.
func (r LiveRange) Overlaps(o LiveRange) bool { return r.Start <= o.End && o.Start <= r.End }

// Schedule returns the canonical operation order used for live-range
// analysis and emission. See the package documentation for the rules.
//
// Schedule calls Check first and returns its error for malformed circuits.
// The returned operations are copies; Index still refers to the input
// position.
func (c *Circuit) Schedule() ([]Operation, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	if c.ordered {
		return c.Ops(), nil
	}

	firstMulti := make(map[int]int, len(c.qubits))
	lastMulti := make(map[int]int, len(c.qubits))
	measuredAt := make(map[int]int, len(c.qubits))
	for i, op := range c.ops {
		if op.IsMultiQubit() {
			for _, q := range op.Qubits {
				if _, ok := firstMulti[q]; !ok {
					firstMulti[q] = i
				}
				lastMulti[q] = i
			}
		}
		if op.Kind == KindMeasure {
			measuredAt[op.Qubits[0]] = i
		}
	}

	anchors := func(q int) (start, end int) {
		start, ok := firstMulti[q]
		if !ok {
			m := measuredAt[q]
			return m, m
		}
		return start, lastMulti[q]
	}

	pre := make(map[int][]int)
	post := make(map[int][]int)
	inPlace := make([]bool, len(c.ops))
	for i, op := range c.ops {
		if op.IsMultiQubit() {
			inPlace[i] = true
			continue
		}
		start, end := anchors(op.Qubits[0])
		switch {
		case i < start:
			pre[start] = append(pre[start], i)
		case i > end:
			post[end] = append(post[end], i)
		default:
			inPlace[i] = true
		}
	}

	out := make([]Operation, 0, len(c.ops))
	for i := range c.ops {
		if !inPlace[i] {
			continue
		}
		for _, j := range pre[i] {
			out = append(out, c.ops[j].clone())
		}
		out = append(out, c.ops[i].clone())
		for _, j := range post[i] {
			out = append(out, c.ops[j].clone())
		}
	}
	return packBlocks(out, c.qubits), nil
}

// packBlocks stably regroups sched so that each block of qubits connected
// by multi-qubit operations runs to completion before the next one starts.
// Blocks share no wire, so the result is still a topological order.
func packBlocks(sched []Operation, qubits []int) []Operation {
	g := simple.NewUndirectedGraph()
	for _, q := range qubits {
		g.AddNode(simple.Node(q))
	}
	for _, op := range sched {
		for _, q := range op.Qubits[1:] {
			g.SetEdge(g.NewEdge(simple.Node(op.Qubits[0]), simple.Node(q)))
		}
	}
	block := make(map[int]int, len(qubits))
	for i, cc := range topo.ConnectedComponents(g) {
		for _, n := range cc {
			block[int(n.ID())] = i
		}
	}

	rank := make(map[int]int)
	var groups [][]Operation
	for _, op := range sched {
		b := block[op.Qubits[0]]
		r, ok := rank[b]
		if !ok {
			r = len(groups)
			rank[b] = r
			groups = append(groups, nil)
		}
		groups[r] = append(groups[r], op)
	}
	if len(groups) <= 1 {
		return sched
	}
	return slices.Concat(groups...)
}

// LiveRanges returns the live range of every qubit over the schedule,
// ordered by qubit identifier.
func (c *Circuit) LiveRanges() ([]LiveRange, error) {
	sched, err := c.Schedule()
	if err != nil {
		return nil, err
	}
	return RangesOf(sched), nil
}

// RangesOf computes live ranges over an already scheduled sequence,
// ordered by qubit identifier. Positions are indices into sched.
func RangesOf(sched []Operation) []LiveRange {
	byQubit := make(map[int]*LiveRange)
	var order []int
	for pos, op := range sched {
		for _, q := range op.Qubits {
			r, ok := byQubit[q]
			if !ok {
				r = &LiveRange{Qubit: q, Start: pos, End: pos}
				byQubit[q] = r
				order = append(order, q)
			}
			r.End = pos
		}
	}
	slices.Sort(order)
	out := make([]LiveRange, len(order))
	for i, q := range order {
		out[i] = *byQubit[q]
	}
	return out
}
