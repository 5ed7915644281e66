// Package emit rewrites a static circuit into a dynamic circuit that runs
// on fewer physical qubits.
//
// [Emit] takes a dependency graph and an [Assignment] of logical qubits to
// physical slots, relabels every operation to its slot, and inserts a
// reset right after a measurement whose slot is handed to a later qubit.
// The output is replayed by [Verify] before it is returned; a replay
// failure is an INTERNAL_INVARIANT error and never corrected silently.
//
// Emission is deterministic: the same graph and assignment always produce
// an identical [ReducedCircuit].
package emit

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/depgraph"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// Assignment maps logical qubits to physical slots in [0, Width).
type Assignment struct {
	Slots map[int]int `json:"slots" msgpack:"slots"`
	Width int         `json:"width" msgpack:"width"`
}

// Slot returns the slot of logical qubit q.
func (a Assignment) Slot(q int) (int, bool) {
	s, ok := a.Slots[q]
	return s, ok
}

// Clone returns a deep copy.
func (a Assignment) Clone() Assignment {
	return Assignment{Slots: maps.Clone(a.Slots), Width: a.Width}
}

// Operation is one operation of a reduced circuit.
type Operation struct {
	Kind    circuit.Kind `json:"kind" msgpack:"kind"`
	Name    string       `json:"name" msgpack:"name"`
	Slots   []int        `json:"slots" msgpack:"slots"`                       // Physical slots acted on
	Logical []int        `json:"logical" msgpack:"logical"`                   // Logical qubits; for a reset the incoming qubit
	Params  []float64    `json:"params,omitempty" msgpack:"params,omitempty"` // Gate parameters
	Source  int          `json:"source" msgpack:"source"`                     // Input index, -1 for inserted resets
}

// Reset records one reuse point: Slot is released by logical qubit From
// and taken over by To.
type Reset struct {
	Slot int `json:"slot" msgpack:"slot"`
	From int `json:"from" msgpack:"from"`
	To   int `json:"to" msgpack:"to"`
}

// ReducedCircuit is the emitted dynamic circuit. It is immutable once
// returned by Emit.
type ReducedCircuit struct {
	Name       string      `json:"name,omitempty" msgpack:"name,omitempty"`
	Ops        []Operation `json:"ops" msgpack:"ops"`
	Width      int         `json:"width" msgpack:"width"`
	Original   int         `json:"original_width" msgpack:"original_width"`
	Assignment Assignment  `json:"assignment" msgpack:"assignment"`
	Resets     []Reset     `json:"resets" msgpack:"resets"`
}

// Factor returns the reducibility factor 1 - Width/Original, or 0 for an
// empty circuit.
func (r *ReducedCircuit) Factor() float64 {
	if r.Original == 0 {
		return 0
	}
	return 1 - float64(r.Width)/float64(r.Original)
}

// Occupants returns, per slot, the logical qubits it hosts in execution
// order.
func (r *ReducedCircuit) Occupants() [][]int {
	out := make([][]int, r.Width)
	seen := make(map[int]bool)
	for _, op := range r.Ops {
		if op.Kind == circuit.KindReset {
			continue
		}
		for i, q := range op.Logical {
			if !seen[q] {
				seen[q] = true
				out[op.Slots[i]] = append(out[op.Slots[i]], q)
			}
		}
	}
	return out
}

// Emit validates a against g and rewrites g's schedule onto its slots.
//
// Invalid assignments (missing or unknown qubits, slots out of range, two
// conflicting qubits on one slot) return INVALID_ASSIGNMENT.
func Emit(g *depgraph.Graph, a Assignment) (*ReducedCircuit, error) {
	if err := Validate(g, a); err != nil {
		return nil, err
	}

	// Occupants per slot in live-range order.
	bySlot := make([][]int, a.Width)
	for i := range g.Len() {
		q := g.Qubit(i)
		s := a.Slots[q]
		bySlot[s] = append(bySlot[s], q)
	}
	next := make(map[int]int)
	for _, occ := range bySlot {
		for i := 1; i < len(occ); i++ {
			next[occ[i-1]] = occ[i]
		}
	}

	c := g.Circuit()
	sched := g.Schedule()
	r := &ReducedCircuit{
		Name:       c.Name(),
		Ops:        make([]Operation, 0, len(sched)+len(next)),
		Width:      a.Width,
		Original:   c.Width(),
		Assignment: a.Clone(),
		Resets:     make([]Reset, 0, len(next)),
	}
	for _, op := range sched {
		slots := make([]int, len(op.Qubits))
		for i, q := range op.Qubits {
			slots[i] = a.Slots[q]
		}
		r.Ops = append(r.Ops, Operation{
			Kind:    op.Kind,
			Name:    op.Name,
			Slots:   slots,
			Logical: op.Qubits,
			Params:  op.Params,
			Source:  op.Index,
		})
		if op.Kind != circuit.KindMeasure {
			continue
		}
		q := op.Qubits[0]
		if to, ok := next[q]; ok {
			s := a.Slots[q]
			r.Ops = append(r.Ops, Operation{
				Kind:    circuit.KindReset,
				Name:    "reset",
				Slots:   []int{s},
				Logical: []int{to},
				Source:  -1,
			})
			r.Resets = append(r.Resets, Reset{Slot: s, From: q, To: to})
		}
	}

	if err := Verify(r, c); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks a against g without emitting.
func Validate(g *depgraph.Graph, a Assignment) error {
	if a.Width < 0 {
		return qerrors.New(qerrors.ErrCodeInvalidAssignment, "width must be >= 0, got %d", a.Width)
	}
	for _, q := range g.Qubits() {
		s, ok := a.Slots[q]
		if !ok {
			return qerrors.New(qerrors.ErrCodeInvalidAssignment, "qubit %d has no slot", q)
		}
		if s < 0 || s >= a.Width {
			return qerrors.New(qerrors.ErrCodeInvalidAssignment, "qubit %d assigned slot %d outside [0, %d)", q, s, a.Width)
		}
	}
	if len(a.Slots) != g.Len() {
		for _, q := range slices.Sorted(maps.Keys(a.Slots)) {
			if _, ok := g.Node(q); !ok {
				return qerrors.New(qerrors.ErrCodeInvalidAssignment, "unknown qubit %d", q)
			}
		}
	}
	for _, p := range g.Conflicts() {
		if a.Slots[p.A] == a.Slots[p.B] {
			return qerrors.New(qerrors.ErrCodeInvalidAssignment,
				"conflicting qubits %d and %d share slot %d", p.A, p.B, a.Slots[p.A])
		}
	}
	return nil
}

type slotState struct {
	occupant int // live or last logical qubit, -1 when fresh
	measured bool
	pending  int // qubit announced by the last reset, -1 if none
}

// Verify replays r against its source circuit c. It checks that every
// logical qubit's operations appear completely and in source order, that
// no slot is touched between a measurement and its reset, and that no slot
// ever hosts two live qubits. Violations return INTERNAL_INVARIANT.
func Verify(r *ReducedCircuit, c *circuit.Circuit) error {
	want := make(map[int][]int)
	for _, op := range c.Ops() {
		for _, q := range op.Qubits {
			want[q] = append(want[q], op.Index)
		}
	}

	states := make([]slotState, r.Width)
	for i := range states {
		states[i] = slotState{occupant: -1, pending: -1}
	}
	got := make(map[int][]int)

	for pos, op := range r.Ops {
		if len(op.Slots) != len(op.Logical) {
			return invariant(pos, "slot and qubit lists differ in length")
		}
		for _, s := range op.Slots {
			if s < 0 || s >= r.Width {
				return invariant(pos, fmt.Sprintf("slot %d outside [0, %d)", s, r.Width))
			}
		}

		if op.Kind == circuit.KindReset {
			st := &states[op.Slots[0]]
			if st.occupant < 0 || !st.measured {
				return invariant(pos, fmt.Sprintf("reset of slot %d before its measurement", op.Slots[0]))
			}
			st.pending = op.Logical[0]
			st.measured = false
			st.occupant = -1
			continue
		}

		for i, s := range op.Slots {
			q := op.Logical[i]
			st := &states[s]
			switch {
			case st.occupant == q && st.measured:
				return invariant(pos, fmt.Sprintf("qubit %d used after its measurement", q))
			case st.occupant >= 0 && st.occupant != q && st.measured:
				return invariant(pos, fmt.Sprintf("slot %d touched between measurement and reset", s))
			case st.occupant >= 0 && st.occupant != q:
				return invariant(pos, fmt.Sprintf("slot %d hosts live qubits %d and %d", s, st.occupant, q))
			case st.occupant < 0 && st.pending >= 0 && st.pending != q:
				return invariant(pos, fmt.Sprintf("slot %d reset for qubit %d but used by %d", s, st.pending, q))
			}
			st.occupant, st.pending = q, -1
			if op.Kind == circuit.KindMeasure {
				st.measured = true
			}
			got[q] = append(got[q], op.Source)
		}
	}

	for _, q := range slices.Sorted(maps.Keys(want)) {
		if !slices.Equal(want[q], got[q]) {
			return qerrors.New(qerrors.ErrCodeInternalInvariant,
				"qubit %d operations %v replayed as %v", q, want[q], got[q])
		}
	}
	if len(got) != len(want) {
		return qerrors.New(qerrors.ErrCodeInternalInvariant, "reduced circuit touches unknown qubits")
	}
	return nil
}

func invariant(pos int, reason string) error {
	return qerrors.New(qerrors.ErrCodeInternalInvariant, "reduced op %d: %s", pos, reason)
}
