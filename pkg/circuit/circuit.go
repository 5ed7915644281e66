package circuit

import (
	"fmt"
	"slices"
	"strings"

	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// Kind distinguishes unitary gates from measurements and resets.
type Kind uint8

const (
	// KindGate is a unitary gate on one or more qubits.
	KindGate Kind = iota
	// KindMeasure is a single-qubit terminal measurement.
	KindMeasure
	// KindReset re-initialises a physical slot. Only emitted circuits
	// contain resets.
	KindReset
)

var kindNames = map[Kind]string{
	KindGate:    "gate",
	KindMeasure: "measure",
	KindReset:   "reset",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts a kind name back into a Kind. The empty string is
// treated as "gate".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "gate":
		return KindGate, nil
	case "measure":
		return KindMeasure, nil
	case "reset":
		return KindReset, nil
	}
	return 0, qerrors.New(qerrors.ErrCodeInvalidFormat, "unknown operation kind %q", s)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, qerrors.New(qerrors.ErrCodeInvalidFormat, "unknown operation kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Operation is one gate, measurement or reset.
type Operation struct {
	Kind   Kind
	Name   string    // Gate mnemonic, e.g. "h", "cx". Measurements use "measure".
	Qubits []int     // Acting logical qubits, in gate argument order
	Params []float64 // Optional gate parameters (rotation angles)
	Index  int       // Position in the input sequence, set by New
}

// IsMultiQubit reports whether the operation acts on more than one qubit.
func (op Operation) IsMultiQubit() bool { return len(op.Qubits) > 1 }

// Acts reports whether the operation touches qubit q.
func (op Operation) Acts(q int) bool { return slices.Contains(op.Qubits, q) }

// String renders the operation as "name q0,q1".
func (op Operation) String() string {
	parts := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		parts[i] = fmt.Sprintf("q%d", q)
	}
	return op.Name + " " + strings.Join(parts, ",")
}

func (op Operation) clone() Operation {
	op.Qubits = slices.Clone(op.Qubits)
	op.Params = slices.Clone(op.Params)
	return op
}

// Circuit is an immutable static circuit.
//
// The zero value is an empty circuit. Use New or a Builder to create
// populated circuits.
type Circuit struct {
	name    string
	ops     []Operation
	qubits  []int
	ordered bool
}

// Option configures a Circuit at construction time.
type Option func(*Circuit)

// WithName attaches a display name.
func WithName(name string) Option {
	return func(c *Circuit) { c.name = name }
}

// Ordered marks the input order as binding: operations on disjoint qubits
// no longer commute, and Schedule returns the input sequence unchanged.
func Ordered() Option {
	return func(c *Circuit) { c.ordered = true }
}

// New creates a circuit from ops. The slice and its contents are copied;
// each operation's Index is overwritten with its position in ops.
//
// New rejects operations with no qubits, negative or repeated qubits, and
// measurements on more than one qubit with a MalformedCircuitError. The
// measurement lifecycle is checked separately by Check.
func New(ops []Operation, opts ...Option) (*Circuit, error) {
	c := &Circuit{ops: make([]Operation, len(ops))}
	for _, opt := range opts {
		opt(c)
	}

	seen := make(map[int]bool)
	for i, op := range ops {
		if err := checkShape(i, op); err != nil {
			return nil, err
		}
		op = op.clone()
		op.Index = i
		if op.Name == "" {
			op.Name = op.Kind.String()
		}
		c.ops[i] = op
		for _, q := range op.Qubits {
			if !seen[q] {
				seen[q] = true
				c.qubits = append(c.qubits, q)
			}
		}
	}
	slices.Sort(c.qubits)
	return c, nil
}

func checkShape(i int, op Operation) error {
	if len(op.Qubits) == 0 {
		return &qerrors.MalformedCircuitError{Qubit: -1, Index: i, Reason: "operation acts on no qubits"}
	}
	if op.Kind > KindReset {
		return &qerrors.MalformedCircuitError{Qubit: -1, Index: i, Reason: fmt.Sprintf("unknown operation kind %d", op.Kind)}
	}
	if op.Kind != KindGate && len(op.Qubits) != 1 {
		return &qerrors.MalformedCircuitError{Qubit: -1, Index: i, Reason: op.Kind.String() + " must act on exactly one qubit"}
	}
	for j, q := range op.Qubits {
		if q < 0 {
			return &qerrors.MalformedCircuitError{Qubit: q, Index: i, Reason: "negative qubit identifier"}
		}
		if slices.Contains(op.Qubits[:j], q) {
			return &qerrors.MalformedCircuitError{Qubit: q, Index: i, Reason: "qubit repeated within one operation"}
		}
	}
	return nil
}

// Name returns the display name, possibly empty.
func (c *Circuit) Name() string { return c.name }

// IsOrdered reports whether the input order is binding.
func (c *Circuit) IsOrdered() bool { return c.ordered }

// Len returns the number of operations.
func (c *Circuit) Len() int { return len(c.ops) }

// Op returns a copy of the operation at input position i.
func (c *Circuit) Op(i int) Operation { return c.ops[i].clone() }

// Ops returns a copy of the operation sequence.
func (c *Circuit) Ops() []Operation {
	out := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		out[i] = op.clone()
	}
	return out
}

// Qubits returns the distinct logical qubits in ascending order.
func (c *Circuit) Qubits() []int { return slices.Clone(c.qubits) }

// Width returns the number of distinct logical qubits, which is also the
// physical qubit count of the static circuit.
func (c *Circuit) Width() int { return len(c.qubits) }

// Check verifies the static-circuit lifecycle: no resets, every qubit
// measured exactly once, and nothing applied to a qubit after its
// measurement. It returns a *errors.MalformedCircuitError naming the first
// offending qubit and input index.
func (c *Circuit) Check() error {
	measured := make(map[int]int, len(c.qubits))
	for i, op := range c.ops {
		if op.Kind == KindReset {
			return &qerrors.MalformedCircuitError{Qubit: op.Qubits[0], Index: i, Reason: "reset in a static circuit"}
		}
		for _, q := range op.Qubits {
			if at, done := measured[q]; done {
				reason := fmt.Sprintf("operation after measurement at %d", at)
				if op.Kind == KindMeasure {
					reason = fmt.Sprintf("measured more than once (first at %d)", at)
				}
				return &qerrors.MalformedCircuitError{Qubit: q, Index: i, Reason: reason}
			}
		}
		if op.Kind == KindMeasure {
			measured[op.Qubits[0]] = i
		}
	}
	for _, q := range c.qubits {
		if _, ok := measured[q]; !ok {
			return &qerrors.MalformedCircuitError{Qubit: q, Index: -1, Reason: "never measured"}
		}
	}
	return nil
}

// String renders one operation per line, for debugging.
func (c *Circuit) String() string {
	var b strings.Builder
	if c.name != "" {
		fmt.Fprintf(&b, "# %s\n", c.name)
	}
	for _, op := range c.ops {
		fmt.Fprintf(&b, "%3d  %s\n", op.Index, op)
	}
	return b.String()
}
