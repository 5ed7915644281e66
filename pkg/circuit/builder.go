package circuit

import "slices"

// Builder accumulates operations fluently. Errors are deferred to Build.
//
//	c, err := circuit.NewBuilder("ghz").H(0).CX(0, 1).CX(1, 2).MeasureAll().Build()
type Builder struct {
	name    string
	ops     []Operation
	ordered bool
}

// NewBuilder starts an empty circuit with the given display name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Gate appends a gate with no parameters.
func (b *Builder) Gate(name string, qubits ...int) *Builder {
	b.ops = append(b.ops, Operation{Kind: KindGate, Name: name, Qubits: slices.Clone(qubits)})
	return b
}

// GateParams appends a parameterised gate such as rz(theta).
func (b *Builder) GateParams(name string, params []float64, qubits ...int) *Builder {
	b.ops = append(b.ops, Operation{
		Kind:   KindGate,
		Name:   name,
		Qubits: slices.Clone(qubits),
		Params: slices.Clone(params),
	})
	return b
}

// Append adds op as given. Shape problems surface from Build.
func (b *Builder) Append(op Operation) *Builder {
	op.Qubits = slices.Clone(op.Qubits)
	op.Params = slices.Clone(op.Params)
	b.ops = append(b.ops, op)
	return b
}

// H appends a Hadamard gate.
func (b *Builder) H(q int) *Builder { return b.Gate("h", q) }

// X appends a Pauli-X gate.
func (b *Builder) X(q int) *Builder { return b.Gate("x", q) }

// CX appends a controlled-X gate.
func (b *Builder) CX(control, target int) *Builder { return b.Gate("cx", control, target) }

// CCX appends a Toffoli gate.
func (b *Builder) CCX(c1, c2, target int) *Builder { return b.Gate("ccx", c1, c2, target) }

// Measure appends one measurement per listed qubit, in argument order.
func (b *Builder) Measure(qubits ...int) *Builder {
	for _, q := range qubits {
		b.ops = append(b.ops, Operation{Kind: KindMeasure, Name: "measure", Qubits: []int{q}})
	}
	return b
}

// MeasureAll measures every qubit touched so far and not yet measured, in
// ascending qubit order.
func (b *Builder) MeasureAll() *Builder {
	measured := make(map[int]bool)
	touched := make(map[int]bool)
	for _, op := range b.ops {
		for _, q := range op.Qubits {
			touched[q] = true
			if op.Kind == KindMeasure {
				measured[q] = true
			}
		}
	}
	var pending []int
	for q := range touched {
		if !measured[q] {
			pending = append(pending, q)
		}
	}
	slices.Sort(pending)
	return b.Measure(pending...)
}

// Ordered makes the input order binding for the built circuit.
func (b *Builder) Ordered() *Builder {
	b.ordered = true
	return b
}

// Build validates operation shape and returns the circuit.
func (b *Builder) Build() (*Circuit, error) {
	opts := []Option{WithName(b.name)}
	if b.ordered {
		opts = append(opts, Ordered())
	}
	return New(b.ops, opts...)
}

// MustBuild is like Build but panics on error. Intended for tests and
// fixed example circuits.
func (b *Builder) MustBuild() *Circuit {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
