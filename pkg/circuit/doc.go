// Package circuit provides the immutable static-circuit model consumed by
// the qubit-reuse analysis.
//
// # Overview
//
// A [Circuit] is an ordered sequence of [Operation] values over logical
// qubits. Static circuits contain gates and terminal measurements only:
// every logical qubit is measured exactly once, as its last operation.
// Resets never appear in input circuits; they are produced when a reduced
// circuit is emitted.
//
// Create circuits with [New] from an operation slice, or incrementally with
// a [Builder]:
//
//	c, err := circuit.NewBuilder("bell").
//	    H(0).
//	    CX(0, 1).
//	    MeasureAll().
//	    Build()
//
// [New] checks operation shape (non-empty, distinct, non-negative qubits;
// single-qubit measurements). The measurement lifecycle is checked by
// [Circuit.Check], which dependency-graph construction calls before it
// derives live ranges.
//
// # Scheduling
//
// Operations on disjoint qubits commute. [Circuit.Schedule] derives one
// canonical topological order of the wire-dependency DAG:
//
//   - qubits connected by multi-qubit operations form a block, and blocks
//     run one after another in order of their first operation, so
//     interleaved independent sub-circuits do not keep each other live
//   - leading single-qubit operations are deferred to just before the
//     qubit's first multi-qubit operation
//   - trailing single-qubit operations, including the measurement, are
//     hoisted to just after its last multi-qubit operation
//   - a qubit without multi-qubit operations is scheduled as one group at
//     its measurement
//
// Circuits built with [Ordered] keep their input order verbatim. In both
// cases the per-qubit order of operations is preserved, and [Operation.Index]
// keeps the operation's position in the input sequence.
//
// # Concurrency
//
// Circuit values are immutable after construction and safe for concurrent
// use. Accessors return copies.
package circuit
