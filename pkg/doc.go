// Package pkg provides the core libraries for qreuse qubit-reuse analysis.
//
// # Overview
//
// A static quantum circuit measures every qubit exactly once, as its last
// operation. Once a qubit has been measured, its physical qubit can be
// reset and handed to a logical qubit that has not started yet. qreuse
// decides how few physical qubits a circuit needs under that rule, and
// rewrites the circuit onto them.
//
// # Architecture
//
// The data flow:
//
//	circuit JSON
//	     ↓
//	[io] / [circuit] (validated operation sequence + schedule)
//	     ↓
//	[depgraph] (one node per logical qubit, edge a→b when a is measured
//	            before b starts)
//	     ↓
//	[reducibility] (minimum width: graph, reachability or matrix method)
//	     ↓
//	[reduction] (slot assignment: mrv, greedy or hybrid heuristic)
//	     ↓
//	[emit] (reduced circuit with resets)
//	     ↓
//	JSON / OpenQASM 2.0
//
// [reuse] ties these together behind IsReducible and Reduce, and
// [pipeline] adds caching, hooks and logging for the CLI and HTTP server.
//
// # Quick Start
//
//	c := circuit.NewBuilder("bell").H(0).CX(0, 1).MeasureAll().MustBuild()
//
//	ok, _ := reuse.IsReducible(ctx, c, 1, reducibility.MethodMatrix)
//	r, _ := reuse.Reduce(ctx, c, 2, reduction.HeuristicHybrid)
//	_ = qio.WriteQASM(r, os.Stdout)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [circuit] - Operations, circuits, builders and the commutation-aware
// schedule that fixes each qubit's live range.
//
// [depgraph] - The qubit dependency graph, its conflicts and its
// precedence bit matrix.
//
// [reducibility] - Three interchangeable methods for the minimum width,
// all computing a minimum chain cover of the precedence closure.
//
// [reduction] - Heuristics that assign logical qubits to physical slots
// within a target.
//
// [emit] - Reduced-circuit construction and verification.
//
// [budget] - Step and time limits for the searches.
//
// ## Supporting Packages
//
// [bitmatrix] - Square bit matrices on bits-and-blooms/bitset.
//
// [dag] - Layered DAG used for visualisation and JSON graph export.
//
// [render/nodelink] - Graphviz rendering of the dependency graph.
//
// [cache] - Result caches (file, redis, null) and key derivation.
//
// [observability] - Hooks for metrics and tracing; [observability/promhooks]
// backs them with Prometheus.
//
// [errors] - Structured error codes.
//
// # Testing
//
//	go test ./...
//	go test -run Example ./pkg/...
//	QREUSE_TEST_REDIS_URL=redis://localhost:6379/15 go test ./pkg/cache/
package pkg
