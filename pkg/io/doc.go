// Package io reads and writes circuits, dependency graphs and reduced
// circuits.
//
// # Circuit JSON
//
//	{
//	  "name": "bell",
//	  "ordered": false,
//	  "ops": [
//	    {"name": "h", "qubits": [0]},
//	    {"name": "cx", "qubits": [0, 1]},
//	    {"kind": "measure", "qubits": [0]}
//	  ],
//	  "measure_all": true
//	}
//
// "kind" is one of gate (the default), measure or reset. When
// "measure_all" is set, every qubit touched but not yet measured gets a
// terminal measurement, in ascending qubit order. Shape errors come back
// as MALFORMED_CIRCUIT with the offending op index; undecodable input as
// INVALID_FORMAT.
//
// # Graph JSON
//
// [WriteJSON] and [ReadJSON] exchange a dependency graph as node and
// edge arrays keyed by qubit identifier:
//
//	{
//	  "nodes": [{"id": 0, "label": "q0", "meta": {"start": 0, "end": 1}}],
//	  "edges": [{"from": 0, "to": 1}]
//	}
//
// An imported graph is analysed through depgraph.FromDAG.
//
// # Reduced circuits
//
// [WriteReduced] emits the reduced circuit as JSON; [WriteQASM] emits it
// as OpenQASM 2.0 with one classical bit per logical qubit.
package io
