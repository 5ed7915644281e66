// Package dag provides the directed acyclic graph used to hold and export
// qubit dependency graphs.
//
// # Overview
//
// A reuse dependency graph has one node per logical qubit and an edge
// q1 → q2 when q2 may take over q1's physical slot after q1 is measured.
// This package stores that structure with stable iteration order: nodes and
// edges are returned in insertion order, so every consumer (matchers,
// renderers, JSON export) sees the same sequence on every run.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges
// with [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: 0})
//	g.AddNode(dag.Node{ID: 1})
//	g.AddEdge(dag.Edge{From: 0, To: 1})
//
// Query the structure with [DAG.Children], [DAG.Sources], [DAG.Sinks] and
// related methods. [DAG.Validate] checks endpoints and acyclicity, and
// [DAG.TopologicalOrder] returns a deterministic Kahn ordering.
//
// # Metadata
//
// Nodes, edges and the graph itself carry [Metadata] maps. Dependency graphs
// store live-range positions on nodes and slot colours once an assignment
// is known, which the DOT renderer picks up.
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. A fully built graph
// may be read from several goroutines.
//
// # Related Packages
//
// The [transform] subpackage provides transitive reduction and layer
// assignment.
//
// [transform]: github.com/matzehuels/qreuse/pkg/dag/transform
package dag
