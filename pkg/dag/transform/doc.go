// Package transform provides structural transformations on dependency
// graphs.
//
// # Transitive Reduction
//
// [TransitiveReduction] removes edges implied by longer paths. Graphs read
// from external JSON may list every precedence pair; reducing them yields
// the covering edge set that [depgraph] builds directly.
//
// # Layer Assignment
//
// [AssignLayers] sets each node's row to the length of the longest path
// ending at it. Renderers use rows to rank nodes so that reuse chains read
// top to bottom.
//
// # Usage
//
//	transform.TransitiveReduction(g)
//	transform.AssignLayers(g)
//
// [depgraph]: github.com/matzehuels/qreuse/pkg/depgraph
package transform
