package depgraph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/dag"
	"github.com/matzehuels/qreuse/pkg/dag/transform"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// View is the read-only adjacency the reducibility methods need: node
// indices 0..Len()-1 in topological order and covering successor lists.
// Both *Graph and *Adjacency implement it.
type View interface {
	Len() int
	Successors(i int) []int
}

// Metadata keys set on nodes of the exported DAG.
const (
	MetaStart = "start"
	MetaEnd   = "end"
	MetaNode  = "node"
)

// Matrix returns the covering edges as a bit matrix over node indices.
func (g *Graph) Matrix() *bitmatrix.Matrix { return AdjacencyMatrix(g) }

// AdjacencyMatrix builds the bit adjacency matrix of any view.
func AdjacencyMatrix(v View) *bitmatrix.Matrix {
	m := bitmatrix.New(v.Len())
	for i := range v.Len() {
		for _, j := range v.Successors(i) {
			m.Set(i, j)
		}
	}
	return m
}

// PrecedenceMatrix returns the full precedence relation, computed directly
// from live ranges. It equals the transitive closure of Matrix.
func (g *Graph) PrecedenceMatrix() *bitmatrix.Matrix {
	n := g.Len()
	m := bitmatrix.New(n)
	for a := range n {
		for b := a + 1; b < n; b++ {
			if g.Precedes(a, b) {
				m.Set(a, b)
			}
		}
	}
	return m
}

// Biadjacency returns the matrix B with B(i, j) set iff node j cannot hand
// its slot to node i, that is j does not precede i. Row i lists the slots
// that stay blocked for qubit i.
func (g *Graph) Biadjacency() *bitmatrix.Matrix {
	return g.PrecedenceMatrix().Transpose().Complement()
}

// DAG returns the covering graph keyed by qubit identifier, for
// visualisation and export. Nodes are inserted in node order and carry
// their live range and node index in metadata. A node's row is the length
// of the longest reuse chain ending at it.
func (g *Graph) DAG() *dag.DAG {
	d := dag.New(dag.Metadata{"name": g.circuit.Name()})
	for i, q := range g.qubits {
		_ = d.AddNode(dag.Node{
			ID:    q,
			Label: fmt.Sprintf("q%d", q),
			Meta: dag.Metadata{
				MetaStart: g.ranges[i].Start,
				MetaEnd:   g.ranges[i].End,
				MetaNode:  i,
			},
		})
	}
	for i, q := range g.qubits {
		for _, j := range g.succ[i] {
			_ = d.AddEdge(dag.Edge{From: q, To: g.qubits[j]})
		}
	}
	transform.AssignLayers(d)
	return d
}

// Adjacency is a View over an externally supplied dependency DAG.
type Adjacency struct {
	ids  []int
	succ [][]int
}

// FromDAG converts a dependency DAG keyed by qubit identifier into a View.
// The DAG must be acyclic; redundant transitive edges are removed first, on
// a copy. Nodes are indexed in the DAG's deterministic topological order.
func FromDAG(d *dag.DAG) (*Adjacency, error) {
	if err := d.Validate(); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "invalid dependency graph")
	}
	reduced := d.Clone()
	transform.TransitiveReduction(reduced)

	order, err := reduced.TopologicalOrder()
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "invalid dependency graph")
	}
	pos := dag.PosMap(order)
	a := &Adjacency{ids: order, succ: make([][]int, len(order))}
	for i, id := range order {
		for _, child := range reduced.Children(id) {
			a.succ[i] = append(a.succ[i], pos[child])
		}
		slices.Sort(a.succ[i])
	}
	return a, nil
}

// Len returns the number of nodes.
func (a *Adjacency) Len() int { return len(a.ids) }

// Successors returns the covering successors of node i.
func (a *Adjacency) Successors(i int) []int { return a.succ[i] }

// Qubit returns the original node ID of node i.
func (a *Adjacency) Qubit(i int) int { return a.ids[i] }
