package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/qreuse/pkg/dag"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// Rows, Sources and Sinks are written for readers of the export and
// ignored on import, where they follow from the nodes and edges.
type graph struct {
	Meta    dag.Metadata `json:"meta,omitempty"`
	Rows    int          `json:"rows,omitempty"`
	Sources []int        `json:"sources,omitempty"`
	Sinks   []int        `json:"sinks,omitempty"`
	Nodes   []node       `json:"nodes"`
	Edges   []edge       `json:"edges"`
}

type node struct {
	ID    int          `json:"id"`
	Label string       `json:"label,omitempty"`
	Row   *int         `json:"row,omitempty"`
	Meta  dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// WriteJSON encodes a dependency DAG as JSON and writes it to w. The
// output can be re-imported with [ReadJSON]. Sources are qubits that need
// a fresh physical qubit or a slot handed over; sinks hand theirs to
// nobody.
func WriteJSON(g *dag.DAG, w io.Writer) error {
	out := graph{
		Meta:  g.Meta(),
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	if g.NodeCount() > 0 {
		out.Rows = g.RowCount()
	}
	for _, n := range g.Sources() {
		out.Sources = append(out.Sources, n.ID)
	}
	for _, n := range g.Sinks() {
		out.Sinks = append(out.Sinks, n.ID)
	}
	for _, n := range g.Nodes() {
		nd := node{ID: n.ID, Label: n.Label, Meta: n.Meta}
		if n.Row != 0 {
			row := n.Row
			nd.Row = &row
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To})
	}
	return encode(w, out)
}

// ExportJSON writes a DAG to a JSON file at path.
func ExportJSON(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ReadJSON decodes a JSON dependency graph from r. Duplicate IDs, dangling
// edges and self-loops are rejected with INVALID_FORMAT; cycles are left
// for depgraph.FromDAG to report.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidFormat, err, "decode graph")
	}

	g := dag.New(data.Meta)
	for _, n := range data.Nodes {
		nd := dag.Node{ID: n.ID, Label: n.Label, Meta: n.Meta}
		if n.Row != nil {
			nd.Row = *n.Row
		}
		if err := g.AddNode(nd); err != nil {
			return nil, qerrors.Wrap(qerrors.ErrCodeInvalidFormat, err, "node %d", n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, qerrors.Wrap(qerrors.ErrCodeInvalidFormat, err, "edge %d->%d", e.From, e.To)
		}
	}
	return g, nil
}

// ImportJSON reads a JSON dependency graph from the file at path.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, qerrors.Wrap(qerrors.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
