package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/depgraph"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	qio "github.com/matzehuels/qreuse/pkg/io"
	"github.com/matzehuels/qreuse/pkg/render/nodelink"
)

// Render draws the dependency graph of c in every requested format. With
// opts.ColorSlots the circuit is reduced first and nodes are coloured by
// physical slot; an overshooting heuristic still colours.
func (r *Runner) Render(ctx context.Context, c *circuit.Circuit, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g, err := depgraph.Build(c)
	if err != nil {
		return nil, err
	}

	var slots map[int]int
	if opts.ColorSlots {
		res, err := r.Reduce(ctx, c, opts)
		var inf *qerrors.InfeasibleAtTargetError
		if err != nil && !errors.As(err, &inf) {
			return nil, err
		}
		slots = res.Reduced.Assignment.Slots
	}
	return RenderGraph(g, slots, opts)
}

// RenderGraph renders g with an optional slot colouring.
func RenderGraph(g *depgraph.Graph, slots map[int]int, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	d := g.DAG()
	nl := nodelink.Options{Detailed: opts.Detailed, Slots: slots}
	if opts.Conflicts {
		for _, p := range g.Conflicts() {
			nl.Conflicts = append(nl.Conflicts, [2]int{p.A, p.B})
		}
	}
	dot := nodelink.ToDOT(d, nl)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, 2.0)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = qio.WriteJSON(d, &buf)
			data = buf.Bytes()
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	opts.Logger.Debug("rendered graph", "formats", opts.Formats, "nodes", g.Len(), "edges", g.EdgeCount())
	return artifacts, nil
}
