// Package nodelink draws dependency graphs as Graphviz node-link diagrams.
//
// Each logical qubit is a box; arrows are covering reuse edges (the
// source's slot can be handed to the target). Optional dashed red lines
// mark conflicting pairs, and a slot assignment colours the boxes so that
// qubits sharing a physical qubit share a colour.
//
//	dot := nodelink.ToDOT(g.DAG(), nodelink.Options{Slots: rc.Assignment.Slots})
//	svg, err := nodelink.RenderSVG(dot)
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz].
// PDF and PNG go through SVG and need librsvg (rsvg-convert).
package nodelink
