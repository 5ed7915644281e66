// Package render converts rendered SVG into other formats.
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert from librsvg. The
// node-link diagrams of the [nodelink] subpackage produce the SVG.
//
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2.0)
//
// [nodelink]: github.com/matzehuels/qreuse/pkg/render/nodelink
package render
