// Package render converts rendered graph diagrams between output formats.
//
// Diagrams are produced as SVG by the [nodelink] subpackage. [ToPDF] and
// [ToPNG] convert that SVG with the external rsvg-convert tool (librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [nodelink]: github.com/matzehuels/arceval/pkg/render/nodelink
package render
