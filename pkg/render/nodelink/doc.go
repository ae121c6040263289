// Package nodelink renders arc graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Operations: table, Values: res.Values})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Labels
//
// Each vertex shows its name. With [Options.Operations] set the label adds
// the vertex's operation token, and with [Options.Values] set it adds the
// computed value. Edges are labelled with their ordinal, so argument order
// is visible in the picture. Vertices whose operation is unknown or missing
// are drawn dashed.
//
// The layout is top-to-bottom (rankdir=TB): the roots of the computation sit
// at the top and literals at the bottom.
//
// # Dependencies
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
// PDF and PNG conversion lives in the parent render package.
package nodelink
