package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/ops"
)

// Options configures diagram generation.
type Options struct {
	// Operations adds each vertex's operation token to its label.
	Operations *ops.Table
	// Values adds computed values to labels, typically eval.Result.Values.
	Values map[string]float64
}

// ToDOT converts g to Graphviz DOT source.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=16];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, v := range g.Vertices() {
		fmt.Fprintf(&buf, "  %q [%s];\n", v, strings.Join(fmtAttrs(v, opts), ", "))
	}

	buf.WriteString("\n")
	for _, v := range g.Vertices() {
		for _, a := range g.Children(v) {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", a.From, a.To, strconv.Itoa(a.Ordinal))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(v string, opts Options) string {
	parts := []string{v}
	if opts.Operations != nil {
		if op, ok := opts.Operations.Lookup(v); ok {
			parts = append(parts, op.String())
		} else {
			parts = append(parts, "?")
		}
	}
	if x, ok := opts.Values[v]; ok {
		parts = append(parts, "= "+strconv.FormatFloat(x, 'g', 6, 64))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(v string, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(v, opts))}
	if opts.Operations == nil {
		return attrs
	}
	op, ok := opts.Operations.Lookup(v)
	switch {
	case !ok || op.Kind == ops.KindUnknown:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=mistyrose")
	case op.IsLiteral():
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root <svg> tag so the diagram scales from a
// 0-origin viewBox with matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
