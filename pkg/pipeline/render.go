package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/arceval/pkg/graph"
	arcio "github.com/matzehuels/arceval/pkg/io"
	"github.com/matzehuels/arceval/pkg/ops"
	"github.com/matzehuels/arceval/pkg/render"
	"github.com/matzehuels/arceval/pkg/render/nodelink"
)

// pngScale is the zoom factor for PNG output.
const pngScale = 2.0

// RenderOptions annotates rendered diagrams. Both fields are optional and
// ignored by the json, xml and prefix formats.
type RenderOptions struct {
	Operations *ops.Table
	Values     map[string]float64
}

// Render writes g in the given format.
//
// The pdf and png formats need rsvg-convert on PATH; prefix fails with
// CYCLE_DETECTED on a cyclic graph.
func Render(ctx context.Context, format string, g *graph.Graph, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		if err := arcio.WriteJSON(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatXML:
		if err := arcio.WriteXML(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatPrefix:
		s, err := arcio.Prefix(g)
		if err != nil {
			return nil, err
		}
		return []byte(s + "\n"), nil
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Operations: opts.Operations, Values: opts.Values})
	if format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	switch format {
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	case FormatPNG:
		return render.ToPNG(ctx, svg, pngScale)
	}
	return svg, nil
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	if format == FormatPrefix {
		return ".txt"
	}
	return "." + format
}
