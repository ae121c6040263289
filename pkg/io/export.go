package io

import (
	"cmp"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/arceval/pkg/graph"
)

// Document is the serialized form of a graph.
type Document struct {
	XMLName  xml.Name `json:"-" xml:"graph"`
	Vertices []string `json:"vertices" xml:"vertex"`
	Arcs     []Arc    `json:"arcs" xml:"arc"`
}

// Arc is one serialized arc.
type Arc struct {
	From  string `json:"from" xml:"from"`
	To    string `json:"to" xml:"to"`
	Order int    `json:"order" xml:"order"`
}

// NewDocument captures g in its serialized form.
func NewDocument(g *graph.Graph) Document {
	arcs := g.Arcs()
	slices.SortStableFunc(arcs, func(a, b graph.Arc) int {
		return cmp.Or(
			cmp.Compare(a.From, b.From),
			cmp.Compare(a.Ordinal, b.Ordinal),
			cmp.Compare(a.To, b.To),
		)
	})

	doc := Document{
		Vertices: g.Vertices(),
		Arcs:     make([]Arc, len(arcs)),
	}
	if doc.Vertices == nil {
		doc.Vertices = []string{}
	}
	for i, a := range arcs {
		doc.Arcs[i] = Arc{From: a.From, To: a.To, Order: a.Ordinal}
	}
	return doc
}

// WriteJSON encodes g as an indented JSON document and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *graph.Graph, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(g, w) })
}

// WriteXML encodes g as an indented XML document and writes it to w.
func WriteXML(g *graph.Graph, w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(NewDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ExportXML writes g to an XML file at path.
func ExportXML(g *graph.Graph, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteXML(g, w) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
