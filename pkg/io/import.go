package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
)

// ReadJSON decodes a JSON document from r into a Graph.
//
// The document must be an object with a "vertices" array of strings and an
// "arcs" array of {"from", "to", "order"} objects. Unknown fields are
// rejected. Arcs are added in document order under policy, so a repeated
// arc fails under [graph.DuplicateReject] exactly as it does in arc text.
//
// Vertex identifiers must be writable back as arc text (see
// [apperr.ValidateVertexID]). Decoding problems are reported as [apperr.ErrCodeInvalidFormat] errors
// naming the offending vertex or arc. ReadJSON does not close r.
func ReadJSON(r io.Reader, policy graph.DuplicatePolicy) (*graph.Graph, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode graph document")
	}

	g := graph.New(policy)
	for _, v := range doc.Vertices {
		if err := apperr.ValidateVertexID(v); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "vertex %q", v)
		}
		if err := g.AddVertex(v); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "vertex %q", v)
		}
	}
	for i, a := range doc.Arcs {
		arc := graph.Arc{From: a.From, To: a.To, Ordinal: a.Order}
		for _, id := range []string{a.From, a.To} {
			if err := apperr.ValidateVertexID(id); err != nil {
				return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "arc %d", i)
			}
		}
		if err := g.AddArc(arc); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "arc %d %s", i, arc)
		}
	}
	return g, nil
}

// ImportJSON reads the JSON document at path.
func ImportJSON(path string, policy graph.DuplicatePolicy) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "graph file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, policy)
}

// IsDocument reports whether data looks like a JSON graph document rather
// than arc text. Arc text always starts with '(' so a leading '{' is enough.
func IsDocument(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
