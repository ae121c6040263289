package io

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
)

func parse(t *testing.T, arcs string) *graph.Graph {
	t.Helper()
	g, err := graph.Parse(strings.NewReader(arcs), graph.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func TestWriteJSON(t *testing.T) {
	g := parse(t, "(a,c,1),(a,b,0)\n(c,d,0)")

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	want := `{
  "vertices": [
    "a",
    "b",
    "c",
    "d"
  ],
  "arcs": [
    {
      "from": "a",
      "to": "b",
      "order": 0
    },
    {
      "from": "a",
      "to": "c",
      "order": 1
    },
    {
      "from": "c",
      "to": "d",
      "order": 0
    }
  ]
}
`
	if got := buf.String(); got != want {
		t.Errorf("WriteJSON =\n%s\nwant\n%s", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := parse(t, "(a,b,0),(a,c,1)\n(c,d,0)").WithVertices([]string{"z"})

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path, graph.DuplicateReject)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	if !slices.Equal(got.Vertices(), g.Vertices()) {
		t.Errorf("vertices = %v, want %v", got.Vertices(), g.Vertices())
	}
	if got.ArcCount() != g.ArcCount() {
		t.Errorf("arcs = %d, want %d", got.ArcCount(), g.ArcCount())
	}
	if c := got.Children("a"); len(c) != 2 || c[1].To != "c" || c[1].Ordinal != 1 {
		t.Errorf("Children(a) = %v", c)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"malformed", `{"vertices": [`, "decode graph document"},
		{"unknown field", `{"nodes": []}`, "unknown field"},
		{"empty vertex", `{"vertices": [""], "arcs": []}`, `vertex ""`},
		{"duplicate arc", `{"arcs": [{"from":"a","to":"b","order":0},{"from":"a","to":"b","order":0}]}`, "arc 1 (a,b,0)"},
		{"delimiter in vertex", `{"vertices": ["a,b"], "arcs": []}`, "contains arc delimiters"},
		{"space in endpoint", `{"arcs": [{"from":"a","to":"b c","order":0}]}`, "arc 0"},
		{"negative order", `{"arcs": [{"from":"a","to":"b","order":-1}]}`, "ordinal must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input), graph.DuplicateReject)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
				t.Errorf("code = %q, want INVALID_FORMAT", apperr.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestImportJSONMissing(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"), graph.DuplicateReject)
	if !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Errorf("code = %q, want FILE_NOT_FOUND", apperr.GetCode(err))
	}
}

func TestWriteXML(t *testing.T) {
	g := parse(t, "(a,b,0)")

	var buf bytes.Buffer
	if err := WriteXML(g, &buf); err != nil {
		t.Fatalf("WriteXML: %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<graph>
  <vertex>a</vertex>
  <vertex>b</vertex>
  <arc>
    <from>a</from>
    <to>b</to>
    <order>0</order>
  </arc>
</graph>
`
	if got := buf.String(); got != want {
		t.Errorf("WriteXML =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteXMLEscapes(t *testing.T) {
	g := parse(t, "(a<b,c&d,0)")

	var buf bytes.Buffer
	if err := WriteXML(g, &buf); err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	if !strings.Contains(buf.String(), "<vertex>a&lt;b</vertex>") {
		t.Errorf("vertex not escaped:\n%s", buf.String())
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name string
		arcs string
		want string
	}{
		{"single arc", "(a,b,0)", "a(b)"},
		{"ordinal order", "(a,c,1),(a,b,0)", "a(b,c)"},
		{"nested", "(a,b,0),(a,c,1)\n(c,d,0)", "a(b,c(d))"},
		{"shared child", "(a,b,0),(a,c,1)\n(b,d,0),(c,d,0)", "a(b(d),c(d()))"},
		{"two components", "(a,b,0)\n(x,y,0)", "a(b)x(y)"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Prefix(parse(t, tt.arcs))
			if err != nil {
				t.Fatalf("Prefix: %v", err)
			}
			if got != tt.want {
				t.Errorf("Prefix = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrefixCycle(t *testing.T) {
	_, err := Prefix(parse(t, "(a,b,0),(b,a,0)"))
	if !apperr.Is(err, apperr.ErrCodeCycle) {
		t.Fatalf("code = %q, want CYCLE_DETECTED", apperr.GetCode(err))
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Errorf("error %q does not show the cycle", err)
	}
}

func TestIsDocument(t *testing.T) {
	if !IsDocument([]byte("  {\"vertices\": []}")) {
		t.Error("JSON document not recognised")
	}
	if IsDocument([]byte("(a,b,0)")) || IsDocument(nil) {
		t.Error("arc text recognised as document")
	}
}
