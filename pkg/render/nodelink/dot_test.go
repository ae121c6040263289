package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/ops"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Parse(strings.NewReader("(a,c,1),(a,b,0)"), graph.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOTPlain(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`"a" [label="a"];`,
		`"a" -> "b" [label="0"];`,
		`"a" -> "c" [label="1"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Index(dot, `"a" -> "b"`) > strings.Index(dot, `"a" -> "c"`) {
		t.Error("edges not in ordinal order")
	}
}

func TestToDOTLabels(t *testing.T) {
	table := ops.NewTable(map[string]ops.Operation{
		"a": ops.Sum(),
		"b": ops.Literal(3),
	})
	dot := ToDOT(testGraph(t), Options{
		Operations: table,
		Values:     map[string]float64{"a": 7, "b": 3},
	})

	for _, want := range []string{
		`"a" [label="a\n+\n= 7"]`,
		`"b" [label="b\n3\n= 3", fillcolor=lightgrey]`,
		`"c" [label="c\n?", style="rounded,filled,dashed", fillcolor=mistyrose]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox changed SVG without viewBox: %s", got)
	}
}
