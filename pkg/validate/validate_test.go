package validate

import (
	"errors"
	"slices"
	"strings"
	"testing"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/ops"
)

func mustParse(t *testing.T, arcs string) *graph.Graph {
	t.Helper()
	g, err := graph.Parse(strings.NewReader(arcs), graph.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func mustLoad(t *testing.T, table string) *ops.Table {
	t.Helper()
	tbl, err := ops.Load(strings.NewReader(table), ops.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tbl
}

func TestAll(t *testing.T) {
	tests := []struct {
		name string
		arcs string
		ops  string
		want []string
	}{
		{
			name: "valid sum",
			arcs: "(a,b,0),(a,c,1)",
			ops:  "a:+\nb:3\nc:4",
		},
		{
			name: "exp leaf",
			arcs: "(a,b,0),(a,c,1)\n(b,d,0)\n(c,d,0)",
			ops:  "a:+\nb:1\nc:2\nd:exp",
			want: []string{"leaf vertex d cannot be an operation (exp)"},
		},
		{
			name: "missing vertex",
			arcs: "(a,b,0),(a,c,1)",
			ops:  "a:+\nb:3",
			want: []string{"vertex c has no operation or value defined"},
		},
		{
			name: "literal single root",
			arcs: "(a,b,0)",
			ops:  "a:1\nb:2",
			want: []string{"root vertex a cannot be a numeric value because the graph has other vertices"},
		},
		{
			name: "operator among several roots",
			arcs: "(a,c,0),(b,c,0)",
			ops:  "a:+\nb:1\nc:2",
			want: []string{"root vertex a cannot be an operation (+)"},
		},
		{
			name: "unknown operation",
			arcs: "(a,b,0)",
			ops:  "a:sqrt\nb:2",
			want: []string{"invalid operation for vertex a: sqrt"},
		},
		{
			name: "empty graph",
			arcs: "",
			ops:  "",
		},
		{
			name: "operator leaf",
			arcs: "(a,b,0)",
			ops:  "a:*\nb:*",
			want: []string{"leaf vertex b cannot be an operation (*)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := All(mustParse(t, tt.arcs), mustLoad(t, tt.ops))
			if got := r.Messages(); !slices.Equal(got, tt.want) {
				t.Errorf("violations = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccumulates(t *testing.T) {
	// Five independent problems: a literal single root, two operator
	// leaves, one missing vertex and one unknown token.
	g := mustParse(t, "(r,a,0),(r,b,1),(r,c,2),(r,d,3)")
	tbl := ops.NewTable(map[string]ops.Operation{
		"r": ops.Literal(1),
		"a": ops.Sum(),
		"b": ops.Exp(),
		"d": ops.ParseOperation("log"),
	})

	r := All(g, tbl)
	want := []string{
		"root vertex r cannot be a numeric value because the graph has other vertices",
		"leaf vertex a cannot be an operation (+)",
		"leaf vertex b cannot be an operation (exp)",
		"vertex c has no operation or value defined",
		"invalid operation for vertex d: log",
	}
	if got := r.Messages(); !slices.Equal(got, want) {
		t.Errorf("violations =\n%q\nwant\n%q", got, want)
	}
}

func TestMissingReportedOncePerVertex(t *testing.T) {
	// x and y are roots, z is a leaf. None has an operation.
	g := mustParse(t, "(x,z,0),(y,z,0)")
	r := Graph(g, ops.NewTable(nil))

	want := []string{
		"vertex x has no operation or value defined",
		"vertex y has no operation or value defined",
		"vertex z has no operation or value defined",
	}
	if got := r.Messages(); !slices.Equal(got, want) {
		t.Errorf("violations = %q, want %q", got, want)
	}
	for _, v := range r.Violations {
		if v.Rule != RuleMissing {
			t.Errorf("violation %q has rule %q, want missing", v.Message, v.Rule)
		}
	}
}

func TestIndependentLiteralRoots(t *testing.T) {
	g := graph.New(graph.DuplicateReject).WithVertices([]string{"x", "y"})
	tbl := mustLoad(t, "x:5\ny:9")
	if r := All(g, tbl); !r.OK() {
		t.Errorf("unexpected violations: %q", r.Messages())
	}
}

func TestReportErr(t *testing.T) {
	if err := (Report{}).Err(); err != nil {
		t.Errorf("empty report Err() = %v, want nil", err)
	}

	r := Report{}
	r.add(RuleMissing, "c", "vertex c has no operation or value defined")
	err := r.Err()
	if !apperr.Is(err, apperr.ErrCodeValidation) {
		t.Fatalf("Err() code = %q, want VALIDATION_ERROR", apperr.GetCode(err))
	}
	want := "1 violation: vertex c has no operation or value defined"
	if got := apperr.UserMessage(err); got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}

	r.add(RuleOperation, "d", "invalid operation for vertex d: log")
	err = r.Err()
	if got := apperr.UserMessage(err); !strings.HasPrefix(got, "2 violations: ") {
		t.Errorf("UserMessage = %q, want plural prefix", got)
	}
	var re *ReportError
	if !errors.As(err, &re) || re.Report.Len() != 2 {
		t.Errorf("errors.As(*ReportError) failed for %v", err)
	}
}
