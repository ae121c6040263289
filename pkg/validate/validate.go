// Package validate checks a graph and its operation table for structural
// problems before anything is evaluated.
//
// Validation accumulates: every rule runs to completion and each problem is
// recorded as a [Violation], so a graph with k independent problems yields a
// report with exactly k entries. An empty report means the inputs may be
// handed to the cycle detector and then the evaluator.
package validate

import (
	"fmt"
	"strings"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/ops"
)

// Rule identifies which check produced a violation.
type Rule string

const (
	RuleSingleRoot Rule = "single-root"
	RuleMultiRoot  Rule = "multi-root"
	RuleLeaf       Rule = "leaf"
	RuleMissing    Rule = "missing"
	RuleOperation  Rule = "operation"
)

// Violation is one structural problem.
type Violation struct {
	Rule    Rule   `json:"rule"`
	Vertex  string `json:"vertex"`
	Message string `json:"message"`
}

// String returns the human-readable message.
func (v Violation) String() string { return v.Message }

// Report is the ordered result of a validation run. Violations are ordered by
// rule and then by vertex.
type Report struct {
	Violations []Violation `json:"violations"`
}

// OK reports whether no violations were found.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Len returns the number of violations.
func (r Report) Len() int { return len(r.Violations) }

// Messages returns the violation messages in report order.
func (r Report) Messages() []string {
	out := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.Message
	}
	return out
}

// Merge returns a report holding r's violations followed by other's.
func (r Report) Merge(other Report) Report {
	out := make([]Violation, 0, len(r.Violations)+len(other.Violations))
	out = append(out, r.Violations...)
	out = append(out, other.Violations...)
	return Report{Violations: out}
}

// Err returns nil for an empty report and otherwise an
// [apperr.ErrCodeValidation] error wrapping a [*ReportError].
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	noun := "violations"
	if r.Len() == 1 {
		noun = "violation"
	}
	return apperr.Wrap(apperr.ErrCodeValidation, &ReportError{Report: r}, "%d %s", r.Len(), noun)
}

// ReportError carries a non-empty report through error chains. Use
// errors.As to recover the individual violations.
type ReportError struct {
	Report Report
}

// Error joins all violation messages.
func (e *ReportError) Error() string {
	return strings.Join(e.Report.Messages(), "; ")
}

func (r *Report) add(rule Rule, vertex, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Rule:    rule,
		Vertex:  vertex,
		Message: fmt.Sprintf(format, args...),
	})
}

// Graph checks the structural rules of g against table:
//
//   - a single root must not be a literal when g has other vertices
//   - with several roots, every root must be a literal
//   - a leaf must not be "+", "*" or "exp"
//   - every vertex must have an operation
//
// Vertices without an operation are reported only by the last rule, once
// each.
func Graph(g *graph.Graph, table *ops.Table) Report {
	var r Report

	roots := g.Roots()
	switch {
	case len(roots) == 1:
		v := roots[0]
		if op, ok := table.Lookup(v); ok && op.IsLiteral() && g.VertexCount() > 1 {
			r.add(RuleSingleRoot, v, "root vertex %s cannot be a numeric value because the graph has other vertices", v)
		}
	case len(roots) > 1:
		for _, v := range roots {
			if op, ok := table.Lookup(v); ok && !op.IsLiteral() {
				r.add(RuleMultiRoot, v, "root vertex %s cannot be an operation (%s)", v, op)
			}
		}
	}

	for _, v := range g.Leaves() {
		if op, ok := table.Lookup(v); ok && op.IsOperator() {
			r.add(RuleLeaf, v, "leaf vertex %s cannot be an operation (%s)", v, op)
		}
	}

	for _, v := range g.Vertices() {
		if !table.Has(v) {
			r.add(RuleMissing, v, "vertex %s has no operation or value defined", v)
		}
	}
	return r
}

// Operations reports every table entry whose token is neither a decimal
// literal nor one of "+", "*", "exp".
func Operations(table *ops.Table) Report {
	var r Report
	for _, e := range table.Entries() {
		if e.Operation.Kind == ops.KindUnknown {
			r.add(RuleOperation, e.Vertex, "invalid operation for vertex %s: %s", e.Vertex, e.Operation)
		}
	}
	return r
}

// All runs [Graph] and [Operations] and merges their reports.
func All(g *graph.Graph, table *ops.Table) Report {
	return Graph(g, table).Merge(Operations(table))
}
