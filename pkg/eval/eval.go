// Package eval computes the numeric value of a validated, acyclic graph.
//
// Every vertex is computed at most once. Arguments are the vertex's children
// taken in ascending ordinal order. The overall result is the sum of the
// values of all roots, so independent literal roots simply add up.
//
// Values are IEEE doubles. A vertex whose value overflows to ±Inf or becomes
// NaN (e.g. exp of 1000) fails the evaluation.
//
// Evaluate assumes its inputs already passed validation and cycle detection.
// It still fails cleanly instead of looping or panicking when they did not.
package eval

import (
	"math"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/ops"
)

// Result is the outcome of a successful evaluation.
type Result struct {
	// Value is the sum of the values of all roots.
	Value float64 `json:"value"`
	// Values holds the computed value of every vertex.
	Values map[string]float64 `json:"values"`
	// Order lists vertices in the order their values were completed.
	Order []string `json:"order"`
}

type frame struct {
	v        string
	op       ops.Operation
	children []graph.Arc
	next     int
}

type evaluator struct {
	g          *graph.Graph
	table      *ops.Table
	memo       map[string]float64
	inProgress map[string]bool
	order      []string
}

// Evaluate computes every vertex of g using table and returns the total.
//
// Vertices are visited in lexicographic order and each is computed with an
// explicit post-order stack, so graph depth is bounded only by memory.
// The first failure aborts the run with an [apperr.ErrCodeEvaluation] error
// naming the vertex; no partial result is returned.
func Evaluate(g *graph.Graph, table *ops.Table) (*Result, error) {
	e := &evaluator{
		g:          g,
		table:      table,
		memo:       make(map[string]float64, g.VertexCount()),
		inProgress: make(map[string]bool),
	}

	for _, v := range g.Vertices() {
		if _, done := e.memo[v]; done {
			continue
		}
		if err := e.compute(v); err != nil {
			return nil, err
		}
	}

	var total float64
	for _, r := range g.Roots() {
		total += e.memo[r]
	}
	if !finite(total) {
		return nil, apperr.New(apperr.ErrCodeEvaluation, "sum of roots is not a finite number (%v)", total)
	}
	return &Result{Value: total, Values: e.memo, Order: e.order}, nil
}

func (e *evaluator) compute(root string) error {
	var stack []frame
	if err := e.enter(root, &stack); err != nil {
		return err
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.children) {
			c := top.children[top.next].To
			top.next++
			if _, done := e.memo[c]; done {
				continue
			}
			if e.inProgress[c] {
				return apperr.New(apperr.ErrCodeEvaluation, "vertex %s: cycle detected during evaluation", c)
			}
			if err := e.enter(c, &stack); err != nil {
				return err
			}
			continue
		}

		args := make([]float64, len(top.children))
		for i, a := range top.children {
			args[i] = e.memo[a.To]
		}
		value := apply(top.op, args)
		if !finite(value) {
			return apperr.New(apperr.ErrCodeEvaluation, "vertex %s: %s result is not a finite number (%v)", top.v, top.op, value)
		}
		e.finish(top.v, value)
		delete(e.inProgress, top.v)
		stack = stack[:len(stack)-1]
	}
	return nil
}

// enter resolves v's operation. Literals complete immediately; operators are
// pushed onto the stack with their ordinal-sorted children.
func (e *evaluator) enter(v string, stack *[]frame) error {
	op, ok := e.table.Lookup(v)
	if !ok {
		return apperr.New(apperr.ErrCodeEvaluation, "vertex %s has no operation or value defined", v)
	}

	switch op.Kind {
	case ops.KindLiteral:
		e.finish(v, op.Value)
		return nil
	case ops.KindUnknown:
		return apperr.New(apperr.ErrCodeEvaluation, "invalid operation for vertex %s: %s", v, op)
	}

	children := e.g.Children(v)
	if op.Kind == ops.KindExp && len(children) != 1 {
		return apperr.New(apperr.ErrCodeEvaluation, "vertex %s: exp requires exactly one argument, got %d", v, len(children))
	}
	e.inProgress[v] = true
	*stack = append(*stack, frame{v: v, op: op, children: children})
	return nil
}

func (e *evaluator) finish(v string, value float64) {
	e.memo[v] = value
	e.order = append(e.order, v)
}

func apply(op ops.Operation, args []float64) float64 {
	switch op.Kind {
	case ops.KindSum:
		sum := 0.0
		for _, x := range args {
			sum += x
		}
		return sum
	case ops.KindProduct:
		prod := 1.0
		for _, x := range args {
			prod *= x
		}
		return prod
	case ops.KindExp:
		return math.Exp(args[0])
	}
	return math.NaN()
}

func finite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}
