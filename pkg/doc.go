// Package pkg provides the core libraries for arceval, an evaluator for
// arithmetic expressions written as ordinal-arc graphs.
//
// # Overview
//
// An expression is a set of arcs (from, to, ordinal) plus a table that gives
// every vertex an operation: a decimal literal, "+" (sum), "*" (product) or
// "exp". The ordinal of an arc is the argument position of "to" among the
// arguments of "from". The libraries are organized into four areas:
//
//  1. Domain logic: [graph], [ops], [validate], [eval]
//  2. Output: [io] (JSON, XML, prefix notation) and [render] (diagrams)
//  3. Orchestration: [pipeline], used by the CLI and the HTTP [server]
//  4. Infrastructure: [cache], [config], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The data flow through arceval:
//
//	arc text / JSON document      operation table
//	         ↓                          ↓
//	    [graph.Parse]              [ops.Load]
//	         ↓                          ↓
//	         └────── [validate.All] ────┘
//	                      ↓
//	              [graph.FindCycle]
//	                      ↓
//	               [eval.Evaluate]
//	                      ↓
//	           value, per-vertex values
//
// # Quick Start
//
//	g, err := graph.ParseFile("arcs.txt", graph.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	table, err := ops.LoadFile("ops.txt", ops.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	if err := validate.All(g, table).Err(); err != nil {
//	    return err
//	}
//	if cycle := graph.FindCycle(g); cycle != nil {
//	    return fmt.Errorf("cycle: %v", cycle)
//	}
//	res, err := eval.Evaluate(g, table)
//
// [pipeline.Runner] wraps these steps with caching, timing and hooks.
//
// # Testing
//
//	go test ./...                       # All tests
//	go test -run Example ./pkg/...      # Examples only
//	go test -tags integration ./pkg/... # Include Redis and MongoDB tests
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/graph
// [ops]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/ops
// [validate]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/validate
// [eval]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/eval
// [io]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/arceval/pkg/buildinfo
package pkg
