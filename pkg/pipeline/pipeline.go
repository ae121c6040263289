// Package pipeline runs the complete arceval evaluation pipeline.
//
// CLI and HTTP server share this package so both apply the same stage order,
// caching and error codes.
//
// # Architecture
//
// A run moves through five stages:
//
//  1. Parse: arc text (or a JSON graph document) into a [graph.Graph]
//  2. Load: the operation table into an [ops.Table]
//  3. Validate: accumulate structural violations ([validate.All])
//  4. Cycle: refuse cyclic graphs ([graph.FindCycle])
//  5. Evaluate: compute the value ([eval.Evaluate])
//
// The vertex set comes from the arcs. Only when there are no arcs do the table
// vertices become isolated vertices, so a table of independent literals such
// as {x: 5, y: 9} evaluates to their sum. Otherwise table entries for
// vertices without arcs are ignored.
//
// Evaluation results are cached by the SHA-256 of both inputs plus the
// duplicate policy. Parse and load always run, so results carry the graph
// and table even on a cache hit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Input{Arcs: arcs, Operations: ops}, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Value)
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arceval/pkg/cache"
	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/ops"
	"github.com/matzehuels/arceval/pkg/validate"
)

// Format constants for rendered outputs.
const (
	FormatJSON   = "json"
	FormatXML    = "xml"
	FormatPrefix = "prefix"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPDF    = "pdf"
	FormatPNG    = "png"
)

// ValidFormats lists the supported render formats in display order.
var ValidFormats = []string{FormatJSON, FormatXML, FormatPrefix, FormatDOT, FormatSVG, FormatPDF, FormatPNG}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// Input holds the raw pipeline inputs.
type Input struct {
	Arcs       []byte
	Operations []byte

	// ArcsName and OperationsName label the inputs in error messages.
	ArcsName       string
	OperationsName string
}

// Options configures a pipeline run.
type Options struct {
	Duplicates graph.DuplicatePolicy `json:"duplicates"`

	// Refresh ignores cached results. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// TTL overrides the cache lifetime of stored results.
	TTL time.Duration `json:"-"`

	Logger *log.Logger `json:"-"`
}

func (o Options) keyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{Duplicates: o.Duplicates.String()}
}

func (o Options) ttl(def time.Duration) time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return def
}

// Result contains the outputs of a successful evaluation.
type Result struct {
	Graph *graph.Graph `json:"-"`
	Table *ops.Table   `json:"-"`

	Value  float64            `json:"value"`
	Values map[string]float64 `json:"values"`
	Order  []string           `json:"order"`

	Stats     Stats     `json:"-"`
	CacheInfo CacheInfo `json:"-"`
}

// CheckResult is the outcome of validation and cycle detection.
type CheckResult struct {
	Graph *graph.Graph `json:"-"`
	Table *ops.Table   `json:"-"`

	Report validate.Report `json:"report"`
	// Cycle is one cycle as a closed vertex path, or nil.
	Cycle []string `json:"cycle,omitempty"`

	Stats     Stats     `json:"-"`
	CacheInfo CacheInfo `json:"-"`
}

// Valid reports whether the inputs can be evaluated.
func (c *CheckResult) Valid() bool { return c.Report.OK() && c.Cycle == nil }

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount  int
	ArcCount     int
	ParseTime    time.Duration
	LoadTime     time.Duration
	ValidateTime time.Duration
	CycleTime    time.Duration
	EvaluateTime time.Duration
}

// Total returns the summed stage time.
func (s Stats) Total() time.Duration {
	return s.ParseTime + s.LoadTime + s.ValidateTime + s.CycleTime + s.EvaluateTime
}

// CacheInfo reports whether the result came from the cache.
type CacheInfo struct {
	Hit bool
	Key string
}
