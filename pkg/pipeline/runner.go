package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arceval/pkg/cache"
	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/eval"
	"github.com/matzehuels/arceval/pkg/graph"
	arcio "github.com/matzehuels/arceval/pkg/io"
	"github.com/matzehuels/arceval/pkg/observability"
	"github.com/matzehuels/arceval/pkg/ops"
	"github.com/matzehuels/arceval/pkg/validate"
)

// Cache key types reported to observability hooks.
const (
	keyTypeResult = "result"
	keyTypeCheck  = "check"
)

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state; one Runner may serve many goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer selects [cache.DefaultKeyer], a nil
// cache disables caching and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Execute runs parse, load, validate, cycle detection and evaluation.
//
// Errors carry the code of the failing stage: PARSE_ERROR,
// VALIDATION_ERROR (wrapping a [*validate.ReportError]), CYCLE_DETECTED or
// EVALUATION_ERROR. No partial result is returned.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	logger := r.logger(opts)
	res := &Result{}

	g, table, err := r.load(ctx, in, opts, &res.Stats)
	if err != nil {
		return nil, err
	}
	res.Graph, res.Table = g, table

	key := r.Keyer.ResultKey(cache.Hash(in.Arcs), cache.Hash(in.Operations), opts.keyOpts())
	res.CacheInfo.Key = key
	if !opts.Refresh {
		if cached, ok := r.cachedResult(ctx, key); ok {
			res.Value, res.Values, res.Order = cached.Value, cached.Values, cached.Order
			res.CacheInfo.Hit = true
			logger.Debug("result from cache", "key", key)
			return res, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeResult)

	if err := r.check(ctx, g, table, &res.Stats); err != nil {
		return nil, err
	}

	var out *eval.Result
	res.Stats.EvaluateTime, err = r.stage(ctx, observability.StageEvaluate, func() error {
		var err error
		out, err = eval.Evaluate(g, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Value, res.Values, res.Order = out.Value, out.Values, out.Order

	logger.Info("evaluated graph",
		"value", res.Value,
		"vertices", res.Stats.VertexCount,
		"arcs", res.Stats.ArcCount,
		"duration", res.Stats.Total())

	data, err := json.Marshal(out)
	if err != nil {
		logger.Warn("cache encode failed", "error", err)
		return res, nil
	}
	if err := r.Cache.Set(ctx, key, data, opts.ttl(cache.TTLResult)); err != nil {
		logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyTypeResult, len(data))
	}
	return res, nil
}

// Check runs parse, load, validation and cycle detection without
// evaluating. Only parse and load failures are returned as errors; violations
// and cycles are part of the result.
func (r *Runner) Check(ctx context.Context, in Input, opts Options) (*CheckResult, error) {
	res := &CheckResult{}

	g, table, err := r.load(ctx, in, opts, &res.Stats)
	if err != nil {
		return nil, err
	}
	res.Graph, res.Table = g, table

	key := r.Keyer.CheckKey(cache.Hash(in.Arcs), cache.Hash(in.Operations), opts.keyOpts())
	res.CacheInfo.Key = key
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached CheckResult
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeCheck)
				res.Report, res.Cycle = cached.Report, cached.Cycle
				res.CacheInfo.Hit = true
				return res, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeCheck)
	}

	res.Report = r.validate(ctx, g, table, &res.Stats)
	res.Stats.CycleTime, _ = r.stage(ctx, observability.StageCycle, func() error {
		res.Cycle = graph.FindCycle(g)
		return nil
	})

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, opts.ttl(cache.TTLCheck)); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeCheck, len(data))
		}
	}
	return res, nil
}

// Parse runs only the parse stage. It backs graph export, which needs no
// operations.
func (r *Runner) Parse(ctx context.Context, arcs []byte, name string, opts Options) (*graph.Graph, error) {
	var g *graph.Graph
	_, err := r.stage(ctx, observability.StageParse, func() error {
		var err error
		g, err = parseArcs(arcs, name, opts.Duplicates)
		return err
	})
	return g, err
}

// load parses both inputs. When the arcs define no vertices at all, the table
// vertices become isolated vertices; otherwise extra table entries are unused.
func (r *Runner) load(ctx context.Context, in Input, opts Options, stats *Stats) (*graph.Graph, *ops.Table, error) {
	logger := r.logger(opts)

	var g *graph.Graph
	var err error
	stats.ParseTime, err = r.stage(ctx, observability.StageParse, func() error {
		g, err = parseArcs(in.Arcs, in.ArcsName, opts.Duplicates)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var table *ops.Table
	stats.LoadTime, err = r.stage(ctx, observability.StageLoad, func() error {
		table, err = ops.Load(bytes.NewReader(in.Operations), ops.LoadOptions{Source: in.OperationsName})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if g.VertexCount() == 0 && table.Len() > 0 {
		logger.Debug("adding isolated vertices from operation table", "vertices", table.Vertices())
		g = g.WithVertices(table.Vertices())
	} else if extra := tableOnly(g, table); len(extra) > 0 {
		logger.Debug("ignoring operations for vertices without arcs", "vertices", extra)
	}
	stats.VertexCount, stats.ArcCount = g.VertexCount(), g.ArcCount()

	logger.Debug("loaded inputs",
		"vertices", stats.VertexCount,
		"arcs", stats.ArcCount,
		"operations", table.Len(),
		"syntax", table.Syntax())
	return g, table, nil
}

// check validates and then refuses cycles, returning the first failure.
func (r *Runner) check(ctx context.Context, g *graph.Graph, table *ops.Table, stats *Stats) error {
	if err := r.validate(ctx, g, table, stats).Err(); err != nil {
		return err
	}

	var err error
	stats.CycleTime, err = r.stage(ctx, observability.StageCycle, func() error {
		if cycle := graph.FindCycle(g); cycle != nil {
			return apperr.New(apperr.ErrCodeCycle, "graph contains a cycle: %s", strings.Join(cycle, " -> "))
		}
		return nil
	})
	return err
}

func (r *Runner) validate(ctx context.Context, g *graph.Graph, table *ops.Table, stats *Stats) validate.Report {
	var report validate.Report
	stats.ValidateTime, _ = r.stage(ctx, observability.StageValidate, func() error {
		report = validate.All(g, table)
		return report.Err()
	})
	observability.Pipeline().OnValidated(ctx, g.VertexCount(), g.ArcCount(), report.Len())
	return report
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*eval.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	var cached eval.Result
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeResult)
	return &cached, true
}

// stage times fn and reports it to the pipeline hooks.
func (r *Runner) stage(ctx context.Context, s observability.Stage, fn func() error) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, s)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, s, d, err)
	return d, err
}

// parseArcs reads arc text, or a JSON graph document when the input starts
// with '{'.
func parseArcs(data []byte, name string, policy graph.DuplicatePolicy) (*graph.Graph, error) {
	if arcio.IsDocument(data) {
		g, err := arcio.ReadJSON(bytes.NewReader(data), policy)
		if err != nil {
			if name != "" {
				return nil, apperr.Wrap(apperr.ErrCodeParse, err, "invalid graph document %s", name)
			}
			return nil, apperr.Wrap(apperr.ErrCodeParse, err, "invalid graph document")
		}
		return g, nil
	}
	g, err := graph.Parse(bytes.NewReader(data), graph.ParseOptions{Duplicates: policy, Source: name})
	if err != nil {
		// Parse returns the partial graph; callers must not evaluate it.
		return nil, err
	}
	return g, nil
}

// tableOnly returns table vertices that g does not contain.
func tableOnly(g *graph.Graph, table *ops.Table) []string {
	var extra []string
	for _, v := range table.Vertices() {
		if !g.HasVertex(v) {
			extra = append(extra, v)
		}
	}
	return extra
}
