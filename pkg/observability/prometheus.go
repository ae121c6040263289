package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	inFlight      *prometheus.GaugeVec
	graphVertices prometheus.Histogram
	violations    prometheus.Counter
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus registers the arceval collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arceval",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arceval",
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that ended in an error.",
		}, []string{"stage"}),
		inFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "arceval",
			Name:      "stages_in_flight",
			Help:      "Pipeline stages currently running.",
		}, []string{"stage"}),
		graphVertices: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arceval",
			Name:      "graph_vertices",
			Help:      "Vertex count of validated graphs.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		violations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "arceval",
			Name:      "validation_violations_total",
			Help:      "Structural violations reported by the validator.",
		}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arceval",
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arceval",
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arceval",
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arceval",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (p *Prometheus) OnStageStart(_ context.Context, stage Stage) {
	p.inFlight.WithLabelValues(string(stage)).Inc()
}

func (p *Prometheus) OnStageComplete(_ context.Context, stage Stage, d time.Duration, err error) {
	p.inFlight.WithLabelValues(string(stage)).Dec()
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(string(stage)).Inc()
	}
}

func (p *Prometheus) OnValidated(_ context.Context, vertices, _, violations int) {
	p.graphVertices.Observe(float64(vertices))
	p.violations.Add(float64(violations))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
