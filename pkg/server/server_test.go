package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/arceval/pkg/cache"
	"github.com/matzehuels/arceval/pkg/config"
	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/observability"
	"github.com/matzehuels/arceval/pkg/pipeline"
	"github.com/matzehuels/arceval/pkg/validate"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
	t.Cleanup(func() { _ = runner.Close() })
	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(runner, config.Default().Server, opts...)
}

func post(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/v1/evaluate", EvaluateRequest{
		Arcs:       "(a,b,0),(a,c,1)",
		Operations: "a:+\nb:3\nc:4",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeBody[EvaluateResponse](t, rec)
	assert.Equal(t, 7.0, resp.Value)
	assert.Equal(t, map[string]float64{"a": 7, "b": 3, "c": 4}, resp.Values)
	assert.Equal(t, []string{"b", "c", "a"}, resp.Order)
	assert.False(t, resp.Cached)

	rec = post(t, s, "/v1/evaluate", EvaluateRequest{
		Arcs:       "(a,b,0),(a,c,1)",
		Operations: "a:+\nb:3\nc:4",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[EvaluateResponse](t, rec).Cached)
}

func TestEvaluateLiteralRoots(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/evaluate", EvaluateRequest{Operations: `{"x": 5, "y": 9}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 14.0, decodeBody[EvaluateResponse](t, rec).Value)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       EvaluateRequest
		wantStatus int
		wantCode   apperr.Code
		wantError  string
	}{
		{
			name:       "parse error",
			body:       EvaluateRequest{Arcs: "(a,b)", Operations: "a:+"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeParse,
			wantError:  "line 1",
		},
		{
			name:       "missing operation",
			body:       EvaluateRequest{Arcs: "(a,b,0),(a,c,1)", Operations: "a:+\nb:1"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperr.ErrCodeValidation,
			wantError:  "vertex c has no operation or value defined",
		},
		{
			name:       "cycle",
			body:       EvaluateRequest{Arcs: "(a,b,0),(b,a,0)", Operations: "a:+\nb:1"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperr.ErrCodeCycle,
			wantError:  "a -> b -> a",
		},
		{
			name:       "exp overflow",
			body:       EvaluateRequest{Arcs: "(a,b,0)", Operations: "a:exp\nb:1000"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperr.ErrCodeEvaluation,
			wantError:  "vertex a: exp result is not a finite number",
		},
		{
			name:       "required operations",
			body:       EvaluateRequest{Arcs: "(a,b,0)"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeInvalidInput,
			wantError:  "operations: required",
		},
		{
			name:       "bad duplicate policy",
			body:       EvaluateRequest{Arcs: "(a,b,0)", Operations: "a:exp\nb:1", Duplicates: "merge"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeInvalidInput,
			wantError:  `duplicates: "merge" is not one of [reject keep]`,
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/v1/evaluate", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Contains(t, resp.Error, tt.wantError)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, EvaluateResponse{Value: math.Inf(1)})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, apperr.ErrCodeInternal, resp.Code)
	assert.Contains(t, resp.Error, "encode response")
}

func TestEvaluateViolations(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/evaluate", EvaluateRequest{
		Arcs:       "(a,b,0),(a,c,1)",
		Operations: "a:+\nb:+\nc:oops",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeBody[ErrorResponse](t, rec)
	require.Len(t, resp.Violations, 2)
	assert.Equal(t, validate.RuleLeaf, resp.Violations[0].Rule)
	assert.Equal(t, "b", resp.Violations[0].Vertex)
	assert.Equal(t, validate.RuleOperation, resp.Violations[1].Rule)
	assert.Equal(t, "c", resp.Violations[1].Vertex)
}

func TestUnknownField(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/evaluate", strings.NewReader(`{"arcs": "", "ops": "x:1"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	logger := log.New(&bytes.Buffer{})
	cfg := config.Default().Server
	cfg.MaxBodyBytes = 16
	s := New(pipeline.NewRunner(nil, nil, logger), cfg, WithLogger(logger))

	rec := post(t, s, "/v1/evaluate", EvaluateRequest{Arcs: "(a,b,0)", Operations: "a:exp\nb:1"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCheck(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/v1/check", EvaluateRequest{Arcs: "(a,b,0),(b,a,0)", Operations: "a:+\nb:1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[CheckResponse](t, rec)
	assert.False(t, resp.Valid)
	assert.Equal(t, []string{"a", "b", "a"}, resp.Cycle)
	assert.Empty(t, resp.Violations)

	rec = post(t, s, "/v1/check", EvaluateRequest{Arcs: "(a,b,0)", Operations: "a:exp\nb:0"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[CheckResponse](t, rec)
	assert.True(t, resp.Valid)
	assert.Contains(t, rec.Body.String(), `"violations":[]`)
}

func TestExport(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		want        string
	}{
		{"prefix", "text/plain; charset=utf-8", "a(b,c)\n"},
		{"json", "application/json", `"order": 1`},
		{"xml", "application/xml", "<graph>"},
		{"dot", "text/vnd.graphviz; charset=utf-8", `"a" -> "c" [label="1"];`},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := post(t, s, "/v1/export?format="+tt.format, ExportRequest{Arcs: "(a,c,1),(a,b,0)"})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestExportWithValues(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/export?format=dot", ExportRequest{Arcs: "(a,b,0)", Operations: "a:exp\nb:0"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "= 1")
}

func TestExportErrors(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/v1/export?format=png", ExportRequest{Arcs: "(a,b,0)"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, s, "/v1/export?format=prefix", ExportRequest{Arcs: "(a,b,0),(b,a,0)"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperr.ErrCodeCycle, decodeBody[ErrorResponse](t, rec).Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Build.Version)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)

	reg := prometheus.NewRegistry()
	prom := observability.NewPrometheus(reg)
	observability.SetPipelineHooks(prom)
	observability.SetCacheHooks(prom)
	observability.SetHTTPHooks(prom)

	s := newTestServer(t, WithGatherer(reg))
	rec := post(t, s, "/v1/evaluate", EvaluateRequest{Arcs: "(a,b,0)", Operations: "a:exp\nb:0"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `arceval_http_requests_total{code="200",method="POST",route="/v1/evaluate"} 1`)
	assert.Contains(t, body, `arceval_stage_duration_seconds_count{stage="evaluate"} 1`)
	assert.Contains(t, body, `arceval_cache_operations_total{key_type="result",result="miss"} 1`)
}

func TestServeShutdown(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
