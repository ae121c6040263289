package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/arceval/pkg/buildinfo"
	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/pipeline"
	"github.com/matzehuels/arceval/pkg/validate"
)

// EvaluateRequest is the body of /v1/evaluate and /v1/check.
type EvaluateRequest struct {
	Arcs       string `json:"arcs"`
	Operations string `json:"operations" validate:"required"`
	Duplicates string `json:"duplicates,omitempty" validate:"omitempty,oneof=reject keep"`
	Refresh    bool   `json:"refresh,omitempty"`
}

// ExportRequest is the body of /v1/export.
type ExportRequest struct {
	Arcs       string `json:"arcs" validate:"required"`
	Operations string `json:"operations,omitempty"`
	Duplicates string `json:"duplicates,omitempty" validate:"omitempty,oneof=reject keep"`
}

// EvaluateResponse is returned by /v1/evaluate.
type EvaluateResponse struct {
	Value  float64            `json:"value"`
	Values map[string]float64 `json:"values"`
	Order  []string           `json:"order"`
	Cached bool               `json:"cached"`
}

// CheckResponse is returned by /v1/check.
type CheckResponse struct {
	Valid      bool                 `json:"valid"`
	Violations []validate.Violation `json:"violations"`
	Cycle      []string             `json:"cycle,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Code       apperr.Code          `json:"code"`
	Error      string               `json:"error"`
	Violations []validate.Violation `json:"violations,omitempty"`
	RequestID  string               `json:"request_id,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, ok := s.options(w, r, req.Duplicates)
	if !ok {
		return
	}
	opts.Refresh = req.Refresh

	res, err := s.runner.Execute(r.Context(), toInput(req.Arcs, req.Operations), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Value:  res.Value,
		Values: res.Values,
		Order:  res.Order,
		Cached: res.CacheInfo.Hit,
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, ok := s.options(w, r, req.Duplicates)
	if !ok {
		return
	}

	res, err := s.runner.Check(r.Context(), toInput(req.Arcs, req.Operations), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	violations := res.Report.Violations
	if violations == nil {
		violations = []validate.Violation{}
	}
	writeJSON(w, http.StatusOK, CheckResponse{
		Valid:      res.Valid(),
		Violations: violations,
		Cycle:      res.Cycle,
	})
}

// exportContentTypes maps served export formats to their media type. The
// pdf and png formats need an external converter and are CLI-only.
var exportContentTypes = map[string]string{
	pipeline.FormatJSON:   "application/json",
	pipeline.FormatXML:    "application/xml",
	pipeline.FormatPrefix: "text/plain; charset=utf-8",
	pipeline.FormatDOT:    "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:    "image/svg+xml",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput,
			"unsupported export format %q (must be one of: json, xml, prefix, dot, svg)", format))
		return
	}

	var req ExportRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, ok := s.options(w, r, req.Duplicates)
	if !ok {
		return
	}

	g, err := s.runner.Parse(r.Context(), []byte(req.Arcs), "arcs", opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var ropts pipeline.RenderOptions
	if req.Operations != "" {
		// Annotate diagrams with values when the inputs evaluate; otherwise
		// fall back to the bare graph.
		if res, err := s.runner.Execute(r.Context(), toInput(req.Arcs, req.Operations), opts); err == nil {
			ropts = pipeline.RenderOptions{Operations: res.Table, Values: res.Values}
			g = res.Graph
		}
	}

	data, err := pipeline.Render(r.Context(), format, g, ropts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads a JSON body into dst and validates it. On failure it writes
// a 400 response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeStatus(w, r, http.StatusRequestEntityTooLarge,
				apperr.New(apperr.ErrCodeInvalidInput, "request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "%s", describe(err)))
		return false
	}
	return true
}

func (s *Server) options(w http.ResponseWriter, r *http.Request, duplicates string) (pipeline.Options, bool) {
	policy, err := graph.ParseDuplicatePolicy(duplicates)
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request"))
		return pipeline.Options{}, false
	}
	return pipeline.Options{Duplicates: policy, Logger: s.logger}, true
}

func toInput(arcs, operations string) pipeline.Input {
	return pipeline.Input{
		Arcs:           []byte(arcs),
		Operations:     []byte(operations),
		ArcsName:       "arcs",
		OperationsName: "operations",
	}
}

// describe turns validator errors into "field: problem" messages.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs[i] = field + ": required"
		case "oneof":
			msgs[i] = fmt.Sprintf("%s: %q is not one of [%s]", field, fe.Value(), fe.Param())
		default:
			msgs[i] = fmt.Sprintf("%s: failed %s", field, fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.ErrCodeParse, apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case apperr.ErrCodeValidation, apperr.ErrCodeCycle, apperr.ErrCodeEvaluation:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeStatus(w, r, statusFor(apperr.GetCode(err)), err)
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	resp := ErrorResponse{
		Code:      code,
		Error:     apperr.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	}
	var re *validate.ReportError
	if errors.As(err, &re) {
		resp.Violations = re.Report.Violations
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", resp.RequestID)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{
			Code:  apperr.ErrCodeInternal,
			Error: "encode response: " + err.Error(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
