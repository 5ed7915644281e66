package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qreuse/pkg/cache"
	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/circuit/circuittest"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	qio "github.com/matzehuels/qreuse/pkg/io"
	"github.com/matzehuels/qreuse/pkg/observability"
	"github.com/matzehuels/qreuse/pkg/observability/promhooks"
	"github.com/matzehuels/qreuse/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	return New(Config{
		Runner: pipeline.NewRunner(cache.NewNullCache(), nil, logger),
		Logger: logger,
	})
}

func circuitJSON(t *testing.T, c *circuit.Circuit) json.RawMessage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, qio.WriteCircuit(c, &buf))
	return buf.Bytes()
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

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body struct {
		Error errorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, rec.Body.String())
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/analyze", map[string]any{
		"circuit": circuitJSON(t, circuittest.Chain(4)),
		"target":  1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 4, res.Qubits)
	assert.Equal(t, 1, res.MinWidth)
	require.NotNil(t, res.Reducible)
	assert.True(t, *res.Reducible)
	assert.NotEmpty(t, res.RunID)
}

func TestAnalyze_NoTarget(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/analyze", map[string]any{"circuit": circuitJSON(t, circuittest.Entangled(3))})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.MinWidth)
	assert.Nil(t, res.Reducible)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)
	unmeasured := json.RawMessage(`{"ops":[{"name":"h","qubits":[0]}]}`)
	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   qerrors.Code
	}{
		{"no circuit", "/v1/analyze", map[string]any{}, http.StatusBadRequest, qerrors.ErrCodeInvalidInput},
		{"unknown field", "/v1/analyze", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(1)), "speed": 1}, http.StatusBadRequest, qerrors.ErrCodeInvalidInput},
		{"bad method", "/v1/analyze", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(1)), "method": "sat"}, http.StatusBadRequest, qerrors.ErrCodeInvalidMethod},
		{"bad heuristic", "/v1/reduce", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(1)), "heuristic": "tabu"}, http.StatusBadRequest, qerrors.ErrCodeInvalidHeuristic},
		{"negative target", "/v1/reduce", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(1)), "target": -2}, http.StatusBadRequest, qerrors.ErrCodeInvalidInput},
		{"bad circuit json", "/v1/analyze", map[string]any{"circuit": json.RawMessage(`{"ops":3}`)}, http.StatusBadRequest, qerrors.ErrCodeInvalidFormat},
		{"unmeasured", "/v1/analyze", map[string]any{"circuit": unmeasured}, http.StatusBadRequest, qerrors.ErrCodeMalformedCircuit},
		{"bad format", "/v1/graph", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(1)), "format": "gif"}, http.StatusBadRequest, qerrors.ErrCodeInvalidInput},
		{"structurally infeasible", "/v1/reduce", map[string]any{"circuit": circuitJSON(t, circuittest.Entangled(4)), "target": 3}, http.StatusUnprocessableEntity, qerrors.ErrCodeStructurallyInfeasible},
		{"budget", "/v1/reduce", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(8)), "target": 1, "heuristic": "mrv", "method": "graph", "max_steps": 1}, http.StatusServiceUnavailable, qerrors.ErrCodeBudgetExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestReduce(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/reduce", map[string]any{
		"circuit":   circuitJSON(t, circuittest.TwoChains()),
		"heuristic": "mrv",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.ReductionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Target)
	require.NotNil(t, res.Reduced)
	assert.Equal(t, 2, res.Reduced.Width)
	assert.Len(t, res.Reduced.Resets, 2)
}

func TestReduce_QASM(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/reduce?format=qasm", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(3))})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "OPENQASM 2.0;"))
	assert.Contains(t, rec.Body.String(), "qreg q[1];")
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "reset q[0];"))
}

func TestCrossCheck(t *testing.T) {
	s := newTestServer(t)
	rec := post(t, s, "/v1/crosscheck", map[string]any{"circuit": circuitJSON(t, circuittest.TwoChains())})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.CrossCheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Report)
	assert.True(t, res.Report.Agree())
	assert.Len(t, res.Report.Methods, 3)
}

func TestGraph(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"", "application/json", `"nodes"`},
		{"json", "application/json", `"edges"`},
		{"dot", "text/vnd.graphviz; charset=utf-8", "digraph"},
	}
	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			rec := post(t, s, "/v1/graph", map[string]any{
				"circuit": circuitJSON(t, circuittest.Chain(3)),
				"format":  tt.format,
			})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestContentType(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader("circuit"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMetrics(t *testing.T) {
	defer observability.Reset()
	reg := prometheus.NewRegistry()
	observability.SetHTTPHooks(promhooks.New(reg))

	logger := log.New(io.Discard)
	s := New(Config{Runner: pipeline.NewRunner(nil, nil, logger), Logger: logger, Gatherer: reg})

	post(t, s, "/v1/analyze", map[string]any{"circuit": circuitJSON(t, circuittest.Chain(2))})
	post(t, s, "/v1/analyze", map[string]any{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `qreuse_http_requests_total{method="POST",route="/v1/analyze",status="200"} 1`)
	assert.Contains(t, body, `qreuse_http_requests_total{method="POST",route="/v1/analyze",status="400"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{qerrors.New(qerrors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{&qerrors.MalformedCircuitError{Qubit: 1, Index: -1, Reason: "never measured"}, http.StatusBadRequest},
		{&qerrors.InfeasibleAtTargetError{Target: 1, Achieved: 2}, http.StatusUnprocessableEntity},
		{&qerrors.BudgetExceededError{Stage: "mrv"}, http.StatusServiceUnavailable},
		{qerrors.New(qerrors.ErrCodeInternalInvariant, "x"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}
