package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/matzehuels/qreuse/pkg/buildinfo"
	"github.com/matzehuels/qreuse/pkg/circuit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	qio "github.com/matzehuels/qreuse/pkg/io"
	"github.com/matzehuels/qreuse/pkg/pipeline"
)

// request is the body shared by every /v1 route. Unset fields fall back
// to the server defaults.
type request struct {
	Circuit   json.RawMessage `json:"circuit"`
	Method    string          `json:"method,omitempty"`
	Heuristic string          `json:"heuristic,omitempty"`
	// Target is omitted for "as few as possible".
	Target   *int  `json:"target,omitempty"`
	MaxSteps int64 `json:"max_steps,omitempty"`
	Refresh  bool  `json:"refresh,omitempty"`

	// Graph rendering
	Format     string `json:"format,omitempty"`
	Detailed   bool   `json:"detailed,omitempty"`
	Conflicts  bool   `json:"conflicts,omitempty"`
	ColorSlots bool   `json:"color_slots,omitempty"`
}

func (s *Server) decode(r *http.Request) (*circuit.Circuit, pipeline.Options, error) {
	var req request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, pipeline.Options{}, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "decode request")
	}
	if len(req.Circuit) == 0 {
		return nil, pipeline.Options{}, qerrors.New(qerrors.ErrCodeInvalidInput, "request has no circuit")
	}
	c, err := qio.ReadCircuit(bytes.NewReader(req.Circuit))
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	if s.ordered && !c.IsOrdered() {
		if c, err = circuit.New(c.Ops(), circuit.WithName(c.Name()), circuit.Ordered()); err != nil {
			return nil, pipeline.Options{}, err
		}
	}

	opts := pipeline.Options{
		Method:    s.defaults.Method,
		Heuristic: s.defaults.Heuristic,
		Target:    pipeline.AutoTarget,
		MaxSteps:  s.defaults.MaxSteps,
		Timeout:   s.defaults.Timeout,
		Logger:    s.log,
	}
	if req.Method != "" {
		opts.Method = req.Method
	}
	if req.Heuristic != "" {
		opts.Heuristic = req.Heuristic
	}
	if req.Target != nil {
		if err := qerrors.ValidateTarget(*req.Target); err != nil {
			return nil, pipeline.Options{}, err
		}
		opts.Target = *req.Target
	}
	if req.MaxSteps > 0 {
		opts.MaxSteps = req.MaxSteps
	}
	opts.Refresh = req.Refresh
	if req.Format != "" {
		opts.Formats = []string{req.Format}
	} else {
		opts.Formats = []string{pipeline.FormatJSON}
	}
	opts.Detailed, opts.Conflicts, opts.ColorSlots = req.Detailed, req.Conflicts, req.ColorSlots
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, pipeline.Options{}, err
	}
	return c, opts, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	c, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Analyze(r.Context(), c, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReduce answers 422 with the best-effort result when the heuristic
// overshoots the target.
func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	c, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Reduce(r.Context(), c, opts)
	var inf *qerrors.InfeasibleAtTargetError
	switch {
	case errors.As(err, &inf) && res != nil:
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorOf(err), Result: res})
		return
	case err != nil:
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "qasm" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := qio.WriteQASM(res.Reduced, w); err != nil {
			s.log.Warn("write qasm", "err", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCrossCheck(w http.ResponseWriter, r *http.Request) {
	c, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.CrossCheck(r.Context(), c, opts)
	if err != nil {
		if res != nil {
			writeJSON(w, statusFor(err), errorBody{Error: errorOf(err), Result: res})
			return
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	c, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), c, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}
