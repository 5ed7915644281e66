// Package pipeline runs qubit-reuse analyses with caching, hooks and
// logging, for the CLI and the HTTP server alike.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Analyze(ctx, c, pipeline.Options{Target: 3})
//	red, err := runner.Reduce(ctx, c, pipeline.Options{Heuristic: "hybrid"})
//	report, err := runner.CrossCheck(ctx, c, pipeline.Options{})
//	artifacts, err := runner.Render(ctx, c, pipeline.Options{Formats: []string{"svg"}})
//
// Results are keyed by a hash of the canonical circuit encoding together
// with every option that changes the answer, and stored as msgpack.
// Every run gets a fresh RunID, hit or miss.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/emit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	"github.com/matzehuels/qreuse/pkg/reducibility"
	"github.com/matzehuels/qreuse/pkg/reduction"
	"github.com/matzehuels/qreuse/pkg/reuse"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// AutoTarget asks for the smallest feasible width: Analyze reports no
	// verdict and Reduce targets the minimum width.
	AutoTarget = -1

	// DefaultTTL is how long cached results live.
	DefaultTTL = 7 * 24 * time.Hour
)

// Format constants for graph renderings.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists the supported graph formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. It decodes from server requests.
type Options struct {
	Method    string `json:"method,omitempty"`
	Heuristic string `json:"heuristic,omitempty"`
	// Target is the physical qubit budget; AutoTarget or any negative
	// value means "as few as possible".
	Target   int           `json:"target"`
	MaxSteps int64         `json:"max_steps,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
	Refresh  bool          `json:"refresh,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Conflicts bool     `json:"conflicts,omitempty"`
	// ColorSlots reduces the circuit first and colours nodes by slot.
	ColorSlots bool `json:"color_slots,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks names and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	m, err := reducibility.ParseMethod(o.Method)
	if err != nil {
		return err
	}
	o.Method = string(m)
	h, err := reduction.ParseHeuristic(o.Heuristic)
	if err != nil {
		return err
	}
	o.Heuristic = string(h)
	if o.Target < 0 {
		o.Target = AutoTarget
	}
	if o.MaxSteps < 0 || o.Timeout < 0 {
		return qerrors.New(qerrors.ErrCodeInvalidInput, "budget limits must be non-negative")
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = budget.DefaultLimits.MaxSteps
	}
	if o.Timeout == 0 {
		o.Timeout = budget.DefaultLimits.Timeout
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Limits returns the search budget.
func (o *Options) Limits() budget.Limits {
	return budget.Limits{MaxSteps: o.MaxSteps, Timeout: o.Timeout}
}

// SessionOptions returns the options for a reuse.Session.
func (o *Options) SessionOptions() reuse.Options {
	return reuse.Options{Method: reducibility.Method(o.Method), Limits: o.Limits()}
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	return qerrors.ValidateChoice(qerrors.ErrCodeInvalidInput, "format", format, Formats)
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Stats contains timing information. It is not cached.
type Stats struct {
	AnalyzeTime time.Duration `json:"analyze_ns" msgpack:"-"`
	ReduceTime  time.Duration `json:"reduce_ns" msgpack:"-"`
}

// AnalysisResult answers "how few physical qubits does this circuit need".
type AnalysisResult struct {
	RunID       string `json:"run_id" msgpack:"-"`
	CircuitHash string `json:"circuit_hash" msgpack:"circuit_hash"`
	Name        string `json:"name,omitempty" msgpack:"name,omitempty"`
	Qubits      int    `json:"qubits" msgpack:"qubits"`
	Ops         int    `json:"ops" msgpack:"ops"`
	Edges       int    `json:"edges" msgpack:"edges"`
	Conflicts   int    `json:"conflicts" msgpack:"conflicts"`
	Method      string `json:"method" msgpack:"method"`
	MinWidth    int    `json:"min_width" msgpack:"min_width"`
	// Target and Reducible are set when a target was given.
	Target    *int  `json:"target,omitempty" msgpack:"target,omitempty"`
	Reducible *bool `json:"reducible,omitempty" msgpack:"reducible,omitempty"`
	// Factor is the best achievable reducibility factor.
	Factor   float64 `json:"factor" msgpack:"factor"`
	Stats    Stats   `json:"stats" msgpack:"-"`
	CacheHit bool    `json:"cache_hit" msgpack:"-"`
}

// ReductionResult carries a reduced circuit.
type ReductionResult struct {
	RunID       string               `json:"run_id" msgpack:"-"`
	CircuitHash string               `json:"circuit_hash" msgpack:"circuit_hash"`
	Method      string               `json:"method" msgpack:"method"`
	Heuristic   string               `json:"heuristic" msgpack:"heuristic"`
	Target      int                  `json:"target" msgpack:"target"`
	MinWidth    int                  `json:"min_width" msgpack:"min_width"`
	Reduced     *emit.ReducedCircuit `json:"reduced" msgpack:"reduced"`
	Factor      float64              `json:"factor" msgpack:"factor"`
	// Exceeded is set when the heuristic used more than Target slots.
	Exceeded bool  `json:"exceeded,omitempty" msgpack:"exceeded,omitempty"`
	Stats    Stats `json:"stats" msgpack:"-"`
	CacheHit bool  `json:"cache_hit" msgpack:"-"`
}

// CrossCheckResult wraps a reuse.CrossCheckResult.
type CrossCheckResult struct {
	RunID       string                  `json:"run_id" msgpack:"-"`
	CircuitHash string                  `json:"circuit_hash" msgpack:"circuit_hash"`
	Report      *reuse.CrossCheckResult `json:"report" msgpack:"report"`
	Stats       Stats                   `json:"stats" msgpack:"-"`
	CacheHit    bool                    `json:"cache_hit" msgpack:"-"`
}

func factor(width, qubits int) float64 {
	if qubits == 0 {
		return 0
	}
	return 1 - float64(width)/float64(qubits)
}
