// Package reuse is the public entry point for qubit-reuse analysis.
//
// The one-shot functions [IsReducible] and [Reduce] build a dependency
// graph and answer a single question. A [Session] keeps the graph and its
// reachability closure around so that many targets, methods and
// heuristics can be tried against one circuit:
//
//	s, err := reuse.NewSession(c, reuse.Options{})
//	if err != nil { ... }
//	ok, _ := s.IsReducible(ctx, 3)
//	rc, err := s.Reduce(ctx, 3, reduction.HeuristicHybrid)
//
// Sessions are safe for concurrent use.
package reuse

import (
	"context"
	"sync"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/depgraph"
	"github.com/matzehuels/qreuse/pkg/emit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	"github.com/matzehuels/qreuse/pkg/reducibility"
	"github.com/matzehuels/qreuse/pkg/reduction"
)

// IsReducible reports whether c can run on target physical qubits, using
// the given method and the default budget.
func IsReducible(ctx context.Context, c *circuit.Circuit, target int, method reducibility.Method) (bool, error) {
	s, err := NewSession(c, Options{Method: method})
	if err != nil {
		return false, err
	}
	return s.IsReducible(ctx, target)
}

// Reduce rewrites c onto at most target physical qubits with heuristic h
// and the default budget.
func Reduce(ctx context.Context, c *circuit.Circuit, target int, h reduction.Heuristic) (*emit.ReducedCircuit, error) {
	s, err := NewSession(c, Options{})
	if err != nil {
		return nil, err
	}
	return s.Reduce(ctx, target, h)
}

// Options configures a Session.
type Options struct {
	// Method computes the closure and minimum width. Empty selects
	// reducibility.DefaultMethod.
	Method reducibility.Method
	// Limits bounds every search. The zero value selects
	// budget.DefaultLimits.
	Limits budget.Limits
}

// Session holds a circuit's dependency graph and a lazily computed
// closure.
type Session struct {
	graph   *depgraph.Graph
	decider reducibility.Decider
	limits  budget.Limits

	mu      sync.Mutex
	closure *bitmatrix.Matrix
	lower   int
}

// NewSession builds the dependency graph of c. Malformed circuits fail
// here with MALFORMED_CIRCUIT.
func NewSession(c *circuit.Circuit, opts Options) (*Session, error) {
	if opts.Method == "" {
		opts.Method = reducibility.DefaultMethod
	}
	if opts.Limits == (budget.Limits{}) {
		opts.Limits = budget.DefaultLimits
	}
	d, err := reducibility.New(opts.Method, opts.Limits)
	if err != nil {
		return nil, err
	}
	g, err := depgraph.Build(c)
	if err != nil {
		return nil, err
	}
	return &Session{graph: g, decider: d, limits: opts.Limits}, nil
}

// Graph returns the dependency graph.
func (s *Session) Graph() *depgraph.Graph { return s.graph }

// Circuit returns the analysed circuit.
func (s *Session) Circuit() *circuit.Circuit { return s.graph.Circuit() }

// Method returns the session's reducibility method.
func (s *Session) Method() reducibility.Method { return s.decider.Method() }

// Closure returns the reachability closure and the minimum width. Both
// are computed on first use and cached; a failed attempt (budget,
// cancellation) is not cached and the next call retries.
func (s *Session) Closure(ctx context.Context) (*bitmatrix.Matrix, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closure != nil {
		return s.closure, s.lower, nil
	}
	closure, err := s.decider.Closure(ctx, s.graph)
	if err != nil {
		return nil, 0, err
	}
	lower, err := reducibility.MinWidthOfClosure(ctx, closure, s.limits)
	if err != nil {
		return nil, 0, err
	}
	s.closure, s.lower = closure, lower
	return closure, lower, nil
}

// MinWidth returns the fewest physical qubits the circuit needs.
func (s *Session) MinWidth(ctx context.Context) (int, error) {
	_, lower, err := s.Closure(ctx)
	return lower, err
}

// IsReducible reports whether the circuit fits on target physical qubits.
func (s *Session) IsReducible(ctx context.Context, target int) (bool, error) {
	if err := qerrors.ValidateTarget(target); err != nil {
		return false, err
	}
	lower, err := s.MinWidth(ctx)
	if err != nil {
		return false, err
	}
	return lower <= target, nil
}

// Reduce runs heuristic h against the cached closure. Outcomes match
// reduction.Reduce.
func (s *Session) Reduce(ctx context.Context, target int, h reduction.Heuristic) (*emit.ReducedCircuit, error) {
	if err := qerrors.ValidateTarget(target); err != nil {
		return nil, err
	}
	if h == "" {
		h = reduction.DefaultHeuristic
	}
	strategy, err := reduction.New(h, s.limits)
	if err != nil {
		return nil, err
	}
	closure, lower, err := s.Closure(ctx)
	if err != nil {
		return nil, err
	}
	if lower > target {
		return nil, qerrors.New(qerrors.ErrCodeStructurallyInfeasible,
			"circuit needs at least %d qubits, target was %d", lower, target)
	}
	p := &reduction.Problem{Graph: s.graph, Closure: closure, Target: target, Lower: lower}
	return reduction.ReduceWith(ctx, strategy, p)
}
