package reuse

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	"github.com/matzehuels/qreuse/pkg/reducibility"
	"github.com/matzehuels/qreuse/pkg/reduction"
)

// MethodResult is one reducibility method's answer.
type MethodResult struct {
	Method   reducibility.Method `json:"method" msgpack:"method"`
	MinWidth int                 `json:"min_width" msgpack:"min_width"`
}

// HeuristicResult is one heuristic's slot count at the cross-check target.
type HeuristicResult struct {
	Heuristic reduction.Heuristic `json:"heuristic" msgpack:"heuristic"`
	Width     int                 `json:"width" msgpack:"width"`
	// Exceeded is set when the heuristic could not meet the target.
	Exceeded bool `json:"exceeded,omitempty" msgpack:"exceeded,omitempty"`
}

// CrossCheckResult compares every method and heuristic on one circuit.
type CrossCheckResult struct {
	Qubits     int               `json:"qubits" msgpack:"qubits"`
	Target     int               `json:"target" msgpack:"target"`
	Methods    []MethodResult    `json:"methods" msgpack:"methods"`
	Heuristics []HeuristicResult `json:"heuristics" msgpack:"heuristics"`
}

// Agree reports whether all methods found the same minimum width.
func (r *CrossCheckResult) Agree() bool {
	for _, m := range r.Methods[1:] {
		if m.MinWidth != r.Methods[0].MinWidth {
			return false
		}
	}
	return true
}

// CrossCheck computes the minimum width with every reducibility method,
// then runs every heuristic at that width. A target < 0 uses the session
// method's minimum width. Tasks run concurrently; the first failure
// cancels the rest. Disagreeing methods are reported as
// INTERNAL_INVARIANT alongside the result.
func (s *Session) CrossCheck(ctx context.Context, target int) (*CrossCheckResult, error) {
	closure, lower, err := s.Closure(ctx)
	if err != nil {
		return nil, err
	}
	if target < 0 {
		target = lower
	}
	res := &CrossCheckResult{
		Qubits:     s.graph.Len(),
		Target:     target,
		Methods:    make([]MethodResult, len(reducibility.Methods)),
		Heuristics: make([]HeuristicResult, len(reduction.Heuristics)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range reducibility.Methods {
		g.Go(func() error {
			d, err := reducibility.New(m, s.limits)
			if err != nil {
				return err
			}
			w, err := d.MinWidth(gctx, s.graph)
			if err != nil {
				return err
			}
			res.Methods[i] = MethodResult{Method: m, MinWidth: w}
			return nil
		})
	}
	if lower <= target {
		for i, h := range reduction.Heuristics {
			g.Go(func() error {
				strategy, err := reduction.New(h, s.limits)
				if err != nil {
					return err
				}
				p := &reduction.Problem{Graph: s.graph, Closure: closure, Target: target, Lower: lower}
				rc, err := reduction.ReduceWith(gctx, strategy, p)
				var inf *qerrors.InfeasibleAtTargetError
				switch {
				case errors.As(err, &inf):
					res.Heuristics[i] = HeuristicResult{Heuristic: h, Width: inf.Achieved, Exceeded: true}
				case err != nil:
					return err
				default:
					res.Heuristics[i] = HeuristicResult{Heuristic: h, Width: rc.Width}
				}
				return nil
			})
		}
	} else {
		res.Heuristics = nil
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !res.Agree() {
		return res, qerrors.New(qerrors.ErrCodeInternalInvariant, "reducibility methods disagree: %v", res.Methods)
	}
	return res, nil
}
