// Package reduction computes physical-slot assignments for qubit reuse.
//
// [Reduce] validates the target, rules out structurally infeasible targets
// with the reducibility engine, runs one [Strategy] on the reachability
// closure, and emits the reduced circuit. Strategies need not agree on the
// assignment; their output is validated once, centrally, by the emitter.
//
// # Heuristics
//
//   - greedy: qubits in live-range start order, each placed in the
//     most recently freed compatible slot (ties: lowest index), or a new
//     slot. No backtracking.
//   - minimum_remaining_values: backtracking search for k = lower bound …
//     target slots. The unassigned qubit with the fewest legal slots goes
//     next, ties broken by earliest live-range start and then lower qubit
//     identifier; slots are tried in ascending order; forward checking
//     prunes qubits left without a legal slot.
//   - hybrid: the minimum_remaining_values result (or one non-backtracking
//     pass of it when the search exhausts its budget), improved by moving
//     single qubits out of the highest slot, at most 4·|Q| move attempts.
//
// In slot count: hybrid ≤ minimum_remaining_values ≤ greedy.
package reduction

import (
	"context"
	"errors"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/depgraph"
	"github.com/matzehuels/qreuse/pkg/emit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	"github.com/matzehuels/qreuse/pkg/reducibility"
)

// Heuristic names a reduction strategy.
type Heuristic string

const (
	HeuristicMRV    Heuristic = "minimum_remaining_values"
	HeuristicGreedy Heuristic = "greedy"
	HeuristicHybrid Heuristic = "hybrid"
)

// DefaultHeuristic is used when none is configured.
const DefaultHeuristic = HeuristicHybrid

// Heuristics lists every supported heuristic.
var Heuristics = []Heuristic{HeuristicMRV, HeuristicGreedy, HeuristicHybrid}

// HeuristicNames returns the heuristic names as strings.
func HeuristicNames() []string {
	names := make([]string, len(Heuristics))
	for i, h := range Heuristics {
		names[i] = string(h)
	}
	return names
}

// ParseHeuristic validates a heuristic name. The empty string selects
// DefaultHeuristic.
func ParseHeuristic(s string) (Heuristic, error) {
	if s == "" {
		return DefaultHeuristic, nil
	}
	if err := qerrors.ValidateChoice(qerrors.ErrCodeInvalidHeuristic, "heuristic", s, HeuristicNames()); err != nil {
		return "", err
	}
	return Heuristic(s), nil
}

// Problem is the input shared by all strategies.
type Problem struct {
	Graph   *depgraph.Graph
	Closure *bitmatrix.Matrix // Reachability over node indices
	Target  int
	Lower   int // Minimum width
}

// Strategy produces a slot assignment. It may exceed Problem.Target when it
// cannot do better; Reduce reports that as InfeasibleAtTargetError.
type Strategy interface {
	Heuristic() Heuristic
	Assign(ctx context.Context, p *Problem) (emit.Assignment, error)
}

// New returns the Strategy for h.
func New(h Heuristic, limits budget.Limits) (Strategy, error) {
	switch h {
	case HeuristicGreedy:
		return &Greedy{}, nil
	case HeuristicMRV:
		return &MRV{Limits: limits}, nil
	case HeuristicHybrid:
		return &Hybrid{Limits: limits}, nil
	}
	return nil, qerrors.ValidateChoice(qerrors.ErrCodeInvalidHeuristic, "heuristic", string(h), HeuristicNames())
}

// Options tunes Reduce.
type Options struct {
	// Method computes the closure and lower bound. Defaults to
	// reducibility.DefaultMethod.
	Method reducibility.Method
	Limits budget.Limits
}

// Reduce assigns g's qubits to at most target slots with heuristic h and
// emits the reduced circuit.
//
// Outcomes:
//   - target < 0: INVALID_INPUT
//   - minimum width > target: STRUCTURALLY_INFEASIBLE, nil circuit
//   - heuristic exceeds target: the best-effort circuit together with an
//     *errors.InfeasibleAtTargetError
//   - search budget exhausted: *errors.BudgetExceededError
func Reduce(ctx context.Context, g *depgraph.Graph, target int, h Heuristic, opts Options) (*emit.ReducedCircuit, error) {
	if err := qerrors.ValidateTarget(target); err != nil {
		return nil, err
	}
	strategy, err := New(h, opts.Limits)
	if err != nil {
		return nil, err
	}
	method := opts.Method
	if method == "" {
		method = reducibility.DefaultMethod
	}
	decider, err := reducibility.New(method, opts.Limits)
	if err != nil {
		return nil, err
	}

	closure, err := decider.Closure(ctx, g)
	if err != nil {
		return nil, err
	}
	lower, err := reducibility.MinWidthOfClosure(ctx, closure, opts.Limits)
	if err != nil {
		return nil, err
	}
	if lower > target {
		return nil, qerrors.New(qerrors.ErrCodeStructurallyInfeasible,
			"circuit needs at least %d qubits, target was %d", lower, target)
	}

	return ReduceWith(ctx, strategy, &Problem{Graph: g, Closure: closure, Target: target, Lower: lower})
}

// ReduceWith runs strategy on a prepared problem and emits the result. It
// skips the structural feasibility check; callers that share one closure
// across strategies use it after checking Problem.Lower themselves.
func ReduceWith(ctx context.Context, strategy Strategy, p *Problem) (*emit.ReducedCircuit, error) {
	a, err := strategy.Assign(ctx, p)
	if err != nil {
		return nil, err
	}
	rc, err := emit.Emit(p.Graph, a)
	if err != nil {
		return nil, err
	}
	if rc.Width > p.Target {
		return rc, &qerrors.InfeasibleAtTargetError{
			Target:    p.Target,
			Achieved:  rc.Width,
			Heuristic: string(strategy.Heuristic()),
		}
	}
	return rc, nil
}

// IsBudgetExceeded reports whether err stopped a search early.
func IsBudgetExceeded(err error) bool {
	var be *qerrors.BudgetExceededError
	return errors.As(err, &be)
}
