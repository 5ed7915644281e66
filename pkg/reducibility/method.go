package reducibility

import (
	"context"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/depgraph"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
)

// Method names a reducibility algorithm.
type Method string

const (
	MethodGraph        Method = "graph"
	MethodReachability Method = "reachability"
	MethodMatrix       Method = "matrix"
)

// DefaultMethod is used when no method is configured.
const DefaultMethod = MethodMatrix

// Methods lists every supported method, in documentation order.
var Methods = []Method{MethodGraph, MethodReachability, MethodMatrix}

// MethodNames returns the method names as strings.
func MethodNames() []string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return names
}

// ParseMethod validates a method name. The empty string selects
// DefaultMethod.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return DefaultMethod, nil
	}
	if err := qerrors.ValidateChoice(qerrors.ErrCodeInvalidMethod, "method", s, MethodNames()); err != nil {
		return "", err
	}
	return Method(s), nil
}

// Decider computes the closure and minimum width of a dependency graph.
type Decider interface {
	Method() Method
	// Closure returns the transitive closure over node indices.
	Closure(ctx context.Context, v depgraph.View) (*bitmatrix.Matrix, error)
	// MinWidth returns the fewest physical slots the graph needs.
	MinWidth(ctx context.Context, v depgraph.View) (int, error)
}

// New returns the Decider for m.
func New(m Method, limits budget.Limits) (Decider, error) {
	switch m {
	case MethodGraph:
		return &GraphSearch{Limits: limits}, nil
	case MethodReachability:
		return &Reachability{Limits: limits}, nil
	case MethodMatrix:
		return &MatrixClosure{Limits: limits}, nil
	}
	return nil, qerrors.ValidateChoice(qerrors.ErrCodeInvalidMethod, "method", string(m), MethodNames())
}

// Decide reports whether v fits on target slots. A negative target is an
// INVALID_INPUT error; false is an answer, not an error.
func Decide(ctx context.Context, d Decider, v depgraph.View, target int) (bool, error) {
	if err := qerrors.ValidateTarget(target); err != nil {
		return false, err
	}
	w, err := d.MinWidth(ctx, v)
	if err != nil {
		return false, err
	}
	return w <= target, nil
}

// MinWidthOfClosure runs the matching on an already computed closure.
func MinWidthOfClosure(ctx context.Context, closure *bitmatrix.Matrix, limits budget.Limits) (int, error) {
	meter := budget.NewMeter(ctx, "matching", limits)
	return minWidth(closure.Size(), rowCandidates(closure), meter)
}
