package reducibility

import (
	"context"

	"github.com/matzehuels/qreuse/pkg/bitmatrix"
	"github.com/matzehuels/qreuse/pkg/budget"
	"github.com/matzehuels/qreuse/pkg/depgraph"
)

// MatrixClosure computes the closure by repeated Boolean squaring.
type MatrixClosure struct {
	Limits budget.Limits
}

// Method returns MethodMatrix.
func (*MatrixClosure) Method() Method { return MethodMatrix }

// MinWidth squares to a fixed point and matches over set bits.
func (m *MatrixClosure) MinWidth(ctx context.Context, v depgraph.View) (int, error) {
	c, err := m.Closure(ctx, v)
	if err != nil {
		return 0, err
	}
	meter := budget.NewMeter(ctx, string(MethodMatrix), m.Limits)
	return minWidth(c.Size(), rowCandidates(c), meter)
}

// Closure iterates C ← C ∨ C·C from the adjacency matrix until it stops
// changing. Each round is one budget step.
func (m *MatrixClosure) Closure(ctx context.Context, v depgraph.View) (*bitmatrix.Matrix, error) {
	meter := budget.NewMeter(ctx, string(MethodMatrix), m.Limits)
	c := depgraph.AdjacencyMatrix(v)
	for changed := true; changed; {
		if err := meter.Tick(); err != nil {
			return nil, err
		}
		if err := meter.Check(); err != nil {
			return nil, err
		}
		c, changed = c.Step()
	}
	return c, nil
}
