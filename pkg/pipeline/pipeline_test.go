package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qreuse/pkg/cache"
	"github.com/matzehuels/qreuse/pkg/circuit"
	"github.com/matzehuels/qreuse/pkg/circuit/circuittest"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	"github.com/matzehuels/qreuse/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"qasm", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Equal(t, "matrix", o.Method)
	assert.Equal(t, "hybrid", o.Heuristic)
	assert.Equal(t, []string{FormatDOT}, o.Formats)
	assert.NotZero(t, o.Limits().MaxSteps)
	assert.NotNil(t, o.Logger)

	o = Options{Target: -7}
	require.NoError(t, o.ValidateAndSetDefaults())
	assert.Equal(t, AutoTarget, o.Target)

	for _, bad := range []Options{{Method: "x"}, {Heuristic: "x"}, {MaxSteps: -1}, {Formats: []string{"gif"}}} {
		assert.Error(t, bad.ValidateAndSetDefaults(), "%+v", bad)
	}
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return NewRunner(c, nil, nil)
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)
	defer r.Close()

	res, err := r.Analyze(ctx, circuittest.TwoChains(), Options{Target: AutoTarget})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Qubits)
	assert.Equal(t, 2, res.MinWidth)
	assert.Equal(t, 3, res.Edges)
	assert.Equal(t, 3, res.Conflicts)
	assert.Equal(t, 0.5, res.Factor)
	assert.Nil(t, res.Reducible)
	assert.False(t, res.CacheHit)
	assert.NotEmpty(t, res.RunID)

	res, err = r.Analyze(ctx, circuittest.TwoChains(), Options{Target: 1})
	require.NoError(t, err)
	require.NotNil(t, res.Reducible)
	assert.False(t, *res.Reducible)
	assert.Equal(t, 1, *res.Target)
}

func TestAnalyze_CacheHit(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)

	first, err := r.Analyze(ctx, circuittest.Chain(5), Options{Target: 2})
	require.NoError(t, err)
	second, err := r.Analyze(ctx, circuittest.Chain(5), Options{Target: 2})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.MinWidth, second.MinWidth)
	assert.Equal(t, *first.Reducible, *second.Reducible)

	third, err := r.Analyze(ctx, circuittest.Chain(5), Options{Target: 2, Refresh: true})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)

	other, err := r.Analyze(ctx, circuittest.Chain(5), Options{Target: 2, Method: "graph"})
	require.NoError(t, err)
	assert.False(t, other.CacheHit, "method is part of the key")
}

func TestAnalyze_Malformed(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	bad := circuit.NewBuilder("").H(0).Measure(0).H(0).MustBuild()
	_, err := r.Analyze(context.Background(), bad, Options{})
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeMalformedCircuit))
}

func TestReduce(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)

	res, err := r.Reduce(ctx, circuittest.Chain(4), Options{Target: AutoTarget, Heuristic: "greedy"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Target)
	assert.Equal(t, 1, res.Reduced.Width)
	assert.Len(t, res.Reduced.Resets, 3)
	assert.Equal(t, 0.75, res.Factor)

	cached, err := r.Reduce(ctx, circuittest.Chain(4), Options{Target: AutoTarget, Heuristic: "greedy"})
	require.NoError(t, err)
	assert.True(t, cached.CacheHit)
	assert.Equal(t, res.Reduced.Ops, cached.Reduced.Ops)
	assert.Equal(t, res.Reduced.Assignment, cached.Reduced.Assignment)
}

func TestReduce_Infeasible(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Reduce(context.Background(), circuittest.Entangled(3), Options{Target: 2})
	assert.Nil(t, res)
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeStructurallyInfeasible))
}

func TestReduce_Budget(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	c := circuittest.Random(circuittest.Seeded(1), 12, 60)
	_, err := r.Reduce(context.Background(), c, Options{Heuristic: "minimum_remaining_values", MaxSteps: 1})
	var be *qerrors.BudgetExceededError
	assert.True(t, errors.As(err, &be), "got %v", err)
}

func TestCrossCheck(t *testing.T) {
	r := fileRunner(t)
	res, err := r.CrossCheck(context.Background(), circuittest.TwoChains(), Options{Target: AutoTarget})
	require.NoError(t, err)
	assert.True(t, res.Report.Agree())
	assert.Equal(t, 2, res.Report.Target)
	assert.Len(t, res.Report.Heuristics, 3)

	again, err := r.CrossCheck(context.Background(), circuittest.TwoChains(), Options{Target: AutoTarget})
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, res.Report, again.Report)
}

func TestRender(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	out, err := r.Render(context.Background(), circuittest.TwoChains(), Options{
		Formats:    []string{FormatDOT, FormatJSON},
		ColorSlots: true,
		Conflicts:  true,
	})
	require.NoError(t, err)
	dot := string(out[FormatDOT])
	assert.Contains(t, dot, "digraph G")
	assert.Contains(t, dot, "@1")
	assert.Equal(t, 3, strings.Count(dot, "style=dashed"))

	var doc struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(out[FormatJSON], &doc))
	assert.Len(t, doc.Nodes, 4)
}

func TestCircuitHash(t *testing.T) {
	a := CircuitHash(circuittest.Chain(3))
	assert.Equal(t, a, CircuitHash(circuittest.Chain(3)))
	assert.NotEqual(t, a, CircuitHash(circuittest.Chain(4)))
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestRunner_CacheHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetCacheHooks(h)
	defer observability.Reset()

	r := fileRunner(t)
	r.TTL = time.Hour
	for range 2 {
		_, err := r.Analyze(context.Background(), circuittest.Chain(2), Options{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, h.misses)
	assert.Equal(t, 1, h.sets)
	assert.Equal(t, 1, h.hits)
}
