package pipeline

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/qreuse/pkg/cache"
	"github.com/matzehuels/qreuse/pkg/circuit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	qio "github.com/matzehuels/qreuse/pkg/io"
	"github.com/matzehuels/qreuse/pkg/observability"
	"github.com/matzehuels/qreuse/pkg/reduction"
	"github.com/matzehuels/qreuse/pkg/reuse"
)

// Runner executes analyses with caching. It holds no per-run state and
// is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// selects the DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: DefaultTTL}
}

// CircuitHash hashes the canonical JSON encoding of c.
func CircuitHash(c *circuit.Circuit) string {
	var buf bytes.Buffer
	_ = qio.WriteCircuit(c, &buf)
	return cache.Hash(buf.Bytes())
}

// Analyze computes the minimum width and, if opts.Target is set, whether
// the circuit fits. Malformed circuits and budget overruns are errors; a
// negative verdict is not.
func (r *Runner) Analyze(ctx context.Context, c *circuit.Circuit, opts Options) (*AnalysisResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hash := CircuitHash(c)
	key := r.Keyer.AnalysisKey(hash, cache.AnalysisKeyOpts{Method: opts.Method, Target: opts.Target, MaxSteps: opts.MaxSteps})

	var res AnalysisResult
	if r.lookup(ctx, "analysis", key, opts, &res) {
		res.RunID, res.CacheHit = uuid.NewString(), true
		return &res, nil
	}

	start := time.Now()
	observability.Pipeline().OnAnalyzeStart(ctx, opts.Method, c.Width())
	s, err := reuse.NewSession(c, opts.SessionOptions())
	var minWidth int
	if err == nil {
		minWidth, err = s.MinWidth(ctx)
	}
	elapsed := time.Since(start)
	observability.Pipeline().OnAnalyzeComplete(ctx, opts.Method, minWidth, elapsed, err)
	if err != nil {
		return nil, err
	}

	g := s.Graph()
	res = AnalysisResult{
		RunID:       uuid.NewString(),
		CircuitHash: hash,
		Name:        c.Name(),
		Qubits:      g.Len(),
		Ops:         c.Len(),
		Edges:       g.EdgeCount(),
		Conflicts:   len(g.Conflicts()),
		Method:      opts.Method,
		MinWidth:    minWidth,
		Factor:      factor(minWidth, g.Len()),
		Stats:       Stats{AnalyzeTime: elapsed},
	}
	if opts.Target != AutoTarget {
		target, ok := opts.Target, minWidth <= opts.Target
		res.Target, res.Reducible = &target, &ok
	}
	opts.Logger.Info("analyzed circuit",
		"qubits", res.Qubits,
		"min_width", minWidth,
		"method", opts.Method,
		"duration", elapsed)

	r.store(ctx, "analysis", key, &res)
	return &res, nil
}

// Reduce rewrites c onto at most opts.Target slots, or onto the minimum
// width when the target is automatic. When the heuristic overshoots the
// target, the result is returned together with the
// *errors.InfeasibleAtTargetError.
func (r *Runner) Reduce(ctx context.Context, c *circuit.Circuit, opts Options) (*ReductionResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hash := CircuitHash(c)
	key := r.Keyer.ReductionKey(hash, cache.ReductionKeyOpts{
		Method:    opts.Method,
		Heuristic: opts.Heuristic,
		Target:    opts.Target,
		MaxSteps:  opts.MaxSteps,
	})

	var res ReductionResult
	if r.lookup(ctx, "reduction", key, opts, &res) {
		res.RunID, res.CacheHit = uuid.NewString(), true
		return &res, nil
	}

	s, err := reuse.NewSession(c, opts.SessionOptions())
	if err != nil {
		return nil, err
	}
	start := time.Now()
	minWidth, err := s.MinWidth(ctx)
	if err != nil {
		return nil, err
	}
	analyzed := time.Since(start)

	target := opts.Target
	if target == AutoTarget {
		target = minWidth
	}
	observability.Pipeline().OnReduceStart(ctx, opts.Heuristic, target)
	rc, err := s.Reduce(ctx, target, reduction.Heuristic(opts.Heuristic))
	reduced := time.Since(start) - analyzed
	width := 0
	if rc != nil {
		width = rc.Width
	}
	observability.Pipeline().OnReduceComplete(ctx, opts.Heuristic, width, reduced, err)

	var inf *qerrors.InfeasibleAtTargetError
	exceeded := errors.As(err, &inf)
	if err != nil && !exceeded {
		return nil, err
	}

	res = ReductionResult{
		RunID:       uuid.NewString(),
		CircuitHash: hash,
		Method:      opts.Method,
		Heuristic:   opts.Heuristic,
		Target:      target,
		MinWidth:    minWidth,
		Reduced:     rc,
		Factor:      rc.Factor(),
		Exceeded:    exceeded,
		Stats:       Stats{AnalyzeTime: analyzed, ReduceTime: reduced},
	}
	opts.Logger.Info("reduced circuit",
		"qubits", rc.Original,
		"width", rc.Width,
		"resets", len(rc.Resets),
		"heuristic", opts.Heuristic,
		"duration", reduced)
	if exceeded {
		opts.Logger.Warn("heuristic exceeded target", "target", target, "achieved", inf.Achieved)
		return &res, err
	}

	r.store(ctx, "reduction", key, &res)
	return &res, nil
}

// CrossCheck runs every method and heuristic against c. A disagreement
// between methods is returned as INTERNAL_INVARIANT along with the report.
func (r *Runner) CrossCheck(ctx context.Context, c *circuit.Circuit, opts Options) (*CrossCheckResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hash := CircuitHash(c)
	key := r.Keyer.CrossCheckKey(hash, cache.CrossCheckKeyOpts{Target: opts.Target, MaxSteps: opts.MaxSteps})

	var res CrossCheckResult
	if r.lookup(ctx, "crosscheck", key, opts, &res) {
		res.RunID, res.CacheHit = uuid.NewString(), true
		return &res, nil
	}

	s, err := reuse.NewSession(c, opts.SessionOptions())
	if err != nil {
		return nil, err
	}
	start := time.Now()
	report, err := s.CrossCheck(ctx, opts.Target)
	if report == nil {
		return nil, err
	}
	res = CrossCheckResult{
		RunID:       uuid.NewString(),
		CircuitHash: hash,
		Report:      report,
		Stats:       Stats{AnalyzeTime: time.Since(start)},
	}
	if err != nil {
		opts.Logger.Error("reducibility methods disagree", "methods", report.Methods)
		return &res, err
	}
	opts.Logger.Info("cross-checked circuit", "qubits", report.Qubits, "target", report.Target, "duration", res.Stats.AnalyzeTime)
	r.store(ctx, "crosscheck", key, &res)
	return &res, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup decodes a cached entry into v. Corrupt entries and cache errors
// count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, opts Options, v any) bool {
	if opts.Refresh {
		return false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		opts.Logger.Debug("discarding undecodable cache entry", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	opts.Logger.Debug("cache hit", "type", keyType)
	return true
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		r.Logger.Warn("encode cache entry", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
