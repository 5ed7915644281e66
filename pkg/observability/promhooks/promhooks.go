// Package promhooks implements the observability hooks with Prometheus
// collectors.
package promhooks

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	"github.com/matzehuels/qreuse/pkg/observability"
)

// Hooks records pipeline, cache and HTTP events.
type Hooks struct {
	analyses        *prometheus.CounterVec
	analyzeDuration *prometheus.HistogramVec
	minWidth        prometheus.Histogram
	reductions      *prometheus.CounterVec
	reduceDuration  *prometheus.HistogramVec
	cache           *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qreuse_analyses_total",
			Help: "Reducibility analyses by method and result code",
		}, []string{"method", "code"}),
		analyzeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qreuse_analyze_duration_seconds",
			Help:    "Reducibility analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}, []string{"method"}),
		minWidth: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qreuse_min_width",
			Help:    "Minimum physical width found by analyses",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
		reductions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qreuse_reductions_total",
			Help: "Reductions by heuristic and result code",
		}, []string{"heuristic", "code"}),
		reduceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qreuse_reduce_duration_seconds",
			Help:    "Reduction duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"heuristic"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qreuse_cache_events_total",
			Help: "Cache events by key type and outcome",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "qreuse_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qreuse_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qreuse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func code(err error) string {
	if err == nil {
		return "OK"
	}
	if c := qerrors.GetCode(err); c != "" {
		return string(c)
	}
	return "UNKNOWN"
}

func (h *Hooks) OnAnalyzeStart(context.Context, string, int) {}

func (h *Hooks) OnAnalyzeComplete(_ context.Context, method string, minWidth int, d time.Duration, err error) {
	h.analyses.WithLabelValues(method, code(err)).Inc()
	h.analyzeDuration.WithLabelValues(method).Observe(d.Seconds())
	if err == nil {
		h.minWidth.Observe(float64(minWidth))
	}
}

func (h *Hooks) OnReduceStart(context.Context, string, int) {}

func (h *Hooks) OnReduceComplete(_ context.Context, heuristic string, _ int, d time.Duration, err error) {
	h.reductions.WithLabelValues(heuristic, code(err)).Inc()
	h.reduceDuration.WithLabelValues(heuristic).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cache.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
