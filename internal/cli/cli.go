// Package cli implements the qreuse command-line interface.
//
// # Commands
//
// The main commands are:
//   - analyze: Report the minimum physical width and whether a target fits
//   - reduce: Rewrite a circuit onto fewer qubits (JSON or OpenQASM)
//   - crosscheck: Run every method and heuristic side by side
//   - graph: Render the qubit dependency graph
//   - serve: Run the HTTP API
//   - cache: Manage the result cache
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/qreuse/config.toml (see
// internal/config), overridable with --config. Flags win over the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qreuse/internal/config"
	"github.com/matzehuels/qreuse/pkg/cache"
	"github.com/matzehuels/qreuse/pkg/circuit"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	qio "github.com/matzehuels/qreuse/pkg/io"
	"github.com/matzehuels/qreuse/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Config: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the configuration file and applies its log level
// unless --verbose was given.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.LogLevel())
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		c.Logger.Debug("using redis cache", "url", c.Config.Cache.RedisURL)
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	}
	dir, err := config.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Options
// =============================================================================

// runFlags are the analysis flags shared by analyze, reduce, crosscheck
// and graph.
type runFlags struct {
	method    string
	heuristic string
	target    int
	maxSteps  int64
	timeout   string
	ordered   bool
	noCache   bool
	refresh   bool
}

func (f *runFlags) register(cmd *cobra.Command, withHeuristic bool) {
	cmd.Flags().StringVarP(&f.method, "method", "m", "", "reducibility method: graph, reachability, matrix")
	if withHeuristic {
		cmd.Flags().StringVarP(&f.heuristic, "heuristic", "H", "", "reduction heuristic: mrv, greedy, hybrid")
	}
	cmd.Flags().IntVarP(&f.target, "target", "k", pipeline.AutoTarget, "physical qubit budget (default: as few as possible)")
	cmd.Flags().Int64Var(&f.maxSteps, "max-steps", 0, "search step budget")
	cmd.Flags().StringVar(&f.timeout, "timeout", "", "search time budget, e.g. 30s")
	cmd.Flags().BoolVar(&f.ordered, "ordered", false, "treat the input order as binding")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

// options layers changed flags over the configuration file.
func (c *CLI) options(cmd *cobra.Command, f *runFlags) (pipeline.Options, error) {
	a := c.Config.Analysis
	opts := pipeline.Options{
		Method:    a.Method,
		Heuristic: a.Heuristic,
		Target:    f.target,
		MaxSteps:  a.MaxSteps,
		Timeout:   a.Timeout.Duration,
		Refresh:   f.refresh,
		Logger:    c.Logger,
	}
	flags := cmd.Flags()
	if flags.Changed("method") {
		opts.Method = f.method
	}
	if flags.Changed("heuristic") {
		opts.Heuristic = f.heuristic
	}
	if flags.Changed("max-steps") {
		opts.MaxSteps = f.maxSteps
	}
	if flags.Changed("timeout") {
		d, err := time.ParseDuration(f.timeout)
		if err != nil {
			return pipeline.Options{}, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "--timeout")
		}
		opts.Timeout = d
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// loadCircuit reads a circuit document, forcing the input order when
// asked to by flag or configuration.
func (c *CLI) loadCircuit(path string, f *runFlags) (*circuit.Circuit, error) {
	circ, err := qio.ImportCircuit(path)
	if err != nil {
		return nil, err
	}
	if (f.ordered || c.Config.Analysis.Ordered) && !circ.IsOrdered() {
		return circuit.New(circ.Ops(), circuit.WithName(circ.Name()), circuit.Ordered())
	}
	return circ, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDOT}
	}
	return strings.Split(s, ",")
}
