// Package config loads the qreuse TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/qreuse/config.toml (or
// ~/.config/qreuse/config.toml) unless a path is given explicitly:
//
//	[analysis]
//	method    = "matrix"
//	heuristic = "hybrid"
//	max_steps = 1000000
//	timeout   = "30s"
//	ordered   = false
//
//	[cache]
//	backend   = "file"     # file, redis or none
//	redis_url = "redis://localhost:6379/0"
//	ttl       = "168h"
//
//	[server]
//	addr = ":8080"
//
//	[log]
//	level = "info"
//
// A missing default file yields Default(). Command-line flags override
// whatever the file sets.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/qreuse/pkg/budget"
	qerrors "github.com/matzehuels/qreuse/pkg/errors"
	"github.com/matzehuels/qreuse/pkg/reducibility"
	"github.com/matzehuels/qreuse/pkg/reduction"
)

// AppName names the configuration and cache directories.
const AppName = "qreuse"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Backends lists the supported cache backends.
var Backends = []string{BackendFile, BackendRedis, BackendNone}

// Config is the decoded configuration file.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
	Log      Log      `toml:"log"`
}

// Analysis holds defaults for analysis and reduction runs.
type Analysis struct {
	Method    string   `toml:"method"`
	Heuristic string   `toml:"heuristic"`
	MaxSteps  int64    `toml:"max_steps"`
	Timeout   Duration `toml:"timeout"`
	// Ordered makes the input order of every loaded circuit binding.
	Ordered bool `toml:"ordered"`
}

// Cache selects the result cache.
type Cache struct {
	Backend  string   `toml:"backend"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Server configures `qreuse serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Log sets the log level.
type Log struct {
	Level string `toml:"level"`
}

// Duration decodes TOML strings such as "30s" or "1h30m".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Analysis: Analysis{
			Method:    string(reducibility.DefaultMethod),
			Heuristic: string(reduction.DefaultHeuristic),
			MaxSteps:  budget.DefaultLimits.MaxSteps,
			Timeout:   Duration{budget.DefaultLimits.Timeout},
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// DefaultPath returns the XDG location of the configuration file.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the file at path over Default(). An empty path selects
// DefaultPath, whose absence is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	if err := qerrors.ValidatePath(path); err != nil {
		return nil, err
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return Default(), nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, qerrors.Wrap(qerrors.ErrCodeFileNotFound, err, "config file not found: %s", path)
	case err != nil:
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, qerrors.New(qerrors.ErrCodeInvalidFormat, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document from a string over Default().
func Parse(doc string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(doc, cfg)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, qerrors.New(qerrors.ErrCodeInvalidFormat, "unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every named choice and limit.
func (c *Config) Validate() error {
	if _, err := reducibility.ParseMethod(c.Analysis.Method); err != nil {
		return err
	}
	if _, err := reduction.ParseHeuristic(c.Analysis.Heuristic); err != nil {
		return err
	}
	if c.Analysis.MaxSteps < 0 || c.Analysis.Timeout.Duration < 0 {
		return qerrors.New(qerrors.ErrCodeInvalidInput, "analysis limits must be non-negative")
	}
	if err := qerrors.ValidateChoice(qerrors.ErrCodeInvalidInput, "cache backend", c.Cache.Backend, Backends); err != nil {
		return err
	}
	if c.Cache.Backend == BackendRedis {
		if err := qerrors.ValidateURL(c.Cache.RedisURL); err != nil {
			return err
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return qerrors.New(qerrors.ErrCodeInvalidInput, "cache ttl must be non-negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "log level")
	}
	return nil
}

// LogLevel returns the parsed log level, falling back to info.
func (c *Config) LogLevel() log.Level {
	l, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Limits returns the configured search budget.
func (c *Config) Limits() budget.Limits {
	return budget.Limits{MaxSteps: c.Analysis.MaxSteps, Timeout: c.Analysis.Timeout.Duration}
}

// CacheDir returns the file cache directory (~/.cache/qreuse/ by XDG).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
