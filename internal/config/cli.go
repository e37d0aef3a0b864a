package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"playlist-gen/internal/generator"
	"playlist-gen/internal/logging"
	"playlist-gen/internal/playlist"
	"playlist-gen/internal/workers"
)

// Environment variables read by Resolve.
const (
	EnvDirectory    = "PLAYLIST_DIR"
	EnvName         = "PLAYLIST_NAME"
	EnvOutputDir    = "PLAYLIST_OUTPUT_DIR"
	EnvWorkers      = "PLAYLIST_WORKERS"
	EnvProbeTimeout = "PLAYLIST_PROBE_TIMEOUT"
	EnvFFprobe      = "PLAYLIST_FFPROBE"
	EnvCacheDB      = "PLAYLIST_CACHE_DB"
	EnvCompact      = "PLAYLIST_COMPACT"
	EnvMetricsFile  = "PLAYLIST_METRICS_FILE"
)

// Options holds explicitly given command-line values. Zero values mean
// "not given".
type Options struct {
	Directory    string
	Name         string
	OutputDir    string
	Workers      int
	ProbeTimeout time.Duration
	FFprobe      string
	CacheDB      string
	Compact      bool
	MetricsFile  string
}

// Config is the fully resolved CLI configuration.
type Config struct {
	// Root is the directory to scan, exactly as given, so that a relative
	// root produces relative track locations.
	Root         string
	Title        string
	OutputDir    string
	OutputPath   string
	Workers      int
	ProbeTimeout time.Duration
	FFprobe      string
	CacheDB      string
	Compact      bool
	MetricsFile  string
}

// Resolve applies explicit > environment > derived precedence to opts.
func Resolve(opts Options) (*Config, error) {
	cfg := &Config{
		Root:         firstNonEmpty(opts.Directory, os.Getenv(EnvDirectory), "."),
		OutputDir:    firstNonEmpty(opts.OutputDir, os.Getenv(EnvOutputDir), "."),
		FFprobe:      firstNonEmpty(opts.FFprobe, os.Getenv(EnvFFprobe), DefaultFFprobe),
		CacheDB:      firstNonEmpty(opts.CacheDB, os.Getenv(EnvCacheDB)),
		MetricsFile:  firstNonEmpty(opts.MetricsFile, os.Getenv(EnvMetricsFile)),
		Compact:      opts.Compact || getEnvBool(EnvCompact, false),
		ProbeTimeout: opts.ProbeTimeout,
	}

	if opts.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", opts.Workers)
	}
	cfg.Workers = workers.Resolve(firstPositive(opts.Workers, getEnvInt(EnvWorkers, 0)), 0)

	if opts.ProbeTimeout < 0 {
		return nil, fmt.Errorf("probe timeout must not be negative, got %v", opts.ProbeTimeout)
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = getEnvDuration(EnvProbeTimeout, DefaultProbeTimeout)
	}

	cfg.Title = firstNonEmpty(opts.Name, os.Getenv(EnvName), generator.DefaultTitle(cfg.Root))
	if filepath.Base(cfg.Title) != cfg.Title {
		return nil, fmt.Errorf("playlist name %q must not contain a path separator", cfg.Title)
	}
	if err := playlist.CheckTitle(cfg.Title); err != nil {
		return nil, fmt.Errorf("playlist name: %w", err)
	}
	cfg.OutputPath = generator.OutputPath(cfg.OutputDir, cfg.Title)

	return cfg, nil
}

// Log prints the resolved configuration at debug level.
func (c *Config) Log() {
	logging.Debug("------------------------------------------------------------")
	logging.Debug("CONFIGURATION")
	logging.Debug("------------------------------------------------------------")
	logging.Debug("  Root:           %s", c.Root)
	logging.Debug("  Title:          %s", c.Title)
	logging.Debug("  Output:         %s", c.OutputPath)
	logging.Debug("  Workers:        %d", c.Workers)
	logging.Debug("  Probe timeout:  %v", c.ProbeTimeout)
	logging.Debug("  ffprobe:        %s", c.FFprobe)
	logging.Debug("  Duration cache: %s", orDisabled(c.CacheDB))
	logging.Debug("  Compact:        %v", c.Compact)
	logging.Debug("  Metrics file:   %s", orDisabled(c.MetricsFile))
	logging.Debug("  Log level:      %s", logging.GetLevel())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func orDisabled(s string) string {
	if s == "" {
		return "DISABLED"
	}
	return s
}
