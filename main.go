// Command playlist-gen writes a VLC-compatible XSPF playlist of every file
// below a directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/term"

	"playlist-gen/internal/config"
	"playlist-gen/internal/database"
	"playlist-gen/internal/filesystem"
	"playlist-gen/internal/generator"
	"playlist-gen/internal/logging"
	"playlist-gen/internal/metrics"
	"playlist-gen/internal/playlist"
	"playlist-gen/internal/probe"
)

const progName = "playlist-gen"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, showVersion, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	if showVersion {
		info := config.GetBuildInfo()
		fmt.Fprintf(stdout, "%s %s (commit %s, built %s, %s %s/%s)\n",
			progName, info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		return 0
	}

	logging.SetOutput(stderr)

	cfg, err := config.Resolve(opts)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", progName, err)
		return 2
	}
	cfg.Log()

	metrics.InitializeMetrics()
	metrics.SetAppInfo(config.Version, config.Commit, runtime.Version())
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	err = generate(ctx, cfg, stderr)

	if cfg.MetricsFile != "" {
		if mErr := metrics.WriteTextfile(cfg.MetricsFile); mErr != nil {
			logging.Warn("%v", mErr)
		}
	}

	if err != nil {
		fmt.Fprintf(stderr, "%s: %s failed: %v\n", progName, generator.Stage(err), err)
		return 1
	}
	return 0
}

func generate(ctx context.Context, cfg *config.Config, stderr io.Writer) error {
	ffprobe := probe.NewFFprobe(cfg.FFprobe, cfg.ProbeTimeout)

	gen := &generator.Generator{
		Resolver: ffprobe,
		Workers:  cfg.Workers,
		Format:   playlist.FormatIndent,
	}
	if cfg.Compact {
		gen.Format = playlist.FormatCompact
	}

	if cfg.CacheDB != "" {
		db, err := database.New(ctx, cfg.CacheDB)
		if err != nil {
			return fmt.Errorf("open duration cache: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Warn("Failed to close duration cache: %v", err)
			}
		}()

		cached := probe.NewCached(db, ffprobe)
		gen.Resolver = cached
		gen.History = db
		defer func() {
			hits, misses := cached.Stats()
			logging.Debug("Duration cache: %d hits, %d misses", hits, misses)
			metrics.NewCollector(db, time.Minute).CollectOnce()
		}()
	}

	progress := newProgress(stderr)
	if progress != nil {
		gen.Progress = progress.update
		defer progress.finish()
	}

	_, err := gen.Generate(ctx, cfg.Root, cfg.Title, cfg.OutputPath)
	return err
}

func parseFlags(args []string, stderr io.Writer) (config.Options, bool, error) {
	var (
		opts        config.Options
		showVersion bool
	)

	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	for _, name := range []string{"d", "directory"} {
		fs.StringVar(&opts.Directory, name, "", "directory to scan (default: current directory, or $"+config.EnvDirectory+")")
	}
	for _, name := range []string{"f", "file"} {
		fs.StringVar(&opts.Name, name, "", "playlist name without extension (default: directory name, or $"+config.EnvName+")")
	}
	for _, name := range []string{"o", "output-dir"} {
		fs.StringVar(&opts.OutputDir, name, "", "directory for {name}.xspf (default: current directory, or $"+config.EnvOutputDir+")")
	}
	fs.IntVar(&opts.Workers, "workers", 0, "concurrent ffprobe processes (default: $"+config.EnvWorkers+", $PROBE_WORKERS or 2 per CPU)")
	fs.DurationVar(&opts.ProbeTimeout, "timeout", 0, "per-file ffprobe timeout (default: 30s, or $"+config.EnvProbeTimeout+")")
	fs.StringVar(&opts.FFprobe, "ffprobe", "", "ffprobe binary (default: ffprobe, or $"+config.EnvFFprobe+")")
	fs.StringVar(&opts.CacheDB, "cache", "", "SQLite duration cache file (default: disabled, or $"+config.EnvCacheDB+")")
	fs.BoolVar(&opts.Compact, "compact", false, "write XML without indentation")
	fs.StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-d directory] [-f name] [-o output-dir] [options]\n\n", progName)
		fmt.Fprintln(fs.Output(), "Writes {name}.xspf listing every file below directory with its duration.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, false, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "%s: unexpected argument %q\n", progName, fs.Arg(0))
		fs.Usage()
		return opts, false, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, showVersion, nil
}

// progress draws a single updating line on a terminal.
type progress struct {
	w     io.Writer
	start time.Time
	drawn bool
}

// newProgress returns nil unless w is a terminal.
func newProgress(w io.Writer) *progress {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return &progress{w: w, start: time.Now()}
}

func (p *progress) update(done, total int) {
	p.drawn = true
	fmt.Fprintf(p.w, "\rProbing %d/%d files (%v)", done, total, time.Since(p.start).Round(time.Second))
}

func (p *progress) finish() {
	if p.drawn {
		fmt.Fprintln(p.w)
	}
}
