package generator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"playlist-gen/internal/filesystem"
	"playlist-gen/internal/logging"
	"playlist-gen/internal/metrics"
	"playlist-gen/internal/playlist"
	"playlist-gen/internal/probe"
	"playlist-gen/internal/scanner"
)

// OutputExtension is appended to the playlist name to form the file name.
const OutputExtension = ".xspf"

// History records successful builds. database.Database implements it.
type History interface {
	SetLastBuild(ctx context.Context, t time.Time, buildID string) error
}

// Generator builds playlists.
type Generator struct {
	Resolver probe.Resolver
	Workers  int
	Format   playlist.Format
	Progress func(done, total int)

	// History is optional.
	History History
}

// Result describes a finished build.
type Result struct {
	BuildID       string
	Root          string
	Title         string
	Tracks        int
	TotalDuration time.Duration
	Data          []byte
	// Path is the written file; empty for Render.
	Path    string
	Elapsed time.Duration
}

// DefaultTitle derives a playlist name from the root directory's base name.
func DefaultTitle(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	base := filepath.Base(abs)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "playlist"
	}
	return base
}

// OutputPath returns {dir}/{title}.xspf.
func OutputPath(dir, title string) string {
	return filepath.Join(dir, title+OutputExtension)
}

// Render builds the playlist for root in memory. An empty title defaults to
// DefaultTitle(root).
func (g *Generator) Render(ctx context.Context, root, title string) (*Result, error) {
	return g.run(ctx, root, title, "")
}

// Generate renders the playlist and writes it to outPath. On failure nothing
// is created at outPath and an existing file is left untouched.
func (g *Generator) Generate(ctx context.Context, root, title, outPath string) (*Result, error) {
	return g.run(ctx, root, title, outPath)
}

func (g *Generator) run(ctx context.Context, root, title, outPath string) (*Result, error) {
	start := time.Now()
	if title == "" {
		title = DefaultTitle(root)
	}

	res := &Result{
		BuildID: uuid.NewString(),
		Root:    root,
		Title:   title,
	}
	logging.Info("[%s] Building playlist %q from %s", res.BuildID, title, root)

	err := g.build(ctx, res, outPath)
	res.Elapsed = time.Since(start)
	metrics.BuildStageDuration.WithLabelValues("total").Observe(res.Elapsed.Seconds())

	if err != nil {
		stage := Stage(err)
		metrics.BuildsTotal.WithLabelValues(stage).Inc()
		logging.Error("[%s] Build failed at %s stage after %v: %v", res.BuildID, stage, res.Elapsed, err)
		return nil, err
	}

	metrics.BuildsTotal.WithLabelValues("success").Inc()
	metrics.BuildTracks.Observe(float64(res.Tracks))
	metrics.BuildLastTracks.Set(float64(res.Tracks))
	metrics.BuildLastTimestamp.SetToCurrentTime()

	if g.History != nil {
		if err := g.History.SetLastBuild(ctx, time.Now(), res.BuildID); err != nil {
			logging.Warn("[%s] Failed to record build: %v", res.BuildID, err)
		}
	}

	logging.Info("[%s] Playlist %q: %d tracks, total %v, %d bytes in %v",
		res.BuildID, title, res.Tracks, res.TotalDuration, len(res.Data), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (g *Generator) build(ctx context.Context, res *Result, outPath string) error {
	stageStart := time.Now()
	entries, err := scanner.Scan(ctx, res.Root)
	observeStage(StageScan, stageStart)
	if err != nil {
		return err
	}
	logging.Debug("[%s] Scan found %d files", res.BuildID, len(entries))
	entries = withoutOutput(entries, outPath)

	builder := &playlist.Builder{
		Resolver: g.Resolver,
		Workers:  g.Workers,
		Progress: g.Progress,
	}

	stageStart = time.Now()
	doc, err := builder.Build(ctx, res.Title, entries)
	observeStage(StageProbe, stageStart)
	if err != nil {
		return err
	}

	stageStart = time.Now()
	data, err := playlist.Marshal(doc, g.Format)
	observeStage(StageSerialize, stageStart)
	if err != nil {
		return err
	}

	res.Tracks = len(doc.Tracks)
	res.TotalDuration = doc.TotalDuration()
	res.Data = data

	if outPath == "" {
		return nil
	}

	stageStart = time.Now()
	err = filesystem.WriteFileAtomic(outPath, data, 0o644)
	observeStage(StageWrite, stageStart)
	if err != nil {
		return &WriteError{Path: outPath, Err: err}
	}
	res.Path = outPath
	logging.Debug("[%s] Wrote %s", res.BuildID, outPath)
	return nil
}

// withoutOutput drops a previous run's playlist when outPath lies inside
// the scanned tree.
func withoutOutput(entries []scanner.Entry, outPath string) []scanner.Entry {
	if outPath == "" {
		return entries
	}
	target, err := filepath.Abs(outPath)
	if err != nil {
		return entries
	}
	for i, e := range entries {
		if p, err := filepath.Abs(e.Path); err == nil && p == target {
			logging.Debug("Skipping %s: it is the output file", e.Path)
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}

func observeStage(stage string, start time.Time) {
	metrics.BuildStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
