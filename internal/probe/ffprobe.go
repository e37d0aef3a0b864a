package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"playlist-gen/internal/logging"
	"playlist-gen/internal/metrics"
)

const (
	// DefaultBinary is looked up on PATH when FFprobe.Binary is empty.
	DefaultBinary = "ffprobe"
	// DefaultTimeout bounds a single probe.
	DefaultTimeout = 30 * time.Second
)

// FFprobe resolves durations by running ffprobe.
type FFprobe struct {
	// Binary is the ffprobe executable; DefaultBinary when empty.
	Binary string
	// Timeout bounds each probe; zero disables the per-file limit.
	Timeout time.Duration
}

// NewFFprobe creates an ffprobe resolver.
func NewFFprobe(binary string, timeout time.Duration) *FFprobe {
	return &FFprobe{Binary: binary, Timeout: timeout}
}

// ffprobeOutput is the subset of `ffprobe -show_format -print_format json`
// that carries the container duration.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *FFprobe) binary() string {
	if p.Binary == "" {
		return DefaultBinary
	}
	return p.Binary
}

// Check verifies that the ffprobe binary can be found.
func (p *FFprobe) Check() error {
	if _, err := exec.LookPath(p.binary()); err != nil {
		return fmt.Errorf("%s not available: %w", p.binary(), err)
	}
	return nil
}

// Resolve implements Resolver.
func (p *FFprobe) Resolve(ctx context.Context, path string) (int64, error) {
	start := time.Now()
	ms, err := p.resolve(ctx, path)

	result := "success"
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		result = resErr.Reason
	}
	metrics.ProbeTotal.WithLabelValues(result).Inc()
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return 0, err
	}
	logging.Debug("Probed %s: %d ms in %v", path, ms, time.Since(start))
	return ms, nil
}

func (p *FFprobe) resolve(ctx context.Context, path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, &ResolutionError{Path: path, Reason: ReasonNotFound, Err: err}
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		// An explicit protocol keeps "a:b.mp3" from being read as protocol "a".
		"-i", "file:"+path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return 0, &ResolutionError{
				Path:   path,
				Reason: ReasonTimeout,
				Err:    fmt.Errorf("ffprobe did not finish within %v: %w", p.Timeout, context.DeadlineExceeded),
			}
		case ctx.Err() != nil:
			return 0, &ResolutionError{Path: path, Reason: ReasonCanceled, Err: ctx.Err()}
		case errors.Is(err, exec.ErrNotFound):
			return 0, &ResolutionError{Path: path, Reason: ReasonProberMissing, Err: err}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return 0, &ResolutionError{Path: path, Reason: ReasonProbeFailed, Err: fmt.Errorf("ffprobe error: %w", err)}
		}
		return 0, &ResolutionError{Path: path, Reason: ReasonProbeFailed, Err: fmt.Errorf("ffprobe error: %w - %s", err, msg)}
	}

	return parseDuration(path, stdout.Bytes())
}

// parseDuration extracts format.duration (seconds) and converts it to
// milliseconds, truncating sub-millisecond remainders.
func parseDuration(path string, output []byte) (int64, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return 0, &ResolutionError{Path: path, Reason: ReasonProbeFailed, Err: fmt.Errorf("parse ffprobe output: %w", err)}
	}

	raw := strings.TrimSpace(out.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, &ResolutionError{Path: path, Reason: ReasonNoDuration, Err: errors.New("ffprobe reported no duration")}
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ResolutionError{Path: path, Reason: ReasonInvalidDuration, Err: err}
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, &ResolutionError{Path: path, Reason: ReasonInvalidDuration, Err: fmt.Errorf("duration %q out of range", raw)}
	}

	// The epsilon absorbs binary representation error, e.g. 1.001*1000.
	return int64(math.Floor(seconds*1000 + 1e-6)), nil
}
