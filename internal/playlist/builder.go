package playlist

import (
	"context"
	"errors"
	"sync"

	"playlist-gen/internal/logging"
	"playlist-gen/internal/metrics"
	"playlist-gen/internal/probe"
	"playlist-gen/internal/scanner"
	"playlist-gen/internal/workers"
)

// Builder resolves durations and assembles Documents.
type Builder struct {
	// Resolver supplies the duration of each file.
	Resolver probe.Resolver

	// Workers bounds concurrent resolutions. Zero derives the count from
	// PROBE_WORKERS or the CPU count; one resolves sequentially.
	Workers int

	// Progress, if set, is called after every successful resolution.
	Progress func(done, total int)
}

type resolveResult struct {
	index int
	ms    int64
	err   error
}

// Build resolves the duration of every entry and returns the Document.
// The first resolution failure aborts the build and is returned as a
// *probe.ResolutionError.
func (b *Builder) Build(ctx context.Context, title string, entries []scanner.Entry) (*Document, error) {
	if b.Resolver == nil {
		return nil, errors.New("playlist builder has no duration resolver")
	}

	durations, err := b.resolveAll(ctx, entries)
	if err != nil {
		return nil, err
	}
	return NewDocument(title, entries, durations), nil
}

func (b *Builder) resolveAll(ctx context.Context, entries []scanner.Entry) ([]int64, error) {
	total := len(entries)
	durations := make([]int64, total)
	if total == 0 {
		return durations, nil
	}

	numWorkers := workers.Resolve(b.Workers, total)
	metrics.ProbeWorkers.Set(float64(numWorkers))

	if numWorkers <= 1 {
		return durations, b.resolveSequential(ctx, entries, durations)
	}

	logging.Debug("Resolving %d durations with %d workers", total, numWorkers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan resolveResult, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				ms, err := b.resolveOne(ctx, entries[i].Path)
				results <- resolveResult{index: i, ms: ms, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range entries {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	done := 0
	for r := range results {
		if firstErr != nil {
			continue
		}
		if r.err != nil {
			firstErr = r.err
			cancel()
			continue
		}
		durations[r.index] = r.ms
		done++
		if b.Progress != nil {
			b.Progress(done, total)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if done < total {
		return nil, ctx.Err()
	}
	return durations, nil
}

func (b *Builder) resolveSequential(ctx context.Context, entries []scanner.Entry, durations []int64) error {
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		ms, err := b.resolveOne(ctx, e.Path)
		if err != nil {
			return err
		}
		durations[i] = ms
		if b.Progress != nil {
			b.Progress(i+1, len(entries))
		}
	}
	return nil
}

// resolveOne guarantees every failure names the file.
func (b *Builder) resolveOne(ctx context.Context, path string) (int64, error) {
	ms, err := b.Resolver.Resolve(ctx, path)
	if err != nil {
		var resErr *probe.ResolutionError
		if errors.As(err, &resErr) {
			return 0, err
		}
		reason := probe.ReasonProbeFailed
		if errors.Is(err, context.Canceled) {
			reason = probe.ReasonCanceled
		} else if errors.Is(err, context.DeadlineExceeded) {
			reason = probe.ReasonTimeout
		}
		return 0, &probe.ResolutionError{Path: path, Reason: reason, Err: err}
	}
	if ms < 0 {
		return 0, &probe.ResolutionError{Path: path, Reason: probe.ReasonInvalidDuration}
	}
	return ms, nil
}
