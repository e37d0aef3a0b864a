package probe

import (
	"context"
	"os"
	"sync/atomic"

	"playlist-gen/internal/logging"
	"playlist-gen/internal/metrics"
)

// Store persists probed durations. A lookup only hits when size and
// modification time still match what was recorded.
type Store interface {
	LookupDuration(ctx context.Context, path string, size, modTime int64) (ms int64, found bool, err error)
	StoreDuration(ctx context.Context, path string, size, modTime, ms int64) error
}

// Cached wraps a Resolver with a duration Store.
type Cached struct {
	store Store
	next  Resolver

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached creates a caching resolver in front of next.
func NewCached(store Store, next Resolver) *Cached {
	return &Cached{store: store, next: next}
}

// Resolve implements Resolver.
func (c *Cached) Resolve(ctx context.Context, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		// Let the underlying resolver produce the not-found error.
		return c.next.Resolve(ctx, path)
	}
	size, modTime := info.Size(), info.ModTime().UnixNano()

	ms, found, err := c.store.LookupDuration(ctx, path, size, modTime)
	switch {
	case err != nil:
		logging.Warn("Duration cache lookup failed for %s, probing directly: %v", path, err)
	case found:
		c.hits.Add(1)
		metrics.ProbeCacheHits.Inc()
		logging.Debug("Duration cache hit for %s: %d ms", path, ms)
		return ms, nil
	}

	c.misses.Add(1)
	metrics.ProbeCacheMisses.Inc()

	ms, err = c.next.Resolve(ctx, path)
	if err != nil {
		return 0, err
	}

	if err := c.store.StoreDuration(ctx, path, size, modTime, ms); err != nil {
		logging.Warn("Failed to cache duration for %s: %v", path, err)
	}
	return ms, nil
}

// Stats returns the number of cache hits and misses so far.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
