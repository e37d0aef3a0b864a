package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"playlist-gen/internal/logging"
	"playlist-gen/internal/metrics"
)

// LookupDuration returns the cached duration for path. found is false when
// there is no row or when size or modTime differ from the recorded values.
func (d *Database) LookupDuration(ctx context.Context, path string, size, modTime int64) (ms int64, found bool, err error) {
	start := time.Now()
	defer func() { recordQuery("lookup_duration", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var cachedSize, cachedModTime int64
	err = d.db.QueryRowContext(ctx,
		"SELECT size, mod_time, duration_ms FROM durations WHERE path = ?", path,
	).Scan(&cachedSize, &cachedModTime, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	if cachedSize != size || cachedModTime != modTime {
		logging.Debug("Stale duration cache entry for %s", path)
		return 0, false, nil
	}
	return ms, true, nil
}

// StoreDuration records the duration of path, replacing any previous row.
func (d *Database) StoreDuration(ctx context.Context, path string, size, modTime, ms int64) (err error) {
	start := time.Now()
	defer func() { recordQuery("store_duration", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO durations (path, size, mod_time, duration_ms, probed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			duration_ms = excluded.duration_ms,
			probed_at = excluded.probed_at
	`, path, size, modTime, ms, time.Now().Unix())
	return err
}

// Prune removes entries probed before olderThan and returns how many were
// deleted.
func (d *Database) Prune(ctx context.Context, olderThan time.Time) (removed int64, err error) {
	start := time.Now()
	defer func() { recordQuery("prune", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, "DELETE FROM durations WHERE probed_at < ?", olderThan.Unix())
	if err != nil {
		return 0, err
	}
	removed, err = res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logging.Info("Pruned %d duration cache entries older than %s", removed, olderThan.Format(time.RFC3339))
	}
	return removed, nil
}

// Count returns the number of cached durations.
func (d *Database) Count(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { recordQuery("count", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM durations").Scan(&n)
	return n, err
}

// GetStats implements metrics.StatsProvider.
func (d *Database) GetStats() metrics.Stats {
	var stats metrics.Stats

	n, err := d.Count(context.Background())
	if err != nil {
		logging.Warn("Failed to count duration cache entries: %v", err)
	}
	stats.CacheEntries = n
	stats.MainBytes = fileSize(d.dbPath)
	stats.WALBytes = fileSize(d.dbPath + "-wal")
	return stats
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
