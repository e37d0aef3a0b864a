package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Metadata keys.
const (
	MetadataLastBuild   = "last_build"
	MetadataLastBuildID = "last_build_id"
)

// GetMetadata retrieves a metadata value by key.
// Returns ErrNotFound if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastBuild returns the time and ID of the last successful build.
// Returns zero time if no build was recorded.
func (d *Database) GetLastBuild(ctx context.Context) (time.Time, string, error) {
	value, err := d.GetMetadata(ctx, MetadataLastBuild)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, "", nil
	}
	if err != nil {
		return time.Time{}, "", err
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, "", err
	}

	id, err := d.GetMetadata(ctx, MetadataLastBuildID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return time.Time{}, "", err
	}
	return ts, id, nil
}

// SetLastBuild records a successful build.
func (d *Database) SetLastBuild(ctx context.Context, t time.Time, buildID string) error {
	if err := d.SetMetadata(ctx, MetadataLastBuild, t.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return d.SetMetadata(ctx, MetadataLastBuildID, buildID)
}
