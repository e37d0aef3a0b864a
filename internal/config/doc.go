// Package config resolves configuration for the playlist-gen CLI and the
// playlistd daemon, and provides the startup and shutdown log sections
// both binaries print.
//
// # CLI
//
// [Resolve] applies explicit flag > environment > derived default, once,
// before any work starts:
//
//   - PLAYLIST_DIR: Root directory to scan (default: current directory)
//   - PLAYLIST_NAME: Playlist name (default: base name of the root)
//   - PLAYLIST_OUTPUT_DIR: Where {name}.xspf is written (default: current directory)
//   - PLAYLIST_WORKERS: Concurrent probes (default: PROBE_WORKERS, else 2 per CPU)
//   - PLAYLIST_PROBE_TIMEOUT: Per-file ffprobe timeout as Go duration (default: 30s)
//   - PLAYLIST_FFPROBE: ffprobe binary (default: ffprobe from PATH)
//   - PLAYLIST_CACHE_DB: SQLite duration cache path (default: disabled)
//   - PLAYLIST_COMPACT: Write compact XML (default: false)
//   - PLAYLIST_METRICS_FILE: Prometheus textfile written after the run (default: none)
//
// # Daemon
//
// [LoadServerConfig] reads playlistd's environment:
//
//   - MEDIA_DIR: Directory that playlist paths are resolved against (default: /media)
//   - PORT: HTTP port (default: 8080)
//   - CACHE_DB: SQLite duration cache path (default: /database/durations.db, "off" disables)
//   - CACHE_MAX_AGE: Prune cache entries older than this at startup (default: 0, never)
//   - PROBE_TIMEOUT: Per-file ffprobe timeout (default: 30s)
//   - PROBE_WORKERS: Concurrent probes per build (default: 2 per CPU)
//   - FFPROBE_BIN: ffprobe binary (default: ffprobe)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//
//	go build -ldflags "-X playlist-gen/internal/config.Version=1.2.0 -X playlist-gen/internal/config.Commit=$(git rev-parse --short HEAD)"
package config
