// Package metrics provides Prometheus instrumentation for playlist-gen and
// playlistd.
//
// All metrics are prefixed with "playlist_gen_" and registered on the
// default registry through promauto.
//
// # Metric Categories
//
// ## Build Metrics
//
//   - BuildsTotal: Counter of playlist builds by outcome ("success" or the
//     failing stage: "scan", "probe", "serialize", "write", "unknown")
//   - BuildStageDuration: Histogram of time spent per stage
//   - BuildTracks: Histogram of tracks per successful build
//   - BuildLastTimestamp / BuildLastTracks: Gauges describing the last success
//
// ## Probe Metrics
//
//   - ProbeTotal: Counter of ffprobe invocations by result ("success" or a
//     probe reason code such as "timeout")
//   - ProbeDuration: Histogram of ffprobe wall time
//   - ProbeCacheHits / ProbeCacheMisses: Duration cache effectiveness
//   - ProbeWorkers: Gauge of the pool size used by the last build
//
// ## Database Metrics
//
//   - DBQueryTotal / DBQueryDuration: Duration cache queries by operation
//   - DurationCacheEntries / DBSizeBytes: Refreshed by the Collector
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver:
//   - FilesystemOperationDuration / FilesystemOperationErrors
//   - FilesystemRetryAttempts / FilesystemRetryFailures (NFS ESTALE)
//
// ## HTTP Metrics (playlistd only)
//
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// # Export
//
// playlistd serves the default registry on /metrics. The CLI is short lived,
// so it can instead dump the registry once with WriteTextfile, in the format
// expected by the node_exporter textfile collector:
//
//	playlist-gen -d /media/Movies -metrics-file /var/lib/node_exporter/playlist.prom
package metrics
