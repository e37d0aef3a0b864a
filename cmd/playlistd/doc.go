// Command playlistd serves XSPF playlists for directories below a media
// root over HTTP.
//
// A request for /playlist/{path} scans MEDIA_DIR/{path}, probes every file
// with ffprobe and returns the playlist as an attachment. Probed durations
// are kept in a SQLite cache so repeated requests only probe new or changed
// files.
//
// Endpoints:
//
//	GET /playlist/{path}   XSPF playlist (?name= overrides the title, ?compact=true)
//	GET /health, /healthz  JSON status with version, uptime and last build
//	GET /livez             liveness probe
//	GET /readyz            readiness probe (ffprobe runnable)
//	GET /version           build information
//	GET /metrics           Prometheus metrics
//
// Environment:
//
//	MEDIA_DIR         - media root (default: /media)
//	PORT              - listen port (default: 8080)
//	CACHE_DB          - duration cache file, or "off" (default: /database/durations.db)
//	CACHE_MAX_AGE     - prune cached durations older than this (default: keep)
//	PROBE_TIMEOUT     - per-file ffprobe timeout (default: 30s)
//	PROBE_WORKERS     - concurrent ffprobe processes (default: 2 per CPU)
//	FFPROBE_BIN       - ffprobe binary (default: ffprobe)
//	LOG_LEVEL         - debug, info, warn or error (default: info)
//	LOG_HEALTH_CHECKS - include health probes in the access log (default: true)
package main
