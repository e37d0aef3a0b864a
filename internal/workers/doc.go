/*
Package workers sizes the duration probe pool.

Probing a media file is dominated by waiting on an ffprobe child process, so
the pool is sized as an I/O-bound workload: two workers per available CPU,
capped by a limit. The CPU count comes from runtime.GOMAXPROCS(0) rather than
runtime.NumCPU(), so container CPU limits are respected (Go 1.19+ sets
GOMAXPROCS from the cgroup quota).

# Precedence

	workers.Resolve(requested, limit)

  - requested > 0: an explicit value (e.g. the -workers flag) wins
  - PROBE_WORKERS environment variable, if a positive integer
  - ForIO(limit): derived from GOMAXPROCS

The limit caps every source, including the override. A limit of 0 means no cap.

Setting PROBE_WORKERS=1 restores strictly sequential probing, which is the
reference behavior and useful when a directory sits on a slow network mount.
*/
package workers
