package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride is the environment variable that overrides the derived count.
const EnvOverride = "PROBE_WORKERS"

// Count returns the number of workers for a given multiplier of available CPUs.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
//
// Can be overridden with the PROBE_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	// Check for manual override first
	if count, ok := envCount(); ok {
		return capAt(count, limit)
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)
	if workers < 1 {
		workers = 1
	}

	return capAt(workers, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
// The limit parameter caps the maximum number of workers.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// Resolve applies explicit > PROBE_WORKERS > derived precedence.
func Resolve(requested, limit int) int {
	if requested > 0 {
		return capAt(requested, limit)
	}
	return ForIO(limit)
}

func envCount() (int, bool) {
	override := os.Getenv(EnvOverride)
	if override == "" {
		return 0, false
	}
	count, err := strconv.Atoi(override)
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}

func capAt(count, limit int) int {
	if limit > 0 && count > limit {
		return limit
	}
	return count
}
