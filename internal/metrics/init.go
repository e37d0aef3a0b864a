package metrics

// BuildStatuses are the label values of BuildsTotal.
var BuildStatuses = []string{"success", "scan", "probe", "serialize", "write", "unknown"}

// BuildStages are the label values of BuildStageDuration.
var BuildStages = []string{"scan", "probe", "serialize", "write", "total"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range BuildStatuses {
		BuildsTotal.WithLabelValues(status)
	}
	for _, stage := range BuildStages {
		BuildStageDuration.WithLabelValues(stage)
	}

	for _, result := range []string{"success", "not_found", "prober_missing", "timeout",
		"canceled", "probe_failed", "no_duration", "invalid_duration"} {
		ProbeTotal.WithLabelValues(result)
	}

	for _, op := range []string{"stat", "write"} {
		FilesystemOperationDuration.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
	}

	for _, op := range []string{"initialize_schema", "lookup_duration", "store_duration", "prune", "count"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, file := range []string{"main", "wal"} {
		DBSizeBytes.WithLabelValues(file)
	}
}
