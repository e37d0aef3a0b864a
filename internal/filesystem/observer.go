package filesystem

// Observer records filesystem operation metrics. Implementations are provided
// by the metrics package to break the import cycle between filesystem and metrics.
type Observer interface {
	// ObserveOperation records duration and error status for a filesystem operation.
	// operation is "stat" or "write".
	ObserveOperation(operation string, durationSeconds float64, err error)

	// ObserveRetryAttempt records one backoff-and-retry after an ESTALE error.
	ObserveRetryAttempt(operation string)
	// ObserveRetryFailure records an operation that exhausted its retries.
	ObserveRetryFailure(operation string)
}

// defaultObserver is the package-level observer set at startup.
// If nil, metric recording is silently skipped (safe for tests).
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
// Call this once at startup after creating the observer implementation.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observeOperation(operation string, durationSeconds float64, err error) {
	if defaultObserver != nil {
		defaultObserver.ObserveOperation(operation, durationSeconds, err)
	}
}

func observeRetryAttempt(operation string) {
	if defaultObserver != nil {
		defaultObserver.ObserveRetryAttempt(operation)
	}
}

func observeRetryFailure(operation string) {
	if defaultObserver != nil {
		defaultObserver.ObserveRetryFailure(operation)
	}
}
