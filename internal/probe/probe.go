package probe

import (
	"context"
	"fmt"
)

// Reason codes carried by ResolutionError.
const (
	ReasonNotFound        = "not_found"
	ReasonProberMissing   = "prober_missing"
	ReasonTimeout         = "timeout"
	ReasonCanceled        = "canceled"
	ReasonProbeFailed     = "probe_failed"
	ReasonNoDuration      = "no_duration"
	ReasonInvalidDuration = "invalid_duration"
)

// Resolver returns the duration of the media file at path in milliseconds.
type Resolver interface {
	Resolve(ctx context.Context, path string) (int64, error)
}

// Func adapts a function to the Resolver interface.
type Func func(ctx context.Context, path string) (int64, error)

// Resolve calls f. A negative result is reported as a ResolutionError.
func (f Func) Resolve(ctx context.Context, path string) (int64, error) {
	ms, err := f(ctx, path)
	if err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, &ResolutionError{
			Path:   path,
			Reason: ReasonInvalidDuration,
			Err:    fmt.Errorf("negative duration %d ms", ms),
		}
	}
	return ms, nil
}

// ResolutionError reports a file whose duration could not be determined.
type ResolutionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot determine duration of %q (%s): %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot determine duration of %q (%s)", e.Path, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
