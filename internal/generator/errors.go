package generator

import (
	"errors"
	"fmt"

	"playlist-gen/internal/playlist"
	"playlist-gen/internal/probe"
	"playlist-gen/internal/scanner"
)

// Build stages, as reported by Stage.
const (
	StageScan      = "scan"
	StageProbe     = "probe"
	StageSerialize = "serialize"
	StageWrite     = "write"
	StageUnknown   = "unknown"
)

// WriteError reports a failure to store the rendered playlist.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write playlist %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Stage returns the build stage that produced err.
func Stage(err error) string {
	var (
		invalidRoot *scanner.InvalidRootError
		access      *scanner.AccessError
		resolution  *probe.ResolutionError
		serialize   *playlist.SerializationError
		write       *WriteError
	)

	switch {
	case errors.As(err, &write):
		return StageWrite
	case errors.As(err, &invalidRoot), errors.As(err, &access):
		return StageScan
	case errors.As(err, &resolution):
		return StageProbe
	case errors.As(err, &serialize):
		return StageSerialize
	default:
		return StageUnknown
	}
}
