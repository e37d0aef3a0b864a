package scanner

import (
	"errors"
	"fmt"
)

// ErrNotDirectory is wrapped by InvalidRootError when the root is a file.
var ErrNotDirectory = errors.New("not a directory")

// InvalidRootError reports a root that does not exist or is not a directory.
type InvalidRootError struct {
	Root string
	Err  error
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid playlist root %q: %v", e.Root, e.Err)
}

func (e *InvalidRootError) Unwrap() error { return e.Err }

// AccessError reports a permission or I/O failure during the walk.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot read %q: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }
