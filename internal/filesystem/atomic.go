package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"playlist-gen/internal/logging"
)

// renameFunc is swapped by tests to simulate a failed final rename.
var renameFunc = os.Rename

// PathTypeConflictError reports a destination that exists but is not a
// regular file, e.g. a directory named like the playlist.
type PathTypeConflictError struct {
	Path string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("destination %q is a %s, not a regular file", e.Path, e.Got)
}

// WriteFileAtomic replaces path with data via a same-directory temporary
// file and rename. On error the destination is left as it was.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	start := time.Now()
	defer func() {
		observeOperation("write", time.Since(start).Seconds(), err)
	}()

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	if fi, statErr := os.Lstat(path); statErr == nil {
		if fi.IsDir() {
			return &PathTypeConflictError{Path: path, Got: "directory"}
		}
		if !fi.Mode().IsRegular() && fi.Mode()&os.ModeSymlink == 0 {
			return &PathTypeConflictError{Path: path, Got: fi.Mode().Type().String()}
		}
	} else if !os.IsNotExist(statErr) {
		return statErr
	}

	// Temp file is hidden and in the same directory so rename stays atomic.
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		if !renamed {
			if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
				logging.Warn("failed to remove temporary file %s: %v", tmpName, rmErr)
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := renameFunc(tmpName, path); err != nil {
		return err
	}
	renamed = true

	if err := syncDir(dir); err != nil {
		logging.Debug("directory sync for %s skipped: %v", dir, err)
	}
	return nil
}

func syncDir(dir string) error {
	// Directory Sync is not supported on Windows.
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
