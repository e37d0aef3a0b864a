package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"playlist-gen/internal/filesystem"
	"playlist-gen/internal/fileuri"
	"playlist-gen/internal/logging"
)

// Entry is one enumerated file.
type Entry struct {
	// Path is the file path as produced by the walk (root joined with the
	// relative path), suitable for handing to a duration resolver.
	Path string
	// Location is the file: URI of Path.
	Location string
}

// Scan walks root and returns its files in walk order.
func Scan(ctx context.Context, root string) ([]Entry, error) {
	start := time.Now()

	walkRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, 64)
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return &AccessError{Path: path, Err: walkErr}
		}
		if d.IsDir() {
			return nil
		}

		entries = append(entries, Entry{
			Path:     path,
			Location: fileuri.Encode(path),
		})
		return nil
	})
	if err != nil {
		logging.Debug("Scan of %s aborted after %d files: %v", root, len(entries), err)
		return nil, err
	}

	logging.Debug("Scanned %s: %d files in %v", root, len(entries), time.Since(start))
	return entries, nil
}

// checkRoot validates root and returns the path to hand to WalkDir. A root
// that is itself a symlink to a directory is walked through the link.
func checkRoot(root string) (string, error) {
	info, err := filesystem.StatWithRetry(root, filesystem.DefaultRetryConfig())
	if err != nil {
		if os.IsNotExist(err) {
			return "", &InvalidRootError{Root: root, Err: err}
		}
		return "", &AccessError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return "", &InvalidRootError{Root: root, Err: ErrNotDirectory}
	}

	if linfo, err := os.Lstat(root); err == nil && linfo.Mode()&os.ModeSymlink != 0 {
		return root + string(filepath.Separator), nil
	}
	return root, nil
}
