/*
Package filesystem provides the filesystem primitives the playlist generator
relies on: stat with retry for NFS stale file handles, and atomic file
replacement for the finished playlist.

# Stat with retry

Media libraries frequently live on NFS. A stale file handle (ESTALE) on the
root directory is transient and is retried with exponential backoff:

	info, err := filesystem.StatWithRetry(root, filesystem.DefaultRetryConfig())

Defaults: 3 retries, 50ms initial backoff, 500ms cap. Any other error fails
immediately. This is transport-level resilience; a failed build is never
retried.

# Atomic writes

WriteFileAtomic writes to a hidden temporary file in the destination
directory, fsyncs it, and renames it over the target. A failure at any point
removes the temporary file and leaves whatever was at the target untouched,
so a reader never sees a truncated playlist:

	err := filesystem.WriteFileAtomic("/out/Movies.xspf", data, 0o644)

The directory is fsynced on a best-effort basis after the rename.

# Metrics

Operations report through an Observer registered with SetObserver. The
metrics package supplies the Prometheus implementation; when no observer is
set nothing is recorded, which keeps tests free of global state.
*/
package filesystem
