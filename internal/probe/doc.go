/*
Package probe resolves the playback duration of media files.

The playlist builder depends only on the Resolver interface:

	type Resolver interface {
	    Resolve(ctx context.Context, path string) (int64, error)
	}

which returns a non-negative millisecond count or an error. Every failure
produced here is a *ResolutionError carrying the offending path and a short
reason code, so callers can report exactly which file broke a build.

# Implementations

  - FFprobe runs the ffprobe binary with a per-file timeout and reads
    format.duration from its JSON output. A hung probe is killed when the
    timeout expires and reported with reason "timeout".
  - Cached consults a Store keyed by path, size and modification time before
    delegating to another Resolver, and records fresh results. Store failures
    are logged and bypassed; they never fail a build.
  - Func adapts an ordinary function, mostly for tests.

Resolvers are called concurrently by the builder and must be safe for
concurrent use. Each call is one-shot: nothing in this package retries.
*/
package probe
