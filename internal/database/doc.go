// Package database provides the SQLite duration cache for playlist-gen.
//
// Probing a large library with ffprobe is slow, so resolved durations are
// stored keyed by absolute path together with the file size and modification
// time observed at probe time. A cached row is only returned while both still
// match; a changed file is re-probed and its row replaced.
//
// The database uses WAL mode so that playlistd can serve concurrent requests
// while a build is writing new entries.
package database
