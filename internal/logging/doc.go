// Package logging provides a simple leveled logging interface for the
// playlist generator and the playlistd daemon.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-file probe results)
//   - INFO: General operational messages (build start/finish)
//   - WARN: Warning conditions (cache bypassed, retries)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The initial level comes from the DEBUG or LOG_LEVEL environment variables.
// Command line tools may override it with SetLevel once flags are parsed.
package logging
