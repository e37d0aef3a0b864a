// Package handlers provides the HTTP handlers of playlistd.
//
// It includes handlers for:
//   - Rendering an XSPF playlist for any directory below the media root
//   - Health, liveness and readiness checks
//   - Version and build information
package handlers
