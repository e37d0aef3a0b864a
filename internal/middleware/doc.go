// Package middleware provides HTTP middleware for playlistd.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labeled by route template
//   - gzip compression of playlist and JSON responses
package middleware
