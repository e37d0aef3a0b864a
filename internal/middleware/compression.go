package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"playlist-gen/internal/logging"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// CompressibleTypes lists media types that are compressed
	CompressibleTypes []string
}

// DefaultCompressionConfig returns defaults for playlist responses.
// /metrics is left alone; promhttp negotiates its own encoding.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		CompressibleTypes: []string{
			"application/xspf+xml",
			"application/json",
		},
	}
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

// bufferedResponseWriter holds the whole response until the handler returns.
// Playlist bodies are rendered in memory anyway, so nothing is streamed.
type bufferedResponseWriter struct {
	http.ResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func (b *bufferedResponseWriter) WriteHeader(code int) {
	if b.statusCode == 0 {
		b.statusCode = code
	}
}

func (b *bufferedResponseWriter) Write(p []byte) (int, error) {
	if b.statusCode == 0 {
		b.statusCode = http.StatusOK
	}
	return b.buf.Write(p)
}

// Compression returns middleware that gzips compressible responses for
// clients that accept it.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsGzip(r) {
				next.ServeHTTP(w, r)
				return
			}

			bw := &bufferedResponseWriter{ResponseWriter: w}
			next.ServeHTTP(bw, r)
			if bw.statusCode == 0 {
				bw.statusCode = http.StatusOK
			}

			h := w.Header()
			if bw.buf.Len() < config.MinSize || h.Get("Content-Encoding") != "" ||
				!compressible(h.Get("Content-Type"), config.CompressibleTypes) {
				w.WriteHeader(bw.statusCode)
				if _, err := w.Write(bw.buf.Bytes()); err != nil {
					logging.Debug("Failed to write response for %s: %v", r.URL.Path, err)
				}
				return
			}

			h.Del("Content-Length")
			h.Set("Content-Encoding", "gzip")
			h.Add("Vary", "Accept-Encoding")
			w.WriteHeader(bw.statusCode)

			gz := gzipWriterPool.Get().(*gzip.Writer)
			defer gzipWriterPool.Put(gz)
			gz.Reset(w)
			if _, err := gz.Write(bw.buf.Bytes()); err != nil {
				logging.Debug("Failed to write compressed response for %s: %v", r.URL.Path, err)
			}
			if err := gz.Close(); err != nil {
				logging.Debug("Failed to finish compressed response for %s: %v", r.URL.Path, err)
			}
		})
	}
}

// acceptsGzip reports whether gzip (or *) is listed with a non-zero
// quality. An explicit gzip entry wins over *.
func acceptsGzip(r *http.Request) bool {
	gzipQ, starQ := -1.0, -1.0
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		params := strings.Split(part, ";")
		enc := strings.TrimSpace(params[0])
		q := 1.0
		for _, p := range params[1:] {
			name, value, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(name), "q") {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				parsed = 0
			}
			q = parsed
		}
		switch {
		case strings.EqualFold(enc, "gzip"):
			gzipQ = q
		case enc == "*":
			starQ = q
		}
	}
	if gzipQ >= 0 {
		return gzipQ > 0
	}
	return starQ > 0
}

func compressible(contentType string, types []string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, t := range types {
		if mediaType == t {
			return true
		}
	}
	return false
}
