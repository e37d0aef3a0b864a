package handlers

import (
	"net/http"
	"runtime"
	"time"

	"playlist-gen/internal/config"
	"playlist-gen/internal/logging"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	ProberError  string `json:"proberError,omitempty"`
	CacheEntries int64  `json:"cacheEntries"`

	// Last successful build
	LastBuild       string `json:"lastBuild,omitempty"`
	LastBuildID     string `json:"lastBuildId,omitempty"`
	LastBuildTitle  string `json:"lastBuildTitle,omitempty"`
	LastBuildTracks int    `json:"lastBuildTracks"`
	BuildsServed    int64  `json:"buildsServed"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. It is degraded,
// but still 200, while ffprobe is unavailable.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Version:      config.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if h.prober != nil {
		if err := h.prober.Check(); err != nil {
			response.Status = statusDegraded
			response.ProberError = err.Error()
		}
	}

	h.mu.RLock()
	last := h.lastBuild
	response.BuildsServed = h.served
	h.mu.RUnlock()

	if h.db != nil {
		n, err := h.db.Count(r.Context())
		if err != nil {
			logging.Warn("Health check could not count cache entries: %v", err)
		}
		response.CacheEntries = n

		// Fall back to the build recorded by a previous process.
		if last.ID == "" {
			at, id, err := h.db.GetLastBuild(r.Context())
			if err != nil {
				logging.Warn("Health check could not read last build: %v", err)
			}
			last.At, last.ID = at, id
		}
	}

	if !last.At.IsZero() {
		response.LastBuild = last.At.Format(time.RFC3339)
		response.LastBuildID = last.ID
		response.LastBuildTitle = last.Title
		response.LastBuildTracks = last.Tracks
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when ffprobe can be run
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.prober != nil {
		if err := h.prober.Check(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, map[string]string{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	writeJSON(w, map[string]string{
		"status": "ready",
	})
}
