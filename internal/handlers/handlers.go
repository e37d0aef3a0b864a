package handlers

import (
	"sync"
	"time"

	"playlist-gen/internal/database"
	"playlist-gen/internal/generator"
)

// Checker reports whether a dependency is usable. probe.FFprobe implements it.
type Checker interface {
	Check() error
}

// Handlers serves playlist and health endpoints.
type Handlers struct {
	mediaDir  string
	gen       *generator.Generator
	db        *database.Database
	prober    Checker
	startTime time.Time

	mu        sync.RWMutex
	lastBuild buildSummary
	served    int64
}

type buildSummary struct {
	ID     string
	Title  string
	Tracks int
	At     time.Time
}

// New creates the handlers. db and prober may be nil.
func New(mediaDir string, gen *generator.Generator, db *database.Database, prober Checker) *Handlers {
	return &Handlers{
		mediaDir:  mediaDir,
		gen:       gen,
		db:        db,
		prober:    prober,
		startTime: time.Now(),
	}
}

func (h *Handlers) recordBuild(res *generator.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastBuild = buildSummary{ID: res.BuildID, Title: res.Title, Tracks: res.Tracks, At: time.Now()}
	h.served++
}
