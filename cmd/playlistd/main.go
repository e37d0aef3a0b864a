package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playlist-gen/internal/config"
	"playlist-gen/internal/database"
	"playlist-gen/internal/filesystem"
	"playlist-gen/internal/generator"
	"playlist-gen/internal/handlers"
	"playlist-gen/internal/logging"
	"playlist-gen/internal/metrics"
	"playlist-gen/internal/middleware"
	"playlist-gen/internal/playlist"
	"playlist-gen/internal/probe"
)

const (
	metricsInterval = time.Minute
	pruneInterval   = time.Hour
)

func main() {
	startTime := time.Now()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(config.Version, config.Commit, runtime.Version())
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	var db *database.Database
	if cfg.CacheDB != "" {
		dbStart := time.Now()
		db, err = database.New(context.Background(), cfg.CacheDB)
		if err != nil {
			logging.Fatal("Failed to open duration cache: %v", err)
		}
		defer db.Close()

		pruneCache(db, cfg.CacheMaxAge)
		entries, err := db.Count(context.Background())
		if err != nil {
			logging.Warn("Failed to count cached durations: %v", err)
		}
		config.LogCacheInit(entries, time.Since(dbStart))
	}

	ffprobe := probe.NewFFprobe(cfg.FFprobe, cfg.ProbeTimeout)
	config.LogProberInit(cfg.FFprobe, ffprobe.Check())

	gen := &generator.Generator{
		Resolver: ffprobe,
		Workers:  cfg.Workers,
		Format:   playlist.FormatIndent,
	}

	var collector *metrics.Collector
	stopPrune := make(chan struct{})
	if db != nil {
		gen.Resolver = probe.NewCached(db, ffprobe)
		gen.History = db

		collector = metrics.NewCollector(db, metricsInterval)
		collector.Start()

		if cfg.CacheMaxAge > 0 {
			go func() {
				ticker := time.NewTicker(pruneInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						pruneCache(db, cfg.CacheMaxAge)
					case <-stopPrune:
						return
					}
				}
			}()
		}
	}

	h := handlers.New(cfg.MediaDir, gen, db, ffprobe)

	router := setupRouter(h)
	config.LogHTTPRoutes(router, cfg.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)

	// Large directories can take minutes to probe, so writes are not bounded.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		handleShutdown(srv, collector, stopPrune)
		close(done)
	}()

	config.LogServerStarted(cfg.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/playlist/{path:.*}", h.GetPlaylist).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func pruneCache(db *database.Database, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	if _, err := db.Prune(context.Background(), time.Now().Add(-maxAge)); err != nil {
		logging.Warn("Failed to prune duration cache: %v", err)
	}
}

func handleShutdown(srv *http.Server, collector *metrics.Collector, stopPrune chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	config.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(stopPrune)
	if collector != nil {
		collector.Stop()
		config.LogShutdownStepComplete("Metrics collector stopped")
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		config.LogShutdownStepComplete("HTTP server stopped")
	}

	config.LogShutdownComplete()
}
