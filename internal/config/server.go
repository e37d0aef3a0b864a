package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"playlist-gen/internal/logging"
	"playlist-gen/internal/workers"
)

// CacheDisabled turns the daemon's duration cache off when used as CACHE_DB.
const CacheDisabled = "off"

// ServerConfig holds playlistd configuration
type ServerConfig struct {
	MediaDir        string
	Port            string
	CacheDB         string
	CacheMaxAge     time.Duration
	ProbeTimeout    time.Duration
	Workers         int
	FFprobe         string
	LogHealthChecks bool
}

// LoadServerConfig loads and validates configuration from environment variables
func LoadServerConfig() (*ServerConfig, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	mediaDir := getEnv("MEDIA_DIR", "/media")
	port := getEnv("PORT", "8080")
	cacheDB := getEnv("CACHE_DB", "/database/durations.db")
	cacheMaxAge := getEnvDuration("CACHE_MAX_AGE", 0)
	probeTimeout := getEnvDuration("PROBE_TIMEOUT", DefaultProbeTimeout)
	ffprobe := getEnv("FFPROBE_BIN", DefaultFFprobe)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	numWorkers := workers.ForIO(0)

	logging.Info("  MEDIA_DIR:           %s", mediaDir)
	logging.Info("  PORT:                %s", port)
	logging.Info("  CACHE_DB:            %s", cacheDB)
	logging.Info("  CACHE_MAX_AGE:       %v", cacheMaxAge)
	logging.Info("  PROBE_TIMEOUT:       %v", probeTimeout)
	logging.Info("  PROBE_WORKERS:       %d", numWorkers)
	logging.Info("  FFPROBE_BIN:         %s", ffprobe)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if probeTimeout == 0 {
		logging.Warn("  PROBE_TIMEOUT of 0 disables the per-file limit")
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	mediaDir, err := filepath.Abs(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	logging.Info("  Media directory (absolute): %s", mediaDir)

	if err := checkMediaDirectory(mediaDir); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}

	if strings.EqualFold(cacheDB, CacheDisabled) {
		cacheDB = ""
		logging.Info("  Duration cache: DISABLED")
	} else {
		cacheDB, err = filepath.Abs(cacheDB)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cache database path: %w", err)
		}
		logging.Info("  Duration cache (absolute): %s", cacheDB)
	}

	return &ServerConfig{
		MediaDir:        mediaDir,
		Port:            port,
		CacheDB:         cacheDB,
		CacheMaxAge:     cacheMaxAge,
		ProbeTimeout:    probeTimeout,
		Workers:         numWorkers,
		FFprobe:         ffprobe,
		LogHealthChecks: logHealthChecks,
	}, nil
}

// The media directory is mounted, never created.
func checkMediaDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	if logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount, dirCount := 0, 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}
	return nil
}
