package metrics

import (
	"time"

	"playlist-gen/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current duration cache statistics
type Stats struct {
	CacheEntries int64
	MainBytes    int64
	WALBytes     int64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// CollectOnce updates the gauges immediately, for short-lived processes
// that never Start the loop.
func (c *Collector) CollectOnce() {
	c.collect()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	DurationCacheEntries.Set(float64(stats.CacheEntries))
	DBSizeBytes.WithLabelValues("main").Set(float64(stats.MainBytes))
	DBSizeBytes.WithLabelValues("wal").Set(float64(stats.WALBytes))

	logging.Debug("Metrics collected: cache entries=%d, db=%d bytes, wal=%d bytes",
		stats.CacheEntries, stats.MainBytes, stats.WALBytes)
}
