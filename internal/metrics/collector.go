package metrics

import (
	"os"
	"time"

	"media-converter/internal/logging"
)

// StatsProvider interface for collecting library stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current library statistics
type Stats struct {
	AudioAssets        int
	VideoAssets        int
	TotalFormats       int
	StreamsPreparation int
	StreamsInProgress  int
	StreamsSuccessful  int
	StreamsFailure     int
}

// DBMetricsUpdater pushes connection pool stats into the exported
// gauges; implemented by the database package.
type DBMetricsUpdater interface {
	UpdateDBMetrics()
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	dbUpdater     DBMetricsUpdater
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// SetDBMetricsUpdater registers the database connection stats source.
func (c *Collector) SetDBMetricsUpdater(u DBMetricsUpdater) {
	c.dbUpdater = u
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
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
	if c.dbUpdater != nil {
		c.dbUpdater.UpdateDBMetrics()
	}
	c.collectDBSize()

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	AssetsTotal.WithLabelValues("audio").Set(float64(stats.AudioAssets))
	AssetsTotal.WithLabelValues("video").Set(float64(stats.VideoAssets))
	FormatsTotal.Set(float64(stats.TotalFormats))
	StreamsTotal.WithLabelValues("preparation").Set(float64(stats.StreamsPreparation))
	StreamsTotal.WithLabelValues("in_progress").Set(float64(stats.StreamsInProgress))
	StreamsTotal.WithLabelValues("successful").Set(float64(stats.StreamsSuccessful))
	StreamsTotal.WithLabelValues("failure").Set(float64(stats.StreamsFailure))

	logging.Debug("Metrics collected: audio=%d, video=%d, formats=%d, successful=%d",
		stats.AudioAssets, stats.VideoAssets, stats.TotalFormats, stats.StreamsSuccessful)
}

func (c *Collector) collectDBSize() {
	if c.dbPath == "" {
		return
	}

	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}

	for label, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			// WAL and SHM only exist while connections are open.
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
