package database

import (
	"context"
	"time"

	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// GetStats returns library counts for the metrics collector.
// Implements metrics.StatsProvider.
func (d *Database) GetStats() metrics.Stats {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var stats metrics.Stats

	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN kind = 'audio' THEN 1 END),
			COUNT(CASE WHEN kind = 'video' THEN 1 END)
		FROM assets`).Scan(&stats.AudioAssets, &stats.VideoAssets)
	if err != nil {
		logging.Warn("failed to collect asset stats: %v", err)
		return stats
	}

	err = d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM formats`).Scan(&stats.TotalFormats)
	if err != nil {
		logging.Warn("failed to collect format stats: %v", err)
		return stats
	}

	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN status = 0 THEN 1 END),
			COUNT(CASE WHEN status = 1 THEN 1 END),
			COUNT(CASE WHEN status = 2 THEN 1 END),
			COUNT(CASE WHEN status = 3 THEN 1 END)
		FROM streams`).Scan(
		&stats.StreamsPreparation, &stats.StreamsInProgress,
		&stats.StreamsSuccessful, &stats.StreamsFailure)
	if err != nil {
		logging.Warn("failed to collect stream stats: %v", err)
	}

	return stats
}
