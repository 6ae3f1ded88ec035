package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when a requested row does not exist, or
// when an update targeted a row deleted by another actor.
var ErrNotFound = errors.New("record not found")

// Database manages all persistence for the conversion pipeline.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens (creating if necessary) the database at dbPath. The
// parent directory must already exist and be writable; use
// startup.LoadConfig to validate directories before calling this.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL keeps readers unblocked while job workers write status
	// transitions; busy_timeout prevents "database is locked" errors
	// under concurrent job completion.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	-- Ingested source files
	CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		file TEXT NOT NULL,
		preview TEXT NOT NULL DEFAULT '',
		bitrate INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		audio_codec TEXT,
		audio_bitrate INTEGER,
		audio_channels INTEGER,
		video_codec TEXT,
		video_bitrate INTEGER,
		video_width INTEGER,
		video_height INTEGER,
		date_added INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_assets_kind ON assets(kind);
	CREATE INDEX IF NOT EXISTS idx_assets_slug ON assets(slug);

	-- Target encoding specifications
	CREATE TABLE IF NOT EXISTS formats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		container TEXT NOT NULL,
		audio_codec TEXT NOT NULL DEFAULT '',
		audio_bitrate INTEGER NOT NULL DEFAULT 0,
		audio_channels INTEGER NOT NULL DEFAULT 0,
		audio_codec_params TEXT NOT NULL DEFAULT '',
		video_codec TEXT NOT NULL DEFAULT '',
		video_bitrate INTEGER NOT NULL DEFAULT 0,
		video_width INTEGER NOT NULL DEFAULT 0,
		video_height INTEGER NOT NULL DEFAULT 0,
		video_codec_params TEXT NOT NULL DEFAULT '',
		video_aspect_mode TEXT NOT NULL DEFAULT 'scale'
	);

	-- Named groups of formats
	CREATE TABLE IF NOT EXISTS format_sets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS format_set_members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		set_id INTEGER NOT NULL,
		format_id INTEGER NOT NULL,
		FOREIGN KEY (set_id) REFERENCES format_sets(id) ON DELETE CASCADE,
		FOREIGN KEY (format_id) REFERENCES formats(id) ON DELETE CASCADE,
		UNIQUE(set_id, format_id)
	);

	-- One conversion attempt per (asset, format) pair
	CREATE TABLE IF NOT EXISTS streams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		asset_id INTEGER NOT NULL,
		format_id INTEGER NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		job_handle TEXT NOT NULL DEFAULT '',
		file TEXT NOT NULL DEFAULT '',
		bitrate INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		audio_codec TEXT,
		audio_bitrate INTEGER,
		audio_channels INTEGER,
		video_codec TEXT,
		video_bitrate INTEGER,
		video_width INTEGER,
		video_height INTEGER,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		FOREIGN KEY (asset_id) REFERENCES assets(id) ON DELETE CASCADE,
		FOREIGN KEY (format_id) REFERENCES formats(id) ON DELETE CASCADE,
		UNIQUE(asset_id, format_id)
	);

	CREATE INDEX IF NOT EXISTS idx_streams_asset ON streams(asset_id);
	CREATE INDEX IF NOT EXISTS idx_streams_status ON streams(status);
	`

	_, err := d.db.ExecContext(ctx, schema)
	if err != nil {
		return err
	}

	return d.runMigrations(ctx)
}

// runMigrations applies database schema migrations
func (d *Database) runMigrations(ctx context.Context) error {
	// Migration 1: add video_aspect_mode to formats created before
	// scale_crop support
	var columnExists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('formats')
		WHERE name='video_aspect_mode'
	`).Scan(&columnExists)
	if err != nil {
		return fmt.Errorf("failed to check for video_aspect_mode column: %w", err)
	}

	if !columnExists {
		logging.Info("Migrating database: adding video_aspect_mode column to formats table")

		_, err = d.db.ExecContext(ctx, `
			ALTER TABLE formats ADD COLUMN video_aspect_mode TEXT NOT NULL DEFAULT 'scale'
		`)
		if err != nil {
			return fmt.Errorf("failed to add video_aspect_mode column: %w", err)
		}

		logging.Info("Migration complete: video_aspect_mode column added")
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping verifies the connection is alive; used by the readiness probe.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}
