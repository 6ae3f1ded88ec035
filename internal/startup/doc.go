// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// A .env file in the working directory is loaded first when present.
// The following environment variables are supported:
//
//   - MEDIA_DIR: Path to ingested source files and previews (default: /media)
//   - STREAMS_DIR: Path to finished conversion outputs (default: /streams)
//   - TEMP_DIR: Path for in-flight encode output (default: system temp)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - FFMPEG_PATH: ffmpeg binary (default: ffmpeg, resolved via PATH)
//   - FFPROBE_PATH: ffprobe binary (default: ffprobe, resolved via PATH)
//   - PREVIEW_SIZE: ffmpeg scale expression for preview frames (default: -1:250)
//   - CODEC_TABLE_FILE: Optional JSON file extending the codec name table
//   - ENCODE_WORKERS: Conversion worker count (default: derived from CPUs)
//   - QUEUE_SIZE: Pending conversion queue capacity (default: 100)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// All four directories (media, streams, temp, database) are required and
// must be writable; LoadConfig creates them when missing and fails fast
// when a write test fails.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogDatabaseInit]: Database initialization timing
//   - [LogEncoderInit]: ffmpeg/ffprobe availability checks
//   - [LogQueueInit]: Conversion queue worker and capacity summary
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	// Initialize components...
//	startup.LogDatabaseInit(dbInitDuration)
//	startup.LogEncoderInit(config.FFmpegPath, config.FFprobePath)
//
//	// Start server...
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
//
//	// On shutdown...
//	startup.LogShutdownInitiated("SIGTERM")
//	// ... cleanup ...
//	startup.LogShutdownComplete()
package startup
