// Package metrics provides Prometheus instrumentation for the media-converter
// application.
//
// This package defines and exposes various metrics that can be scraped by
// Prometheus to monitor the health, performance, and behavior of the
// application. All metrics are prefixed with "media_converter_" to avoid
// naming collisions with other applications.
//
// # Metric Categories
//
// The metrics are organized into the following categories:
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//
// Monitor database query performance and storage:
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBConnectionsOpen: Gauge of open database connections
//   - DBSizeBytes: Gauge of database file sizes (main, WAL, SHM)
//
// ## Probe Metrics
//
// Track ffprobe invocations against source and output files:
//   - ProbesTotal: Counter by status
//   - ProbeDuration: Histogram of probe duration
//
// ## Encoder Metrics
//
// Monitor ffmpeg encode runs and preview extraction:
//   - EncodesTotal: Counter by kind (audio/video) and status
//   - EncodeDuration: Histogram of encode time by kind
//   - PreviewsTotal: Counter of preview frame extractions by status
//
// ## Conversion Job Metrics
//
// Track the asynchronous conversion pipeline:
//   - JobsTotal: Counter by outcome (success/failure/revoked)
//   - JobsInProgress: Gauge of currently running jobs
//   - QueueDepth: Gauge of jobs waiting in the queue
//
// ## Library Metrics
//
// Track library contents:
//   - AssetsTotal: Gauge of assets by kind
//   - StreamsTotal: Gauge of stream records by status
//   - FormatsTotal: Gauge of registered formats
//
// ## Application Info
//
// Expose build information:
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on your
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Recording Metrics
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	import "media-converter/internal/metrics"
//
//	// Increment a counter
//	metrics.EncodesTotal.WithLabelValues("video", "success").Inc()
//
//	// Observe a histogram value
//	metrics.EncodeDuration.WithLabelValues("video").Observe(42.5)
//
//	// Set a gauge value
//	metrics.QueueDepth.Set(3)
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers
// statistics from a [StatsProvider] and updates the corresponding gauges:
//
//	collector := metrics.NewCollector(statsProvider, dbPath, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// The collector automatically updates:
//   - Library statistics (assets, formats, streams)
//   - Database file sizes and connection pool stats
//
// # Prometheus Queries
//
// Example PromQL queries for common use cases:
//
// Request rate by endpoint:
//
//	sum(rate(media_converter_http_requests_total[5m])) by (path)
//
// Encode failure rate:
//
//	sum(rate(media_converter_encodes_total{status="error"}[5m])) /
//	sum(rate(media_converter_encodes_total[5m]))
//
// P95 encode duration:
//
//	histogram_quantile(0.95, sum(rate(media_converter_encode_duration_seconds_bucket[5m])) by (le, kind))
//
// Database query latency by operation:
//
//	histogram_quantile(0.95, sum(rate(media_converter_db_query_duration_seconds_bucket[5m])) by (le, operation))
package metrics
