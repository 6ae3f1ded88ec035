package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Probe metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_probes_total",
			Help: "Total number of ffprobe invocations",
		},
		[]string{"status"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_converter_probe_duration_seconds",
			Help:    "ffprobe invocation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Encoder metrics
var (
	EncodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_encodes_total",
			Help: "Total number of ffmpeg encode runs",
		},
		[]string{"kind", "status"},
	)

	EncodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_converter_encode_duration_seconds",
			Help:    "ffmpeg encode duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"kind"},
	)

	PreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_previews_total",
			Help: "Total number of preview frame extractions",
		},
		[]string{"status"},
	)
)

// Conversion job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_converter_jobs_total",
			Help: "Total number of conversion jobs",
		},
		[]string{"status"}, // "success", "failure", "revoked"
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_jobs_in_progress",
			Help: "Number of conversion jobs currently running",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_queue_depth",
			Help: "Number of conversion jobs waiting in the queue",
		},
	)
)

// Library metrics
var (
	AssetsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_assets_total",
			Help: "Total number of assets by kind",
		},
		[]string{"kind"},
	)

	StreamsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_streams_total",
			Help: "Total number of stream records by status",
		},
		[]string{"status"},
	)

	FormatsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_converter_formats_total",
			Help: "Total number of registered formats",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_converter_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
