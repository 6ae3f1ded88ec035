package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-converter/internal/converter"
	"media-converter/internal/database"
	"media-converter/internal/encoder"
	"media-converter/internal/handlers"
	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/metrics"
	"media-converter/internal/middleware"
	"media-converter/internal/probe"
	"media-converter/internal/queue"
	"media-converter/internal/startup"
	"media-converter/internal/storage"
	"media-converter/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck
	startup.LogDatabaseInit(time.Since(dbStart))

	// File stores
	mediaStore, err := storage.New(config.MediaDir)
	if err != nil {
		startup.LogFatal("Failed to open media store: %v", err)
	}
	streamStore, err := storage.New(config.StreamsDir)
	if err != nil {
		startup.LogFatal("Failed to open stream store: %v", err)
	}

	// Probe and encode tooling
	startup.LogEncoderInit(config.FFmpegPath, config.FFprobePath)
	codecTable := media.DefaultCodecTable()
	if config.CodecTableFile != "" {
		codecTable, err = media.LoadCodecTable(config.CodecTableFile)
		if err != nil {
			startup.LogFatal("Failed to load codec table: %v", err)
		}
	}
	prober := probe.New(config.FFprobePath)
	enc := encoder.New(config.FFmpegPath, codecTable, config.PreviewSize)

	// Conversion queue
	workerCount := config.EncodeWorkers
	if workerCount <= 0 {
		// Encoding is CPU-bound
		workerCount = workers.ForCPU(8)
	}
	startup.LogQueueInit(workerCount, config.QueueSize)
	jobs := queue.New(workerCount, config.QueueSize)
	jobs.Start()

	conv := converter.New(db, prober, enc, jobs, mediaStore, streamStore, config.TempDir)

	// Initialize handlers
	h := handlers.New(db, conv, mediaStore, streamStore)

	// Setup router
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	meteredHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// Apply compression middleware
	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(meteredHandler)

	// Metrics server and collector
	var collector *metrics.Collector
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

		collector = metrics.NewCollector(db, config.DatabasePath, 30*time.Second)
		collector.SetDBMetricsUpdater(db)
		collector.Start()

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Create server. WriteTimeout stays 0 so large media downloads are
	// never cut off mid-transfer.
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, jobs, collector)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Assets
	api.HandleFunc("/assets", h.ListAssets).Methods("GET")
	api.HandleFunc("/assets", h.UploadAsset).Methods("POST")
	api.HandleFunc("/assets/{id}", h.GetAsset).Methods("GET")
	api.HandleFunc("/assets/{id}", h.DeleteAsset).Methods("DELETE")
	api.HandleFunc("/assets/{id}/file", h.GetAssetFile).Methods("GET")
	api.HandleFunc("/assets/{id}/file", h.ReplaceAssetFile).Methods("PUT")
	api.HandleFunc("/assets/{id}/preview", h.GetAssetPreview).Methods("GET")
	api.HandleFunc("/assets/{id}/streams", h.GetAssetStreams).Methods("GET")
	api.HandleFunc("/assets/{id}/convert", h.ConvertAsset).Methods("POST")
	api.HandleFunc("/assets/{id}/reconcile", h.ReconcileAsset).Methods("POST")

	// Formats and format sets
	api.HandleFunc("/formats", h.ListFormats).Methods("GET")
	api.HandleFunc("/formats", h.CreateFormat).Methods("POST")
	api.HandleFunc("/formats/{id}", h.GetFormat).Methods("GET")
	api.HandleFunc("/formats/{id}", h.DeleteFormat).Methods("DELETE")
	api.HandleFunc("/formatsets", h.ListFormatSets).Methods("GET")
	api.HandleFunc("/formatsets", h.CreateFormatSet).Methods("POST")
	api.HandleFunc("/formatsets/{id}", h.GetFormatSet).Methods("GET")
	api.HandleFunc("/formatsets/{id}/convert", h.ConvertSet).Methods("POST")

	// Streams
	api.HandleFunc("/streams/{id}", h.GetStream).Methods("GET")
	api.HandleFunc("/streams/{id}", h.DeleteStream).Methods("DELETE")
	api.HandleFunc("/streams/{id}/cancel", h.CancelStream).Methods("POST")
	api.HandleFunc("/streams/{id}/file", h.GetStreamFile).Methods("GET")

	// Stats
	api.HandleFunc("/stats", h.GetStats).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, jobs *queue.Queue, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Draining conversion queue")
	drained := make(chan struct{})
	go func() {
		jobs.Stop()
		close(drained)
	}()
	select {
	case <-drained:
		startup.LogShutdownStepComplete("Conversion queue drained")
	case <-ctx.Done():
		logging.Warn("Queue drain timed out, cancelling running conversions")
		jobs.Kill()
		<-drained
	}

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
