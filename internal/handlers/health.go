package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-converter/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Library summary
	AudioAssets  int `json:"audioAssets"`
	VideoAssets  int `json:"videoAssets"`
	TotalFormats int `json:"totalFormats"`

	// Conversion pipeline summary
	StreamsPreparation int `json:"streamsPreparation"`
	StreamsInProgress  int `json:"streamsInProgress"`
	StreamsSuccessful  int `json:"streamsSuccessful"`
	StreamsFailure     int `json:"streamsFailure"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The database
// ping decides healthy versus degraded.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats := h.db.GetStats()

	response := HealthResponse{
		Status:             statusHealthy,
		Version:            startup.Version,
		Uptime:             time.Since(h.startTime).Round(time.Second).String(),
		AudioAssets:        stats.AudioAssets,
		VideoAssets:        stats.VideoAssets,
		TotalFormats:       stats.TotalFormats,
		StreamsPreparation: stats.StreamsPreparation,
		StreamsInProgress:  stats.StreamsInProgress,
		StreamsSuccessful:  stats.StreamsSuccessful,
		StreamsFailure:     stats.StreamsFailure,
		GoVersion:          runtime.Version(),
		NumCPU:             runtime.NumCPU(),
		NumGoroutine:       runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := h.db.Ping(r.Context()); err != nil {
		response.Status = statusDegraded
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the database answers
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.db.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	writeJSON(w, map[string]string{
		"status": "ready",
	})
}

// GetStats returns library and pipeline counters.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.db.GetStats())
}
