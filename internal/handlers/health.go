package handlers

import (
	"net/http"
	"runtime"
	"time"

	"photo-library/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status            string `json:"status"`
	Ready             bool   `json:"ready"`
	Version           string `json:"version"`
	Uptime            string `json:"uptime"`
	Indexing          bool   `json:"indexing"`
	LastIndexed       string `json:"lastIndexed,omitempty"`
	LastIndexDuration string `json:"lastIndexDuration,omitempty"`
	InitialIndexError string `json:"initialIndexError,omitempty"`
	FilesIndexed      int64  `json:"filesIndexed"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. It answers 503 until
// the first index has finished.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	status := h.indexer.GetHealthStatus()

	response := HealthResponse{
		Status:            statusStarting,
		Ready:             status.Ready,
		Version:           startup.Version,
		Uptime:            status.Uptime,
		Indexing:          status.Indexing,
		LastIndexDuration: status.LastIndexDuration,
		FilesIndexed:      status.FilesIndexed,
		GoVersion:         runtime.Version(),
		NumGoroutine:      runtime.NumGoroutine(),
	}
	if status.Ready {
		response.Status = statusHealthy
	}
	if !status.LastIndexed.IsZero() {
		response.LastIndexed = status.LastIndexed.Format(time.RFC3339)
	}
	if status.InitialIndexError != "" {
		response.InitialIndexError = status.InitialIndexError
		response.Status = statusDegraded
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, code, response)
}

// LivenessCheck always returns 200 while the server is running.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only once the catalog has been indexed.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.IsReady() {
		writeJSONStatus(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}

// TriggerReindex starts a background re-index unless one is running.
func (h *Handlers) TriggerReindex(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.IsIndexing() {
		writeJSONStatus(w, http.StatusConflict, map[string]string{
			"status":  "already_running",
			"message": "Indexing is already in progress",
		})
		return
	}

	h.indexer.TriggerIndex()
	writeJSONStatus(w, http.StatusAccepted, map[string]string{
		"status":  "started",
		"message": "Re-indexing started",
	})
}
