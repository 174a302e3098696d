package handlers

import (
	"net/http"
	"runtime"

	"github.com/jhony-23/WebVideoA/internal/logging"
	"github.com/jhony-23/WebVideoA/internal/startup"
)

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	PendingItems int    `json:"pendingItems"`
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports service health. Unreachable storage degrades the
// status and returns 503.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       "healthy",
		Version:      startup.Version,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	statusCode := http.StatusOK
	pending, err := h.db.CountPending(r.Context())
	if err != nil {
		logging.Error("health check: registry unreachable: %v", err)
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else {
		response.PendingItems = pending
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, response)
}

// GetVersion returns build information.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, startup.GetBuildInfo())
}

// LivenessCheck always succeeds while the process is serving.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "alive")
}

// ReadinessCheck succeeds once the registry is reachable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.db.CountPending(r.Context()); err != nil {
		writeJSONError(w, "Registry unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready")
}
