package handler

import (
	"net/http"
	"time"

	"github.com/authhybrid/backend/internal/health"
	"github.com/authhybrid/backend/internal/http/response"
)

type HealthHandler struct {
	probes *health.ProbeRunner
}

func NewHealthHandler(probes *health.ProbeRunner) *HealthHandler {
	return &HealthHandler{probes: probes}
}

// Health is the liveness endpoint: up means OK.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(r.Context(), w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready checks the DB (and Redis when configured) before reporting
// ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ok, results := h.probes.Ready(r.Context())
	status := http.StatusOK
	state := "ready"
	if !ok {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	response.JSON(r.Context(), w, status, map[string]any{
		"status": state,
		"checks": results,
	})
}
