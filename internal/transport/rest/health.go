package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

const dbProbeTimeout = 2 * time.Second

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus           `json:"status"`
	CheckedAt  time.Time              `json:"checked_at"`
	Components map[string]HealthProbe `json:"components"`
}

type HealthProbe struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// HealthHandler probes the shared connection pool. The user and person
// stores have no state beyond the database, so one probe covers
// readiness for the whole service.
type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// pingHandler is the liveness probe: process up, nothing else checked.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler is the readiness probe: pings the database within
// a bounded window and reports 503 when it cannot be reached.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dbProbeTimeout)
	defer cancel()

	start := time.Now()
	probe := HealthProbe{Status: HealthHealthy}
	if err := h.db.PingContext(ctx); err != nil {
		probe.Status = HealthUnhealthy
		probe.Message = err.Error()
	}
	probe.DurationMs = time.Since(start).Milliseconds()

	statusCode := http.StatusOK
	if probe.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:     probe.Status,
		CheckedAt:  time.Now().UTC(),
		Components: map[string]HealthProbe{"database": probe},
	})
}
