package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// HealthHandler serves liveness and readiness. Readiness pings the database
// and reports its pool so operators can spot exhaustion.
type HealthHandler struct {
	db     *sql.DB
	driver string
}

func NewHealthHandler(db *sql.DB, driver string) *HealthHandler {
	return &HealthHandler{db: db, driver: driver}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	entry := h.checkDatabase(r.Context())

	resp := HealthResponse{
		Status:     entry.Status,
		CheckedAt:  entry.CheckedAt,
		Components: map[string]CheckEntry{"database": entry},
	}

	status := http.StatusOK
	if entry.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	start := time.Now()
	entry := CheckEntry{Status: HealthHealthy, Details: map[string]any{"driver": h.driver}}

	if h.db == nil {
		entry.Status = HealthUnhealthy
		entry.Message = "database not configured"
	} else {
		ctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			// the driver error may carry the DSN host; keep it out of the body
			entry.Status = HealthUnhealthy
			entry.Message = "database unreachable"
		}
		stats := h.db.Stats()
		entry.Details["open_connections"] = stats.OpenConnections
		entry.Details["in_use"] = stats.InUse
		entry.Details["idle"] = stats.Idle
		entry.Details["wait_count"] = stats.WaitCount
	}

	entry.CheckedAt = time.Now()
	entry.DurationMs = time.Since(start).Milliseconds()
	return entry
}

func writeHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
