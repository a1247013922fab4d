package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is anything whose connectivity can be checked, such as *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports the health of the user store backend
type HealthChecker struct {
	db Pinger
}

// NewHealthChecker creates a health checker. db is nil for the in-memory store.
func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{db: db}
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents a single health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HandleHealth returns an HTTP handler for health checks
func (hc *HealthChecker) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := HealthStatus{
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]Check),
		}

		dbCheck := hc.checkDatabase(ctx)
		status.Checks["user_store"] = dbCheck

		code := http.StatusOK
		status.Status = "healthy"
		if dbCheck.Status != "healthy" {
			status.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}

// HandleLiveness returns an HTTP handler for liveness checks
func (hc *HealthChecker) HandleLiveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
		})
	}
}

func (hc *HealthChecker) checkDatabase(ctx context.Context) Check {
	if hc.db == nil {
		return Check{Status: "healthy", Message: "in-memory"}
	}

	if err := hc.db.Ping(ctx); err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
		}
	}

	return Check{Status: "healthy"}
}
