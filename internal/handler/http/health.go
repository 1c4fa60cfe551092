package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus reports one dependency check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Pinger is the subset of database/sql.DB the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var _ Pinger = (*sql.DB)(nil)

// HealthHandler reports liveness plus a database connectivity check.
// It returns 200 when all checks pass and 503 otherwise.
type HealthHandler struct {
	DB Pinger
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]CheckStatus{},
	}

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Checks["database"] = CheckStatus{Status: "unhealthy", Message: err.Error()}
		} else {
			resp.Checks["database"] = CheckStatus{Status: "healthy"}
		}
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
