package http

import (
	"context"
	"net/http"
)

// Pinger reports database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler reports liveness including a database connectivity check.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status:   "degraded",
				Database: "disconnected",
			})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "healthy",
			Database: "connected",
		})
	}
}
