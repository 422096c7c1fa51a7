package http

import (
	"context"
	"net/http"
	"time"

	"garment-rental-backend/internal/service"
)

type DashboardHandler struct {
	statsSvc service.StatsService
	now      func() time.Time
}

func NewDashboardHandler(statsSvc service.StatsService) *DashboardHandler {
	return &DashboardHandler{statsSvc: statsSvc, now: time.Now}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsSvc.Stats(r.Context(), h.now().UTC())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, stats)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health returns 200 when the database answers and 503 otherwise.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			respondAPIError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		respondOK(w, map[string]string{"status": "ok"})
	}
}
