package handlers

import (
	"encoding/json"
	"net/http"

	"pickem-app-go/database"
	"pickem-app-go/logging"
	"pickem-app-go/services"
)

// HealthHandler reports the status of the app's collaborators: the schedule
// feed and the optional remote pick store.
type HealthHandler struct {
	feed   *services.ESPNService
	db     *database.MongoDB
	logger *logging.Logger
}

// NewHealthHandler creates a new health handler. db may be nil in local-only
// mode; that reports database:false without failing the check.
func NewHealthHandler(feed *services.ESPNService, db *database.MongoDB) *HealthHandler {
	return &HealthHandler{
		feed:   feed,
		db:     db,
		logger: logging.WithPrefix("Health"),
	}
}

// GetHealth handles GET /health. The feed is required, so an unreachable feed
// degrades the response to 503; the database is optional and only reported.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	feedOK := h.feed.HealthCheck()
	dbOK := h.db.Available()

	status := "ok"
	code := http.StatusOK
	if !feedOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
		h.logger.Warn("Health check: schedule feed unreachable")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   status,
		"feed":     feedOK,
		"database": dbOK,
	})
}
