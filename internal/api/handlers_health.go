// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pdfmaster/backend/internal/store"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	store   *store.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, st *store.Store) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		store:   st,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return respond(c, http.StatusOK, "Server is healthy", map[string]any{
		"status": "operational",
	})
}

// HandleStatus returns version and session information
func (h *HealthHandlerImpl) HandleStatus(c echo.Context) error {
	return respond(c, http.StatusOK, "API is operational", map[string]any{
		"version":        h.version,
		"session_since":  h.store.CreatedAt().Format(time.RFC3339),
		"uptime_seconds": int(time.Since(h.store.CreatedAt()).Seconds()),
	})
}
