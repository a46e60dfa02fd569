// handlers_ops.go - Operation history handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pdfmaster/backend/internal/ops"
)

// OperationsHandlerImpl implements the OperationsHandler interface
type OperationsHandlerImpl struct {
	ops *ops.Manager
}

// NewOperationsHandler creates a new operations handler instance
func NewOperationsHandler(om *ops.Manager) OperationsHandler {
	return &OperationsHandlerImpl{ops: om}
}

// HandleRecentOperations returns recorded operations, newest first
func (h *OperationsHandlerImpl) HandleRecentOperations(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return NewValidationError("limit")
		}
		limit = n
	}

	recent := h.ops.Recent(limit)

	return respond(c, http.StatusOK, "Recent operations retrieved", map[string]any{
		"operations": recent,
		"count":      len(recent),
	})
}
