// response.go - Success envelope shared by all handlers
package api

import (
	"time"

	"github.com/labstack/echo/v4"
)

// envelope is the JSON shape of every successful response.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// respond writes the standard success envelope.
func respond(c echo.Context, status int, message string, data any) error {
	if data == nil {
		data = map[string]any{}
	}
	return c.JSON(status, envelope{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	})
}
