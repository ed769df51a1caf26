package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// Health is the liveness probe for the API and the pipeline workers sharing
// this process.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "findoc-pipeline",
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	})
}
