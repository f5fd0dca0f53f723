// Package http exposes the daemon's read-only operational endpoints.
package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves health, status and report queries. Reconciliation is never
// triggered over HTTP; the scheduler owns that.
type Handler struct {
	status *Status
}

// NewHandler creates a Handler backed by the given run state.
func NewHandler(status *Status) *Handler {
	return &Handler{status: status}
}

// Health handles GET /healthz.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Status handles GET /status.
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status.Snapshot())
}

// Report handles GET /report, serving the last successful run report.
func (h *Handler) Report(c echo.Context) error {
	report := h.status.LastReport()
	if report == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no completed run yet")
	}
	return c.JSON(http.StatusOK, report)
}
