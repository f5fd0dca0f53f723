package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vn.io.arda/rolesync/internal/transport/mw"
)

// NewRouter sets up all Echo routes and middleware. Every route is read-only;
// the report endpoint additionally requires the configured bearer token
// because run reports enumerate principals.
func NewRouter(h *Handler, reportToken string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/healthz", h.Health)
	e.GET("/status", h.Status)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	report := e.Group("/report")
	if reportToken != "" {
		report.Use(mw.BearerAuth(reportToken))
	}
	report.GET("", h.Report)

	return e
}
