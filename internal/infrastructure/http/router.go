package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/infrastructure/http/handlers"
)

// RegisterOps mounts the operational endpoints: liveness, readiness and the
// Prometheus scrape target. None of them require authentication.
func RegisterOps(e *echo.Echo, checks ...handlers.DependencyCheck) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
}
