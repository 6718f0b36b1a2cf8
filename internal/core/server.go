// Package core provides the HTTP chassis for the MCASS snow situation
// dashboard. It creates a chi router and enforces cross-cutting concerns
// (security headers, logging, observability, error handling) before requests
// reach domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mcass/internal/config"
)

// MetricsCollector receives per-request telemetry from the middleware.
// The production implementation backs onto Prometheus; tests substitute
// an in-memory recorder.
type MetricsCollector interface {
	// RecordRequest observes one completed request. The endpoint label is
	// the matched route pattern, not the raw URL path, to keep metric
	// cardinality bounded.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server bundles the dashboard's cross-cutting dependencies. Fields are
// exported so tests and the entry point can swap individual pieces without
// a constructor per permutation.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// V1RouteRegistrars holds callbacks that mount domain handler routes
	// under /v1. Populated by the application entry point; the indirection
	// avoids import cycles between core and handler packages.
	V1RouteRegistrars []func(chi.Router)

	// RootRouteRegistrars holds callbacks that mount top-level routes such
	// as the dashboard page and the metrics endpoint.
	RootRouteRegistrars []func(chi.Router)

	// HealthProbes are the dependency checks executed by GET /health.
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer builds a Server with a fresh router and a validator, refusing
// nil critical dependencies up front.
//
// Routes are not mounted here. Callers invoke MountRoutes after filling the
// registrar slices, which lets tests mount a reduced route set.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler exposes the router as an http.Handler for http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the underlying chi.Mux so tests can register extra routes.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources. The dashboard
// holds no external connections (the basin cache is in-process memory), so
// shutdown only has to quiesce and log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("dashboard server stopped")
	return nil
}
