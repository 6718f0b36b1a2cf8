// Package main is the entry point for the MCASS snow situation dashboard.
//
// It loads configuration, wires the basin data service, the chart renderer,
// and the HTTP chassis (middleware, routing, health checks), then serves the
// dashboard page, the JSON API, and the Prometheus metrics endpoint from a
// single process. SIGINT or SIGTERM triggers a graceful drain before exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mcass/internal/api/handlers"
	"mcass/internal/charts"
	"mcass/internal/config"
	"mcass/internal/core"
	"mcass/internal/observability"
	"mcass/internal/snowdata"
	"mcass/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run carries the whole startup lifecycle; main only translates its error
// into an exit code.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("mcass dashboard starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"data_path", cfg.Data.Path,
	)

	metrics := observability.NewMetrics(cfg.Observability.MetricNamespace)

	srv, err := buildServer(cfg, logger, metrics)
	if err != nil {
		return err
	}

	return runHTTPServer(srv, cfg, logger)
}

// buildServer wires the basin data pipeline, the chart renderer, and all
// handlers into a fully routed server. Shared with the tests, which inject
// unregistered metrics to avoid collisions in the default Prometheus registry.
func buildServer(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*core.Server, error) {
	clock := types.RealClock{}

	// Basin data pipeline: file loader, optional LRU cache in front of it,
	// catalog for basin discovery, and the service facade on top.
	var loader snowdata.Loader = snowdata.NewFileLoader(cfg.Data.Path, logger, metrics)
	if cfg.Cache.Enabled {
		loader = snowdata.NewCachedLoader(loader, cfg.Cache.MaxBasins, cfg.Cache.TTL, clock, metrics)
	}
	catalog := snowdata.NewCatalog(cfg.Data.Path, cfg.Data.MetadataFile, logger)
	service := snowdata.NewService(catalog, loader, logger, metrics, clock)

	renderer := charts.NewRenderer(cfg.Chart.Width, cfg.Chart.Height, clock)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}
	srv.Metrics = metrics

	// Wire the domain handlers under /v1.
	basinHandler := handlers.NewBasinHandler(service, srv.Validator, logger)
	chartHandler := handlers.NewChartHandler(service, renderer, srv.Validator, metrics, logger)
	snapshotHandler := handlers.NewSnapshotHandler(service, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		basinHandler.RegisterRoutes,
		chartHandler.RegisterRoutes,
		snapshotHandler.RegisterRoutes,
	)

	// Wire the top-level routes: the HTML dashboard page and the Prometheus
	// metrics endpoint.
	dashboardHandler, err := handlers.NewDashboardHandler(service, logger)
	if err != nil {
		return nil, fmt.Errorf("creating dashboard handler: %w", err)
	}
	srv.RootRouteRegistrars = append(srv.RootRouteRegistrars,
		dashboardHandler.RegisterRoutes,
		func(r chi.Router) {
			r.Method(http.MethodGet, "/metrics", promhttp.Handler())
		},
	)

	// The health check verifies the data directory is still reachable.
	srv.HealthProbes = append(srv.HealthProbes, snowdata.NewProbe(cfg.Data.Path))

	srv.MountRoutes()

	return srv, nil
}

// runHTTPServer serves until a termination signal or listener failure, then
// drains in-flight requests before returning.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// In-flight requests get ten seconds to finish.
	logger.Info("draining connections")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("connection drain failed", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("resource teardown failed", "error", err)
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newLogger builds the process-wide JSON slog.Logger. Unrecognized level
// names fall back to info.
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
