// Package app wires configuration, logging, the Bunny storage client, the
// attendance service and the HTTP router into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendcli/internal/bunny"
	"attendcli/internal/config"
	apierrors "attendcli/internal/errors"
	"attendcli/internal/infrastructure"
	"attendcli/internal/middleware"
	"attendcli/internal/query"
	"attendcli/internal/services"
	httptransport "attendcli/internal/transport/http"
	"attendcli/pkg/contracts"
)

// Application is the main application container.
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Router   *chi.Mux
	Server   *http.Server
	Registry *prometheus.Registry

	AttendanceService *services.AttendanceService
}

// NewApplication creates a new application instance with dependency injection.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the ingestion and query pipeline.
func (a *Application) initializeServices() error {
	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector())
	a.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infrastructure.NewMetrics(a.Registry)

	storage, err := bunny.NewClient(bunny.Config{
		StorageZone:       a.Config.Bunny.StorageZone,
		AccessKey:         a.Config.Bunny.AccessKey,
		StorageEndpoint:   a.Config.Bunny.StorageEndpoint,
		PullZoneURL:       a.Config.Bunny.PullZoneURL,
		RequestsPerSecond: a.Config.Bunny.RequestsPerSecond,
		Timeout:           a.Config.Bunny.Timeout,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	engine := query.NewEngine(a.Logger, query.Config{
		SimilarityThreshold: a.Config.Query.SimilarityThreshold,
		MaxMatches:          a.Config.Query.MaxMatches,
	})

	a.AttendanceService = services.NewAttendanceService(
		storage, a.Config.Bunny.FolderPath, engine, metrics, a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(middleware.Recoverer(a.Logger))
	if a.Config.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(a.Config.Server.RateLimit.RPS, a.Config.Server.RateLimit.Burst, a.Logger))
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	queryHandler := httptransport.NewQueryHandler(a.AttendanceService, a.Logger, errorHandler)
	healthHandler := httptransport.NewHealthHandler(contracts.Version)

	r.Mount("/api", queryHandler.Routes())
	r.Mount("/healthz", healthHandler.Routes())
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))

	a.Router = r
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the server and kicks off the initial ingestion run. A failed
// first run is not fatal: the API answers with TABLE_NOT_LOADED until a
// later POST /api/refresh succeeds.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	go func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer refreshCancel()
		if err := a.AttendanceService.Refresh(refreshCtx); err != nil {
			a.Logger.WarnContext(refreshCtx, "Initial ingestion run failed",
				slog.String("error", err.Error()))
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
