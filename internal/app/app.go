package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"findash/internal/config"
	"findash/internal/dataset"
	apierrors "findash/internal/errors"
	"findash/internal/files"
	"findash/internal/infrastructure"
	customMiddleware "findash/internal/middleware"
	"findash/internal/services"
	handlers "findash/internal/transport/http"
	ws "findash/internal/websocket"
	"findash/pkg/contracts"
)

// AppName is shown in logs and the page title.
const AppName = "Retail Company Financial Comparison"

// exportBase is where the dashboard handler's export routes are mounted.
const exportBase = "/api/v1/export"

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics
	Dataset          *dataset.Repository
	Watcher          *dataset.Watcher
	WebSocketHub     *ws.Hub
	DashboardService *services.DashboardService
	HealthService    *services.HealthService

	errorHandler *apierrors.ErrorHandler
	listener     net.Listener

	background     sync.WaitGroup
	stopBackground context.CancelFunc
}

// NewApplication loads configuration from defaults, file and environment
// and wires the application around it.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return New(cfg, nil)
}

// New wires an application for cfg. A nil logger initializes the global
// infrastructure logger from cfg.Logging.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	if logger == nil {
		logCfg := cfg.Logging
		logCfg.FilePath = paths.LogFile
		if logger, err = infrastructure.InitializeLogger(logCfg); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("base_dir", paths.BaseDir),
		slog.String("data_source", cfg.Data.Source))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	comps, err := BuildComponents(context.Background(), a.Config, a.Paths, a.Logger, a.Metrics)
	if err != nil {
		return err
	}
	a.Dataset = comps.Dataset
	a.DashboardService = comps.Dashboard

	if a.Config.Data.Watch && a.Config.Data.Source != config.SourceSheets {
		a.Watcher = dataset.NewWatcher(a.Dataset, a.Paths.WorkbookFile, a.Config.Data.WatchDebounce, a.Logger)
	}

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
	a.Dataset.OnReload(a.WebSocketHub.NotifyReload)

	a.HealthService = services.NewHealthService(a.Dataset, a.WebSocketHub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Set before any Mount so subrouters inherit them
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// Only middleware that leaves the ResponseWriter unwrapped runs before /ws
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Handle("/ws", handlers.NewWebSocketHandler(
		a.WebSocketHub,
		a.Config.Security.AllowedOrigins,
		a.Config.WebSocket.ReadBufferSize,
		a.Config.WebSocket.WriteBufferSize,
		a.Logger,
	))

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.errorHandler,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)

		page := handlers.NewPageHandler(a.DashboardService, exportBase, a.Logger, a.errorHandler)
		r.With(a.timeout()...).Method(http.MethodGet, "/", page)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(a.timeout()...)

		health := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", health.HealthCheck)
		r.Get("/health/ready", health.ReadinessCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)

		r.Mount("/v1", handlers.NewDashboardHandler(a.DashboardService, a.Logger, a.errorHandler).Routes())
	})
}

func (a *Application) timeout() []func(http.Handler) http.Handler {
	if a.Config.Server.RequestTimeout <= 0 {
		return nil
	}
	return []func(http.Handler) http.Handler{customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger)}
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		MaxHeaderBytes:    a.Config.Server.MaxHeaderBytes,
	}
}

// Addr returns the listening address once Start has succeeded.
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener, starts background services and serves in the
// background. cancel is called if the server fails after Start returns.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.WebSocketHub.Start()

	bgCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.stopBackground = stop

	a.background.Add(1)
	go func() {
		defer a.background.Done()
		a.warmup(bgCtx)
	}()

	if a.Watcher != nil {
		a.background.Add(1)
		go func() {
			defer a.background.Done()
			if err := a.Watcher.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.ErrorContext(bgCtx, "Dataset watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", "http://"+a.Addr()))
	return nil
}

// warmup loads the dataset once so the first page view is fast and a
// missing workbook is reported at startup.
func (a *Application) warmup(ctx context.Context) {
	ctx = infrastructure.EnsureTraceID(ctx)
	snap, err := a.Dataset.Get(ctx)
	switch {
	case errors.Is(err, dataset.ErrSourceNotFound):
		attrs := []any{
			slog.String("path", a.Paths.WorkbookFile),
			slog.String("hint", dataset.MissingWorkbookHint),
		}
		if found, _ := files.NewDiscovery(a.Paths).Workbooks(); len(found) > 0 {
			attrs = append(attrs, slog.Any("workbooks_found", files.Names(found)))
		}
		a.Logger.WarnContext(ctx, "Financial data not found", attrs...)
	case err != nil:
		a.Logger.ErrorContext(ctx, "Initial dataset load failed", slog.String("error", err.Error()))
	default:
		a.Logger.InfoContext(ctx, "Dataset ready",
			slog.String("source", snap.Source),
			slog.String("version", snap.Version),
			slog.Int("records", snap.Table.Len()))
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	a.WebSocketHub.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.stopBackground != nil {
		a.stopBackground()
	}
	a.background.Wait()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
