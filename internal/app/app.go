package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"metricqa/internal/catalog"
	"metricqa/internal/config"
	apierrors "metricqa/internal/errors"
	"metricqa/internal/infrastructure"
	customMiddleware "metricqa/internal/middleware"
	"metricqa/internal/services"
	handlers "metricqa/internal/transport/http"
)

const AppName = "metricqa"

var (
	// Version is set at build time with -ldflags
	Version = infrastructure.ServiceVersion
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application is the validation server container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.QualityMetrics
	Validation    *services.ValidationService
	Health        *services.HealthService
}

// NewApplication wires services, middleware and routes from cfg. The caller
// owns the logger.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.NopLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("build_id", BuildID))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateQualityMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create quality metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) initializeServices() {
	src := catalog.FileSource{Path: a.Paths.CatalogFile}

	a.Validation = services.NewValidationService(a.Config.Validation, src, a.Logger,
		services.WithQualityMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer),
	)
	a.Health = services.NewHealthService(Version, src, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// RequestID -> RealIP -> OTel -> Logger -> Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errorHandler.Middleware)
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)

	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	validationHandler := handlers.NewValidationHandler(a.Validation, a.Config.Server.MaxUploadBytes, a.Logger, errorHandler)
	var api http.Handler = validationHandler.Routes()
	if a.Config.Server.RateLimit.Enabled {
		api = customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		).Handler(api)
	}
	r.Mount("/api/v1", api)

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving in the background. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the listener fails
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
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the catalog loads and the reports
// directory is writable. Problems are warnings; the server still starts.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []error

	status := a.Health.Check(ctx)
	if status.Status != services.StatusHealthy {
		warnings = append(warnings, fmt.Errorf("catalog: %s", status.Services["catalog"].Message))
	}

	tmp, err := os.CreateTemp(a.Paths.ReportsDir, ".write_test")
	if err != nil {
		warnings = append(warnings, fmt.Errorf("reports directory not writable: %s", a.Paths.ReportsDir))
	} else {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if len(warnings) > 0 {
		return errors.Join(warnings...)
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
