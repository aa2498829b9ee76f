package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datasight/internal/ai"
	"datasight/internal/analytics"
	"datasight/internal/charts"
	"datasight/internal/config"
	"datasight/internal/errors"
	"datasight/internal/files"
	"datasight/internal/infrastructure"
	"datasight/internal/ingest"
	customMiddleware "datasight/internal/middleware"
	"datasight/internal/report"
	"datasight/internal/services"
	handlers "datasight/internal/transport/http"
	"datasight/pkg/contracts"
)

const AppName = "DataSight"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Upload   *services.UploadService
	Analysis *services.AnalysisService
	Report   *services.ReportService
	Health   *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service layer bottom up.
func (a *Application) initializeServices() {
	cfg := a.Config
	logger := a.Logger

	store := files.NewStore(cfg.GetUploadsDir(), cfg.GetReportsDir(), logger)
	reader := ingest.NewReader(logger)
	summarizer := analytics.NewSummarizer(logger)
	chartBuilder := charts.NewBuilder(logger)
	registry := ai.NewRegistry(cfg.AI, logger)
	reportBuilder := report.NewBuilder(logger, cfg.Paths.FontPath)

	upload := services.NewUploadService(cfg.Upload, store, reader, summarizer, chartBuilder, logger)
	analysis := services.NewAnalysisService(registry, upload, logger)
	reports := services.NewReportService(reportBuilder, store, upload, analysis, logger)
	health := services.NewHealthService(contracts.Version, cfg.Paths, upload, reports, analysis, logger)

	a.Services = &ServiceContainer{
		Upload:   upload,
		Analysis: analysis,
		Report:   reports,
		Health:   health,
	}
}

// setupRouter builds the chi router. Middleware ordering:
// RequestID -> RealIP -> OTel -> Logger -> Recoverer -> headers -> CORS -> rate limit.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		if a.OTelProviders != nil {
			otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
			if err != nil {
				a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
			} else {
				r.Use(otelMiddleware.Handler)
				r.Use(customMiddleware.BusinessMetricsMiddleware(otelMiddleware.BusinessMetrics()))
			}
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus endpoint stays outside the middleware group
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	uploadHandler := handlers.NewUploadHandler(a.Services.Upload, validation, a.Config.Upload.MaxFileSize, a.Logger, errorHandler)
	analysisHandler := handlers.NewAnalysisHandler(a.Services.Analysis, validation, a.Logger, errorHandler)
	reportHandler := handlers.NewReportHandler(a.Services.Report, validation, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// standard timeout for data endpoints
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))
			r.Mount("/health", healthHandler.Routes())
			r.Post("/upload", uploadHandler.Upload)
			r.Get("/uploads", uploadHandler.ListUploads)
			r.Post("/rows", uploadHandler.Rows)
			r.Post("/charts", uploadHandler.Chart)
		})

		// provider calls and report generation take longer
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.AnalysisTimeout, a.Logger))
			r.Mount("/analysis", analysisHandler.Routes())
			r.Mount("/reports", reportHandler.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("uploads_dir", a.Config.GetUploadsDir()),
		slog.String("reports_dir", a.Config.GetReportsDir()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
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

// Run runs the application until interrupted
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
