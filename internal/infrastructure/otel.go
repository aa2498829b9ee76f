package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "datasight"
	ServiceVersion = "v1.0.0"
	MeterName      = "datasight"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes OpenTelemetry tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.Handler()

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		otel.SetMeterProvider(mp)

	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Upload and parsing metrics
	UploadsTotal        metric.Int64Counter
	UploadBytesReceived metric.Int64Counter
	ParseDuration       metric.Float64Histogram
	ParseErrors         metric.Int64Counter
	RowsParsed          metric.Int64Counter

	// Analysis provider metrics
	AnalysisRequestsTotal metric.Int64Counter
	AnalysisDuration      metric.Float64Histogram
	AnalysisErrors        metric.Int64Counter

	// Report metrics
	ReportsGenerated    metric.Int64Counter
	ReportBuildDuration metric.Float64Histogram
	ChartsRendered      metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	uploadsTotal, err := meter.Int64Counter(
		"uploads_total",
		metric.WithDescription("Total number of uploaded files"),
	)
	if err != nil {
		return nil, err
	}

	uploadBytesReceived, err := meter.Int64Counter(
		"upload_bytes_received_total",
		metric.WithDescription("Total bytes received in uploads"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	parseDuration, err := meter.Float64Histogram(
		"parse_duration_seconds",
		metric.WithDescription("File parsing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter(
		"parse_errors_total",
		metric.WithDescription("Total number of file parsing failures"),
	)
	if err != nil {
		return nil, err
	}

	rowsParsed, err := meter.Int64Counter(
		"rows_parsed_total",
		metric.WithDescription("Total number of data rows parsed"),
	)
	if err != nil {
		return nil, err
	}

	analysisRequestsTotal, err := meter.Int64Counter(
		"analysis_requests_total",
		metric.WithDescription("Total number of analysis provider requests"),
	)
	if err != nil {
		return nil, err
	}

	analysisDuration, err := meter.Float64Histogram(
		"analysis_duration_seconds",
		metric.WithDescription("Analysis provider request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	analysisErrors, err := meter.Int64Counter(
		"analysis_errors_total",
		metric.WithDescription("Total number of analysis provider failures"),
	)
	if err != nil {
		return nil, err
	}

	reportsGenerated, err := meter.Int64Counter(
		"reports_generated_total",
		metric.WithDescription("Total number of PDF reports generated"),
	)
	if err != nil {
		return nil, err
	}

	reportBuildDuration, err := meter.Float64Histogram(
		"report_build_duration_seconds",
		metric.WithDescription("PDF report build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chartsRendered, err := meter.Int64Counter(
		"charts_rendered_total",
		metric.WithDescription("Total number of charts rendered"),
	)
	if err != nil {
		return nil, err
	}

	systemErrors, err := meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,

		UploadsTotal:        uploadsTotal,
		UploadBytesReceived: uploadBytesReceived,
		ParseDuration:       parseDuration,
		ParseErrors:         parseErrors,
		RowsParsed:          rowsParsed,

		AnalysisRequestsTotal: analysisRequestsTotal,
		AnalysisDuration:      analysisDuration,
		AnalysisErrors:        analysisErrors,

		ReportsGenerated:    reportsGenerated,
		ReportBuildDuration: reportBuildDuration,
		ChartsRendered:      chartsRendered,

		SystemErrors: systemErrors,
	}, nil
}

type businessMetricsKey struct{}

// ContextWithBusinessMetrics stashes the instruments so the service layer
// can record domain metrics without holding a reference to them.
func ContextWithBusinessMetrics(ctx context.Context, metrics *BusinessMetrics) context.Context {
	return context.WithValue(ctx, businessMetricsKey{}, metrics)
}

// BusinessMetricsFromContext returns the instruments stored by the HTTP
// layer, or nil when metrics are disabled.
func BusinessMetricsFromContext(ctx context.Context) *BusinessMetrics {
	if metrics, ok := ctx.Value(businessMetricsKey{}).(*BusinessMetrics); ok {
		return metrics
	}
	return nil
}

// RecordUpload records metrics for a processed upload
func RecordUpload(ctx context.Context, format string, sizeBytes int64, rows int, parseDuration time.Duration, err error) {
	metrics := BusinessMetricsFromContext(ctx)
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("format", format),
	}

	metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.UploadBytesReceived.Add(ctx, sizeBytes, metric.WithAttributes(attrs...))

	statusAttr := attribute.String("status", "success")
	if err != nil {
		statusAttr = attribute.String("status", "failure")
		metrics.ParseErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		metrics.RowsParsed.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
	}
	metrics.ParseDuration.Record(ctx, parseDuration.Seconds(), metric.WithAttributes(append(attrs, statusAttr)...))
}

// RecordAnalysis records metrics for an analysis provider call
func RecordAnalysis(ctx context.Context, provider string, duration time.Duration, err error) {
	metrics := BusinessMetricsFromContext(ctx)
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
	}

	metrics.AnalysisRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	statusAttr := attribute.String("status", "success")
	if err != nil {
		statusAttr = attribute.String("status", "failure")
		metrics.AnalysisErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	metrics.AnalysisDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(append(attrs, statusAttr)...))
}

// RecordReport records metrics for a generated report
func RecordReport(ctx context.Context, charts int, duration time.Duration) {
	metrics := BusinessMetricsFromContext(ctx)
	if metrics == nil {
		return
	}

	metrics.ReportsGenerated.Add(ctx, 1)
	metrics.ChartsRendered.Add(ctx, int64(charts))
	metrics.ReportBuildDuration.Record(ctx, duration.Seconds())
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
