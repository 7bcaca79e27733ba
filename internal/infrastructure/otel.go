package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"metricqa/internal/config"
)

const (
	ServiceVersion = "1.0.0"
	MeterName      = "metricqa"
)

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// always usable; they are no-ops when the corresponding signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// NoopProviders returns providers that record nothing.
func NoopProviders(logger *slog.Logger) *OTelProviders {
	if logger == nil {
		logger = NopLogger()
	}
	return &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}
}

// InitializeOTel sets up tracing and metrics. Providers are returned to the
// caller rather than registered globally.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	providers := NoopProviders(logger)
	ctx := context.Background()

	providers.Logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	if cfg.EnableTracing {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return providers, nil
}

func initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	case "none", "":
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
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	return nil
}

func initializeMetrics(res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return nil
}

// Shutdown flushes and stops the providers
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

	return errors.Join(errs...)
}

// QualityMetrics are the instruments recorded for every validation run.
type QualityMetrics struct {
	VerdictsTotal   metric.Int64Counter
	MissingPercent  metric.Float64Histogram
	AssetsValidated metric.Int64Counter
	RunDuration     metric.Float64Histogram
	HTTPRequests    metric.Int64Counter
}

// CreateQualityMetrics creates the validation instruments on meter.
func CreateQualityMetrics(meter metric.Meter) (*QualityMetrics, error) {
	verdicts, err := meter.Int64Counter(
		"metricqa_verdicts_total",
		metric.WithDescription("Check verdicts by check and outcome"),
	)
	if err != nil {
		return nil, err
	}

	missing, err := meter.Float64Histogram(
		"metricqa_missing_percent",
		metric.WithDescription("Missing-value percentage per asset, excluding the trailing row"),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 75, 100),
	)
	if err != nil {
		return nil, err
	}

	assets, err := meter.Int64Counter(
		"metricqa_assets_validated_total",
		metric.WithDescription("Asset partitions validated"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"metricqa_run_duration_seconds",
		metric.WithDescription("Validation run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter(
		"metricqa_http_requests_total",
		metric.WithDescription("HTTP requests by route and status"),
	)
	if err != nil {
		return nil, err
	}

	return &QualityMetrics{
		VerdictsTotal:   verdicts,
		MissingPercent:  missing,
		AssetsValidated: assets,
		RunDuration:     duration,
		HTTPRequests:    requests,
	}, nil
}

// RecordRun records a finished run's duration and asset count.
func (m *QualityMetrics) RecordRun(ctx context.Context, assets int, duration time.Duration) {
	m.AssetsValidated.Add(ctx, int64(assets))
	m.RunDuration.Record(ctx, duration.Seconds())
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
