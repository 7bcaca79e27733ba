package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"metricqa/internal/catalog"
	"metricqa/internal/config"
	"metricqa/internal/dataset"
	"metricqa/internal/infrastructure"
	"metricqa/internal/quality"
	"metricqa/internal/report"
)

// ValidationService runs quality validation for the CLI and the HTTP API.
// The catalog is reloaded on every run.
type ValidationService struct {
	cfg      config.ValidationConfig
	catalog  catalog.Source
	metrics  *infrastructure.QualityMetrics
	tracer   trace.Tracer
	expected []string
	logger   *slog.Logger
}

// ValidationOption configures a ValidationService.
type ValidationOption func(*ValidationService)

// WithQualityMetrics records verdict and run metrics.
func WithQualityMetrics(m *infrastructure.QualityMetrics) ValidationOption {
	return func(s *ValidationService) { s.metrics = m }
}

// WithTracer traces every run.
func WithTracer(t trace.Tracer) ValidationOption {
	return func(s *ValidationService) { s.tracer = t }
}

// WithExpectedAssets reports assets that are absent from the dataset.
func WithExpectedAssets(assets ...string) ValidationOption {
	return func(s *ValidationService) { s.expected = append(s.expected, assets...) }
}

// NewValidationService creates a validation service.
func NewValidationService(cfg config.ValidationConfig, src catalog.Source, logger *slog.Logger, opts ...ValidationOption) *ValidationService {
	if logger == nil {
		logger = infrastructure.NopLogger()
	}
	s := &ValidationService{
		cfg:     cfg,
		catalog: src,
		logger:  logger.With(slog.String("service", "validation")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog loads the current metric catalog.
func (s *ValidationService) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	return s.catalog.Load(ctx)
}

// ValidateFile loads a CSV or XLSX file and validates it.
func (s *ValidationService) ValidateFile(ctx context.Context, path, sheet string) (*report.Report, error) {
	s.logger.InfoContext(ctx, "Loading dataset", slog.String("path", path), slog.String("sheet", sheet))

	ds, err := dataset.LoadFile(path, sheet, dataset.WithTextColumns(s.cfg.AssetColumn))
	if err != nil {
		return nil, err
	}
	return s.Validate(ctx, ds, filepath.Base(path))
}

// ValidateReader parses a dataset from r and validates it.
func (s *ValidationService) ValidateReader(ctx context.Context, r io.Reader, format dataset.Format, sheet, source string) (*report.Report, error) {
	ds, err := dataset.Read(r, format, sheet, dataset.WithTextColumns(s.cfg.AssetColumn))
	if err != nil {
		return nil, err
	}
	return s.Validate(ctx, ds, source)
}

// Validate runs every check over every asset of ds and returns the report.
func (s *ValidationService) Validate(ctx context.Context, ds *dataset.Dataset, source string) (*report.Report, error) {
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load metric catalog", slog.String("error", err.Error()))
		return nil, err
	}

	runID := infrastructure.GetRunID(ctx)
	if runID == "" {
		runID = infrastructure.GenerateID()
		ctx = infrastructure.WithRunID(ctx, runID)
	}

	collector := report.NewCollector()
	sinks := []report.Sink{collector, report.NewLogSink(s.logger)}
	if s.metrics != nil {
		sinks = append(sinks, report.NewMetricsSink(s.metrics))
	}

	opts := []quality.Option{
		quality.WithParallelism(s.cfg.Parallelism),
		quality.WithTracer(s.tracer),
	}
	if len(s.expected) > 0 {
		opts = append(opts, quality.WithExpectedAssets(s.expected...))
	}

	validator, err := quality.NewValidator(quality.NewConfig(s.cfg, cat), report.Multi(sinks...), s.logger, opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary, err := validator.Run(ctx, ds)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordRun(ctx, len(summary.Assets), time.Since(start))
	}

	r := collector.Report(summary.RunID, source)
	s.logger.InfoContext(ctx, "Validation report ready",
		slog.String("source", source),
		slog.Int("catalog_metrics", cat.Len()),
		slog.Int("assets", r.Summary.Assets),
		slog.Int("failed", r.Summary.Failed),
		slog.Bool("passed", r.Passed()))

	return r, nil
}
