package quality

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"metricqa/internal/dataset"
	apperrors "metricqa/internal/errors"
	"metricqa/internal/infrastructure"
)

// RunSummary describes a finished validation run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Assets       []string      `json:"assets"`
	Verdicts     int           `json:"verdicts"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	Insufficient int           `json:"insufficient"`
	Info         int           `json:"info"`
}

// HasFailures reports whether any check failed.
func (s *RunSummary) HasFailures() bool { return s.Failed > 0 }

func (s *RunSummary) count(v Verdict) {
	s.Verdicts++
	switch v.Outcome {
	case OutcomePass:
		s.Passed++
	case OutcomeFail:
		s.Failed++
	case OutcomeInsufficient:
		s.Insufficient++
	case OutcomeInfo:
		s.Info++
	}
}

// Validator runs every check against every asset partition of a dataset.
type Validator struct {
	cfg         *Config
	checks      []Check
	sink        Sink
	logger      *slog.Logger
	tracer      trace.Tracer
	parallelism int
	expected    []string
}

// Option configures a Validator.
type Option func(*Validator)

// WithParallelism validates up to n assets concurrently. Verdict order is
// the same as a sequential run.
func WithParallelism(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.parallelism = n
		}
	}
}

// WithTracer records a span per run and per asset.
func WithTracer(t trace.Tracer) Option {
	return func(v *Validator) {
		if t != nil {
			v.tracer = t
		}
	}
}

// WithExpectedAssets validates the listed assets even when the dataset has no
// rows for them. Such assets get an empty partition and fail the non-empty
// check.
func WithExpectedAssets(assets ...string) Option {
	return func(v *Validator) {
		v.expected = append(v.expected, assets...)
	}
}

// WithChecks replaces the default check list.
func WithChecks(checks ...Check) Option {
	return func(v *Validator) {
		v.checks = checks
	}
}

// NewValidator creates a validator. A nil sink discards verdicts and a nil
// logger discards log output.
func NewValidator(cfg *Config, sink Sink, logger *slog.Logger, opts ...Option) (*Validator, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("validator config is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = SinkFunc(func(context.Context, Verdict) {})
	}
	if logger == nil {
		logger = infrastructure.NopLogger()
	}

	v := &Validator{
		cfg:         cfg,
		checks:      DefaultChecks(cfg),
		sink:        sink,
		logger:      logger.With(slog.String("component", "quality_validator")),
		tracer:      tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Run validates ds. Every check runs for every asset regardless of earlier
// failures, and every verdict reaches the sink. An error is returned only
// for input problems that prevent validation or when ctx is cancelled.
func (v *Validator) Run(ctx context.Context, ds *dataset.Dataset) (*RunSummary, error) {
	runID := infrastructure.GetRunID(ctx)
	if runID == "" {
		runID = infrastructure.GenerateID()
		ctx = infrastructure.WithRunID(ctx, runID)
	}

	summary := &RunSummary{RunID: runID, StartedAt: time.Now()}

	ctx, span := v.tracer.Start(ctx, "quality.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("dataset.rows", ds.Len()),
			attribute.Int("checks", len(v.checks)),
		),
	)
	defer span.End()

	for _, col := range []string{v.cfg.AssetColumn, v.cfg.TimeColumn} {
		if !ds.HasColumn(col) {
			err := apperrors.NewMissingColumnError(col)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Message)
			return nil, err
		}
	}

	parts, err := v.partitions(ds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "partitioning failed")
		return nil, err
	}

	v.logger.InfoContext(ctx, "Starting validation run",
		slog.Int("rows", ds.Len()),
		slog.Int("assets", len(parts)),
		slog.Int("checks", len(v.checks)),
		slog.Int("parallelism", v.parallelism))

	if v.parallelism > 1 && len(parts) > 1 {
		err = v.runParallel(ctx, parts, summary)
	} else {
		err = v.runSequential(ctx, parts, summary)
	}
	summary.Duration = time.Since(summary.StartedAt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation run aborted")
		v.logger.WarnContext(ctx, "Validation run aborted",
			slog.String("error", err.Error()),
			slog.Int("assets_completed", len(summary.Assets)))
		return summary, err
	}

	span.SetAttributes(
		attribute.Int("verdicts", summary.Verdicts),
		attribute.Int("failures", summary.Failed),
	)
	span.SetStatus(codes.Ok, fmt.Sprintf("validated %d assets", len(summary.Assets)))

	v.logger.InfoContext(ctx, "Validation run complete",
		slog.Int("assets", len(summary.Assets)),
		slog.Int("verdicts", summary.Verdicts),
		slog.Int("failed", summary.Failed),
		slog.Int("insufficient", summary.Insufficient),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

// partitions groups rows by asset in first-seen order, then appends empty
// partitions for expected assets the data lacks.
func (v *Validator) partitions(ds *dataset.Dataset) ([]*dataset.Partition, error) {
	parts, err := ds.PartitionBy(v.cfg.AssetColumn)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		seen[p.Asset] = struct{}{}
	}
	for _, asset := range v.expected {
		if _, ok := seen[asset]; ok {
			continue
		}
		seen[asset] = struct{}{}
		p, err := ds.Partition(v.cfg.AssetColumn, asset)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func (v *Validator) runSequential(ctx context.Context, parts []*dataset.Partition, summary *RunSummary) error {
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		v.flush(ctx, p.Asset, v.validateAsset(ctx, p), summary)
	}
	return nil
}

// runParallel checks assets concurrently into per-asset buffers, then
// flushes the buffers in partition order.
func (v *Validator) runParallel(ctx context.Context, parts []*dataset.Partition, summary *RunSummary) error {
	results := make([][]Verdict, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.parallelism)
	for i, p := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.validateAsset(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, p := range parts {
		v.flush(ctx, p.Asset, results[i], summary)
	}
	return nil
}

func (v *Validator) flush(ctx context.Context, asset string, verdicts []Verdict, summary *RunSummary) {
	for _, verdict := range verdicts {
		v.sink.Record(ctx, verdict)
		summary.count(verdict)
	}
	summary.Assets = append(summary.Assets, asset)
}

func (v *Validator) validateAsset(ctx context.Context, p *dataset.Partition) []Verdict {
	_, span := v.tracer.Start(ctx, "quality.asset",
		trace.WithAttributes(
			attribute.String("asset", p.Asset),
			attribute.Int("rows", p.Len()),
		),
	)
	defer span.End()

	verdicts := make([]Verdict, 0, len(v.checks))
	failed := 0
	for _, check := range v.checks {
		verdict := check.Run(p, v.cfg)
		if verdict.Failed() {
			failed++
		}
		verdicts = append(verdicts, verdict)
	}

	span.SetAttributes(attribute.Int("failures", failed))
	v.logger.DebugContext(ctx, "Asset validated",
		slog.String("asset", p.Asset),
		slog.Int("rows", p.Len()),
		slog.Int("failures", failed))

	return verdicts
}
