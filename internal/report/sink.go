package report

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"metricqa/internal/infrastructure"
	"metricqa/internal/quality"
)

// Sink receives verdicts from a validation run.
type Sink = quality.Sink

// Summary counts verdicts by outcome.
type Summary struct {
	Assets       int `json:"assets"`
	Verdicts     int `json:"verdicts"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Insufficient int `json:"insufficient"`
	Info         int `json:"info"`
}

// Collector keeps every verdict in memory for inspection after the run.
// It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	verdicts []quality.Verdict
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record implements Sink.
func (c *Collector) Record(_ context.Context, v quality.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts = append(c.verdicts, v)
}

// Verdicts returns every verdict in recording order.
func (c *Collector) Verdicts() []quality.Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]quality.Verdict, len(c.verdicts))
	copy(out, c.verdicts)
	return out
}

// Failures returns the failed verdicts in recording order.
func (c *Collector) Failures() []quality.Verdict {
	var out []quality.Verdict
	for _, v := range c.Verdicts() {
		if v.Failed() {
			out = append(out, v)
		}
	}
	return out
}

// ByAsset groups verdicts by asset id.
func (c *Collector) ByAsset() map[string][]quality.Verdict {
	out := make(map[string][]quality.Verdict)
	for _, v := range c.Verdicts() {
		out[v.Asset] = append(out[v.Asset], v)
	}
	return out
}

// ByCheck groups verdicts by check id.
func (c *Collector) ByCheck() map[quality.CheckID][]quality.Verdict {
	out := make(map[quality.CheckID][]quality.Verdict)
	for _, v := range c.Verdicts() {
		out[v.Check] = append(out[v.Check], v)
	}
	return out
}

// Find returns the verdict of one check for one asset.
func (c *Collector) Find(asset string, check quality.CheckID) (quality.Verdict, bool) {
	for _, v := range c.Verdicts() {
		if v.Asset == asset && v.Check == check {
			return v, true
		}
	}
	return quality.Verdict{}, false
}

// Assets returns asset ids in first-recorded order.
func (c *Collector) Assets() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range c.Verdicts() {
		if _, ok := seen[v.Asset]; ok {
			continue
		}
		seen[v.Asset] = struct{}{}
		out = append(out, v.Asset)
	}
	return out
}

// Summary counts the recorded verdicts.
func (c *Collector) Summary() Summary {
	s := Summary{Assets: len(c.Assets())}
	for _, v := range c.Verdicts() {
		s.Verdicts++
		switch v.Outcome {
		case quality.OutcomePass:
			s.Passed++
		case quality.OutcomeFail:
			s.Failed++
		case quality.OutcomeInsufficient:
			s.Insufficient++
		case quality.OutcomeInfo:
			s.Info++
		}
	}
	return s
}

// MissingPercent returns the missing-value percentage measured per asset.
func (c *Collector) MissingPercent() map[string]float64 {
	out := make(map[string]float64)
	for _, v := range c.Verdicts() {
		if d, ok := v.Detail.(quality.MissingPercentDetail); ok {
			out[v.Asset] = d.Percent
		}
	}
	return out
}

// LogSink writes one log line per verdict: failures at WARN, insufficient
// data at INFO, everything else at DEBUG.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log sink. A nil logger discards output.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = infrastructure.NopLogger()
	}
	return &LogSink{logger: logger.With(slog.String("component", "quality_report"))}
}

// Record implements Sink.
func (s *LogSink) Record(ctx context.Context, v quality.Verdict) {
	level := slog.LevelDebug
	msg := "Check passed"
	switch v.Outcome {
	case quality.OutcomeFail:
		level, msg = slog.LevelWarn, "Check failed"
	case quality.OutcomeInsufficient:
		level, msg = slog.LevelInfo, "Check could not be evaluated"
	case quality.OutcomeInfo:
		msg = "Check measured"
	}

	attrs := []slog.Attr{
		slog.String("asset", v.Asset),
		slog.String("check", string(v.Check)),
		slog.String("outcome", string(v.Outcome)),
		slog.String("detail_message", v.Message),
	}
	if v.Detail != nil && v.Outcome != quality.OutcomePass {
		attrs = append(attrs, slog.Any("detail", v.Detail))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// MetricsSink counts verdicts and records missing-value percentages.
type MetricsSink struct {
	metrics *infrastructure.QualityMetrics
}

// NewMetricsSink creates a sink over the given instruments.
func NewMetricsSink(m *infrastructure.QualityMetrics) *MetricsSink {
	return &MetricsSink{metrics: m}
}

// Record implements Sink.
func (s *MetricsSink) Record(ctx context.Context, v quality.Verdict) {
	s.metrics.VerdictsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", string(v.Check)),
		attribute.String("outcome", string(v.Outcome)),
	))
	if d, ok := v.Detail.(quality.MissingPercentDetail); ok && v.Outcome == quality.OutcomeInfo {
		s.metrics.MissingPercent.Record(ctx, d.Percent)
	}
}

type multiSink struct {
	mu    sync.Mutex
	sinks []Sink
}

// Multi fans every verdict out to each sink in order. Calls are serialized.
func Multi(sinks ...Sink) Sink {
	var kept []Sink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &multiSink{sinks: kept}
}

func (m *multiSink) Record(ctx context.Context, v quality.Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sinks {
		s.Record(ctx, v)
	}
}
