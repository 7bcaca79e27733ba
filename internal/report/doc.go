// Package report aggregates and exports the verdicts of a validation run.
//
// Sinks receive verdicts as the validator emits them:
//
//   - Collector keeps them in memory for inspection and report building
//   - LogSink writes one structured log line per verdict
//   - MetricsSink feeds the OpenTelemetry verdict counter and missing-value histogram
//   - Multi fans out to several sinks
//
// A Report is a snapshot of a Collector and can be written as JSON, CSV or XLSX.
package report
