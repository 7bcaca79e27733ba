package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"metricqa/internal/quality"
)

// Report is the exportable result of one validation run.
type Report struct {
	RunID          string             `json:"run_id"`
	GeneratedAt    time.Time          `json:"generated_at"`
	Source         string             `json:"source,omitempty"`
	Summary        Summary            `json:"summary"`
	Assets         []string           `json:"assets"`
	MissingPercent map[string]float64 `json:"missing_percent"`
	Verdicts       []quality.Verdict  `json:"verdicts"`
}

// Report snapshots the collector into a report.
func (c *Collector) Report(runID, source string) *Report {
	assets := c.Assets()
	if assets == nil {
		assets = []string{}
	}
	return &Report{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC(),
		Source:         source,
		Summary:        c.Summary(),
		Assets:         assets,
		MissingPercent: c.MissingPercent(),
		Verdicts:       c.Verdicts(),
	}
}

// Passed reports whether no check failed.
func (r *Report) Passed() bool { return r.Summary.Failed == 0 }

// Failures returns the failed verdicts.
func (r *Report) Failures() []quality.Verdict {
	var out []quality.Verdict
	for _, v := range r.Verdicts {
		if v.Failed() {
			out = append(out, v)
		}
	}
	return out
}

// Format is a report export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, csv and xlsx, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

// FormatFromPath derives the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// Write encodes the report to w.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatXLSX:
		return r.WriteXLSX(w)
	default:
		return fmt.Errorf("unsupported report format %q", f)
	}
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// SaveToFile writes the report to path, creating parent directories.
func (r *Report) SaveToFile(path string, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	if err := r.Write(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
