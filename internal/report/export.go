package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"metricqa/internal/quality"
)

var verdictHeader = []string{"run_id", "asset", "check", "outcome", "message", "detail"}

func (r *Report) verdictRecords() ([][]string, error) {
	records := make([][]string, 0, len(r.Verdicts))
	for _, v := range r.Verdicts {
		detail, err := detailJSON(v)
		if err != nil {
			return nil, fmt.Errorf("format detail for %s/%s: %w", v.Asset, v.Check, err)
		}
		records = append(records, []string{
			r.RunID,
			v.Asset,
			string(v.Check),
			string(v.Outcome),
			v.Message,
			detail,
		})
	}
	return records, nil
}

func detailJSON(v quality.Verdict) (string, error) {
	if v.Detail == nil {
		return "", nil
	}
	b, err := json.Marshal(v.Detail)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteCSV writes one row per verdict. Details are embedded as JSON.
func (r *Report) WriteCSV(w io.Writer) error {
	records, err := r.verdictRecords()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(verdictHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("write CSV records: %w", err)
	}
	return nil
}

const (
	sheetSummary  = "Summary"
	sheetVerdicts = "Verdicts"
	sheetMissing  = "Missing"
)

// WriteXLSX writes a workbook with summary, verdict and missing-value sheets.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Run ID", r.RunID},
		{"Generated At", r.GeneratedAt.Format(time.RFC3339)},
		{"Source", r.Source},
		{"Assets", r.Summary.Assets},
		{"Verdicts", r.Summary.Verdicts},
		{"Passed", r.Summary.Passed},
		{"Failed", r.Summary.Failed},
		{"Insufficient", r.Summary.Insufficient},
		{"Info", r.Summary.Info},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return err
	}

	records, err := r.verdictRecords()
	if err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, toRow(verdictHeader))
	for _, rec := range records {
		rows = append(rows, toRow(rec))
	}
	if _, err := f.NewSheet(sheetVerdicts); err != nil {
		return fmt.Errorf("create verdict sheet: %w", err)
	}
	if err := writeRows(f, sheetVerdicts, rows); err != nil {
		return err
	}

	missing := [][]interface{}{{"asset", "missing_percent"}}
	for _, asset := range r.assetsWithMissing() {
		missing = append(missing, []interface{}{asset, r.MissingPercent[asset]})
	}
	if _, err := f.NewSheet(sheetMissing); err != nil {
		return fmt.Errorf("create missing sheet: %w", err)
	}
	if err := writeRows(f, sheetMissing, missing); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// assetsWithMissing lists assets with a measurement, in report asset order
// followed by any others sorted by name.
func (r *Report) assetsWithMissing() []string {
	seen := make(map[string]struct{}, len(r.MissingPercent))
	var out []string
	for _, a := range r.Assets {
		if _, ok := r.MissingPercent[a]; ok {
			out = append(out, a)
			seen[a] = struct{}{}
		}
	}
	var rest []string
	for a := range r.MissingPercent {
		if _, ok := seen[a]; !ok {
			rest = append(rest, a)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
