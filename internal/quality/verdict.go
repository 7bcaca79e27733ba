package quality

import (
	"context"
	"fmt"

	"metricqa/internal/dataset"
)

// CheckID identifies one data-quality check.
type CheckID string

const (
	CheckNonEmpty          CheckID = "non_empty"
	CheckNotAllMissing     CheckID = "not_all_missing"
	CheckLastRowMissing    CheckID = "last_row_missing"
	CheckPreviousRowFilled CheckID = "second_to_last_row_present"
	CheckNoDuplicates      CheckID = "no_duplicates"
	CheckColumnNames       CheckID = "column_names"
	CheckDataTypes         CheckID = "data_types"
	CheckDatesSorted       CheckID = "dates_sorted"
	CheckNoMissingDates    CheckID = "no_missing_dates"
	CheckNonNegative       CheckID = "values_non_negative"
	CheckMissingPercent    CheckID = "nan_percentage"
	CheckValueRange        CheckID = "value_range"
	CheckFloatColumns      CheckID = "float_columns"
)

// Outcome is the result of one check on one asset.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
	// OutcomeInsufficient means the partition is too small to evaluate the
	// check. It is neither a pass nor a failure.
	OutcomeInsufficient Outcome = "insufficient_data"
	// OutcomeInfo carries a measurement rather than a judgement.
	OutcomeInfo Outcome = "info"
)

// Verdict is the outcome of one check on one asset partition. Detail holds
// one of the *Detail types below, or nil.
type Verdict struct {
	Check   CheckID `json:"check"`
	Asset   string  `json:"asset"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message"`
	Detail  any     `json:"detail,omitempty"`
}

// Failed reports whether the verdict is a failure.
func (v Verdict) Failed() bool { return v.Outcome == OutcomeFail }

func newVerdict(id CheckID, p *dataset.Partition, outcome Outcome, detail any, format string, args ...any) Verdict {
	return Verdict{
		Check:   id,
		Asset:   p.Asset,
		Outcome: outcome,
		Message: fmt.Sprintf(format, args...),
		Detail:  detail,
	}
}

func insufficient(id CheckID, p *dataset.Partition, required int) Verdict {
	return newVerdict(id, p, OutcomeInsufficient,
		InsufficientDetail{Required: required, Actual: p.Len()},
		"needs at least %d rows, partition has %d", required, p.Len())
}

// Sink receives every verdict a run produces, in emission order.
type Sink interface {
	Record(ctx context.Context, v Verdict)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, v Verdict)

// Record implements Sink.
func (f SinkFunc) Record(ctx context.Context, v Verdict) { f(ctx, v) }

// InsufficientDetail reports how many rows a check needed.
type InsufficientDetail struct {
	Required int `json:"required_rows"`
	Actual   int `json:"actual_rows"`
}

// RowCountDetail reports the partition size.
type RowCountDetail struct {
	Rows int `json:"rows"`
}

// ColumnsDetail lists the columns of one row that broke a row-level rule.
type ColumnsDetail struct {
	Row     int      `json:"row"`
	Columns []string `json:"columns"`
}

// RowsDetail lists offending row indices of the input dataset.
type RowsDetail struct {
	Rows []int `json:"rows"`
}

// ColumnSetDetail holds both differences between expected and actual columns.
type ColumnSetDetail struct {
	Missing    []string `json:"missing"`
	Unexpected []string `json:"unexpected"`
}

// TypeMismatch is a catalog column whose type is not numeric.
type TypeMismatch struct {
	Column string             `json:"column"`
	Type   dataset.ColumnType `json:"type"`
}

// TypeDetail lists every column that failed type conformance.
type TypeDetail struct {
	Offending []TypeMismatch `json:"offending"`
}

// SortDetail locates the first row out of timestamp order. Unparseable lists
// rows whose timestamp is missing or could not be parsed.
type SortDetail struct {
	FirstUnsortedRow int   `json:"first_unsorted_row"`
	Unparseable      []int `json:"unparseable_rows,omitempty"`
}

// MissingDatesDetail lists the calendar days absent from [Start, End].
type MissingDatesDetail struct {
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Missing []string `json:"missing"`
}

// Cell is one offending value. Infinite values encode as "+Inf" or "-Inf".
type Cell struct {
	Row    int           `json:"row"`
	Column string        `json:"column"`
	Value  dataset.Value `json:"value"`
}

// CellsDetail holds offending cells and the distinct rows they sit in.
type CellsDetail struct {
	Rows  []int  `json:"rows"`
	Cells []Cell `json:"cells"`
}

// MissingPercentDetail is the missing-value measurement for one asset.
type MissingPercentDetail struct {
	Percent      float64 `json:"percent"`
	MissingCells int     `json:"missing_cells"`
	TotalCells   int     `json:"total_cells"`
}

// RangeViolation is a value outside its configured bounds.
type RangeViolation struct {
	Cell
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FloatDetail lists configured columns that are not floating point, and
// configured columns absent from the data.
type FloatDetail struct {
	Offending []TypeMismatch `json:"offending"`
	Unchecked []string       `json:"unchecked_columns,omitempty"`
}

// RangeDetail lists out-of-range values and rules naming absent columns.
type RangeDetail struct {
	Violations []RangeViolation `json:"violations"`
	Unchecked  []string         `json:"unchecked_columns,omitempty"`
}
