package quality

import (
	"slices"
	"time"

	"metricqa/internal/dataset"
)

// Check is one independent validation rule. Run never fails for data
// problems; findings are expressed through the verdict outcome.
type Check struct {
	ID  CheckID
	Run func(p *dataset.Partition, cfg *Config) Verdict
}

// DefaultChecks returns the checks in their fixed execution order. The value
// range check is appended only when range rules are configured.
func DefaultChecks(cfg *Config) []Check {
	checks := []Check{
		{CheckNonEmpty, NonEmpty},
		{CheckNotAllMissing, NotAllMissing},
		{CheckLastRowMissing, LastRowMissing},
		{CheckPreviousRowFilled, PreviousRowFilled},
		{CheckNoDuplicates, NoDuplicates},
		{CheckColumnNames, ColumnNames},
		{CheckDataTypes, DataTypes},
		{CheckDatesSorted, DatesSorted},
		{CheckNoMissingDates, NoMissingDates},
		{CheckNonNegative, ValuesNonNegative},
		{CheckMissingPercent, MissingPercent},
	}
	if len(cfg.Ranges) > 0 {
		checks = append(checks, Check{CheckValueRange, ValueRange})
	}
	if len(cfg.FloatColumns) > 0 {
		checks = append(checks, Check{CheckFloatColumns, FloatColumns})
	}
	return checks
}

// NonEmpty fails when the partition has no rows.
func NonEmpty(p *dataset.Partition, _ *Config) Verdict {
	if p.Len() == 0 {
		return newVerdict(CheckNonEmpty, p, OutcomeFail, RowCountDetail{Rows: 0}, "partition has no rows")
	}
	return newVerdict(CheckNonEmpty, p, OutcomePass, RowCountDetail{Rows: p.Len()}, "%d rows", p.Len())
}

// NotAllMissing fails when every non-excluded value is missing.
func NotAllMissing(p *dataset.Partition, cfg *Config) Verdict {
	cols := includedColumns(p, cfg)
	for i := 0; i < p.Len(); i++ {
		for _, c := range cols {
			if !p.Value(i, c).IsMissing() {
				return newVerdict(CheckNotAllMissing, p, OutcomePass, nil, "partition has present values")
			}
		}
	}
	return newVerdict(CheckNotAllMissing, p, OutcomeFail, RowCountDetail{Rows: p.Len()},
		"all values missing across %d non-excluded columns", len(cols))
}

// LastRowMissing expects the most recent row to be provisional: every
// non-excluded value missing.
func LastRowMissing(p *dataset.Partition, cfg *Config) Verdict {
	if p.Len() == 0 {
		return insufficient(CheckLastRowMissing, p, 1)
	}
	last := p.Len() - 1
	present := presentColumns(p, cfg, last)
	if len(present) > 0 {
		return newVerdict(CheckLastRowMissing, p, OutcomeFail,
			ColumnsDetail{Row: p.RowIndex(last), Columns: present},
			"last row has %d present values", len(present))
	}
	return newVerdict(CheckLastRowMissing, p, OutcomePass, nil, "last row is empty")
}

// PreviousRowFilled expects the row before the provisional last row to carry
// at least one non-excluded value.
func PreviousRowFilled(p *dataset.Partition, cfg *Config) Verdict {
	if p.Len() < 2 {
		return insufficient(CheckPreviousRowFilled, p, 2)
	}
	row := p.Len() - 2
	if len(presentColumns(p, cfg, row)) == 0 {
		return newVerdict(CheckPreviousRowFilled, p, OutcomeFail,
			RowsDetail{Rows: []int{p.RowIndex(row)}},
			"second-to-last row has no present values")
	}
	return newVerdict(CheckPreviousRowFilled, p, OutcomePass, nil, "second-to-last row has present values")
}

// NoDuplicates fails when two rows are identical across every column. The
// detail lists the later occurrences.
func NoDuplicates(p *dataset.Partition, _ *Config) Verdict {
	seen := make(map[string]struct{}, p.Len())
	var dups []int
	for i := 0; i < p.Len(); i++ {
		key := p.RowKey(i)
		if _, ok := seen[key]; ok {
			dups = append(dups, p.RowIndex(i))
			continue
		}
		seen[key] = struct{}{}
	}
	if len(dups) > 0 {
		return newVerdict(CheckNoDuplicates, p, OutcomeFail, RowsDetail{Rows: dups}, "%d duplicate rows", len(dups))
	}
	return newVerdict(CheckNoDuplicates, p, OutcomePass, nil, "no duplicate rows")
}

// ColumnNames compares the data columns with the expected schema.
func ColumnNames(p *dataset.Partition, cfg *Config) Verdict {
	expected := cfg.Schema.Names()
	actual := p.ColumnNames()

	detail := ColumnSetDetail{
		Missing:    difference(expected, actual),
		Unexpected: difference(actual, expected),
	}
	if len(detail.Missing) > 0 || len(detail.Unexpected) > 0 {
		return newVerdict(CheckColumnNames, p, OutcomeFail, detail,
			"%d missing and %d unexpected columns", len(detail.Missing), len(detail.Unexpected))
	}
	return newVerdict(CheckColumnNames, p, OutcomePass, nil, "columns match catalog")
}

// DataTypes fails when a catalog column present in the data is not numeric.
func DataTypes(p *dataset.Partition, cfg *Config) Verdict {
	var offending []TypeMismatch
	for _, d := range cfg.Schema.Metrics() {
		col, ok := p.Dataset().Column(d.Name)
		if !ok {
			continue
		}
		if !d.Accepts(col.Type) {
			offending = append(offending, TypeMismatch{Column: col.Name, Type: col.Type})
		}
	}
	if len(offending) > 0 {
		return newVerdict(CheckDataTypes, p, OutcomeFail, TypeDetail{Offending: offending},
			"%d catalog columns are not numeric", len(offending))
	}
	return newVerdict(CheckDataTypes, p, OutcomePass, nil, "catalog columns are numeric")
}

// DatesSorted stable-sorts the timestamps and compares them with the input
// order. Missing or unparseable timestamps fail the check.
func DatesSorted(p *dataset.Partition, cfg *Config) Verdict {
	times, bad := timestamps(p, cfg.TimeColumn)
	if len(bad) > 0 {
		return newVerdict(CheckDatesSorted, p, OutcomeFail,
			SortDetail{FirstUnsortedRow: bad[0], Unparseable: bad},
			"%d rows have no parseable timestamp", len(bad))
	}

	sorted := slices.Clone(times)
	slices.SortStableFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	for i := range times {
		if !sorted[i].Equal(times[i]) {
			return newVerdict(CheckDatesSorted, p, OutcomeFail,
				SortDetail{FirstUnsortedRow: p.RowIndex(i)},
				"rows are not in timestamp order from row %d", p.RowIndex(i))
		}
	}
	return newVerdict(CheckDatesSorted, p, OutcomePass, nil, "timestamps are sorted")
}

// NoMissingDates fails when a calendar day between the first and last
// timestamp has no row. Timestamps are reduced to dates on a private copy.
func NoMissingDates(p *dataset.Partition, cfg *Config) Verdict {
	if p.Len() == 0 {
		return insufficient(CheckNoMissingDates, p, 1)
	}

	present := make(map[string]struct{}, p.Len())
	var first, last time.Time
	for i := 0; i < p.Len(); i++ {
		t, ok := p.Value(i, cfg.TimeColumn).Time()
		if !ok {
			continue
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		present[day.Format(time.DateOnly)] = struct{}{}
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}
	if len(present) == 0 {
		return insufficient(CheckNoMissingDates, p, 1)
	}

	missing := []string{}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if _, ok := present[day.Format(time.DateOnly)]; !ok {
			missing = append(missing, day.Format(time.DateOnly))
		}
	}

	detail := MissingDatesDetail{
		Start:   first.Format(time.DateOnly),
		End:     last.Format(time.DateOnly),
		Missing: missing,
	}
	if len(missing) > 0 {
		return newVerdict(CheckNoMissingDates, p, OutcomeFail, detail, "%d missing dates", len(missing))
	}
	return newVerdict(CheckNoMissingDates, p, OutcomePass, detail, "no missing dates")
}

// ValuesNonNegative fails when a catalog column holds a negative value.
// Missing values are dropped column by column before the comparison.
func ValuesNonNegative(p *dataset.Partition, cfg *Config) Verdict {
	var cells []Cell
	for _, name := range metricColumns(p, cfg) {
		for i := 0; i < p.Len(); i++ {
			v := p.Value(i, name)
			if v.IsMissing() {
				continue
			}
			if f, ok := v.Float64(); ok && f < 0 {
				cells = append(cells, Cell{Row: p.RowIndex(i), Column: name, Value: v})
			}
		}
	}
	if len(cells) > 0 {
		return newVerdict(CheckNonNegative, p, OutcomeFail,
			CellsDetail{Rows: distinctRows(cells), Cells: cells},
			"%d negative values", len(cells))
	}
	return newVerdict(CheckNonNegative, p, OutcomePass, nil, "no negative values")
}

// MissingPercent measures the share of missing cells over every column and
// every row except the last, which is expected to be empty.
func MissingPercent(p *dataset.Partition, _ *Config) Verdict {
	if p.Len() <= 1 {
		v := insufficient(CheckMissingPercent, p, 2)
		v.Detail = MissingPercentDetail{}
		return v
	}

	cols := p.ColumnNames()
	total := (p.Len() - 1) * len(cols)
	missing := 0
	for i := 0; i < p.Len()-1; i++ {
		for _, c := range cols {
			if p.Value(i, c).IsMissing() {
				missing++
			}
		}
	}

	detail := MissingPercentDetail{MissingCells: missing, TotalCells: total}
	if total > 0 {
		detail.Percent = float64(missing) / float64(total) * 100
	}
	return newVerdict(CheckMissingPercent, p, OutcomeInfo, detail,
		"%.2f%% of values missing excluding the last row", detail.Percent)
}

// ValueRange fails when a present value lies outside its configured bounds.
// Rules naming a column absent from the data are reported as unchecked.
func ValueRange(p *dataset.Partition, cfg *Config) Verdict {
	detail := RangeDetail{Violations: []RangeViolation{}}
	for _, rule := range cfg.Ranges {
		if !p.Dataset().HasColumn(rule.Column) {
			detail.Unchecked = append(detail.Unchecked, rule.Column)
			continue
		}
		for i := 0; i < p.Len(); i++ {
			v := p.Value(i, rule.Column)
			f, ok := v.Float64()
			if !ok || (f >= rule.Min && f <= rule.Max) {
				continue
			}
			detail.Violations = append(detail.Violations, RangeViolation{
				Cell: Cell{Row: p.RowIndex(i), Column: rule.Column, Value: v},
				Min:  rule.Min,
				Max:  rule.Max,
			})
		}
	}
	if len(detail.Violations) > 0 {
		return newVerdict(CheckValueRange, p, OutcomeFail, detail, "%d values out of range", len(detail.Violations))
	}
	return newVerdict(CheckValueRange, p, OutcomePass, detail, "values within range")
}

// FloatColumns fails when a configured column is not floating point.
// Integer columns fail too; columns absent from the data are unchecked.
func FloatColumns(p *dataset.Partition, cfg *Config) Verdict {
	detail := FloatDetail{Offending: []TypeMismatch{}}
	for _, name := range cfg.FloatColumns {
		col, ok := p.Dataset().Column(name)
		if !ok {
			detail.Unchecked = append(detail.Unchecked, name)
			continue
		}
		if col.Type != dataset.TypeFloat64 {
			detail.Offending = append(detail.Offending, TypeMismatch{Column: name, Type: col.Type})
		}
	}
	if len(detail.Offending) > 0 {
		return newVerdict(CheckFloatColumns, p, OutcomeFail, detail, "%d columns are not float", len(detail.Offending))
	}
	return newVerdict(CheckFloatColumns, p, OutcomePass, detail, "configured columns are float")
}

func includedColumns(p *dataset.Partition, cfg *Config) []string {
	var cols []string
	for _, name := range p.ColumnNames() {
		if !cfg.excluded(name) {
			cols = append(cols, name)
		}
	}
	return cols
}

func presentColumns(p *dataset.Partition, cfg *Config, row int) []string {
	var present []string
	for _, c := range includedColumns(p, cfg) {
		if !p.Value(row, c).IsMissing() {
			present = append(present, c)
		}
	}
	return present
}

// metricColumns returns catalog columns present in the data, in catalog order.
func metricColumns(p *dataset.Partition, cfg *Config) []string {
	var cols []string
	for _, d := range cfg.Schema.Metrics() {
		if p.Dataset().HasColumn(d.Name) {
			cols = append(cols, d.Name)
		}
	}
	return cols
}

// timestamps parses the time column. bad holds input row indices of cells
// that are missing or unparseable.
func timestamps(p *dataset.Partition, column string) (times []time.Time, bad []int) {
	times = make([]time.Time, p.Len())
	for i := range times {
		t, ok := p.Value(i, column).Time()
		if !ok {
			bad = append(bad, p.RowIndex(i))
			continue
		}
		times[i] = t
	}
	return times, bad
}

// difference returns the sorted elements of a not in b.
func difference(a, b []string) []string {
	out := []string{}
	for _, s := range a {
		if !slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

func distinctRows(cells []Cell) []int {
	rows := make([]int, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, c.Row)
	}
	slices.Sort(rows)
	return slices.Compact(rows)
}
