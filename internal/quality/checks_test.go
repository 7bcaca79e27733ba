package quality

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metricqa/internal/catalog"
	"metricqa/internal/config"
	"metricqa/internal/dataset"
)

var testHeader = []string{"asset", "time", "PriceUSD", "TxCnt"}

func testConfig() *Config {
	return NewConfig(config.Default().Validation, catalog.New("PriceUSD", "TxCnt"))
}

func buildDataset(t *testing.T, header []string, records ...[]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(header, records)
	require.NoError(t, err)
	return ds
}

func btcPartition(t *testing.T, records ...[]string) *dataset.Partition {
	t.Helper()
	return dataset.NewPartition("btc", buildDataset(t, testHeader, records...))
}

// dailyRecords returns one row per day starting at start, with the last row
// provisional.
func dailyRecords(start time.Time, days int) [][]string {
	records := make([][]string, 0, days)
	for i := 0; i < days; i++ {
		rec := []string{"btc", start.AddDate(0, 0, i).Format(time.DateOnly), "10.5", "100"}
		if i == days-1 {
			rec[2], rec[3] = "", ""
		}
		records = append(records, rec)
	}
	return records
}

func TestDefaultChecks_Order(t *testing.T) {
	cfg := testConfig()
	ids := func(checks []Check) []CheckID {
		out := make([]CheckID, len(checks))
		for i, c := range checks {
			out[i] = c.ID
		}
		return out
	}

	assert.Equal(t, []CheckID{
		CheckNonEmpty, CheckNotAllMissing, CheckLastRowMissing, CheckPreviousRowFilled,
		CheckNoDuplicates, CheckColumnNames, CheckDataTypes, CheckDatesSorted,
		CheckNoMissingDates, CheckNonNegative, CheckMissingPercent,
	}, ids(DefaultChecks(cfg)))

	cfg.Ranges = []RangeRule{{Column: "PriceUSD", Min: 0, Max: 1e6}}
	checks := DefaultChecks(cfg)
	require.Len(t, checks, 12)
	assert.Equal(t, CheckValueRange, checks[11].ID)

	cfg.FloatColumns = []string{"PriceUSD"}
	checks = DefaultChecks(cfg)
	require.Len(t, checks, 13)
	assert.Equal(t, CheckFloatColumns, checks[12].ID)
}

func TestEmptyPartition(t *testing.T) {
	cfg := testConfig()
	ds := buildDataset(t, testHeader, []string{"btc", "2024-01-01", "1", "1"})
	p, err := ds.Partition("asset", "eth")
	require.NoError(t, err)
	require.Equal(t, 0, p.Len())

	for _, check := range DefaultChecks(cfg) {
		t.Run(string(check.ID), func(t *testing.T) {
			var v Verdict
			require.NotPanics(t, func() { v = check.Run(p, cfg) })
			assert.Equal(t, check.ID, v.Check)
			assert.Equal(t, "eth", v.Asset)
			if check.ID == CheckNonEmpty {
				assert.Equal(t, OutcomeFail, v.Outcome)
			}
		})
	}
}

func TestNotAllMissing(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name    string
		records [][]string
		want    Outcome
	}{
		{"values present", [][]string{{"btc", "2024-01-01", "1.5", ""}}, OutcomePass},
		{"only identifiers present", [][]string{{"btc", "2024-01-01", "", ""}, {"btc", "2024-01-02", "", ""}}, OutcomeFail},
		{"no rows", nil, OutcomeFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NotAllMissing(btcPartition(t, tt.records...), cfg)
			assert.Equal(t, tt.want, v.Outcome)
		})
	}
}

func TestNotAllMissing_IgnoresExcludedColumns(t *testing.T) {
	cfg := testConfig()
	ds := buildDataset(t, []string{"asset", "time", "ReferenceRate", "PriceUSD"},
		[]string{"btc", "2024-01-01", "42000", ""})

	v := NotAllMissing(dataset.NewPartition("btc", ds), cfg)
	assert.Equal(t, OutcomeFail, v.Outcome)
}

func TestFreshnessPair(t *testing.T) {
	cfg := testConfig()
	base := [][]string{
		{"btc", "2024-01-01", "10.5", "100"},
		{"btc", "2024-01-02", "11.5", "110"},
		{"btc", "2024-01-03", "", ""},
	}

	t.Run("provisional last row", func(t *testing.T) {
		p := btcPartition(t, base...)
		assert.Equal(t, OutcomePass, LastRowMissing(p, cfg).Outcome)
		assert.Equal(t, OutcomePass, PreviousRowFilled(p, cfg).Outcome)
	})

	t.Run("populated last row", func(t *testing.T) {
		records := slices.Clone(base)
		records[2] = []string{"btc", "2024-01-03", "12.5", "120"}
		p := btcPartition(t, records...)

		v := LastRowMissing(p, cfg)
		assert.Equal(t, OutcomeFail, v.Outcome)
		assert.Equal(t, ColumnsDetail{Row: 2, Columns: []string{"PriceUSD", "TxCnt"}}, v.Detail)
		assert.Equal(t, OutcomePass, PreviousRowFilled(p, cfg).Outcome)
	})

	t.Run("empty second-to-last row", func(t *testing.T) {
		records := slices.Clone(base)
		records[1] = []string{"btc", "2024-01-02", "", ""}
		p := btcPartition(t, records...)

		assert.Equal(t, OutcomePass, LastRowMissing(p, cfg).Outcome)
		v := PreviousRowFilled(p, cfg)
		assert.Equal(t, OutcomeFail, v.Outcome)
		assert.Equal(t, RowsDetail{Rows: []int{1}}, v.Detail)
	})

	t.Run("single row is insufficient for the previous row", func(t *testing.T) {
		p := btcPartition(t, base[2])
		assert.Equal(t, OutcomePass, LastRowMissing(p, cfg).Outcome)

		v := PreviousRowFilled(p, cfg)
		assert.Equal(t, OutcomeInsufficient, v.Outcome)
		assert.Equal(t, InsufficientDetail{Required: 2, Actual: 1}, v.Detail)
	})
}

func TestNoDuplicates(t *testing.T) {
	cfg := testConfig()
	p := btcPartition(t,
		[]string{"btc", "2024-01-01", "10.5", "100"},
		[]string{"btc", "2024-01-02", "11.5", "110"},
		[]string{"btc", "2024-01-01", "10.5", "100"},
		[]string{"btc", "2024-01-03", "", ""},
	)

	v := NoDuplicates(p, cfg)
	assert.Equal(t, OutcomeFail, v.Outcome)
	assert.Equal(t, RowsDetail{Rows: []int{2}}, v.Detail)

	clean := btcPartition(t, dailyRecords(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 5)...)
	assert.Equal(t, OutcomePass, NoDuplicates(clean, cfg).Outcome)
}

func TestColumnNames_SymmetricDifference(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name       string
		header     []string
		missing    []string
		unexpected []string
	}{
		{"exact", []string{"asset", "time", "PriceUSD", "TxCnt"}, []string{}, []string{}},
		{"reordered", []string{"TxCnt", "time", "asset", "PriceUSD"}, []string{}, []string{}},
		{"missing metric", []string{"asset", "time", "PriceUSD"}, []string{"TxCnt"}, []string{}},
		{"extra columns", []string{"asset", "time", "PriceUSD", "TxCnt", "Zeta", "Alpha"}, []string{}, []string{"Alpha", "Zeta"}},
		{"both", []string{"asset", "PriceUSD", "HashRate"}, []string{"TxCnt", "time"}, []string{"HashRate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, len(tt.header))
			p := dataset.NewPartition("btc", buildDataset(t, tt.header, row))

			v := ColumnNames(p, cfg)
			if len(tt.missing) == 0 && len(tt.unexpected) == 0 {
				assert.Equal(t, OutcomePass, v.Outcome)
				return
			}

			require.Equal(t, OutcomeFail, v.Outcome)
			detail := v.Detail.(ColumnSetDetail)
			assert.Equal(t, tt.missing, detail.Missing)
			assert.Equal(t, tt.unexpected, detail.Unexpected)

			union := append(slices.Clone(detail.Missing), detail.Unexpected...)
			slices.Sort(union)
			assert.Equal(t, symmetricDifference(cfg.Schema.Names(), tt.header), union)
		})
	}
}

func symmetricDifference(a, b []string) []string {
	var out []string
	for _, s := range a {
		if !slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !slices.Contains(a, s) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

func TestDataTypes(t *testing.T) {
	cfg := testConfig()

	ok := btcPartition(t, []string{"btc", "2024-01-01", "10.5", "100"})
	assert.Equal(t, OutcomePass, DataTypes(ok, cfg).Outcome)

	bad := btcPartition(t,
		[]string{"btc", "2024-01-01", "ten", "100"},
		[]string{"btc", "2024-01-02", "11", "true"},
	)
	v := DataTypes(bad, cfg)
	assert.Equal(t, OutcomeFail, v.Outcome)
	assert.Equal(t, TypeDetail{Offending: []TypeMismatch{
		{Column: "PriceUSD", Type: dataset.TypeString},
		{Column: "TxCnt", Type: dataset.TypeString},
	}}, v.Detail)
}

func TestDatesSorted(t *testing.T) {
	cfg := testConfig()

	unsorted := [][]string{
		{"btc", "2024-01-01", "1", "1"},
		{"btc", "2024-01-03", "3", "3"},
		{"btc", "2024-01-02", "2", "2"},
	}
	v := DatesSorted(btcPartition(t, unsorted...), cfg)
	assert.Equal(t, OutcomeFail, v.Outcome)
	assert.Equal(t, SortDetail{FirstUnsortedRow: 1}, v.Detail)

	sorted := slices.Clone(unsorted)
	slices.SortStableFunc(sorted, func(a, b []string) int { return strings.Compare(a[1], b[1]) })
	p := btcPartition(t, sorted...)
	assert.Equal(t, OutcomePass, DatesSorted(p, cfg).Outcome)
	assert.Equal(t, OutcomePass, DatesSorted(p, cfg).Outcome, "re-checking a sorted partition passes again")

	equal := btcPartition(t,
		[]string{"btc", "2024-01-01", "1", "1"},
		[]string{"btc", "2024-01-01", "2", "2"},
	)
	assert.Equal(t, OutcomePass, DatesSorted(equal, cfg).Outcome)
}

func TestDatesSorted_Unparseable(t *testing.T) {
	cfg := testConfig()
	p := btcPartition(t,
		[]string{"btc", "2024-01-01", "1", "1"},
		[]string{"btc", "yesterday", "2", "2"},
	)

	v := DatesSorted(p, cfg)
	assert.Equal(t, OutcomeFail, v.Outcome)
	assert.Equal(t, []int{1}, v.Detail.(SortDetail).Unparseable)
}

func TestNoMissingDates_RoundTrip(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)
	records := dailyRecords(start, 7)

	v := NoMissingDates(btcPartition(t, records...), cfg)
	require.Equal(t, OutcomePass, v.Outcome)
	assert.Equal(t, MissingDatesDetail{Start: "2024-02-25", End: "2024-03-02", Missing: []string{}}, v.Detail)

	for i := 1; i < len(records)-1; i++ {
		removed := records[i][1]
		t.Run(removed, func(t *testing.T) {
			trimmed := slices.Delete(slices.Clone(records), i, i+1)
			v := NoMissingDates(btcPartition(t, trimmed...), cfg)
			assert.Equal(t, OutcomeFail, v.Outcome)
			assert.Equal(t, []string{removed}, v.Detail.(MissingDatesDetail).Missing)
		})
	}
}

func TestNoMissingDates_IntradayTimestamps(t *testing.T) {
	cfg := testConfig()
	p := btcPartition(t,
		[]string{"btc", "2024-01-01T00:00:00.000000000Z", "1", "1"},
		[]string{"btc", "2024-01-02T13:45:00Z", "2", "2"},
		[]string{"btc", "2024-01-04T00:00:00Z", "", ""},
	)

	v := NoMissingDates(p, cfg)
	assert.Equal(t, OutcomeFail, v.Outcome)
	assert.Equal(t, []string{"2024-01-03"}, v.Detail.(MissingDatesDetail).Missing)

	ts, ok := p.Value(1, "time").Time()
	require.True(t, ok)
	assert.Equal(t, 13, ts.Hour(), "partition timestamps are not normalized in place")
}

func TestValuesNonNegative(t *testing.T) {
	cfg := testConfig()

	ds := buildDataset(t, []string{"asset", "time", "PriceUSD", "TxCnt", "ReferenceRate"},
		[]string{"btc", "2024-01-01", "10.5", "100", "-1"},
		[]string{"btc", "2024-01-02", "", "-5", "2"},
		[]string{"btc", "2024-01-03", "12.5", "120", "3"},
		[]string{"btc", "2024-01-04", "", "", ""},
	)
	v := ValuesNonNegative(dataset.NewPartition("btc", ds), cfg)

	require.Equal(t, OutcomeFail, v.Outcome)
	assert.Equal(t, CellsDetail{
		Rows:  []int{1},
		Cells: []Cell{{Row: 1, Column: "TxCnt", Value: dataset.Int(-5)}},
	}, v.Detail)

	clean := btcPartition(t, dailyRecords(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3)...)
	assert.Equal(t, OutcomePass, ValuesNonNegative(clean, cfg).Outcome)
}

func TestMissingPercent(t *testing.T) {
	cfg := testConfig()

	p := btcPartition(t,
		[]string{"btc", "2024-01-01", "10.5", "100"},
		[]string{"btc", "2024-01-02", "", "110"},
		[]string{"btc", "2024-01-03", "", ""},
	)
	v := MissingPercent(p, cfg)
	assert.Equal(t, OutcomeInfo, v.Outcome)
	detail := v.Detail.(MissingPercentDetail)
	assert.Equal(t, 1, detail.MissingCells)
	assert.Equal(t, 8, detail.TotalCells)
	assert.InDelta(t, 12.5, detail.Percent, 1e-9)

	single := MissingPercent(btcPartition(t, []string{"btc", "2024-01-01", "", ""}), cfg)
	assert.Equal(t, OutcomeInsufficient, single.Outcome)
	assert.Equal(t, MissingPercentDetail{}, single.Detail)
}

func TestValueRange(t *testing.T) {
	cfg := testConfig()
	cfg.Ranges = []RangeRule{
		{Column: "PriceUSD", Min: 0, Max: 100},
		{Column: "HashRate", Min: 0, Max: 1},
	}

	p := btcPartition(t,
		[]string{"btc", "2024-01-01", "10.5", "100"},
		[]string{"btc", "2024-01-02", "150", "110"},
		[]string{"btc", "2024-01-03", "", ""},
	)
	v := ValueRange(p, cfg)

	require.Equal(t, OutcomeFail, v.Outcome)
	detail := v.Detail.(RangeDetail)
	require.Len(t, detail.Violations, 1)
	assert.Equal(t, Cell{Row: 1, Column: "PriceUSD", Value: dataset.Float(150)}, detail.Violations[0].Cell)
	assert.Equal(t, []string{"HashRate"}, detail.Unchecked)
}

func TestFloatColumns(t *testing.T) {
	records := [][]string{
		{"btc", "2024-01-01", "10.5", "100"},
		{"btc", "2024-01-02", "11", "110"},
		{"btc", "2024-01-03", "", ""},
	}

	tests := []struct {
		name        string
		columns     []string
		wantOutcome Outcome
		wantDetail  FloatDetail
	}{
		{
			name:        "float column",
			columns:     []string{"PriceUSD"},
			wantOutcome: OutcomePass,
			wantDetail:  FloatDetail{Offending: []TypeMismatch{}},
		},
		{
			name:        "integer column",
			columns:     []string{"PriceUSD", "TxCnt"},
			wantOutcome: OutcomeFail,
			wantDetail:  FloatDetail{Offending: []TypeMismatch{{Column: "TxCnt", Type: dataset.TypeInt64}}},
		},
		{
			name:        "absent column",
			columns:     []string{"HashRate"},
			wantOutcome: OutcomePass,
			wantDetail:  FloatDetail{Offending: []TypeMismatch{}, Unchecked: []string{"HashRate"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.FloatColumns = tt.columns
			v := FloatColumns(btcPartition(t, records...), cfg)
			assert.Equal(t, tt.wantOutcome, v.Outcome)
			assert.Equal(t, tt.wantDetail, v.Detail)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing asset column", func(c *Config) { c.AssetColumn = "" }},
		{"same asset and time", func(c *Config) { c.TimeColumn = c.AssetColumn }},
		{"nil schema", func(c *Config) { c.Schema = nil }},
		{"inverted range", func(c *Config) { c.Ranges = []RangeRule{{Column: "PriceUSD", Min: 5, Max: 1}} }},
		{"unnamed float column", func(c *Config) { c.FloatColumns = []string{""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, testConfig().Validate())
}
