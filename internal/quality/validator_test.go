package quality

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metricqa/internal/dataset"
	apperrors "metricqa/internal/errors"
	"metricqa/internal/infrastructure"
)

type recordingSink struct {
	mu       sync.Mutex
	verdicts []Verdict
}

func (s *recordingSink) Record(_ context.Context, v Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts = append(s.verdicts, v)
}

// scenarioDataset has three assets with ten daily rows each and a
// provisional last row. btc skips 2024-01-06, eth repeats its fourth row and
// sol has one negative transaction count.
func scenarioDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var records [][]string
	for _, asset := range []string{"btc", "eth", "sol"} {
		day := 0
		for i := 0; i < 10; i++ {
			if asset == "eth" && i == 4 {
				records = append(records, slices.Clone(records[len(records)-1]))
				continue
			}
			if asset == "btc" && i == 5 {
				day++
			}

			price := fmt.Sprintf("%.1f", 100.5+float64(i))
			tx := strconv.Itoa(1000 + i)
			if asset == "sol" && i == 4 {
				tx = "-7"
			}
			if i == 9 {
				price, tx = "", ""
			}

			records = append(records, []string{asset, start.AddDate(0, 0, day).Format(time.DateOnly), price, tx})
			day++
		}
	}
	return buildDataset(t, testHeader, records...)
}

func TestValidator_Scenario(t *testing.T) {
	sink := &recordingSink{}
	v, err := NewValidator(testConfig(), sink, nil)
	require.NoError(t, err)

	summary, err := v.Run(context.Background(), scenarioDataset(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"btc", "eth", "sol"}, summary.Assets)
	assert.Equal(t, 33, summary.Verdicts)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, 0, summary.Insufficient)
	assert.Equal(t, 3, summary.Info)
	assert.Equal(t, 27, summary.Passed)
	assert.True(t, summary.HasFailures())
	assert.NotEmpty(t, summary.RunID)

	var failures []string
	for _, verdict := range sink.verdicts {
		if verdict.Failed() {
			failures = append(failures, verdict.Asset+"/"+string(verdict.Check))
			continue
		}
		if verdict.Check == CheckMissingPercent {
			assert.Equal(t, OutcomeInfo, verdict.Outcome)
			continue
		}
		assert.Equal(t, OutcomePass, verdict.Outcome, "%s/%s", verdict.Asset, verdict.Check)
	}
	assert.Equal(t, []string{
		"btc/no_missing_dates",
		"eth/no_duplicates",
		"sol/values_non_negative",
	}, failures)

	byKey := make(map[string]Verdict)
	for _, verdict := range sink.verdicts {
		byKey[verdict.Asset+"/"+string(verdict.Check)] = verdict
	}
	assert.Equal(t, []string{"2024-01-06"}, byKey["btc/no_missing_dates"].Detail.(MissingDatesDetail).Missing)
	assert.Equal(t, RowsDetail{Rows: []int{14}}, byKey["eth/no_duplicates"].Detail)
	assert.Equal(t, []int{24}, byKey["sol/values_non_negative"].Detail.(CellsDetail).Rows)
}

func TestValidator_EveryCheckRunsForEveryAsset(t *testing.T) {
	sink := &recordingSink{}
	v, err := NewValidator(testConfig(), sink, nil)
	require.NoError(t, err)

	_, err = v.Run(context.Background(), scenarioDataset(t))
	require.NoError(t, err)

	checks := DefaultChecks(testConfig())
	require.Len(t, sink.verdicts, 3*len(checks))
	for i, verdict := range sink.verdicts {
		assert.Equal(t, checks[i%len(checks)].ID, verdict.Check)
	}
}

func TestValidator_ParallelMatchesSequential(t *testing.T) {
	ds := scenarioDataset(t)

	run := func(opts ...Option) []Verdict {
		sink := &recordingSink{}
		v, err := NewValidator(testConfig(), sink, nil, opts...)
		require.NoError(t, err)
		_, err = v.Run(context.Background(), ds)
		require.NoError(t, err)
		return sink.verdicts
	}

	sequential := run()
	for _, n := range []int{2, 3, 8} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			assert.Equal(t, sequential, run(WithParallelism(n)))
		})
	}
}

func TestValidator_ExpectedAssets(t *testing.T) {
	sink := &recordingSink{}
	v, err := NewValidator(testConfig(), sink, nil, WithExpectedAssets("eth", "ada"))
	require.NoError(t, err)

	summary, err := v.Run(context.Background(), scenarioDataset(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"btc", "eth", "sol", "ada"}, summary.Assets)

	var ada []Verdict
	for _, verdict := range sink.verdicts {
		if verdict.Asset == "ada" {
			ada = append(ada, verdict)
		}
	}
	require.Len(t, ada, len(DefaultChecks(testConfig())))
	assert.Equal(t, CheckNonEmpty, ada[0].Check)
	assert.Equal(t, OutcomeFail, ada[0].Outcome)
}

func TestValidator_InputErrors(t *testing.T) {
	v, err := NewValidator(testConfig(), nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header []string
		column string
	}{
		{"no asset column", []string{"ticker", "time", "PriceUSD"}, "asset"},
		{"no time column", []string{"asset", "date", "PriceUSD"}, "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := buildDataset(t, tt.header, []string{"btc", "2024-01-01", "1"})
			summary, err := v.Run(context.Background(), ds)
			require.Error(t, err)
			assert.Nil(t, summary)
			assert.ErrorIs(t, err, apperrors.ErrMissingColumn)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.column, appErr.Context["column"])
		})
	}
}

func TestValidator_Cancelled(t *testing.T) {
	for _, n := range []int{1, 4} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			sink := &recordingSink{}
			v, err := NewValidator(testConfig(), sink, nil, WithParallelism(n))
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err = v.Run(ctx, scenarioDataset(t))
			assert.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, sink.verdicts)
		})
	}
}

func TestNewValidator_RejectsBadConfig(t *testing.T) {
	_, err := NewValidator(nil, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	cfg := testConfig()
	cfg.TimeColumn = ""
	_, err = NewValidator(cfg, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestValidator_UsesRunIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	v, err := NewValidator(testConfig(), nil, logger)
	require.NoError(t, err)

	ctx := infrastructure.WithRunID(context.Background(), "run-42")
	summary, err := v.Run(ctx, scenarioDataset(t))
	require.NoError(t, err)
	assert.Equal(t, "run-42", summary.RunID)
	assert.Contains(t, buf.String(), "Validation run complete")
}

func TestValidator_WithChecks(t *testing.T) {
	sink := &recordingSink{}
	v, err := NewValidator(testConfig(), sink, nil, WithChecks(Check{CheckNonEmpty, NonEmpty}))
	require.NoError(t, err)

	summary, err := v.Run(context.Background(), scenarioDataset(t))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Verdicts)
	assert.Equal(t, 3, summary.Passed)
}
