package quality

import (
	"fmt"
	"slices"

	"metricqa/internal/catalog"
	"metricqa/internal/config"
	apperrors "metricqa/internal/errors"
)

// RangeRule bounds the present values of one column, inclusive.
type RangeRule struct {
	Column string  `json:"column"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Config is the read-only input every check receives alongside a partition.
type Config struct {
	AssetColumn     string
	TimeColumn      string
	ExcludedColumns []string
	Ranges          []RangeRule
	FloatColumns    []string
	Schema          *catalog.Schema
}

// NewConfig builds a check configuration from the application settings and
// a loaded catalog.
func NewConfig(vc config.ValidationConfig, cat *catalog.Catalog) *Config {
	ranges := make([]RangeRule, 0, len(vc.Ranges))
	for _, r := range vc.Ranges {
		ranges = append(ranges, RangeRule{Column: r.Column, Min: r.Min, Max: r.Max})
	}
	return &Config{
		AssetColumn:     vc.AssetColumn,
		TimeColumn:      vc.TimeColumn,
		ExcludedColumns: slices.Clone(vc.ExcludedColumns),
		Ranges:          ranges,
		FloatColumns:    slices.Clone(vc.FloatColumns),
		Schema:          catalog.NewSchema(cat, vc.AssetColumn, vc.TimeColumn),
	}
}

// Validate reports configuration mistakes that would make checks meaningless.
func (c *Config) Validate() error {
	switch {
	case c.AssetColumn == "":
		return apperrors.NewConfigError("asset column is required", nil)
	case c.TimeColumn == "":
		return apperrors.NewConfigError("time column is required", nil)
	case c.AssetColumn == c.TimeColumn:
		return apperrors.NewConfigError("asset and time columns must differ", nil)
	case c.Schema == nil:
		return apperrors.NewConfigError("schema is required", nil)
	}
	for _, r := range c.Ranges {
		if r.Column == "" {
			return apperrors.NewConfigError("range rule without column", nil)
		}
		if r.Max < r.Min {
			return apperrors.NewConfigError(fmt.Sprintf("range rule for %q has max below min", r.Column), nil)
		}
	}
	for _, name := range c.FloatColumns {
		if name == "" {
			return apperrors.NewConfigError("float column without name", nil)
		}
	}
	return nil
}

func (c *Config) excluded(column string) bool {
	return slices.Contains(c.ExcludedColumns, column)
}
