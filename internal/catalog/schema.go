package catalog

import (
	"slices"

	"metricqa/internal/dataset"
)

// Role distinguishes identifying columns from metric columns.
type Role string

const (
	RoleIdentifier Role = "identifier"
	RoleMetric     Role = "metric"
)

// ColumnDescriptor is the expected shape of one column.
type ColumnDescriptor struct {
	Name     string               `json:"name"`
	Role     Role                 `json:"role"`
	Types    []dataset.ColumnType `json:"types"`
	Required bool                 `json:"required"`
}

// Accepts reports whether a column of type t satisfies the descriptor.
func (d ColumnDescriptor) Accepts(t dataset.ColumnType) bool {
	return slices.Contains(d.Types, t)
}

// MetricTypes are the nullable numeric types accepted for metric columns.
var MetricTypes = []dataset.ColumnType{dataset.TypeInt64, dataset.TypeFloat64}

// Schema is the full expected column set: identifying columns followed by
// catalog metrics. Column-set and type checks both read it.
type Schema struct {
	columns []ColumnDescriptor
	index   map[string]int
}

// NewSchema combines the catalog with the asset and time identifier columns.
// A metric that shares an identifier's name is described once, as the
// identifier.
func NewSchema(c *Catalog, assetColumn, timeColumn string) *Schema {
	s := &Schema{index: make(map[string]int)}
	s.add(ColumnDescriptor{
		Name:     assetColumn,
		Role:     RoleIdentifier,
		Types:    []dataset.ColumnType{dataset.TypeString, dataset.TypeInt64},
		Required: true,
	})
	s.add(ColumnDescriptor{
		Name:     timeColumn,
		Role:     RoleIdentifier,
		Types:    []dataset.ColumnType{dataset.TypeTime, dataset.TypeString},
		Required: true,
	})
	if c != nil {
		for _, name := range c.names {
			s.add(ColumnDescriptor{
				Name:     name,
				Role:     RoleMetric,
				Types:    MetricTypes,
				Required: true,
			})
		}
	}
	return s
}

func (s *Schema) add(d ColumnDescriptor) {
	if _, ok := s.index[d.Name]; ok {
		return
	}
	s.index[d.Name] = len(s.columns)
	s.columns = append(s.columns, d)
}

// Columns returns every descriptor in schema order.
func (s *Schema) Columns() []ColumnDescriptor {
	out := make([]ColumnDescriptor, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns every expected column name in schema order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.columns))
	for i, d := range s.columns {
		out[i] = d.Name
	}
	return out
}

// Metrics returns the metric descriptors in catalog order.
func (s *Schema) Metrics() []ColumnDescriptor {
	var out []ColumnDescriptor
	for _, d := range s.columns {
		if d.Role == RoleMetric {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the descriptor for a column name.
func (s *Schema) Lookup(name string) (ColumnDescriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return s.columns[i], true
}

// IsMetric reports whether name is a catalog metric column.
func (s *Schema) IsMetric(name string) bool {
	d, ok := s.Lookup(name)
	return ok && d.Role == RoleMetric
}
