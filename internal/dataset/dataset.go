package dataset

import (
	"fmt"
	"strings"
)

// ColumnType is the declared or inferred type of a column.
type ColumnType string

const (
	TypeInt64   ColumnType = "Int64"
	TypeFloat64 ColumnType = "Float64"
	TypeString  ColumnType = "String"
	TypeBool    ColumnType = "Bool"
	TypeTime    ColumnType = "Time"
	TypeUnknown ColumnType = "Unknown"
)

// IsNumeric reports whether t is one of the nullable numeric types.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt64 || t == TypeFloat64
}

// Column describes one dataset column.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Dataset is an immutable table of typed cells. Rows keep their load order.
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    [][]Value
}

// New builds a dataset. Column names must be unique and every row must have
// one cell per column.
func New(columns []Column, rows [][]Value) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		index[c.Name] = i
	}
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", r, len(row), len(columns))
		}
	}

	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Dataset{columns: cols, index: index, rows: rows}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns a copy of the column list.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnNames returns the column names in dataset order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// HasColumn reports whether the dataset has a column with this name.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Value returns the cell at row and column name. Unknown columns yield null.
func (d *Dataset) Value(row int, column string) Value {
	i, ok := d.index[column]
	if !ok {
		return Null()
	}
	return d.rows[row][i]
}

// Partition returns the rows whose asset column renders as asset.
// An asset absent from the data yields an empty partition.
func (d *Dataset) Partition(assetColumn, asset string) (*Partition, error) {
	col, ok := d.index[assetColumn]
	if !ok {
		return nil, fmt.Errorf("column %q not found", assetColumn)
	}
	p := &Partition{Asset: asset, ds: d}
	for r, row := range d.rows {
		if row[col].String() == asset {
			p.rows = append(p.rows, r)
		}
	}
	return p, nil
}

// PartitionBy groups rows by the asset column. Partitions are returned in
// first-seen order of asset id and keep the original row order. Rows with a
// missing asset id are grouped under the empty id.
func (d *Dataset) PartitionBy(assetColumn string) ([]*Partition, error) {
	col, ok := d.index[assetColumn]
	if !ok {
		return nil, fmt.Errorf("column %q not found", assetColumn)
	}

	var parts []*Partition
	byAsset := make(map[string]*Partition)
	for r, row := range d.rows {
		id := row[col].String()
		p, ok := byAsset[id]
		if !ok {
			p = &Partition{Asset: id, ds: d}
			byAsset[id] = p
			parts = append(parts, p)
		}
		p.rows = append(p.rows, r)
	}
	return parts, nil
}

// Partition is the slice of a dataset belonging to one asset. It is a view:
// cells are read from the parent dataset and never copied or modified.
type Partition struct {
	Asset string
	ds    *Dataset
	rows  []int
}

// NewPartition wraps a whole dataset as a single asset partition.
func NewPartition(asset string, d *Dataset) *Partition {
	rows := make([]int, d.Len())
	for i := range rows {
		rows[i] = i
	}
	return &Partition{Asset: asset, ds: d, rows: rows}
}

// Len returns the number of rows in the partition.
func (p *Partition) Len() int { return len(p.rows) }

// Dataset returns the parent dataset.
func (p *Partition) Dataset() *Dataset { return p.ds }

// Columns returns the parent dataset's columns.
func (p *Partition) Columns() []Column { return p.ds.Columns() }

// ColumnNames returns the parent dataset's column names.
func (p *Partition) ColumnNames() []string { return p.ds.ColumnNames() }

// RowIndex maps a partition position to the row index in the parent dataset.
func (p *Partition) RowIndex(i int) int { return p.rows[i] }

// Value returns the cell at partition position i.
func (p *Partition) Value(i int, column string) Value {
	return p.ds.Value(p.rows[i], column)
}

// Row returns a copy of the cells at partition position i.
func (p *Partition) Row(i int) []Value {
	src := p.ds.rows[p.rows[i]]
	out := make([]Value, len(src))
	copy(out, src)
	return out
}

// RowKey encodes every cell of row i so identical rows share a key.
func (p *Partition) RowKey(i int) string {
	var b strings.Builder
	for j, v := range p.ds.rows[p.rows[i]] {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(v.key())
	}
	return b.String()
}
