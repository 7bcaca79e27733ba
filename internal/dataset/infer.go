package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReadOption adjusts how text records become typed columns.
type ReadOption func(*readOptions)

type readOptions struct {
	text map[string]bool
}

// WithTextColumns keeps the named columns as strings instead of inferring
// their type. Identifier columns need this so "001" and "1" stay distinct.
func WithTextColumns(names ...string) ReadOption {
	return func(o *readOptions) {
		for _, n := range names {
			o.text[n] = true
		}
	}
}

func newReadOptions(opts []ReadOption) *readOptions {
	o := &readOptions{text: make(map[string]bool)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FromRecords builds a dataset from a header and text records, inferring
// each column's type from its non-missing cells. Short records are padded
// with missing cells; long records are an error.
func FromRecords(header []string, records [][]string, opts ...ReadOption) (*Dataset, error) {
	o := newReadOptions(opts)
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	for r, rec := range records {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d", r+1, len(rec), len(names))
		}
	}

	columns := make([]Column, len(names))
	rows := make([][]Value, len(records))
	for r := range rows {
		rows[r] = make([]Value, len(names))
	}

	for c, name := range names {
		typ := TypeString
		if !o.text[name] {
			typ = inferType(records, c)
		}
		columns[c] = Column{Name: name, Type: typ}
		for r, rec := range records {
			cell := ""
			if c < len(rec) {
				cell = rec[c]
			}
			rows[r][c] = parseCell(cell, typ)
		}
	}

	return New(columns, rows)
}

// inferType picks the narrowest type every present cell of column c parses
// as. A column with no present cells is treated as Float64, the type of an
// all-NaN numeric column.
func inferType(records [][]string, c int) ColumnType {
	isInt, isFloat, isBool, isTime := true, true, true, true
	seen := false

	for _, rec := range records {
		if c >= len(rec) || IsMissingToken(rec[c]) {
			continue
		}
		seen = true
		s := strings.TrimSpace(rec[c])

		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(strings.ToLower(s)); err != nil || isNumericBool(s) {
				isBool = false
			}
		}
		if isTime {
			if _, ok := ParseTime(s); !ok {
				isTime = false
			}
		}
	}

	switch {
	case !seen:
		return TypeFloat64
	case isInt:
		return TypeInt64
	case isFloat:
		return TypeFloat64
	case isBool:
		return TypeBool
	case isTime:
		return TypeTime
	default:
		return TypeString
	}
}

// isNumericBool rejects "0" and "1", which strconv accepts as booleans but
// belong to integer columns.
func isNumericBool(s string) bool { return s == "0" || s == "1" }

func parseCell(s string, typ ColumnType) Value {
	if IsMissingToken(s) {
		if typ == TypeFloat64 {
			return Float(math.NaN())
		}
		return Null()
	}
	s = strings.TrimSpace(s)

	switch typ {
	case TypeInt64:
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(v)
		}
	case TypeFloat64:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(v)
		}
	case TypeBool:
		if v, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
			return Bool(v)
		}
	case TypeTime:
		if t, ok := ParseTime(s); ok {
			return Time(t)
		}
	}
	return String(s)
}
