package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
)

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Null returns the missing-value marker.
func Null() Value { return Value{} }

// Int returns an integer cell.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating point cell. NaN is stored as-is and reported missing.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a string cell.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bool returns a boolean cell.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// Time returns a timestamp cell.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// Kind reports the stored scalar type.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is null or a floating point NaN.
func (v Value) IsMissing() bool {
	return v.kind == KindNull || (v.kind == KindFloat && math.IsNaN(v.f))
}

// Float64 returns the numeric value of integer and float cells.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		if math.IsNaN(v.f) {
			return 0, false
		}
		return v.f, true
	default:
		return 0, false
	}
}

// Time returns the timestamp of time cells, parsing string cells if needed.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindString:
		return ParseTime(v.s)
	default:
		return time.Time{}, false
	}
}

// String renders the cell for keys and diagnostics. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.i == 1)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and value. Missing
// values compare equal to each other, matching how duplicate rows are judged.
func (v Value) Equal(o Value) bool {
	if v.IsMissing() || o.IsMissing() {
		return v.IsMissing() && o.IsMissing()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindFloat:
		return v.f == o.f
	case KindTime:
		return v.t.Equal(o.t)
	case KindString:
		return v.s == o.s
	default:
		return v.i == o.i
	}
}

// key is a kind-tagged encoding used to hash whole rows.
func (v Value) key() string {
	if v.IsMissing() {
		return "n:"
	}
	switch v.kind {
	case KindTime:
		return "t:" + strconv.FormatInt(v.t.UnixNano(), 10)
	default:
		return string('0'+rune(v.kind)) + ":" + v.String()
	}
}

// MarshalJSON renders missing values as null and timestamps as RFC 3339.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsMissing():
		return []byte("null"), nil
	case v.kind == KindInt:
		return json.Marshal(v.i)
	case v.kind == KindFloat:
		if math.IsInf(v.f, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.f)
	case v.kind == KindBool:
		return json.Marshal(v.i == 1)
	default:
		return json.Marshal(v.String())
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the timestamp layouts found in metric exports.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// missingTokens are textual spellings of a missing cell.
var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
	"<na>": {},
	"nat":  {},
}

// IsMissingToken reports whether a raw text cell denotes a missing value.
func IsMissingToken(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
