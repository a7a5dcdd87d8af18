package series

import (
	"strconv"
	"time"
)

// Kind represents the element kind enforced by a Series.
type Kind int

const (
	// KindNone marks a column whose dtype is unset
	KindNone Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "none"
	}
}

// Value is a tagged variant holding one cell. The zero Value is the missing
// marker. Value is comparable, so it can key the hash indexes built by the
// join and reshape engines.
type Value struct {
	kind    Kind
	present bool
	s       string
	i       int64
	f       float64
	b       bool
	t       int64 // unix nanoseconds, keeps time values comparable
}

// Missing returns the missing marker.
func Missing() Value { return Value{} }

// String wraps a string cell value.
func String(s string) Value { return Value{kind: KindString, present: true, s: s} }

// Int wraps an integer cell value.
func Int(i int64) Value { return Value{kind: KindInt, present: true, i: i} }

// Float wraps a float cell value.
func Float(f float64) Value { return Value{kind: KindFloat, present: true, f: f} }

// Bool wraps a boolean cell value.
func Bool(b bool) Value { return Value{kind: KindBool, present: true, b: b} }

// Time wraps a timestamp cell value.
func Time(t time.Time) Value { return Value{kind: KindTime, present: true, t: t.UnixNano()} }

// IsMissing reports whether the value is the missing marker.
func (v Value) IsMissing() bool { return !v.present }

// Kind returns the value's kind, KindNone for missing values.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload. Zero unless Kind is KindString.
func (v Value) Str() string { return v.s }

// Int64 returns the integer payload. Zero unless Kind is KindInt.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the float payload. Zero unless Kind is KindFloat.
func (v Value) Float64() float64 { return v.f }

// Bool returns the boolean payload. Zero unless Kind is KindBool.
func (v Value) Bool() bool { return v.b }

// Time returns the timestamp payload in UTC. Zero unless Kind is KindTime.
func (v Value) Time() time.Time { return time.Unix(0, v.t).UTC() }

// AsFloat returns the value as a float64 for numeric kinds. The second
// return is false for missing and non-numeric values.
func (v Value) AsFloat() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Any returns the value as a native Go value: nil for missing, otherwise
// string, int64, float64, bool or time.Time. Used at serialization
// boundaries where a type-erased form is required.
func (v Value) Any() interface{} {
	if !v.present {
		return nil
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.Time()
	default:
		return nil
	}
}

// String renders the value in its delimited-text form. Missing values render
// as the empty token, matching what ingestion reads back as missing.
func (v Value) String() string {
	if !v.present {
		return ""
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.Time().Format(time.RFC3339Nano)
	default:
		return ""
	}
}
