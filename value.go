package clfstat

import (
	"encoding/json"
	"strconv"
	"time"
)

// Kind says what a Value holds.
type Kind int

const (
	// Absent is the kind of the zero Value: the field was not in the line.
	Absent Kind = iota
	String
	Int
	Time
	// Invalid means the field was present, but could not be converted to
	// the type its coercer expects. The raw text is kept.
	Invalid
)

// Value is a field of a log line, after coercion.
type Value struct {
	kind Kind
	raw  string
	n    int64
	t    time.Time
}

// StringValue returns a Value holding the string s.
func StringValue(s string) Value {
	return Value{kind: String, raw: s}
}

// IntValue returns a Value holding n, converted from the text raw.
func IntValue(raw string, n int64) Value {
	return Value{kind: Int, raw: raw, n: n}
}

// TimeValue returns a Value holding t, converted from the text raw.
func TimeValue(raw string, t time.Time) Value {
	return Value{kind: Time, raw: raw, t: t}
}

// InvalidValue returns a Value recording that raw could not be converted.
func InvalidValue(raw string) Value {
	return Value{kind: Invalid, raw: raw}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Present reports whether the field was in the line at all.
func (v Value) Present() bool {
	return v.kind != Absent
}

// Valid reports whether v is present and was converted successfully.
func (v Value) Valid() bool {
	return v.kind != Absent && v.kind != Invalid
}

// Raw returns the text v was converted from.
func (v Value) Raw() string {
	return v.raw
}

// Int returns the integer held by v, and whether v holds one.
func (v Value) Int() (int64, bool) {
	return v.n, v.kind == Int
}

// Time returns the time held by v, and whether v holds one.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == Time
}

// String returns v in the form used to key counts: integers in decimal, and
// everything else as its raw text.
func (v Value) String() string {
	if v.kind == Int {
		return strconv.FormatInt(v.n, 10)
	}
	return v.raw
}

// MarshalJSON encodes integers as numbers, times in RFC 3339 format, strings
// as strings, and absent or invalid values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case String:
		return json.Marshal(v.raw)
	case Int:
		return []byte(strconv.FormatInt(v.n, 10)), nil
	case Time:
		return json.Marshal(v.t.Format(time.RFC3339))
	default:
		return []byte("null"), nil
	}
}
