package clfstat

import (
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// CLFTimeLayout is the layout of the timestamp in a Common Log Format line,
// without the surrounding brackets.
const CLFTimeLayout = "02/Jan/2006:15:04:05 -0700"

// A Coercer converts the raw text of a field to a Value. Coercers must not
// fail: text they cannot convert becomes an InvalidValue. Parse treats a zero
// Value from a coercer the same way.
type Coercer func(raw string) Value

// Coercers maps fields to the coercer used for each.
type Coercers map[Field]Coercer

var defaultCoercers = Coercers{
	RemoteHost: Identity,
	RFC931:     Identity,
	AuthUser:   Identity,
	DateTime:   ParseTimestamp,
	Request:    Identity,
	StatusCode: ParseInt,
	BytesSent:  ParseInt,
	Referrer:   Identity,
	UserAgent:  Identity,
}

// DefaultCoercers returns a new copy of the default coercion table: status
// code and bytes sent are integers, the timestamp is a time, and every other
// field is kept as a string.
func DefaultCoercers() Coercers {
	return defaultCoercers.With(nil)
}

// With returns a new table holding the entries of c, replaced by those of
// overrides where both name the same field. Neither c nor overrides is
// modified.
func (c Coercers) With(overrides Coercers) Coercers {
	merged := make(Coercers, len(c)+len(overrides))
	for f, fn := range c {
		merged[f] = fn
	}
	for f, fn := range overrides {
		if fn != nil {
			merged[f] = fn
		}
	}
	return merged
}

// Identity keeps raw as a string.
func Identity(raw string) Value {
	return StringValue(raw)
}

// ParseInt converts raw to a decimal integer. A raw value such as "-" becomes
// an InvalidValue.
func ParseInt(raw string) Value {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return InvalidValue(raw)
	}
	return IntValue(raw, n)
}

// ParseTimestamp converts raw to a time. The Common Log Format layout is tried
// first; failing that, raw may be in any of the many layouts dateparse
// recognises, such as RFC 3339. Times without a zone are taken to be UTC.
func ParseTimestamp(raw string) (v Value) {
	if t, err := time.Parse(CLFTimeLayout, raw); err == nil {
		return TimeValue(raw, t)
	}
	// dateparse panics on some malformed input.
	defer func() {
		if recover() != nil {
			v = InvalidValue(raw)
		}
	}()
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return InvalidValue(raw)
	}
	return TimeValue(raw, t)
}
