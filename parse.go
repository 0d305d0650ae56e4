package clfstat

import "errors"

// ErrNoMatch is returned by Parse for a line in none of the known formats.
var ErrNoMatch = errors.New("line matches no known log format")

// Parser turns log lines into Records, converting each field with its own
// coercer. A Parser has no state besides its coercion table, so one may be
// shared freely.
type Parser struct {
	coercers Coercers
}

var defaultParser = NewParser(nil)

// NewParser returns a Parser using the default coercers, replaced by
// overrides for the fields it names.
func NewParser(overrides Coercers) *Parser {
	return &Parser{coercers: defaultCoercers.With(overrides)}
}

// Parse decodes line. If the line is in none of the known formats, Parse
// returns ErrNoMatch, without converting any fields.
func (p *Parser) Parse(line string) (Record, error) {
	m := MatchLine(line)
	if m.Format == NoMatch {
		return Record{}, ErrNoMatch
	}
	r := Record{Format: m.Format}
	for i, f := range m.Format.fields() {
		coerce := p.coercers[f]
		if coerce == nil {
			coerce = Identity
		}
		v := coerce(m.Values[i])
		if !v.Present() {
			// Every field of the matched format is in the record.
			v = InvalidValue(m.Values[i])
		}
		*r.field(f) = v
	}
	return r, nil
}

// Parse decodes line using the default coercers, replaced by overrides for
// the fields it names. overrides may be nil.
func Parse(line string, overrides Coercers) (Record, error) {
	if len(overrides) == 0 {
		return defaultParser.Parse(line)
	}
	return NewParser(overrides).Parse(line)
}
