package clfstat

import "regexp"

// Format identifies the layout a log line was written in.
type Format int

const (
	// NoMatch means the line is in none of the known formats.
	NoMatch Format = iota
	// Basic is the Common Log Format:
	//
	//	%h %l %u [%t] "%r" %>s %b
	Basic
	// Combined is the Common Log Format followed by the referrer and the
	// user agent:
	//
	//	%h %l %u [%t] "%r" %>s %b "%{Referer}i" "%{User-agent}i"
	Combined
)

func (f Format) String() string {
	switch f {
	case Basic:
		return "basic"
	case Combined:
		return "combined"
	default:
		return "nomatch"
	}
}

// Field names one field of a log line.
type Field int

const (
	RemoteHost Field = iota
	RFC931
	AuthUser
	DateTime
	Request
	StatusCode
	BytesSent
	Referrer
	UserAgent
	numFields
)

var fieldNames = [numFields]string{
	"remoteHost",
	"rfc931",
	"authUser",
	"dateTime",
	"request",
	"statusCode",
	"bytesSent",
	"referrer",
	"userAgent",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

type layout struct {
	format Format
	re     *regexp.Regexp
	fields []Field
}

// layouts are tried in order, and the first to match wins. Each pattern is
// anchored at both ends, so a Combined line never matches Basic.
var layouts = []layout{
	{
		format: Basic,
		re:     regexp.MustCompile(`^(\S+) (\S+) (\S+) \[([^\]]+)\] "([^"]*)" (\d{3}) (\S+)$`),
		fields: []Field{RemoteHost, RFC931, AuthUser, DateTime, Request, StatusCode, BytesSent},
	},
	{
		format: Combined,
		re:     regexp.MustCompile(`^(\S+) (\S+) (\S+) \[([^\]]+)\] "([^"]*)" (\d{3}) (\S+) "([^"]*)" "([^"]*)"$`),
		fields: []Field{RemoteHost, RFC931, AuthUser, DateTime, Request, StatusCode, BytesSent, Referrer, UserAgent},
	},
}

// Fields returns the fields of format f, in the order they appear in a line.
func (f Format) Fields() []Field {
	return append([]Field(nil), f.fields()...)
}

func (f Format) fields() []Field {
	for _, l := range layouts {
		if l.format == f {
			return l.fields
		}
	}
	return nil
}

// Match is the result of matching a line against the known formats. If the
// line matched, Format says which one, and Values holds the raw text of each
// of the format's fields, in order. Otherwise, Format is NoMatch and Values is
// nil.
type Match struct {
	Format Format
	Values []string
}

// MatchLine tries each known format in turn against line, and returns the
// first match. A field of "-" is matched like any other value.
func MatchLine(line string) Match {
	for _, l := range layouts {
		m := l.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return Match{Format: l.format, Values: m[1:]}
	}
	return Match{Format: NoMatch}
}
