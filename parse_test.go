package clfstat_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bitfield/clfstat"
	"github.com/google/go-cmp/cmp"
)

func TestParseBasicLine(t *testing.T) {
	t.Parallel()
	rec, err := clfstat.Parse(`192.168.1.1 - alice [02/Sep/2024:23:21:22 +0000] "GET /images/logo.png HTTP/1.1" 301 4573`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Format != clfstat.Basic {
		t.Errorf("want format %v, got %v", clfstat.Basic, rec.Format)
	}
	if n, ok := rec.StatusCode.Int(); !ok || n != 301 {
		t.Errorf("want status 301, got %v (%v)", n, ok)
	}
	if n, ok := rec.BytesSent.Int(); !ok || n != 4573 {
		t.Errorf("want bytes 4573, got %v (%v)", n, ok)
	}
	if rec.Referrer.Present() || rec.UserAgent.Present() {
		t.Error("want no referrer or user agent in basic record")
	}
	if got := rec.AuthUser.String(); got != "alice" {
		t.Errorf("want user %q, got %q", "alice", got)
	}
	ts, ok := rec.DateTime.Time()
	if !ok {
		t.Fatal("want timestamp to be a time")
	}
	want := time.Date(2024, time.September, 2, 23, 21, 22, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("want %v, got %v", want, ts)
	}
}

func TestParseLineOfDashesKeepsDashes(t *testing.T) {
	t.Parallel()
	rec, err := clfstat.Parse(`- - - [-] "-" 000 -`, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []clfstat.Field{clfstat.RemoteHost, clfstat.RFC931, clfstat.AuthUser, clfstat.Request} {
		if got := rec.Get(f).String(); got != "-" {
			t.Errorf("%v: want %q, got %q", f, "-", got)
		}
	}
	if got := rec.DateTime.Raw(); got != "-" {
		t.Errorf("want raw timestamp %q, got %q", "-", got)
	}
	if rec.DateTime.Valid() {
		t.Error("want timestamp of \"-\" to be invalid")
	}
	if n, ok := rec.StatusCode.Int(); !ok || n != 0 {
		t.Errorf("want status 0, got %v (%v)", n, ok)
	}
	if got := rec.StatusCode.String(); got != "0" {
		t.Errorf("want status key %q, got %q", "0", got)
	}
	if rec.BytesSent.Kind() != clfstat.Invalid {
		t.Errorf("want bytes sent invalid, got kind %v", rec.BytesSent.Kind())
	}
	if got := rec.BytesSent.Raw(); got != "-" {
		t.Errorf("want raw bytes %q, got %q", "-", got)
	}
}

func TestParseCombinedLineHasNineFields(t *testing.T) {
	t.Parallel()
	rec, err := clfstat.Parse(`198.51.100.7 - admin [04/Sep/2024:17:44:15 +0000] "DELETE /index.html HTTP/1.1" 500 1291 "https://github.com" "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Format != clfstat.Combined {
		t.Errorf("want format %v, got %v", clfstat.Combined, rec.Format)
	}
	present := 0
	for _, f := range clfstat.Combined.Fields() {
		if rec.Get(f).Present() {
			present++
		}
	}
	if present != 9 {
		t.Errorf("want 9 fields present, got %d", present)
	}
	if got := rec.Referrer.String(); got != "https://github.com" {
		t.Errorf("want referrer %q, got %q", "https://github.com", got)
	}
	if got := rec.UserAgent.String(); got != "Mozilla/5.0 (Windows NT 10.0; Win64; x64)" {
		t.Errorf("unexpected user agent %q", got)
	}
}

func TestParseRejectsLinesInNoKnownFormat(t *testing.T) {
	t.Parallel()
	for _, line := range []string{
		"",
		"this is not a log line",
		`h - - [t] "GET / HTTP/1.1" 2000 1`,
		`h - - [t] "GET /"x" HTTP/1.1" 200 1`,
	} {
		_, err := clfstat.Parse(line, nil)
		if !errors.Is(err, clfstat.ErrNoMatch) {
			t.Errorf("%q: want ErrNoMatch, got %v", line, err)
		}
	}
}

func TestParseDoesNotCoerceLinesInNoKnownFormat(t *testing.T) {
	t.Parallel()
	calls := 0
	count := func(raw string) clfstat.Value {
		calls++
		return clfstat.StringValue(raw)
	}
	_, err := clfstat.Parse("garbage", clfstat.Coercers{clfstat.RemoteHost: count})
	if err == nil {
		t.Fatal("want error, got nil")
	}
	if calls != 0 {
		t.Errorf("want no coercer calls, got %d", calls)
	}
}

func TestParseWithOverrideReplacesOnlyNamedField(t *testing.T) {
	t.Parallel()
	upper := func(raw string) clfstat.Value {
		return clfstat.StringValue(strings.ToUpper(raw))
	}
	line := `192.168.1.1 - alice [02/Sep/2024:23:21:22 +0000] "GET /images/logo.png HTTP/1.1" 301 4573`
	rec, err := clfstat.Parse(line, clfstat.Coercers{
		clfstat.AuthUser:   upper,
		clfstat.StatusCode: clfstat.Identity,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.AuthUser.String(); got != "ALICE" {
		t.Errorf("want %q, got %q", "ALICE", got)
	}
	if rec.StatusCode.Kind() != clfstat.String {
		t.Errorf("want status kept as string, got kind %v", rec.StatusCode.Kind())
	}
	if rec.BytesSent.Kind() != clfstat.Int {
		t.Errorf("want bytes sent still coerced to int, got kind %v", rec.BytesSent.Kind())
	}
	// Overrides for one call don't leak into the next.
	rec, err = clfstat.Parse(line, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.AuthUser.String(); got != "alice" {
		t.Errorf("want %q, got %q", "alice", got)
	}
}

func TestNewParserIsReusable(t *testing.T) {
	t.Parallel()
	p := clfstat.NewParser(clfstat.Coercers{clfstat.BytesSent: clfstat.Identity})
	for _, line := range []string{
		`a - - [02/Sep/2024:23:21:22 +0000] "GET / HTTP/1.1" 200 10`,
		`b - - [02/Sep/2024:23:21:22 +0000] "GET / HTTP/1.1" 200 20`,
	} {
		rec, err := p.Parse(line)
		if err != nil {
			t.Fatal(err)
		}
		if rec.BytesSent.Kind() != clfstat.String {
			t.Errorf("want bytes sent as string, got kind %v", rec.BytesSent.Kind())
		}
	}
}

func TestRecordJSON(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		name string
		line string
		want string
	}{
		{
			name: "basic",
			line: `192.168.1.1 - alice [02/Sep/2024:23:21:22 +0000] "GET /images/logo.png HTTP/1.1" 301 4573`,
			want: `{"format":"basic","remoteHost":"192.168.1.1","rfc931":"-","authUser":"alice","dateTime":"2024-09-02T23:21:22Z","request":"GET /images/logo.png HTTP/1.1","statusCode":301,"bytesSent":4573}`,
		},
		{
			name: "combined with missing bytes",
			line: `203.0.113.9 - - [05/Sep/2024:09:02:44 +0300] "GET / HTTP/1.1" 200 - "-" "curl/8.4.0"`,
			want: `{"format":"combined","remoteHost":"203.0.113.9","rfc931":"-","authUser":"-","dateTime":"2024-09-05T09:02:44+03:00","request":"GET / HTTP/1.1","statusCode":200,"bytesSent":null,"referrer":"-","userAgent":"curl/8.4.0"}`,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := clfstat.Parse(tc.line, nil)
			if err != nil {
				t.Fatal(err)
			}
			data, err := json.Marshal(rec)
			if err != nil {
				t.Fatal(err)
			}
			if tc.want != string(data) {
				t.Error(cmp.Diff(tc.want, string(data)))
			}
		})
	}
}

func TestParseKeepsFieldsWhoseCoercerReturnsNothing(t *testing.T) {
	t.Parallel()
	absent := func(string) clfstat.Value { return clfstat.Value{} }
	line := `10.0.0.2 - - [04/Sep/2024:17:50:01 +0000] "GET / HTTP/1.1" 200 512 "-" "curl/8.4.0"`
	rec, err := clfstat.Parse(line, clfstat.Coercers{
		clfstat.Referrer:  absent,
		clfstat.UserAgent: absent,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []clfstat.Field{clfstat.Referrer, clfstat.UserAgent} {
		v := rec.Get(f)
		if !v.Present() {
			t.Errorf("%v: want present in combined record", f)
		}
		if v.Kind() != clfstat.Invalid {
			t.Errorf("%v: want kind Invalid, got %v", f, v.Kind())
		}
	}
	if got := rec.UserAgent.Raw(); got != "curl/8.4.0" {
		t.Errorf("want raw user agent kept, got %q", got)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"referrer":null,"userAgent":null`) {
		t.Errorf("want referrer and user agent encoded as null, got %s", data)
	}
}
