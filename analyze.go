package clfstat

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// LineError reports a log line that could not be parsed.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Config controls how log lines are turned into records. The zero Config
// parses with the default coercers, logs nothing, and stops at the first line
// that cannot be parsed.
type Config struct {
	// Parser is used to parse each line. If nil, the default coercers are
	// used.
	Parser *Parser
	// Logger receives diagnostic events. If nil, nothing is logged.
	Logger *zerolog.Logger
	// Metrics, if not nil, is updated as lines are read.
	Metrics *Metrics
	// SkipInvalid makes lines in no known format be logged and skipped,
	// instead of failing the run.
	SkipInvalid bool
}

func (c Config) logger() *zerolog.Logger {
	if c.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return c.Logger
}

func (c Config) parser() *Parser {
	if c.Parser == nil {
		return defaultParser
	}
	return c.Parser
}

// run holds the per-run state shared by the transform and its error handler.
// Both are called from the same goroutine, one after the other.
type run struct {
	cfg      Config
	log      *zerolog.Logger
	lines    int
	rejected int
}

func newRun(cfg Config) *run {
	return &run{cfg: cfg, log: cfg.logger()}
}

// pipe installs r's transform, which hands each parsed record to emit, on src.
func (r *run) pipe(src *Pipe, emit func(Record) (string, error)) *Pipe {
	if r.cfg.SkipInvalid {
		src = src.WithTransformErrorHandler(r.reject)
	}
	parser := r.cfg.parser()
	return src.TransformLines(func(line string) (string, error) {
		r.lines++
		if r.cfg.Metrics != nil {
			r.cfg.Metrics.LinesTotal.Inc()
		}
		rec, err := parser.Parse(line)
		if err != nil {
			return "", &LineError{Line: r.lines, Text: line, Err: err}
		}
		if r.cfg.Metrics != nil {
			r.cfg.Metrics.IncRecords(rec.Format)
		}
		return emit(rec)
	})
}

func (r *run) reject(_ string, err error) {
	r.rejected++
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.RejectedTotal.Inc()
	}
	r.log.Warn().Err(err).Msg("skipping line")
}

// Analyze reads log lines from src, parses each one, and returns the counts
// over all of them. Unless cfg.SkipInvalid is set, a line in no known format
// stops the run with a *LineError.
func Analyze(src *Pipe, cfg Config) (Result, error) {
	r := newRun(cfg)
	agg := NewAggregator()
	start := time.Now()
	r.log.Debug().Msg("analysis started")
	err := r.pipe(src, func(rec Record) (string, error) {
		agg.Combine(rec)
		return "", nil
	}).Wait()
	if err != nil {
		r.log.Debug().Err(err).Int("lines", r.lines).Msg("analysis failed")
		return Result{}, err
	}
	res := agg.Result()
	elapsed := time.Since(start)
	if cfg.Metrics != nil {
		cfg.Metrics.ObserveRun(res, elapsed)
	}
	r.log.Debug().
		Int("lines", r.lines).
		Int("records", res.TotalRequests).
		Int("rejected", r.rejected).
		Dur("elapsed", elapsed).
		Msg("analysis finished")
	return res, nil
}

// DecodeLines returns a pipe producing one JSON object per log line read from
// src, each followed by a newline. Lines that cannot be parsed are treated as
// by Analyze.
func DecodeLines(src *Pipe, cfg Config) *Pipe {
	r := newRun(cfg)
	return r.pipe(src, func(rec Record) (string, error) {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	})
}

// WriteSummary encodes res as indented JSON and writes it to path. If query
// is not empty, the JSON is first passed through it as a jq program. If path
// is "-", the summary goes to stdout instead. The file at path is only
// replaced once the whole summary has been produced.
func WriteSummary(res Result, path, query string, stdout io.Writer) error {
	data, err := json.MarshalIndent(res, "", " ")
	if err != nil {
		return err
	}
	p := Echo(string(data) + "\n")
	if query != "" {
		p = p.JQ(query)
	}
	if path == "-" {
		_, err = p.WithStdout(stdout).Stdout()
		return err
	}
	_, err = p.WriteFile(path)
	return err
}
