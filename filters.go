package clfstat

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/itchyny/gojq"
	"mvdan.cc/sh/v3/shell"
)

// Mode selects the unit of input a Transform works on.
type Mode int

const (
	// Lines hands the transform one line at a time, without its line
	// terminator. Both "\n" and "\r\n" terminate a line.
	Lines Mode = iota
	// Chunks hands the transform each buffer read from the source, as it
	// was read. See WithBufferSize.
	Chunks
)

// TransformFunc converts one unit of input into the output to be written for
// it. Returning the empty string writes nothing.
type TransformFunc func(unit string) (string, error)

// Filter sends the contents of the pipe to the function filter and produces
// the result. filter takes an io.Reader to read its input from and an
// io.Writer to write its output to, and returns an error, which will be set on
// the pipe.
//
// filter runs concurrently, so its goroutine will not exit until the pipe has
// been fully read. Its writes block until they are read, so however large the
// input, only one unit of it is in flight at a time. Use [Pipe.Wait] to wait
// for all concurrent filters to complete.
func (p *Pipe) Filter(filter func(io.Reader, io.Writer) error) *Pipe {
	if p == nil || p.Error() != nil {
		return p
	}
	src := p.Reader
	pr, pw := io.Pipe()
	go func() {
		defer src.Close()
		err := filter(src, pw)
		// A closed pipe means the reader stopped early on purpose, having
		// recorded its own error if it had one.
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			p.setFirstError(err)
		}
		pw.CloseWithError(err)
	}()
	return p.WithReader(pr)
}

// FilterScan sends the contents of the pipe to the function filter, a line at
// a time, and produces the result. filter takes each line as a string and an
// io.Writer to write its output to.
func (p *Pipe) FilterScan(filter func(string, io.Writer)) *Pipe {
	return p.Filter(func(r io.Reader, w io.Writer) error {
		ew := &errWriter{w: w}
		return eachLine(r, func(line string) error {
			filter(line, ew)
			return ew.err
		})
	})
}

// errWriter remembers the first error from w, after which writes are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(b []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(b)
	ew.err = err
	return n, err
}

// Transform calls transform once for each unit of the pipe's contents, in
// order, and produces the concatenation of its results. The unit is a line or
// a chunk, according to mode. Calls are strictly sequential, so transform may
// update state shared between calls without locking.
//
// If transform fails, the transform error handler installed with
// WithTransformErrorHandler, if any, is called, and the unit produces no
// output. Without a handler, the pipe's error status is set to a
// *TransformError and no more input is read.
func (p *Pipe) Transform(mode Mode, transform TransformFunc) *Pipe {
	if p == nil || p.Error() != nil {
		return p
	}
	onErr := p.transformErrorHandler()
	size := p.bufferSize()
	return p.Filter(func(r io.Reader, w io.Writer) error {
		apply := func(unit string) error {
			out, err := transform(unit)
			if err != nil {
				if onErr == nil {
					return &TransformError{Unit: unit, Err: err}
				}
				onErr(unit, err)
				return nil
			}
			if out == "" {
				return nil
			}
			_, err = io.WriteString(w, out)
			return err
		}
		if mode == Chunks {
			return eachChunk(r, size, apply)
		}
		return eachLine(r, apply)
	})
}

// TransformLines is Transform in Lines mode.
func (p *Pipe) TransformLines(transform TransformFunc) *Pipe {
	return p.Transform(Lines, transform)
}

// TransformChunks is Transform in Chunks mode.
func (p *Pipe) TransformChunks(transform TransformFunc) *Pipe {
	return p.Transform(Chunks, transform)
}

// Exec runs cmdLine as an external command, sending it the contents of the
// pipe as input, and produces the command's standard output. The command's
// standard error goes to the program's standard error. If the command had a
// non-zero exit status, the pipe's error status will be set to the string
// "exit status X", where X is the integer exit status.
func (p *Pipe) Exec(cmdLine string) *Pipe {
	return p.Filter(func(r io.Reader, w io.Writer) error {
		args, err := shell.Fields(cmdLine, nil)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return errors.New("empty command line")
		}
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Stdin = r
		cmd.Stdout = w
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return err
		}
		return cmd.Wait()
	})
}

// First produces only the first n lines of the pipe's contents, or all the
// lines if there are less than n. It stops reading its input after the nth
// line. If n is zero or negative, there is no output at all.
func (p *Pipe) First(n int) *Pipe {
	if p == nil || p.Error() != nil {
		return p
	}
	if n <= 0 {
		p.Close()
		return p.WithReader(strings.NewReader(""))
	}
	return p.Filter(func(r io.Reader, w io.Writer) error {
		scanner := newScanner(r)
		for i := 0; i < n && scanner.Scan(); i++ {
			if _, err := fmt.Fprintln(w, scanner.Text()); err != nil {
				return err
			}
		}
		return scanner.Err()
	})
}

// JQ executes query on the pipe's contents, which must be a stream of JSON
// values, and produces the results, one compact JSON value per line. An
// invalid query or input sets the pipe's error status.
func (p *Pipe) JQ(query string) *Pipe {
	if p == nil || p.Error() != nil {
		return p
	}
	parsed, err := gojq.Parse(query)
	if err != nil {
		return p.WithError(err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return p.WithError(err)
	}
	return p.Filter(func(r io.Reader, w io.Writer) error {
		dec := json.NewDecoder(r)
		for dec.More() {
			var input any
			if err := dec.Decode(&input); err != nil {
				return err
			}
			iter := code.Run(input)
			for {
				v, ok := iter.Next()
				if !ok {
					break
				}
				if err, ok := v.(error); ok {
					return err
				}
				result, err := json.Marshal(v)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(w, string(result)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// MatchRegexp produces only the input lines that match the compiled regexp re.
func (p *Pipe) MatchRegexp(re *regexp.Regexp) *Pipe {
	return p.FilterScan(func(line string, w io.Writer) {
		if re.MatchString(line) {
			fmt.Fprintln(w, line)
		}
	})
}

// RejectRegexp produces only lines that don't match the compiled regexp re.
func (p *Pipe) RejectRegexp(re *regexp.Regexp) *Pipe {
	return p.FilterScan(func(line string, w io.Writer) {
		if !re.MatchString(line) {
			fmt.Fprintln(w, line)
		}
	})
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), math.MaxInt)
	return scanner
}

func eachLine(r io.Reader, fn func(string) error) error {
	scanner := newScanner(r)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func eachChunk(r io.Reader, size int, fn func(string) error) error {
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if ferr := fn(string(buf[:n])); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
