package clfstat

import (
	"errors"
	"io"
	"os"
	"sync"
)

// DefaultBufferSize is the size of the buffer used to read chunks in chunk
// mode, unless the pipe is given another size with WithBufferSize.
const DefaultBufferSize = 64 * 1024

// Pipe represents a pipe object with an associated ReadAutoCloser.
type Pipe struct {
	Reader ReadAutoCloser
	stdout io.Writer

	// mu protects the fields below, which can be written by a filter
	// goroutine while the pipe is being read.
	mu               *sync.Mutex
	err              error
	reported         bool
	bufSize          int
	onTransformError func(unit string, err error)
	onError          func(err error)
}

// NewPipe returns a pointer to a new empty pipe.
func NewPipe() *Pipe {
	return &Pipe{
		Reader:  ReadAutoCloser{},
		stdout:  os.Stdout,
		mu:      new(sync.Mutex),
		bufSize: DefaultBufferSize,
	}
}

// Close closes the pipe's associated reader. This is always safe to do, because
// pipes created from a non-closable source will have an `io.NopCloser` to
// call.
func (p *Pipe) Close() error {
	if p == nil {
		return nil
	}
	return p.Reader.Close()
}

// Error returns the last error returned by any pipe operation, or nil otherwise.
func (p *Pipe) Error() error {
	if p == nil {
		return nil
	}
	if p.mu == nil { // zero pipe
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Read reads up to len(b) bytes from the data source into b. It returns the
// number of bytes read and any error encountered. At end of file, or on a nil
// pipe, Read returns 0, io.EOF.
//
// Unlike most sinks, Read does not necessarily read the whole contents of the
// pipe. It will read as many bytes as it takes to fill the slice.
func (p *Pipe) Read(b []byte) (int, error) {
	if p == nil {
		return 0, io.EOF
	}
	return p.Reader.Read(b)
}

// SetError sets the pipe's error status to the specified error. A non-nil
// error also closes the pipe's reader, so that any filters still writing to
// it stop.
func (p *Pipe) SetError(err error) {
	if p == nil {
		return
	}
	if err != nil {
		p.Close()
	}
	if p.mu == nil {
		p.err = err
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// setFirstError sets the pipe's error status unless it is already set. Filter
// goroutines use it, so that the error which stopped a pipeline is not
// replaced by the io.ErrClosedPipe its shutdown causes upstream.
func (p *Pipe) setFirstError(err error) {
	p.lock()
	defer p.unlock()
	if p.err == nil {
		p.err = err
	}
}

// WithReader takes an io.Reader, and associates the pipe with that reader. If
// necessary, the reader will be automatically closed once it has been
// completely read.
func (p *Pipe) WithReader(r io.Reader) *Pipe {
	if p == nil {
		return nil
	}
	p.Reader = NewReadAutoCloser(r)
	return p
}

// WithStdout takes an io.Writer, and associates the pipe's standard output with
// that writer, instead of the default os.Stdout. This is primarily useful for
// testing.
func (p *Pipe) WithStdout(w io.Writer) *Pipe {
	if p == nil {
		return nil
	}
	p.stdout = w
	return p
}

// WithError sets the pipe's error status to the specified error and returns the
// modified pipe.
func (p *Pipe) WithError(err error) *Pipe {
	p.SetError(err)
	return p
}

// WithBufferSize sets the size of the chunks handed to the transform function
// by TransformChunks. Sizes less than 1 select DefaultBufferSize.
func (p *Pipe) WithBufferSize(size int) *Pipe {
	if p == nil {
		return nil
	}
	if size < 1 {
		size = DefaultBufferSize
	}
	p.lock()
	defer p.unlock()
	p.bufSize = size
	return p
}

// WithTransformErrorHandler installs a function to be called whenever the
// transform function of a subsequent Transform fails. The handler receives
// the failing unit and the error, once per failure, and the pipeline carries
// on with the next unit; the failing unit produces no output. Without a
// handler, a failing transform sets the pipe's error status to a
// *TransformError and the pipeline stops.
func (p *Pipe) WithTransformErrorHandler(handler func(unit string, err error)) *Pipe {
	if p == nil {
		return nil
	}
	p.lock()
	defer p.unlock()
	p.onTransformError = handler
	return p
}

// WithErrorHandler installs a function to be called by the sink when the
// pipeline has failed for a reason other than a transform error: for example,
// the source could not be opened, or the output could not be written. The
// handler is called at most once, and the sink then reports success. Without
// a handler, the sink returns the error.
func (p *Pipe) WithErrorHandler(handler func(err error)) *Pipe {
	if p == nil {
		return nil
	}
	p.lock()
	defer p.unlock()
	p.onError = handler
	return p
}

// TransformError reports a failure of a transform function that no transform
// error handler dealt with.
type TransformError struct {
	Unit string
	Err  error
}

func (e *TransformError) Error() string {
	return "transform: " + e.Err.Error()
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// result returns the error a sink should report for the pipe, taking any
// installed error handler into account.
func (p *Pipe) result() error {
	err := p.Error()
	if err == nil {
		return nil
	}
	var te *TransformError
	if errors.As(err, &te) {
		return err
	}
	p.lock()
	handler := p.onError
	first := !p.reported
	if handler != nil {
		p.reported = true
	}
	p.unlock()
	if handler == nil {
		return err
	}
	if first {
		handler(err)
	}
	return nil
}

func (p *Pipe) lock() {
	if p.mu == nil {
		p.mu = new(sync.Mutex)
	}
	p.mu.Lock()
}

func (p *Pipe) unlock() {
	p.mu.Unlock()
}

func (p *Pipe) transformErrorHandler() func(string, error) {
	p.lock()
	defer p.unlock()
	return p.onTransformError
}

func (p *Pipe) bufferSize() int {
	p.lock()
	defer p.unlock()
	if p.bufSize < 1 {
		return DefaultBufferSize
	}
	return p.bufSize
}
