package clfstat

import (
	"io"
	"os"
	"path/filepath"
)

// Bytes returns the contents of the pipe as a []byte, or an error.
func (p *Pipe) Bytes() ([]byte, error) {
	if p.Error() != nil {
		p.Close()
		return nil, p.result()
	}
	data, err := io.ReadAll(p)
	if err != nil {
		p.SetError(err)
	}
	return data, p.result()
}

// CountLines returns the number of lines of input, or an error.
func (p *Pipe) CountLines() (lines int, err error) {
	if p.Error() != nil {
		p.Close()
		return 0, p.result()
	}
	err = eachLine(p, func(string) error {
		lines++
		return nil
	})
	if err != nil {
		p.SetError(err)
	}
	return lines, p.result()
}

// Stdout copies the pipe's contents to its configured standard output (using
// [Pipe.WithStdout]), or to [os.Stdout] otherwise, and returns the number of
// bytes successfully written, together with any error.
func (p *Pipe) Stdout() (int, error) {
	if p.Error() != nil {
		p.Close()
		return 0, p.result()
	}
	defer p.Close()
	stdout := p.stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	n64, err := io.Copy(stdout, p)
	if err != nil {
		p.SetError(err)
	}
	return int(n64), p.result()
}

// String returns the pipe's contents as a string, together with any error.
func (p *Pipe) String() (string, error) {
	data, err := p.Bytes()
	return string(data), err
}

// Wait reads the pipe to completion and discards the result. This is mostly
// useful for waiting until concurrent filters have completed (see
// [Pipe.Filter]), and for pipelines run only for the side effects of their
// transforms.
func (p *Pipe) Wait() error {
	if p.Error() != nil {
		p.Close()
		return p.result()
	}
	_, err := io.Copy(io.Discard, p)
	if err != nil {
		p.SetError(err)
	}
	return p.result()
}

// WriteFile writes the pipe's contents to the file path, truncating it if it
// exists, and returns the number of bytes successfully written, together with
// any error.
//
// The contents are written to a temporary file in the same directory, which
// replaces path only once the whole pipeline has succeeded. A failed pipeline
// leaves path untouched.
func (p *Pipe) WriteFile(path string) (int64, error) {
	if p.Error() != nil {
		p.Close()
		return 0, p.result()
	}
	defer p.Close()
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		p.SetError(err)
		return 0, p.result()
	}
	wrote, err := io.Copy(tmp, p)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		p.SetError(err)
		return 0, p.result()
	}
	return wrote, p.result()
}
