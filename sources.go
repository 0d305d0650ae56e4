package clfstat

import (
	"os"
	"strings"
)

// Echo returns a pipe containing the supplied string.
func Echo(s string) *Pipe {
	return NewPipe().WithReader(strings.NewReader(s))
}

// Exec runs an external command and returns a pipe containing its standard
// output, so that logs can be read from commands such as `zcat
// access.log.2.gz`. If the command had a non-zero exit status, the pipe's
// error status will be set to the string "exit status X", where X is the
// integer exit status.
func Exec(cmdLine string) *Pipe {
	return NewPipe().Exec(cmdLine)
}

// File returns a *Pipe associated with the specified file. This is useful for
// starting pipelines. If there is an error opening the file, the pipe's error
// status will be set.
func File(name string) *Pipe {
	p := NewPipe()
	f, err := os.Open(name)
	if err != nil {
		return p.WithError(err)
	}
	return p.WithReader(f)
}

// Slice returns a pipe containing each element of the supplied slice of
// strings, one per line.
func Slice(s []string) *Pipe {
	if len(s) == 0 {
		return NewPipe()
	}
	return Echo(strings.Join(s, "\n") + "\n")
}

// Stdin returns a pipe which reads from the program's standard input.
func Stdin() *Pipe {
	return NewPipe().WithReader(os.Stdin)
}
