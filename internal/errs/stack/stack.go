// Package stack attaches a caller frame to an error at the point it is
// constructed, so logs can report where a CodeError originated without
// every call site formatting its own location.
package stack

import (
	"fmt"
	"runtime"
)

// withStack wraps an error with the file:line of its Nth caller.
type withStack struct {
	err   error
	frame string
}

// New captures the caller `skip` frames up from New itself and returns an
// error that still satisfies errors.Is/As against err via Unwrap.
func New(err error, skip int) error {
	if err == nil {
		return nil
	}
	_, file, line, ok := runtime.Caller(skip)
	frame := "unknown"
	if ok {
		frame = fmt.Sprintf("%s:%d", file, line)
	}
	return &withStack{err: err, frame: frame}
}

func (w *withStack) Error() string {
	return w.err.Error()
}

func (w *withStack) Unwrap() error {
	return w.err
}

func (w *withStack) Frame() string {
	return w.frame
}
