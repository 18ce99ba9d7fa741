package emulator

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	ErrCycleLimit   = errors.New(f("cycle limit reached"))
	ErrAborted      = errors.New(f("aborted"))
	ErrHalted       = errors.New(f("halted with no deliverable interrupt"))
	ErrBootConflict = errors.New(f("image overlaps the CP/M vectors"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Addr   uint16
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("pc 0x%04x %v", err.Addr, err.Err)
	}
	return f("line %d pc 0x%04x %v", err.LineNo, err.Addr, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
