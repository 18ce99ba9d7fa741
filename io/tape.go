package io

import (
	"fmt"
	"io"
	"iter"
	"maps"
)

const (
	TAPE_DATA   = 0 // Data port offset.
	TAPE_STATUS = 1 // Status port offset.

	TAPE_STATUS_INPUT  = 0x01 // An input byte is ready.
	TAPE_STATUS_OUTPUT = 0x02 // Output is attached.
	TAPE_STATUS_EOF    = 0x04 // Input is exhausted.

	TAPE_EOF = 0x1a // Read from the data port once input is exhausted.
)

var _tape_defines = map[string]string{
	"TAPE_DATA":          fmt.Sprintf("%v", TAPE_DATA),
	"TAPE_STATUS":        fmt.Sprintf("%v", TAPE_STATUS),
	"TAPE_STATUS_INPUT":  fmt.Sprintf("%#x", TAPE_STATUS_INPUT),
	"TAPE_STATUS_OUTPUT": fmt.Sprintf("%#x", TAPE_STATUS_OUTPUT),
	"TAPE_STATUS_EOF":    fmt.Sprintf("%#x", TAPE_STATUS_EOF),
	"TAPE_EOF":           fmt.Sprintf("%#x", TAPE_EOF),
}

// Tape provides sequential I/O operations for reading and writing byte streams.
// It wraps an io.Reader for input and io.Writer for output, on a data port
// and a status port.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	hasInput  bool
	lastInput byte
	eof       bool
}

var _ Device = (*Tape)(nil)

// Defines returns an iter of defines for the tape.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(_tape_defines)
}

// Ports used by the tape.
func (tc *Tape) Ports() int {
	return 2
}

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// fill reads ahead a single byte of input, if needed.
func (tc *Tape) fill() {
	if tc.hasInput || tc.eof {
		return
	}

	if tc.Input == nil {
		tc.eof = true
		return
	}

	var one [1]byte
	n, err := io.ReadFull(tc.Input, one[:])
	if n != 1 || err != nil {
		tc.eof = true
		return
	}

	tc.lastInput = one[0]
	tc.hasInput = true
}

// In returns the next input byte from the data port, or the tape status.
func (tc *Tape) In(offset uint8) (value uint8) {
	tc.fill()

	switch offset {
	case TAPE_DATA:
		if tc.hasInput {
			value = tc.lastInput
			tc.hasInput = false
		} else {
			value = TAPE_EOF
		}
	case TAPE_STATUS:
		if tc.hasInput {
			value |= TAPE_STATUS_INPUT
		}
		if tc.Output != nil {
			value |= TAPE_STATUS_OUTPUT
		}
		if tc.eof {
			value |= TAPE_STATUS_EOF
		}
	}

	return
}

// Out writes a byte to the output stream.
func (tc *Tape) Out(offset uint8, value uint8) (err error) {
	if offset != TAPE_DATA {
		err = ErrPortReadOnly
		return
	}

	if tc.Output == nil {
		err = ErrNoOutput
		return
	}

	_, err = tc.Output.Write([]byte{value})
	return
}
