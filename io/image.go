package io

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ezrec/i8080/cpu"
)

// LoadImage reads a program image from a file system.
// The image must hold at least one byte, and fit in the 8080 address space.
func LoadImage(fsys fs.FS, name string) (data []byte, err error) {
	data, err = fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrImageNotFound, name)
		}
		data = nil
		return
	}

	switch {
	case len(data) == 0:
		err = fmt.Errorf("%w: %v", ErrImageEmpty, name)
	case len(data) > cpu.MEMORY_SIZE:
		err = fmt.Errorf("%w: %v", ErrImageTooLarge, name)
	}
	if err != nil {
		data = nil
	}

	return
}
