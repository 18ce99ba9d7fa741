package io

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	// Port errors
	ErrPortInUse    = errors.New(f("port in use"))
	ErrPortRange    = errors.New(f("port range invalid"))
	ErrPortReadOnly = errors.New(f("port read only"))

	// Device errors
	ErrChannelFull = errors.New(f("channel full"))
	ErrNoOutput    = errors.New(f("no output"))

	// Image errors
	ErrImageNotFound = errors.New(f("image not found"))
	ErrImageEmpty    = errors.New(f("image empty"))
	ErrImageTooLarge = errors.New(f("image too large"))
)

// ErrDevice locates a device error on the port it occurred on.
type ErrDevice struct {
	Name string
	Port uint8
	Err  error
}

func (err *ErrDevice) Error() string {
	return f("%v port 0x%02x: %v", err.Name, err.Port, err.Err)
}

func (err *ErrDevice) Unwrap() error {
	return err.Err
}
