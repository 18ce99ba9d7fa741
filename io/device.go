// Package io provides the I/O port devices for the 8080 emulator.
// It includes a port map that routes the IN and OUT instructions to
// attached devices, sequential byte I/O (Tape), a FIFO scratch buffer
// (Temporary), a single byte register (Latch), and program image loading.
package io

// Device defines the interface for all peripherals attached to the port map.
// A device occupies a contiguous range of ports, addressed by offset from
// the first port of its range.
type Device interface {
	// Ports returns the number of ports used by the device.
	Ports() int
	// Rewind resets the device to its initial state.
	Rewind()
	// In returns the value read from a device port.
	In(offset uint8) (value uint8)
	// Out writes a value to a device port.
	Out(offset uint8, value uint8) (err error)
}
