package io

import (
	"fmt"
	"iter"
	"maps"
)

const (
	TEMP_DATA  = 0 // Data port offset.
	TEMP_COUNT = 1 // Count port offset. Writing any value empties the buffer.
)

var _temp_defines = map[string]string{
	"TEMP_DATA":  fmt.Sprintf("%v", TEMP_DATA),
	"TEMP_COUNT": fmt.Sprintf("%v", TEMP_COUNT),
}

// Temporary implements a circular buffer for temporary byte storage.
// It operates as a FIFO queue with a fixed capacity and separate read/write positions.
type Temporary struct {
	Capacity int // Capacity in bytes, at most 255.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []uint8
}

var _ Device = (*Temporary)(nil)

// Defines returns an iter of defines for the temporary buffer.
func (temp *Temporary) Defines() iter.Seq2[string, string] {
	return maps.All(_temp_defines)
}

// Ports used by the temporary buffer.
func (temp *Temporary) Ports() int {
	return 2
}

// Rewind resets the temporary storage to empty, resetting indices and
// reinitializing the data buffer.
func (temp *Temporary) Rewind() {
	temp.Capacity = min(max(temp.Capacity, 0), 0xff)
	temp.ReadIndex = 0
	temp.WriteIndex = 0
	temp.Size = 0
	temp.Data = make([]uint8, temp.Capacity)
}

// In pops a byte from the data port, or returns the byte count.
// An empty buffer reads as 0.
func (temp *Temporary) In(offset uint8) (value uint8) {
	switch offset {
	case TEMP_DATA:
		if temp.Size == 0 {
			return
		}
		value = temp.Data[temp.ReadIndex]
		temp.ReadIndex++
		if temp.ReadIndex == temp.Capacity {
			temp.ReadIndex = 0
		}
		temp.Size--
	case TEMP_COUNT:
		value = uint8(temp.Size)
	}

	return
}

// Out pushes a byte to the buffer at the current write position.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Out(offset uint8, value uint8) (err error) {
	if offset == TEMP_COUNT {
		temp.Rewind()
		return
	}

	if temp.Data == nil {
		temp.Rewind()
	}

	if temp.Size >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Data[temp.WriteIndex] = value

	temp.WriteIndex++
	if temp.WriteIndex == temp.Capacity {
		temp.WriteIndex = 0
	}
	temp.Size++

	return
}
