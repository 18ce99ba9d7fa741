package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemporary_Rewind(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{
		Capacity:   10,
		ReadIndex:  3,
		WriteIndex: 7,
		Size:       4,
		Data:       []uint8{1, 2, 3},
	}

	temp.Rewind()

	assert.Equal(0, temp.ReadIndex)
	assert.Equal(0, temp.WriteIndex)
	assert.Equal(0, temp.Size)
	assert.Len(temp.Data, 10)

	temp = &Temporary{Capacity: 1000}
	temp.Rewind()
	assert.Equal(0xff, temp.Capacity)
}

func TestTemporary_Out_In(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 8}

	// Out rewinds an unused buffer.
	for _, value := range []uint8{0x10, 0x20, 0x30, 0x40} {
		assert.NoError(temp.Out(TEMP_DATA, value))
	}

	assert.Equal(uint8(4), temp.In(TEMP_COUNT))

	var data []uint8
	for temp.In(TEMP_COUNT) > 0 {
		data = append(data, temp.In(TEMP_DATA))
	}

	assert.Equal([]uint8{0x10, 0x20, 0x30, 0x40}, data)
	assert.Equal(0, temp.Size)

	// Empty reads as zero.
	assert.Equal(uint8(0), temp.In(TEMP_DATA))
}

func TestTemporary_CapacityFull(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 3}
	temp.Rewind()

	assert.NoError(temp.Out(TEMP_DATA, 1))
	assert.NoError(temp.Out(TEMP_DATA, 2))
	assert.NoError(temp.Out(TEMP_DATA, 3))

	// Should be full
	assert.Equal(ErrChannelFull, temp.Out(TEMP_DATA, 4))

	// Writing the count port empties the buffer.
	assert.NoError(temp.Out(TEMP_COUNT, 0))
	assert.Equal(uint8(0), temp.In(TEMP_COUNT))
}

func TestTemporary_WrapAround(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 4}
	temp.Rewind()

	// Fill up
	for value := range uint8(4) {
		assert.NoError(temp.Out(TEMP_DATA, value))
	}

	// Read some
	assert.Equal(uint8(0), temp.In(TEMP_DATA))
	assert.Equal(uint8(1), temp.In(TEMP_DATA))

	// Now we have space, write more
	assert.NoError(temp.Out(TEMP_DATA, 4))
	assert.NoError(temp.Out(TEMP_DATA, 5))

	// Should have wrapped around
	assert.Equal(2, temp.WriteIndex)
	assert.Equal(2, temp.ReadIndex)
	assert.Equal(4, temp.Size)

	var data []uint8
	for range 4 {
		data = append(data, temp.In(TEMP_DATA))
	}
	assert.Equal([]uint8{2, 3, 4, 5}, data)
}

func TestLatch(t *testing.T) {
	assert := assert.New(t)

	latch := &Latch{}
	assert.Equal(1, latch.Ports())
	assert.Equal(uint8(0), latch.In(0))

	assert.NoError(latch.Out(0, 0xa5))
	assert.Equal(uint8(0xa5), latch.In(0))

	latch.Rewind()
	assert.Equal(uint8(0), latch.In(0))
}
