package io

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/i8080/cpu"
)

func TestPortMap_Attach(t *testing.T) {
	assert := assert.New(t)

	pm := &PortMap{}

	assert.NoError(pm.Attach("tape", 0x10, &Tape{}))
	assert.NoError(pm.Attach("latch", 0x12, &Latch{}))

	assert.ErrorIs(pm.Attach("other", 0x11, &Latch{}), ErrPortInUse)
	assert.ErrorIs(pm.Attach("other", 0xff, &Tape{}), ErrPortRange)

	dev, offset, ok := pm.Device(0x11)
	assert.True(ok)
	assert.Equal(uint8(1), offset)
	_, isTape := dev.(*Tape)
	assert.True(isTape)

	_, _, ok = pm.Device(0x13)
	assert.False(ok)

	defines := map[string]string{}
	for key, value := range pm.Defines() {
		defines[key] = value
	}
	assert.Equal(map[string]string{
		"TAPE_PORT":  "0x10",
		"LATCH_PORT": "0x12",
	}, defines)
}

func TestPortMap_InOut(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	pm := &PortMap{}
	latch := &Latch{}
	assert.NoError(pm.Attach("tape", 0x10, &Tape{Input: bytes.NewBufferString("A"), Output: output}))
	assert.NoError(pm.Attach("latch", 0x20, latch))

	assert.Equal(uint8('A'), pm.In(nil, 0x10))
	assert.Equal(uint8(TAPE_EOF), pm.In(nil, 0x10))

	assert.False(pm.Out(nil, 0x10, 'Z'))
	assert.Equal("Z", output.String())

	assert.False(pm.Out(nil, 0x20, 0x42))
	assert.Equal(uint8(0x42), pm.In(nil, 0x20))

	// Unmapped ports.
	assert.Equal(uint8(0), pm.In(nil, 0x80))
	assert.False(pm.Out(nil, 0x80, 0x01))
	assert.NoError(pm.Fault())

	pm.Rewind()
	assert.Equal(uint8(0), latch.Value)
}

func TestPortMap_Fault(t *testing.T) {
	assert := assert.New(t)

	pm := &PortMap{}
	assert.NoError(pm.Attach("tape", 0x10, &Tape{}))

	pm.Out(nil, 0x11, 0x00)
	pm.Out(nil, 0x10, 0x00)

	err := pm.Fault()
	assert.ErrorIs(err, ErrPortReadOnly)

	var de *ErrDevice
	assert.True(errors.As(err, &de))
	assert.Equal("tape", de.Name)
	assert.Equal(uint8(0x11), de.Port)

	assert.NoError(pm.Fault())
}

func TestPortMap_Cpu(t *testing.T) {
	assert := assert.New(t)

	pm := &PortMap{}
	assert.NoError(pm.Attach("latch", 0x20, &Latch{}))

	proc := cpu.NewCpu(pm)
	proc.Memory.Load(0, []uint8{
		0x3e, 0x99, // MVI A,0x99
		0xd3, 0x20, // OUT 0x20
		0xaf,       // XRA A
		0xdb, 0x20, // IN 0x20
	})

	for range 4 {
		proc.Step()
	}

	assert.Equal(uint8(0x99), proc.Reg.A)
}

func TestLoadImage(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"hello.com": &fstest.MapFile{Data: []byte{0x76}},
		"empty.com": &fstest.MapFile{Data: []byte{}},
		"huge.com":  &fstest.MapFile{Data: make([]byte, cpu.MEMORY_SIZE+1)},
	}

	data, err := LoadImage(fsys, "hello.com")
	assert.NoError(err)
	assert.Equal([]byte{0x76}, data)

	_, err = LoadImage(fsys, "missing.com")
	assert.ErrorIs(err, ErrImageNotFound)

	_, err = LoadImage(fsys, "empty.com")
	assert.ErrorIs(err, ErrImageEmpty)

	data, err = LoadImage(fsys, "huge.com")
	assert.ErrorIs(err, ErrImageTooLarge)
	assert.Nil(data)
}
