package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsPack(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(FLAG_ONE, Flags{}.Pack())

	fl := Flags{Sign: true, Zero: true, HalfCarry: true, Parity: true, Carry: true}
	assert.Equal(uint8(0xd7), fl.Pack())

	// The interrupt enable is not part of the status byte.
	fl = Flags{InterruptEnable: true}
	assert.Equal(FLAG_ONE, fl.Pack())
}

func TestFlagsRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for n := range 256 {
		psw := uint8(n)

		fl := Flags{InterruptEnable: true}
		fl.Unpack(psw)
		assert.True(fl.InterruptEnable)
		assert.Equal((psw&(FLAG_S|FLAG_Z|FLAG_H|FLAG_P|FLAG_C))|FLAG_ONE, fl.Pack(), "psw 0x%02x", psw)
	}
}

func TestFlagsString(t *testing.T) {
	assert := assert.New(t)

	fl := Flags{Sign: true, Carry: true}
	assert.Equal("Sz-h-p-C i", fl.String())

	fl = Flags{Zero: true, HalfCarry: true, Parity: true, InterruptEnable: true}
	assert.Equal("sZ-H-P-c I", fl.String())
}

func TestRegisterPairs(t *testing.T) {
	assert := assert.New(t)

	var regs Registers

	regs.SetBC(0x1234)
	assert.Equal(uint8(0x12), regs.B)
	assert.Equal(uint8(0x34), regs.C)

	regs.SetDE(0x5678)
	assert.Equal(uint8(0x56), regs.D)
	assert.Equal(uint8(0x78), regs.E)

	regs.SetHL(0x9abc)
	assert.Equal(uint8(0x9a), regs.H)
	assert.Equal(uint8(0xbc), regs.L)

	regs.SetPair(PAIR_SP, 0xdef0)

	assert.Equal(uint16(0x1234), regs.Pair(PAIR_BC))
	assert.Equal(uint16(0x5678), regs.Pair(PAIR_DE))
	assert.Equal(uint16(0x9abc), regs.Pair(PAIR_HL))
	assert.Equal(uint16(0xdef0), regs.Pair(PAIR_SP))

	assert.Equal("A: 00, BC: 1234, DE: 5678, HL: 9ABC, PC: 0000, SP: DEF0", regs.String())
}
