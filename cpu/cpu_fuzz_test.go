package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// jumper returns true for instructions that may load PC from somewhere
// other than the next instruction.
func jumper(inst Instruction) bool {
	switch inst.Mnemonic {
	case "JMP", "JNZ", "JZ", "JNC", "JC", "JPO", "JPE", "JP", "JM",
		"CALL", "CNZ", "CZ", "CNC", "CC", "CPO", "CPE", "CP", "CM",
		"RET", "RNZ", "RZ", "RNC", "RC", "RPO", "RPE", "RP", "RM",
		"RST", "PCHL":
		return true
	}
	return false
}

func FuzzCpu(f *testing.F) {
	for opcode := range 256 {
		f.Add(uint8(opcode), uint8(0x00), uint16(0x0000), false)
		f.Add(uint8(opcode), uint8(0xff), uint16(0xffff), true)
	}

	f.Fuzz(func(t *testing.T, opcode uint8, a uint8, pair uint16, ie bool) {
		assert := assert.New(t)

		cpu, _ := newTestCpu()
		cpu.Port = &testPort{}
		cpu.Reg.A = a
		cpu.Reg.SetBC(pair)
		cpu.Reg.SetDE(^pair)
		cpu.Reg.SetHL(pair ^ 0x5a5a)
		cpu.Reg.SP = 0x8000
		cpu.Reg.PC = 0x1000
		cpu.Flags.Unpack(a)
		cpu.Flags.InterruptEnable = ie
		cpu.Memory.Load(0x1000, []uint8{opcode, uint8(pair), uint8(pair >> 8)})

		inst := Instructions[opcode]

		result := cpu.Step()
		assert.Equal(opcode, result.Opcode)
		assert.False(result.Interrupt)

		cycles := uint64(inst.Cycles)
		if result.Cycles != cycles {
			assert.Equal(cycles+uint64(inst.Taken), result.Cycles)
		}
		assert.Equal(result.Cycles, cpu.Cycles)

		// Bits 1, 3 and 5 of the status byte are fixed.
		assert.Equal(FLAG_ONE, cpu.Flags.Pack()&(FLAG_ONE|FLAG_3|FLAG_5))

		if !jumper(inst) {
			assert.Equal(uint16(0x1000+inst.Size), cpu.Reg.PC, inst.String())
		}

		switch opcode {
		case 0x76:
			assert.True(result.Halted)
		case 0xf3:
			assert.False(cpu.Flags.InterruptEnable)
		case 0xfb:
			assert.True(cpu.Flags.InterruptEnable)
			assert.Equal(uint8(1), cpu.Interrupt.Delay)
		}
	})
}
