package cpu

import (
	"fmt"
)

// opFunc executes an opcode. It returns true when a conditional call or
// return is taken, and the extra cycles must be charged.
type opFunc func(cpu *Cpu) (taken bool)

// opTable is the handler table for all 256 opcode values.
var opTable [256]opFunc

func init() {
	set := func(opcode int, fn opFunc) {
		if opTable[opcode] != nil {
			panic(fmt.Sprintf("opcode 0x%02x defined twice", opcode))
		}
		opTable[opcode] = fn
	}

	// NOP, and its undocumented aliases.
	for _, opcode := range []int{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38} {
		set(opcode, opNop)
	}

	// MOV r,r and HLT
	for opcode := 0x40; opcode <= 0x7f; opcode++ {
		if opcode == 0x76 {
			set(opcode, opHalt)
			continue
		}
		dst := Register((opcode >> 3) & 7)
		src := Register(opcode & 7)
		set(opcode, func(cpu *Cpu) bool {
			cpu.setReg(dst, cpu.getReg(src))
			return false
		})
	}

	for r := range 8 {
		reg := Register(r)
		// MVI r,d8
		set(0x06|(r<<3), func(cpu *Cpu) bool {
			cpu.setReg(reg, cpu.fetchByte())
			return false
		})
		// INR r
		set(0x04|(r<<3), func(cpu *Cpu) bool {
			value, half := Increment(cpu.getReg(reg))
			cpu.Flags.HalfCarry = half
			cpu.Flags.setZSP(value)
			cpu.setReg(reg, value)
			return false
		})
		// DCR r
		set(0x05|(r<<3), func(cpu *Cpu) bool {
			value, half := Decrement(cpu.getReg(reg))
			cpu.Flags.HalfCarry = half
			cpu.Flags.setZSP(value)
			cpu.setReg(reg, value)
			return false
		})
	}

	// ALU A,r and ALU A,d8
	for o := range 8 {
		op := AluOp(o)
		for r := range 8 {
			reg := Register(r)
			set(0x80|(o<<3)|r, func(cpu *Cpu) bool {
				cpu.alu(op, cpu.getReg(reg))
				return false
			})
		}
		set(0xc6|(o<<3), func(cpu *Cpu) bool {
			cpu.alu(op, cpu.fetchByte())
			return false
		})
	}

	for p := range 4 {
		pair := Pair(p)
		// LXI rp,d16
		set(0x01|(p<<4), func(cpu *Cpu) bool {
			cpu.Reg.SetPair(pair, cpu.fetchWord())
			return false
		})
		// INX rp
		set(0x03|(p<<4), func(cpu *Cpu) bool {
			cpu.Reg.SetPair(pair, cpu.Reg.Pair(pair)+1)
			return false
		})
		// DCX rp
		set(0x0b|(p<<4), func(cpu *Cpu) bool {
			cpu.Reg.SetPair(pair, cpu.Reg.Pair(pair)-1)
			return false
		})
		// DAD rp
		set(0x09|(p<<4), func(cpu *Cpu) bool {
			hl, carry := DoubleAdd(cpu.Reg.HL(), cpu.Reg.Pair(pair))
			cpu.Reg.SetHL(hl)
			cpu.Flags.Carry = carry
			return false
		})
	}

	// PUSH rp and POP rp. PAIR_SP encodes PSW here.
	for p := range 3 {
		pair := Pair(p)
		set(0xc5|(p<<4), func(cpu *Cpu) bool {
			cpu.push(cpu.Reg.Pair(pair))
			return false
		})
		set(0xc1|(p<<4), func(cpu *Cpu) bool {
			cpu.Reg.SetPair(pair, cpu.pop())
			return false
		})
	}
	set(0xf5, opPushPsw)
	set(0xf1, opPopPsw)

	for c := range 8 {
		cond := Condition(c)
		// Jcc a16: the address is always consumed.
		set(0xc2|(c<<3), func(cpu *Cpu) bool {
			addr := cpu.fetchWord()
			if cond.Test(cpu.Flags) {
				cpu.Reg.PC = addr
			}
			return false
		})
		// Ccc a16
		set(0xc4|(c<<3), func(cpu *Cpu) bool {
			addr := cpu.fetchWord()
			if !cond.Test(cpu.Flags) {
				return false
			}
			cpu.call(addr)
			return true
		})
		// Rcc
		set(0xc0|(c<<3), func(cpu *Cpu) bool {
			if !cond.Test(cpu.Flags) {
				return false
			}
			cpu.Reg.PC = cpu.pop()
			return true
		})
		// RST n
		vector := uint16(c << 3)
		set(0xc7|(c<<3), func(cpu *Cpu) bool {
			cpu.call(vector)
			return false
		})
	}

	// JMP, and its undocumented alias.
	set(0xc3, opJump)
	set(0xcb, opJump)

	// CALL, and its undocumented aliases.
	set(0xcd, opCall)
	set(0xdd, opCall)
	set(0xed, opCall)
	set(0xfd, opCall)

	// RET, and its undocumented alias.
	set(0xc9, opReturn)
	set(0xd9, opReturn)

	set(0x02, func(cpu *Cpu) bool { // STAX B
		cpu.Memory.Write(cpu.Reg.BC(), cpu.Reg.A)
		return false
	})
	set(0x12, func(cpu *Cpu) bool { // STAX D
		cpu.Memory.Write(cpu.Reg.DE(), cpu.Reg.A)
		return false
	})
	set(0x0a, func(cpu *Cpu) bool { // LDAX B
		cpu.Reg.A = cpu.Memory.Read(cpu.Reg.BC())
		return false
	})
	set(0x1a, func(cpu *Cpu) bool { // LDAX D
		cpu.Reg.A = cpu.Memory.Read(cpu.Reg.DE())
		return false
	})
	set(0x22, func(cpu *Cpu) bool { // SHLD a16
		cpu.Memory.WriteWord(cpu.fetchWord(), cpu.Reg.HL())
		return false
	})
	set(0x2a, func(cpu *Cpu) bool { // LHLD a16
		cpu.Reg.SetHL(cpu.Memory.ReadWord(cpu.fetchWord()))
		return false
	})
	set(0x32, func(cpu *Cpu) bool { // STA a16
		cpu.Memory.Write(cpu.fetchWord(), cpu.Reg.A)
		return false
	})
	set(0x3a, func(cpu *Cpu) bool { // LDA a16
		cpu.Reg.A = cpu.Memory.Read(cpu.fetchWord())
		return false
	})

	set(0x07, func(cpu *Cpu) bool { // RLC
		cpu.Reg.A, cpu.Flags.Carry = RotateLeft(cpu.Reg.A)
		return false
	})
	set(0x0f, func(cpu *Cpu) bool { // RRC
		cpu.Reg.A, cpu.Flags.Carry = RotateRight(cpu.Reg.A)
		return false
	})
	set(0x17, func(cpu *Cpu) bool { // RAL
		cpu.Reg.A, cpu.Flags.Carry = RotateLeftCarry(cpu.Reg.A, cpu.Flags.Carry)
		return false
	})
	set(0x1f, func(cpu *Cpu) bool { // RAR
		cpu.Reg.A, cpu.Flags.Carry = RotateRightCarry(cpu.Reg.A, cpu.Flags.Carry)
		return false
	})
	set(0x27, func(cpu *Cpu) bool { // DAA
		var value uint8
		value, cpu.Flags.Carry, cpu.Flags.HalfCarry = DecimalAdjust(cpu.Reg.A, cpu.Flags.Carry, cpu.Flags.HalfCarry)
		cpu.Flags.setZSP(value)
		cpu.Reg.A = value
		return false
	})
	set(0x2f, func(cpu *Cpu) bool { // CMA
		cpu.Reg.A = ^cpu.Reg.A
		return false
	})
	set(0x37, func(cpu *Cpu) bool { // STC
		cpu.Flags.Carry = true
		return false
	})
	set(0x3f, func(cpu *Cpu) bool { // CMC
		cpu.Flags.Carry = !cpu.Flags.Carry
		return false
	})

	set(0xe3, func(cpu *Cpu) bool { // XTHL
		value := cpu.Memory.ReadWord(cpu.Reg.SP)
		cpu.Memory.WriteWord(cpu.Reg.SP, cpu.Reg.HL())
		cpu.Reg.SetHL(value)
		return false
	})
	set(0xeb, func(cpu *Cpu) bool { // XCHG
		de := cpu.Reg.DE()
		cpu.Reg.SetDE(cpu.Reg.HL())
		cpu.Reg.SetHL(de)
		return false
	})
	set(0xe9, func(cpu *Cpu) bool { // PCHL
		cpu.Reg.PC = cpu.Reg.HL()
		return false
	})
	set(0xf9, func(cpu *Cpu) bool { // SPHL
		cpu.Reg.SP = cpu.Reg.HL()
		return false
	})

	set(0xf3, func(cpu *Cpu) bool { // DI
		cpu.Flags.InterruptEnable = false
		return false
	})
	set(0xfb, func(cpu *Cpu) bool { // EI
		cpu.Flags.InterruptEnable = true
		cpu.Interrupt.Delay = 1
		return false
	})

	set(0xdb, func(cpu *Cpu) bool { // IN d8
		cpu.Reg.A = cpu.Port.In(cpu, cpu.fetchByte())
		return false
	})
	set(0xd3, func(cpu *Cpu) bool { // OUT d8
		if cpu.Port.Out(cpu, cpu.fetchByte(), cpu.Reg.A) {
			cpu.finished = true
		}
		return false
	})

	for opcode, fn := range opTable {
		if fn == nil {
			panic(fmt.Sprintf("opcode 0x%02x has no handler", opcode))
		}
	}
}

func opNop(cpu *Cpu) bool {
	return false
}

func opHalt(cpu *Cpu) bool {
	cpu.Halted = true
	return false
}

func opJump(cpu *Cpu) bool {
	cpu.Reg.PC = cpu.fetchWord()
	return false
}

func opCall(cpu *Cpu) bool {
	cpu.call(cpu.fetchWord())
	return false
}

func opReturn(cpu *Cpu) bool {
	cpu.Reg.PC = cpu.pop()
	return false
}

func opPushPsw(cpu *Cpu) bool {
	cpu.push((uint16(cpu.Reg.A) << 8) | uint16(cpu.Flags.Pack()))
	return false
}

func opPopPsw(cpu *Cpu) bool {
	psw := cpu.pop()
	cpu.Reg.A = uint8(psw >> 8)
	cpu.Flags.Unpack(uint8(psw))
	return false
}

// getReg returns an 8-bit register, or the memory byte at HL for REG_M.
func (cpu *Cpu) getReg(reg Register) (value uint8) {
	switch reg {
	case REG_A:
		value = cpu.Reg.A
	case REG_B:
		value = cpu.Reg.B
	case REG_C:
		value = cpu.Reg.C
	case REG_D:
		value = cpu.Reg.D
	case REG_E:
		value = cpu.Reg.E
	case REG_H:
		value = cpu.Reg.H
	case REG_L:
		value = cpu.Reg.L
	case REG_M:
		value = cpu.Memory.Read(cpu.Reg.HL())
	}
	return
}

// setReg sets an 8-bit register, or the memory byte at HL for REG_M.
func (cpu *Cpu) setReg(reg Register, value uint8) {
	switch reg {
	case REG_A:
		cpu.Reg.A = value
	case REG_B:
		cpu.Reg.B = value
	case REG_C:
		cpu.Reg.C = value
	case REG_D:
		cpu.Reg.D = value
	case REG_E:
		cpu.Reg.E = value
	case REG_H:
		cpu.Reg.H = value
	case REG_L:
		cpu.Reg.L = value
	case REG_M:
		cpu.Memory.Write(cpu.Reg.HL(), value)
	}
}

// alu performs an accumulator operation, updating the flags.
func (cpu *Cpu) alu(op AluOp, value uint8) {
	fl := &cpu.Flags
	a := cpu.Reg.A

	var result uint8
	switch op {
	case ALU_ADD, ALU_ADC:
		result, fl.Carry, fl.HalfCarry = Add(a, value, op == ALU_ADC && fl.Carry)
	case ALU_SUB, ALU_SBB:
		result, fl.Carry, fl.HalfCarry = Subtract(a, value, op == ALU_SBB && fl.Carry)
	case ALU_CMP:
		result, fl.Carry, fl.HalfCarry = Compare(a, value)
	case ALU_ANA:
		result, fl.HalfCarry = And(a, value)
		fl.Carry = false
	case ALU_XRA:
		result = Xor(a, value)
		fl.Carry = false
		fl.HalfCarry = false
	case ALU_ORA:
		result = Or(a, value)
		fl.Carry = false
		fl.HalfCarry = false
	}

	fl.setZSP(result)

	if op != ALU_CMP {
		cpu.Reg.A = result
	}
}

// push decrements SP by two, then stores value at SP.
func (cpu *Cpu) push(value uint16) {
	cpu.Reg.SP -= 2
	cpu.Memory.WriteWord(cpu.Reg.SP, value)
}

// pop loads the value at SP, then increments SP by two.
func (cpu *Cpu) pop() (value uint16) {
	value = cpu.Memory.ReadWord(cpu.Reg.SP)
	cpu.Reg.SP += 2
	return
}

// call pushes the return address, then jumps to addr.
func (cpu *Cpu) call(addr uint16) {
	cpu.push(cpu.Reg.PC)
	cpu.Reg.PC = addr
}
