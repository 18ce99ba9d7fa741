package cpu

import (
	"fmt"
)

// Register is an 8-bit register operand, in 8080 instruction encoding order.
type Register int

const (
	REG_B = Register(0) // B
	REG_C = Register(1) // C
	REG_D = Register(2) // D
	REG_E = Register(3) // E
	REG_H = Register(4) // H
	REG_L = Register(5) // L
	REG_M = Register(6) // M, the memory byte addressed by HL
	REG_A = Register(7) // A
)

var registerName = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}

func (r Register) String() string {
	return registerName[r&7]
}

// Pair is a 16-bit register pair operand, in 8080 instruction encoding order.
type Pair int

const (
	PAIR_BC = Pair(0) // B
	PAIR_DE = Pair(1) // D
	PAIR_HL = Pair(2) // H
	PAIR_SP = Pair(3) // SP, or PSW for PUSH and POP
)

var pairName = [4]string{"B", "D", "H", "SP"}

func (p Pair) String() string {
	return pairName[p&3]
}

// Registers is the register file of the 8080.
type Registers struct {
	A, B, C, D, E, H, L uint8

	PC uint16 // Program counter.
	SP uint16 // Stack pointer.
}

// BC returns the B:C register pair.
func (r Registers) BC() uint16 {
	return (uint16(r.B) << 8) | uint16(r.C)
}

// DE returns the D:E register pair.
func (r Registers) DE() uint16 {
	return (uint16(r.D) << 8) | uint16(r.E)
}

// HL returns the H:L register pair.
func (r Registers) HL() uint16 {
	return (uint16(r.H) << 8) | uint16(r.L)
}

// SetBC sets the B:C register pair.
func (r *Registers) SetBC(value uint16) {
	r.B = uint8(value >> 8)
	r.C = uint8(value)
}

// SetDE sets the D:E register pair.
func (r *Registers) SetDE(value uint16) {
	r.D = uint8(value >> 8)
	r.E = uint8(value)
}

// SetHL sets the H:L register pair.
func (r *Registers) SetHL(value uint16) {
	r.H = uint8(value >> 8)
	r.L = uint8(value)
}

// Pair returns the value of a register pair.
func (r Registers) Pair(p Pair) (value uint16) {
	switch p & 3 {
	case PAIR_BC:
		value = r.BC()
	case PAIR_DE:
		value = r.DE()
	case PAIR_HL:
		value = r.HL()
	case PAIR_SP:
		value = r.SP
	}
	return
}

// SetPair sets the value of a register pair.
func (r *Registers) SetPair(p Pair, value uint16) {
	switch p & 3 {
	case PAIR_BC:
		r.SetBC(value)
	case PAIR_DE:
		r.SetDE(value)
	case PAIR_HL:
		r.SetHL(value)
	case PAIR_SP:
		r.SP = value
	}
}

// String returns the register file as a single line.
func (r Registers) String() string {
	return fmt.Sprintf("A: %02X, BC: %04X, DE: %04X, HL: %04X, PC: %04X, SP: %04X",
		r.A, r.BC(), r.DE(), r.HL(), r.PC, r.SP)
}
