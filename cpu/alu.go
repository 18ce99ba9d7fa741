package cpu

import (
	"math/bits"
)

// AluOp is an accumulator operation, in 8080 instruction encoding order.
type AluOp int

const (
	ALU_ADD = AluOp(0) // ADD
	ALU_ADC = AluOp(1) // ADC
	ALU_SUB = AluOp(2) // SUB
	ALU_SBB = AluOp(3) // SBB
	ALU_ANA = AluOp(4) // ANA
	ALU_XRA = AluOp(5) // XRA
	ALU_ORA = AluOp(6) // ORA
	ALU_CMP = AluOp(7) // CMP
)

var aluName = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
var aluImmediateName = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}

func (op AluOp) String() string {
	return aluName[op&7]
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// carryBits returns the carries into each bit position of a + b + carry.
func carryBits(a, b uint8, carry bool) uint16 {
	sum := uint16(a) + uint16(b) + uint16(b2u(carry))
	return sum ^ uint16(a) ^ uint16(b)
}

// Parity returns true when value has an even number of set bits.
func Parity(value uint8) bool {
	return bits.OnesCount8(value)&1 == 0
}

// Add returns a + b + carry, with the carry out of bit 7 and the
// half-carry out of bit 3.
func Add(a, b uint8, carry bool) (result uint8, carryOut, halfCarry bool) {
	result = a + b + b2u(carry)
	cb := carryBits(a, b, carry)
	carryOut = cb&0x100 != 0
	halfCarry = cb&0x10 != 0
	return
}

// Subtract returns a - b - borrow. It is computed as a + ~b + !borrow,
// with the final carry inverted to form the borrow, as the 8080 does.
func Subtract(a, b uint8, borrow bool) (result uint8, carryOut, halfCarry bool) {
	result, carryOut, halfCarry = Add(a, ^b, !borrow)
	carryOut = !carryOut
	return
}

// Compare computes the flags of a - b. The caller discards the result.
func Compare(a, b uint8) (result uint8, carryOut, halfCarry bool) {
	return Subtract(a, b, false)
}

// Increment returns value + 1. The carry flag is not affected.
func Increment(value uint8) (result uint8, halfCarry bool) {
	result = value + 1
	halfCarry = result&0x0f == 0
	return
}

// Decrement returns value - 1. The carry flag is not affected.
func Decrement(value uint8) (result uint8, halfCarry bool) {
	result = value - 1
	halfCarry = result&0x0f != 0x0f
	return
}

// And returns a & b. The 8080 sets half-carry from bit 3 of a | b.
func And(a, b uint8) (result uint8, halfCarry bool) {
	result = a & b
	halfCarry = (a|b)&0x08 != 0
	return
}

// Or returns a | b.
func Or(a, b uint8) uint8 {
	return a | b
}

// Xor returns a ^ b.
func Xor(a, b uint8) uint8 {
	return a ^ b
}

// DecimalAdjust performs the BCD correction of DAA.
func DecimalAdjust(a uint8, carry, halfCarry bool) (result uint8, carryOut, halfCarryOut bool) {
	var correction uint8

	carryOut = carry

	lsb := a & 0x0f
	msb := a >> 4

	if halfCarry || lsb > 9 {
		correction += 0x06
	}

	if carry || msb > 9 || (msb >= 9 && lsb > 9) {
		correction += 0x60
		carryOut = true
	}

	result, _, halfCarryOut = Add(a, correction, false)
	return
}

// DoubleAdd returns hl + value for DAD, with the carry out of bit 15.
func DoubleAdd(hl, value uint16) (result uint16, carry bool) {
	sum := uint32(hl) + uint32(value)
	return uint16(sum), sum&0x10000 != 0
}

// RotateLeft is RLC: bit 7 goes to both bit 0 and carry.
func RotateLeft(a uint8) (result uint8, carry bool) {
	carry = a&0x80 != 0
	result = (a << 1) | b2u(carry)
	return
}

// RotateRight is RRC: bit 0 goes to both bit 7 and carry.
func RotateRight(a uint8) (result uint8, carry bool) {
	carry = a&0x01 != 0
	result = (a >> 1) | (b2u(carry) << 7)
	return
}

// RotateLeftCarry is RAL: a 9-bit rotate left through carry.
func RotateLeftCarry(a uint8, carry bool) (result uint8, carryOut bool) {
	carryOut = a&0x80 != 0
	result = (a << 1) | b2u(carry)
	return
}

// RotateRightCarry is RAR: a 9-bit rotate right through carry.
func RotateRightCarry(a uint8, carry bool) (result uint8, carryOut bool) {
	carryOut = a&0x01 != 0
	result = (a >> 1) | (b2u(carry) << 7)
	return
}
