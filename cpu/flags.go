package cpu

// 8080 flag bit positions in the packed program status word.
const (
	FLAG_C   uint8 = 0x01 // Carry
	FLAG_ONE uint8 = 0x02 // Always set
	FLAG_P   uint8 = 0x04 // Parity
	FLAG_3   uint8 = 0x08 // Always clear
	FLAG_H   uint8 = 0x10 // Half-carry (auxiliary carry)
	FLAG_5   uint8 = 0x20 // Always clear
	FLAG_Z   uint8 = 0x40 // Zero
	FLAG_S   uint8 = 0x80 // Sign
)

// Flags holds the condition flags and the interrupt enable flip-flop.
type Flags struct {
	Sign      bool
	Zero      bool
	HalfCarry bool
	Parity    bool
	Carry     bool

	// InterruptEnable gates interrupt delivery. It is not part of the
	// packed status byte.
	InterruptEnable bool
}

// Pack returns the flags as the status byte pushed by PUSH PSW.
// Layout, bit 7 to bit 0, is S Z 0 H 0 P 1 C.
func (fl Flags) Pack() (psw uint8) {
	psw = FLAG_ONE
	if fl.Sign {
		psw |= FLAG_S
	}
	if fl.Zero {
		psw |= FLAG_Z
	}
	if fl.HalfCarry {
		psw |= FLAG_H
	}
	if fl.Parity {
		psw |= FLAG_P
	}
	if fl.Carry {
		psw |= FLAG_C
	}
	return
}

// Unpack restores the condition flags from a status byte, as done by
// POP PSW. Bits 5, 3 and 1 are ignored, and InterruptEnable is unchanged.
func (fl *Flags) Unpack(psw uint8) {
	fl.Sign = psw&FLAG_S != 0
	fl.Zero = psw&FLAG_Z != 0
	fl.HalfCarry = psw&FLAG_H != 0
	fl.Parity = psw&FLAG_P != 0
	fl.Carry = psw&FLAG_C != 0
}

// setZSP sets the zero, sign and parity flags from a result.
func (fl *Flags) setZSP(value uint8) {
	fl.Zero = value == 0
	fl.Sign = value&0x80 != 0
	fl.Parity = Parity(value)
}

// String returns the flags as a labelled bit pattern. Upper case is set.
func (fl Flags) String() string {
	var v []byte

	bit := func(set bool, on, off byte) {
		if set {
			v = append(v, on)
		} else {
			v = append(v, off)
		}
	}

	bit(fl.Sign, 'S', 's')
	bit(fl.Zero, 'Z', 'z')
	v = append(v, '-')
	bit(fl.HalfCarry, 'H', 'h')
	v = append(v, '-')
	bit(fl.Parity, 'P', 'p')
	v = append(v, '-')
	bit(fl.Carry, 'C', 'c')
	v = append(v, ' ')
	bit(fl.InterruptEnable, 'I', 'i')

	return string(v)
}
