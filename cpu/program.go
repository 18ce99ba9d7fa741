package cpu

import (
	"iter"
)

// Link is a 16-bit label reference to be resolved after assembly.
type Link struct {
	Offset int    // Offset into Bytes of the little-endian word.
	Label  string // Label to resolve.
}

// Opcode is the assembled output of a single source statement.
type Opcode struct {
	LineNo int      // Source line number.
	Addr   uint16   // Address of the first byte.
	Words  []string // Source words of the statement.
	Bytes  []uint8  // Encoded bytes.
	Links  []Link   // Unresolved label references.
}

// Program is an assembled 8080 program.
type Program struct {
	Origin  uint16 // Lowest address of any emitted byte.
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode that emitted the byte at addr.
// If no opcode did, Debug.Opcode is nil.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= int(op.Addr) && int(addr) < int(op.Addr)+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr - op.Addr),
			}
			break
		}
	}

	return
}

// Binary returns the contiguous memory image of the program, starting at
// Origin. Gaps between statements are zero filled.
func (prog *Program) Binary() (data []byte) {
	end := int(prog.Origin)
	for _, op := range prog.Opcodes {
		if len(op.Bytes) == 0 {
			continue
		}
		end = max(end, int(op.Addr)+len(op.Bytes))
	}

	if end == int(prog.Origin) {
		return
	}

	data = make([]byte, end-int(prog.Origin))
	for addr, code := range prog.Codes() {
		data[addr-prog.Origin] = code
	}

	return
}

// Codes iterates over each emitted byte, and its address.
func (prog *Program) Codes() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, code uint8) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Bytes {
				if !yield(op.Addr+uint16(n), code) {
					return
				}
			}
		}
	}
}
