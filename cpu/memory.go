package cpu

const (
	MEMORY_SIZE = 0x10000 // Size of the 8080 address space.
)

// Memory is the flat, byte addressable memory of the 8080.
// All addresses wrap modulo MEMORY_SIZE.
type Memory [MEMORY_SIZE]uint8

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint16) uint8 {
	return mem[addr]
}

// Write stores a byte at addr.
func (mem *Memory) Write(addr uint16, value uint8) {
	mem[addr] = value
}

// ReadWord returns the little-endian word at addr.
func (mem *Memory) ReadWord(addr uint16) uint16 {
	return uint16(mem[addr]) | (uint16(mem[addr+1]) << 8)
}

// WriteWord stores a little-endian word at addr.
func (mem *Memory) WriteWord(addr uint16, value uint16) {
	mem[addr] = uint8(value)
	mem[addr+1] = uint8(value >> 8)
}

// Load copies data into memory starting at addr, wrapping at the top of
// the address space.
func (mem *Memory) Load(addr uint16, data []uint8) {
	for n, value := range data {
		mem[addr+uint16(n)] = value
	}
}

// Clear zeros all of memory.
func (mem *Memory) Clear() {
	clear(mem[:])
}
