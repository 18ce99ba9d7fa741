// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%#x", MEMORY_SIZE),
	"VECTOR_0":    "0x00",
	"VECTOR_1":    "0x08",
	"VECTOR_2":    "0x10",
	"VECTOR_3":    "0x18",
	"VECTOR_4":    "0x20",
	"VECTOR_5":    "0x28",
	"VECTOR_6":    "0x30",
	"VECTOR_7":    "0x38",
}

// StepResult describes the work done by a single Step.
type StepResult struct {
	Opcode    uint8  // Opcode executed, if any.
	Cycles    uint64 // Cycles consumed.
	Interrupt bool   // The opcode was an interrupt acknowledge.
	Halted    bool   // The processor is halted after the step.
	Finished  bool   // The program signalled that it has finished.
}

// State is a snapshot of the processor state.
type State struct {
	Registers Registers
	Flags     Flags
	Interrupt Interrupt
	Cycles    uint64
	Halted    bool
}

// Cpu is the simulation context for an 8080 processor and its memory.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Port Port // I/O port capability used by IN and OUT.

	Reg       Registers // Register file.
	Flags     Flags     // Condition flags and interrupt enable.
	Interrupt Interrupt // Pending interrupt request.
	Cycles    uint64    // Cycles consumed since reset.
	Halted    bool      // Set by HLT, cleared by an interrupt.

	Memory Memory // Memory. Not cleared by Reset.

	finished bool // Set by the Port during the current instruction.
}

var _ Bus = (*Cpu)(nil)

// NewCpu creates a new CPU using the supplied port capability.
// If port is nil, a DiagnosticPort that discards console output is used.
func NewCpu(port Port) (cpu *Cpu) {
	if port == nil {
		port = &DiagnosticPort{}
	}

	cpu = &Cpu{
		Port: port,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers, flags and interrupt state.
// - Zeros the cycle counter.
// - Leaves memory untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Reg = Registers{}
	cpu.Flags = Flags{}
	cpu.Interrupt = Interrupt{}
	cpu.Cycles = 0
	cpu.Halted = false
	cpu.finished = false
}

// Registers returns a copy of the register file.
func (cpu *Cpu) Registers() Registers {
	return cpu.Reg
}

// Read returns the memory byte at addr.
func (cpu *Cpu) Read(addr uint16) uint8 {
	return cpu.Memory.Read(addr)
}

// State returns a snapshot of the processor state.
func (cpu *Cpu) State() State {
	return State{
		Registers: cpu.Reg,
		Flags:     cpu.Flags,
		Interrupt: cpu.Interrupt,
		Cycles:    cpu.Cycles,
		Halted:    cpu.Halted,
	}
}

// RaiseInterrupt requests an interrupt. The vector opcode is executed
// once interrupts are enabled.
func (cpu *Cpu) RaiseInterrupt(vector uint8) {
	if cpu.Verbose {
		log.Printf("cpu: interrupt 0x%02x raised", vector)
	}
	cpu.Interrupt.Raise(vector)
}

// String returns the current CPU state as a trace line.
func (cpu *Cpu) String() string {
	pc := cpu.Reg.PC
	text, _ := Disassemble(&cpu.Memory, pc)

	return fmt.Sprintf("PC: %04X, AF: %04X, BC: %04X, DE: %04X, HL: %04X, SP: %04X, CYC: %-10d (%02X %02X %02X %02X) [%v] %v",
		pc,
		(uint16(cpu.Reg.A)<<8)|uint16(cpu.Flags.Pack()),
		cpu.Reg.BC(), cpu.Reg.DE(), cpu.Reg.HL(), cpu.Reg.SP,
		cpu.Cycles,
		cpu.Memory.Read(pc), cpu.Memory.Read(pc+1), cpu.Memory.Read(pc+2), cpu.Memory.Read(pc+3),
		cpu.Flags.String(),
		text)
}

// Step executes a single instruction, or a single interrupt acknowledge.
// A halted CPU with no deliverable interrupt does nothing.
func (cpu *Cpu) Step() (result StepResult) {
	var opcode uint8

	switch {
	case cpu.Interrupt.serviceable(cpu.Flags.InterruptEnable):
		opcode = cpu.Interrupt.acknowledge()
		cpu.Flags.InterruptEnable = false
		cpu.Halted = false
		result.Interrupt = true
		if cpu.Verbose {
			log.Printf("cpu: interrupt 0x%02x acknowledged", opcode)
		}
	case cpu.Halted:
		result.Halted = true
		return
	default:
		if cpu.Verbose {
			log.Print(cpu.String())
		}
		opcode = cpu.fetchByte()
	}

	result.Opcode = opcode
	result.Cycles = cpu.execute(opcode)
	result.Halted = cpu.Halted
	result.Finished = cpu.finished

	return
}

// execute runs a decoded opcode, and returns the cycles it consumed.
func (cpu *Cpu) execute(opcode uint8) (cycles uint64) {
	inst := &Instructions[opcode]

	// EI takes effect after the instruction that follows it.
	if cpu.Interrupt.Delay > 0 {
		cpu.Interrupt.Delay--
	}

	cpu.finished = false

	cycles = uint64(inst.Cycles)
	if opTable[opcode](cpu) {
		cycles += uint64(inst.Taken)
	}

	cpu.Cycles += cycles

	return
}

// fetchByte returns the byte at PC, and advances PC.
func (cpu *Cpu) fetchByte() (value uint8) {
	value = cpu.Memory.Read(cpu.Reg.PC)
	cpu.Reg.PC++
	return
}

// fetchWord returns the word at PC, and advances PC.
func (cpu *Cpu) fetchWord() (value uint16) {
	value = cpu.Memory.ReadWord(cpu.Reg.PC)
	cpu.Reg.PC += 2
	return
}
