// Package cpu implements the Intel 8080 microprocessor and an assembler for it.
//
// The processor consists of seven 8-bit registers (A, B, C, D, E, H, L), a
// 16-bit program counter and stack pointer, five condition flags, and the
// interrupt enable flip-flop, attached to a flat 64KiB memory. Every one of
// the 256 opcode values dispatches through a dense handler table, so no byte
// is ever an invalid instruction; the undocumented encodings behave as their
// documented aliases.
//
// The only call out of the processor is the Port interface, used by the IN
// and OUT instructions. DiagnosticPort implements the CP/M console
// conventions used by the classic 8080 diagnostic programs.
//
// The assembler provides a single pass macro assembler for the 8080
// instruction set, supporting labels, equates, macros, and compile-time
// expression evaluation.
package cpu
