// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/internal"
	"github.com/ezrec/i8080/io"
)

const (
	WBOOT_ENTRY = 0x0000 // CP/M warm boot vector.
	BDOS_ENTRY  = 0x0005 // CP/M BDOS entry point.
	TPA_ORIGIN  = 0x0100 // CP/M transient program area.

	TAPE_PORT  = 0x10 // Tape data and status ports.
	TEMP_PORT  = 0x12 // Temporary buffer data and count ports.
	LATCH_PORT = 0x14 // Latch port.

	TEMP_SIZE = 0xff // Temporary buffer capacity in bytes.

	ABORT_POLL = 4096 // Instructions between checks for cancellation.
)

// CP/M stubs. A warm boot ends the program, and the BDOS entry performs
// the console function then returns.
var (
	_wboot_stub = []uint8{0xd3, cpu.PORT_FINISHED}      // OUT 0
	_bdos_stub  = []uint8{0xd3, cpu.PORT_CONSOLE, 0xc9} // OUT 1; RET
)

var _emulator_defines = map[string]string{
	"WBOOT":          fmt.Sprintf("%#x", WBOOT_ENTRY),
	"BDOS":           fmt.Sprintf("%#x", BDOS_ENTRY),
	"TPA":            fmt.Sprintf("%#x", TPA_ORIGIN),
	"PORT_FINISHED":  fmt.Sprintf("%v", cpu.PORT_FINISHED),
	"PORT_CONSOLE":   fmt.Sprintf("%v", cpu.PORT_CONSOLE),
	"CONSOLE_CHAR":   fmt.Sprintf("%v", cpu.CONSOLE_CHAR),
	"CONSOLE_STRING": fmt.Sprintf("%v", cpu.CONSOLE_STRING),
}

// Config selects how an image is booted.
type Config struct {
	Origin    uint16 // Load address of the image, and the initial PC.
	CPM       bool   // Install the CP/M warm boot and BDOS stubs.
	MaxCycles uint64 // If non-zero, Tick fails once this many cycles have run.
	Verbose   bool   // If set, enables verbose logging.
}

// DefaultConfig boots a CP/M program at the transient program area.
func DefaultConfig() Config {
	return Config{
		Origin: TPA_ORIGIN,
		CPM:    true,
	}
}

// Report summarizes a run.
type Report struct {
	Instructions uint64 // Instructions executed, including interrupt acknowledges.
	Cycles       uint64 // Cycles consumed.
	Output       string // Console output.
}

// Emulator state. CPU + I/O devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Console    stdio.Writer       // Console output, in addition to the Report. Applied at Boot.
	Diagnostic cpu.DiagnosticPort // Finished and console ports; all others go to Ports.
	Ports      io.PortMap         // Port map of the I/O devices.

	Tape      io.Tape      // Tape I/O device.
	Temporary io.Temporary // Temporary buffer I/O device.
	Latch     io.Latch     // Latch I/O device.

	config       Config
	output       bytes.Buffer
	instructions uint64
	finished     bool
}

// NewEmulator creates a new emulator, with console output sent to console.
// A nil console discards the output, though it is still reported.
func NewEmulator(console stdio.Writer) (emu *Emulator) {
	emu = &Emulator{
		Console: console,
		Program: &cpu.Program{},
	}

	emu.Temporary.Capacity = TEMP_SIZE

	// The port ranges are fixed and distinct.
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(emu.Ports.Attach("tape", TAPE_PORT, &emu.Tape))
	must(emu.Ports.Attach("temp", TEMP_PORT, &emu.Temporary))
	must(emu.Ports.Attach("latch", LATCH_PORT, &emu.Latch))

	emu.Diagnostic.Output = &emu.output
	emu.Diagnostic.Next = &emu.Ports

	emu.Cpu = cpu.NewCpu(&emu.Diagnostic)
	emu.config = Config{}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Ports.Defines(),
		emu.Tape.Defines(),
		emu.Temporary.Defines(),
	)
}

// Assemble a program, with the emulator defines predefined, and make it
// the current program listing.
func (emu *Emulator) Assemble(source stdio.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(source)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Boot resets the machine, and loads an image as configured.
func (emu *Emulator) Boot(image []byte, config Config) (err error) {
	switch {
	case len(image) == 0:
		err = io.ErrImageEmpty
		return
	case int(config.Origin)+len(image) > cpu.MEMORY_SIZE:
		err = io.ErrImageTooLarge
		return
	case config.CPM && int(config.Origin) < BDOS_ENTRY+len(_bdos_stub):
		err = ErrBootConflict
		return
	}

	emu.config = config
	emu.Verbose = config.Verbose

	emu.Cpu.Verbose = false
	emu.Cpu.Reset()
	emu.Cpu.Memory.Clear()
	emu.Ports.Rewind()
	emu.Ports.Verbose = config.Verbose
	emu.Diagnostic.Verbose = config.Verbose
	emu.output.Reset()
	emu.instructions = 0
	emu.finished = false

	emu.Cpu.Memory.Load(config.Origin, image)

	if config.CPM {
		emu.Cpu.Memory.Load(WBOOT_ENTRY, _wboot_stub)
		emu.Cpu.Memory.Load(BDOS_ENTRY, _bdos_stub)
	}

	emu.Diagnostic.Output = &emu.output
	if emu.Console != nil {
		emu.Diagnostic.Output = stdio.MultiWriter(&emu.output, emu.Console)
	}
	emu.Cpu.Port = &emu.Diagnostic

	emu.Cpu.Reg.PC = config.Origin

	if emu.Verbose {
		log.Printf("emulator: boot %d bytes at 0x%04x, cpm %v", len(image), config.Origin, config.CPM)
	}

	emu.Cpu.Verbose = emu.Verbose

	return
}

// Reset boots the current program listing.
func (emu *Emulator) Reset(config Config) (err error) {
	data := emu.Program.Binary()
	if len(data) > 0 && config.Origin != emu.Program.Origin {
		// Place the listing at its assembled address.
		config.Origin = emu.Program.Origin
	}

	return emu.Boot(data, config)
}

// Ticks returns the total cycles since a boot.
func (emu *Emulator) Ticks() uint64 {
	return emu.Cpu.Cycles
}

// Instructions returns the total instructions executed since a boot.
func (emu *Emulator) Instructions() uint64 {
	return emu.instructions
}

// Output returns the console output since a boot.
func (emu *Emulator) Output() string {
	return emu.output.String()
}

// Report returns the summary of the run so far.
func (emu *Emulator) Report() Report {
	return Report{
		Instructions: emu.instructions,
		Cycles:       emu.Cpu.Cycles,
		Output:       emu.output.String(),
	}
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Reg.PC)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	addr := emu.Cpu.Reg.PC
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Addr: addr, Err: err}
		}
	}()

	if emu.finished {
		done = true
		return
	}

	if emu.config.MaxCycles != 0 && emu.Cpu.Cycles >= emu.config.MaxCycles {
		err = ErrCycleLimit
		return
	}

	result := emu.Cpu.Step()
	if result.Cycles != 0 {
		emu.instructions++
	}

	err = emu.Ports.Fault()
	if err != nil {
		return
	}

	if result.Finished {
		if emu.Verbose {
			log.Printf("emulator: finished after %d instructions, %d cycles", emu.instructions, emu.Cpu.Cycles)
		}
		emu.finished = true
		done = true
		return
	}

	// Nothing else raises interrupts during a run, so a halt with no
	// deliverable request can never resume.
	if result.Halted && !(emu.Cpu.Interrupt.Pending && emu.Cpu.Flags.InterruptEnable) {
		err = ErrHalted
		return
	}

	return
}

// Run the emulator until the program finishes, an error occurs, the
// context is cancelled, or maxCycles cycles have run. A maxCycles of zero
// runs without limit.
func (emu *Emulator) Run(ctx context.Context, maxCycles uint64) (report Report, err error) {
	defer func() {
		report = emu.Report()
	}()

	for n := 0; ; n++ {
		if n%ABORT_POLL == 0 {
			cerr := ctx.Err()
			if cerr != nil {
				err = errors.Join(ErrAborted, cerr)
				return
			}
		}

		if maxCycles != 0 && emu.Cpu.Cycles >= maxCycles {
			err = ErrCycleLimit
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
