package cpu

import (
	"io"
	"log"
)

// Ports and console functions of the diagnostic program conventions.
const (
	PORT_FINISHED = 0 // OUT to this port ends the program.
	PORT_CONSOLE  = 1 // OUT to this port performs the console function in C.

	CONSOLE_CHAR   = 2 // Write the character in E.
	CONSOLE_STRING = 9 // Write the '$' terminated string at DE.
)

// Bus is the view of the processor given to I/O port devices.
type Bus interface {
	Registers() Registers
	Read(addr uint16) uint8
}

// Port is the I/O port capability supplied by the host for IN and OUT.
type Port interface {
	// In returns the value read from a port.
	In(bus Bus, port uint8) (value uint8)
	// Out writes a value to a port. Returning true signals that the
	// running program has finished.
	Out(bus Bus, port uint8, value uint8) (finished bool)
}

// DiagnosticPort is the reference port policy used by the 8080 diagnostic
// programs. Port 0 signals the end of the program, and port 1 performs
// the CP/M console function selected by register C. All other ports
// are passed to Next.
type DiagnosticPort struct {
	Verbose bool      // Set to enable verbose logging.
	Output  io.Writer // Console output. If nil, output is discarded.
	Next    Port      // Handler for all other ports. May be nil.
}

var _ Port = (*DiagnosticPort)(nil)

// In returns the value from Next, or 0 if there is no Next.
func (dp *DiagnosticPort) In(bus Bus, port uint8) (value uint8) {
	if dp.Next != nil {
		value = dp.Next.In(bus, port)
	}
	return
}

// Out handles the finished and console ports.
func (dp *DiagnosticPort) Out(bus Bus, port uint8, value uint8) (finished bool) {
	switch port {
	case PORT_FINISHED:
		if dp.Verbose {
			log.Printf("port: finished")
		}
		finished = true
	case PORT_CONSOLE:
		regs := bus.Registers()
		switch regs.C {
		case CONSOLE_CHAR:
			dp.write([]byte{regs.E})
		case CONSOLE_STRING:
			var text []byte
			addr := regs.DE()
			for range MEMORY_SIZE {
				ch := bus.Read(addr)
				if ch == '$' {
					break
				}
				text = append(text, ch)
				addr++
			}
			dp.write(text)
		default:
			if dp.Verbose {
				log.Printf("port: console function %d ignored", regs.C)
			}
		}
	default:
		if dp.Next != nil {
			finished = dp.Next.Out(bus, port, value)
		}
	}

	return
}

func (dp *DiagnosticPort) write(text []byte) {
	if dp.Output == nil {
		return
	}

	_, err := dp.Output.Write(text)
	if err != nil && dp.Verbose {
		log.Printf("port: console: %v", err)
	}
}
