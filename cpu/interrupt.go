package cpu

// Interrupt is the pending interrupt request state.
type Interrupt struct {
	Pending bool  // An interrupt request is waiting to be acknowledged.
	Vector  uint8 // Opcode executed as the acknowledge cycle, usually an RST.
	Delay   uint8 // Instructions to run before a request may be delivered.
}

// Raise requests an interrupt that executes vector when acknowledged.
func (it *Interrupt) Raise(vector uint8) {
	it.Pending = true
	it.Vector = vector
}

// serviceable returns true if the request can be delivered now.
func (it *Interrupt) serviceable(enabled bool) bool {
	return it.Pending && enabled && it.Delay == 0
}

// acknowledge clears the request and returns its vector.
func (it *Interrupt) acknowledge() (vector uint8) {
	it.Pending = false
	return it.Vector
}
