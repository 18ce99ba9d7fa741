package io

// Latch is a single byte register. Reads return the last value written.
type Latch struct {
	Value uint8
}

var _ Device = (*Latch)(nil)

func (lc *Latch) Ports() int {
	return 1
}

func (lc *Latch) Rewind() {
	lc.Value = 0
}

func (lc *Latch) In(offset uint8) uint8 {
	return lc.Value
}

func (lc *Latch) Out(offset uint8, value uint8) error {
	lc.Value = value
	return nil
}
