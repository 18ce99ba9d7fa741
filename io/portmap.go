package io

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/i8080/cpu"
)

// PORT_COUNT is the number of 8080 I/O ports.
const PORT_COUNT = 256

type attachment struct {
	name string
	base uint8
	dev  Device
}

// PortMap routes the 8080 I/O ports to attached devices.
// Reads of an unmapped port return 0, and writes to one are ignored.
type PortMap struct {
	Verbose bool // If set, logs unmapped port accesses and device errors.

	ports   [PORT_COUNT](*attachment)
	defines map[string]string
	fault   error
}

var _ cpu.Port = (*PortMap)(nil)

// Attach maps a device to the ports starting at base.
func (pm *PortMap) Attach(name string, base uint8, dev Device) (err error) {
	count := dev.Ports()
	if count < 1 || int(base)+count > PORT_COUNT {
		err = ErrPortRange
		return
	}

	for n := range count {
		if pm.ports[int(base)+n] != nil {
			err = ErrPortInUse
			return
		}
	}

	at := &attachment{name: name, base: base, dev: dev}
	for n := range count {
		pm.ports[int(base)+n] = at
	}

	if pm.defines == nil {
		pm.defines = make(map[string]string)
	}
	pm.defines[strings.ToUpper(name)+"_PORT"] = fmt.Sprintf("%#x", base)

	return
}

// Device returns the device mapped to a port, and the port's offset
// within the device.
func (pm *PortMap) Device(port uint8) (dev Device, offset uint8, ok bool) {
	at := pm.ports[port]
	if at == nil {
		return
	}

	dev = at.dev
	offset = port - at.base
	ok = true
	return
}

// Defines returns the base port of each attached device.
func (pm *PortMap) Defines() iter.Seq2[string, string] {
	return maps.All(pm.defines)
}

// Rewind all attached devices.
func (pm *PortMap) Rewind() {
	for port, at := range pm.ports {
		if at != nil && int(at.base) == port {
			at.dev.Rewind()
		}
	}
	pm.fault = nil
}

// Fault returns, and clears, the first device error since the last call.
func (pm *PortMap) Fault() (err error) {
	err = pm.fault
	pm.fault = nil
	return
}

// In reads from the device mapped to port.
func (pm *PortMap) In(bus cpu.Bus, port uint8) (value uint8) {
	at := pm.ports[port]
	if at == nil {
		if pm.Verbose {
			log.Printf("io: in 0x%02x: unmapped", port)
		}
		return
	}

	value = at.dev.In(port - at.base)
	return
}

// Out writes to the device mapped to port. Device errors are held until
// collected by Fault.
func (pm *PortMap) Out(bus cpu.Bus, port uint8, value uint8) (finished bool) {
	at := pm.ports[port]
	if at == nil {
		if pm.Verbose {
			log.Printf("io: out 0x%02x, 0x%02x: unmapped", port, value)
		}
		return
	}

	err := at.dev.Out(port-at.base, value)
	if err != nil {
		if pm.Verbose {
			log.Printf("io: out 0x%02x, 0x%02x: %v", port, value, err)
		}
		if pm.fault == nil {
			pm.fault = &ErrDevice{Name: at.name, Port: port, Err: err}
		}
	}

	return
}
