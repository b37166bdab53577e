// Package ports implements the I/O port space of the machine and the
// devices that live directly on it: the virtual floppy controller, the
// bank selector, the hardware control port, the clock and console
// hookups, the user LED and the front panel register pair.
package ports

import (
	"cyd80/pkg/disks"
	"cyd80/pkg/memory"
)

// DataUnused is what reads from unbound ports return; writes to them
// are swallowed.
const DataUnused = 0xff

// Port assignments.
const (
	PortLED       = 0 // out: user LED, any non zero byte lights it
	PortSIOStatus = 0 // in: console status
	PortSIOData   = 1 // in/out: console data
	PortFDC       = 4 // in: transfer status, out: command block address
	PortMMU       = 64
	PortClockCmd  = 65
	PortClockData = 66
	PortHWCtl     = 160
	PortPanelEcho = 254 // in: read only duplicate of the panel value, when enabled
	PortPanel     = 255 // in/out: front panel value
)

// InHandler services an IN instruction on one port.
type InHandler func() uint8

// OutHandler services an OUT instruction on one port.
type OutHandler func(data uint8)

// Console is the serial console seen from the port side.
type Console interface {
	Status() uint8
	Data() uint8
	Transmit(data uint8)
}

// Clock is the date and time register file.
type Clock interface {
	Select(reg uint8)
	Selected() uint8
	Data() uint8
}

// Control receives the machine level effects port writes can trigger.
type Control interface {
	// HaltIO stops the machine on behalf of the running program.
	HaltIO()
	// FatalIO stops the machine after an unrecoverable device error.
	FatalIO()
	// Reset warm starts the machine.
	Reset()
	SelectZ80()
	Select8080()
}

// Config collects everything the bus wires up.
type Config struct {
	Console Console
	Clock   Clock
	Disks   *disks.Registry
	Memory  *memory.Memory
	Control Control

	// LED receives user LED writes. Nil leaves the port a sink.
	LED func(on bool)

	// MirrorPanel also binds the panel value to port 254, read only.
	MirrorPanel bool
}

// Bus is the 256 port I/O space. New fills both handler tables and
// they never change afterwards, so In and Out take no locks.
type Bus struct {
	in  [256]InHandler
	out [256]OutHandler

	cfg   Config
	fdc   fdc
	hwctl hwctl

	// panel is the virtual front panel value: the program reads and
	// writes it on port 255, the operator sets it from the dialog and
	// the desktop panel shows it on the lamps.
	panel uint8
}

// New builds the bus and binds every device port. Ports nothing claims
// keep the idle handlers.
func New(cfg Config) *Bus {
	b := &Bus{cfg: cfg}
	b.hwctl.lock = Locked
	for i := range b.in {
		b.in[i] = func() uint8 { return DataUnused }
		b.out[i] = func(uint8) {}
	}

	b.in[PortSIOStatus] = cfg.Console.Status
	b.in[PortSIOData] = cfg.Console.Data
	b.out[PortSIOData] = cfg.Console.Transmit
	b.out[PortLED] = func(data uint8) {
		if cfg.LED != nil {
			cfg.LED(data != 0)
		}
	}
	b.in[PortFDC] = b.fdcIn
	b.out[PortFDC] = b.fdcOut
	b.out[PortClockCmd] = cfg.Clock.Select
	b.in[PortClockCmd] = cfg.Clock.Selected
	b.in[PortClockData] = cfg.Clock.Data
	b.in[PortMMU] = b.mmuIn
	b.out[PortMMU] = b.mmuOut
	b.in[PortHWCtl] = b.hwctlIn
	b.out[PortHWCtl] = b.hwctlOut
	b.in[PortPanel] = func() uint8 { return b.panel }
	b.out[PortPanel] = func(data uint8) { b.panel = data }
	if cfg.MirrorPanel {
		b.in[PortPanelEcho] = func() uint8 { return b.panel }
	}
	return b
}

// In services an IN instruction. Unbound ports float high.
func (b *Bus) In(addr uint8) uint8 {
	return b.in[addr]()
}

// Out services an OUT instruction.
func (b *Bus) Out(addr uint8, data uint8) {
	b.out[addr](data)
}

// SetPanel sets the front panel value from the host side.
func (b *Bus) SetPanel(v uint8) {
	b.panel = v
}

// Panel returns the front panel value.
func (b *Bus) Panel() uint8 {
	return b.panel
}

// mmuIn packs the fitted bank count and the selection into one byte,
// highest bank number in the upper nibble, current bank in the lower.
func (b *Bus) mmuIn() uint8 {
	return b.cfg.Memory.MaxBank()<<4 | b.cfg.Memory.SelectedBank()
}

// mmuOut switches banks. Selecting a bank that is not fitted is a
// fatal machine error, never a clamp.
func (b *Bus) mmuOut(data uint8) {
	if err := b.cfg.Memory.SelectBank(data); err != nil {
		b.cfg.Control.FatalIO()
	}
}
