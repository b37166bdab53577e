// Package machine assembles the processor, memory, port bus and
// devices into a runnable system and owns its execution loop.
package machine

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/koron-go/z80"

	"cyd80/pkg/console"
	"cyd80/pkg/disks"
	"cyd80/pkg/memory"
	"cyd80/pkg/ports"
	"cyd80/pkg/rtc"
)

// Model selects the instruction set the machine reports. Execution
// always uses the Z80 core; 8080 programs are a compatible subset.
type Model byte

const (
	ModelZ80 Model = iota
	Model8080
)

func (m Model) String() string {
	if m == Model8080 {
		return "8080"
	}
	return "Z80"
}

// Fault records why the machine stopped.
type Fault byte

const (
	FaultNone    Fault = iota
	FaultOpHalt        // HALT instruction reached
	FaultHaltIO        // halt command on the control port
	FaultIOError       // unrecoverable device error
	FaultBreak         // break key, context or stop request
)

func (f Fault) String() string {
	switch f {
	case FaultOpHalt:
		return "halt instruction"
	case FaultHaltIO:
		return "halt from control port"
	case FaultIOError:
		return "device error"
	case FaultBreak:
		return "break"
	}
	return "none"
}

// DefaultSpeed is the processor speed in MHz a fresh machine runs at.
// A speed of 0 means as fast as the host goes.
const DefaultSpeed = 4

// Run loop pacing: the loop wakes on a fixed tick and retires the
// number of instructions a processor of the configured speed would,
// counting a rough 4 T-states each.
const (
	tickInterval   = 10 * time.Millisecond
	perTickPerMHz  = 2500
	unlimitedBatch = 100000
)

// Config carries the machine build options.
type Config struct {
	// DataDir is the directory the disk registry works under.
	DataDir string

	// ExtraBanks is the number of switchable banks beyond bank 0.
	ExtraBanks int

	// LED receives user LED writes. Optional.
	LED func(on bool)

	// Indicator receives drive activity signals. Optional.
	Indicator disks.Indicator

	// MirrorPanel binds the panel display read back port.
	MirrorPanel bool

	// Output receives console output; nil means stdout.
	Output io.Writer
}

// Machine is the assembled system. Everything it owns runs on the
// goroutine that calls Run or StepBatch; the only concurrent entry
// points are RequestStop and the SIO feed.
type Machine struct {
	CPU    z80.CPU
	Memory *memory.Memory
	Bus    *ports.Bus
	Disks  *disks.Registry
	SIO    *console.SIO
	Clock  *rtc.Clock

	model  Model
	speed  int
	fault  Fault
	haltAt uint16

	running atomic.Bool
	stop    atomic.Bool
}

// New builds a machine from the configuration and leaves it reset and
// ready to run.
func New(cfg Config) *Machine {
	m := &Machine{
		Memory: memory.New(cfg.ExtraBanks),
		Disks:  disks.NewRegistry(cfg.DataDir),
		SIO:    console.NewSIO(cfg.Output),
		Clock:  rtc.New(),
		speed:  DefaultSpeed,
	}
	m.Disks.SetIndicator(cfg.Indicator)
	m.Bus = ports.New(ports.Config{
		Console:     m.SIO,
		Clock:       m.Clock,
		Disks:       m.Disks,
		Memory:      m.Memory,
		Control:     busControl{m},
		LED:         cfg.LED,
		MirrorPanel: cfg.MirrorPanel,
	})
	m.CPU.Memory = m.Memory
	m.CPU.IO = m.Bus
	m.Reset()
	return m
}

// busControl adapts the machine to the control surface the port bus
// drives.
type busControl struct {
	m *Machine
}

func (c busControl) HaltIO()     { c.m.fault = FaultHaltIO }
func (c busControl) FatalIO()    { c.m.fault = FaultIOError }
func (c busControl) Reset()      { c.m.Reset() }
func (c busControl) SelectZ80()  { c.m.model = ModelZ80 }
func (c busControl) Select8080() { c.m.model = Model8080 }

// Reset warm starts the machine: processor state cleared, execution
// back at the boot ROM, bank 0 selected. Memory contents and the
// devices keep their state.
func (m *Machine) Reset() {
	m.CPU.States = z80.States{}
	m.CPU.HALT = false // lives outside States, clear it explicitly
	m.CPU.SPR.PC = memory.ROMBase
	m.Memory.Reset()
	m.fault = FaultNone
}

// Model returns the selected processor model.
func (m *Machine) Model() Model { return m.model }

// SetModel selects the processor model.
func (m *Machine) SetModel(model Model) { m.model = model }

// Speed returns the configured speed in MHz, 0 for unlimited.
func (m *Machine) Speed() int { return m.speed }

// SetSpeed sets the speed in MHz. 0 runs unthrottled.
func (m *Machine) SetSpeed(mhz int) { m.speed = mhz }

// Fault returns the reason the machine last stopped.
func (m *Machine) Fault() Fault { return m.fault }

// Running reports whether Run is currently executing.
func (m *Machine) Running() bool { return m.running.Load() }

// RequestStop asks the run loop to stop after the current instruction.
// Safe to call from any goroutine.
func (m *Machine) RequestStop() {
	m.stop.Store(true)
}

func (m *Machine) batchSize() int {
	if m.speed <= 0 {
		return unlimitedBatch
	}
	return m.speed * perTickPerMHz
}

// Run executes until something stops the machine and returns the
// fault that did. The control port's reset command clears the fault
// and execution just carries on.
func (m *Machine) Run(ctx context.Context) Fault {
	m.running.Store(true)
	defer m.running.Store(false)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			m.fault = FaultBreak
			return m.fault
		}
		if f := m.StepBatch(m.batchSize()); f != FaultNone {
			return f
		}
		if m.speed > 0 {
			<-ticker.C
		}
	}
}

// StepBatch runs up to n instructions, ending early when the
// processor halts or a device stops the machine. It returns the fault
// that ended the batch, FaultNone when the batch just ran out.
func (m *Machine) StepBatch(n int) Fault {
	for i := 0; i < n; i++ {
		if m.stop.Swap(false) {
			m.fault = FaultBreak
			return m.fault
		}
		m.CPU.Step()
		if m.CPU.HALT {
			// The core rewinds PC onto the HALT opcode itself.
			m.haltAt = m.CPU.SPR.PC
			m.fault = FaultOpHalt
			return m.fault
		}
		if m.fault != FaultNone {
			return m.fault
		}
	}
	return FaultNone
}

// ReportFault writes the stop reason in the style of the firmware
// banner.
func (m *Machine) ReportFault(w io.Writer) {
	switch m.fault {
	case FaultOpHalt:
		fmt.Fprintf(w, "\nHALT instruction at 0x%04X\n", m.haltAt)
	case FaultHaltIO:
		fmt.Fprintln(w, "\nSystem halted from the control port")
	case FaultIOError:
		fmt.Fprintln(w, "\nSystem halted on a device error")
	case FaultBreak:
		fmt.Fprintln(w, "\nStopped")
	default:
		fmt.Fprintln(w, "\nStopped, no fault recorded")
	}
}
