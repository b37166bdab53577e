// Package memory implements the banked RAM of the machine: a full 64 KiB
// base bank plus up to 15 expansion banks of 48 KiB, with the boot ROM
// occupying the write protected top page of the base bank.
package memory

import (
	"errors"
	"math/rand"
)

const (
	// BankSize is the size of the base bank, covering the whole 16-bit
	// address space.
	BankSize = 0x10000

	// CommonBase is the start of the common segment. Addresses at or
	// above it are always served by the base bank, whatever bank is
	// selected, so the ROM, the stack and OS data stay visible across
	// bank switches.
	CommonBase = 0xC000

	// ROMBase is the address of the boot ROM in the top memory page.
	// Writes to the page are ignored. Some software probes for the top
	// of RAM and would wrap to address 0 and destroy itself if the page
	// were writable.
	ROMBase = 0xFF00
)

// ErrNoBank is returned by SelectBank for a bank the machine is not
// fitted with.
var ErrNoBank = errors.New("memory: bank not fitted")

// Memory is the banked RAM. Bank 0 is the base map; banks 1..MaxBank
// replace the region below CommonBase when selected. It implements the
// Memory interface of the CPU core and the DMA interface of the
// peripherals, which use identical routing.
type Memory struct {
	bank0 [BankSize]byte
	banks [][CommonBase]byte
	sel   byte
}

// New returns a Memory with the given number of expansion banks
// (clamped to 0..15 so the bank number fits the MMU register nibble).
// The boot ROM is placed at ROMBase and everything else is filled with
// a random power-on pattern, like real RAM after power up.
func New(extraBanks int) *Memory {
	if extraBanks < 0 {
		extraBanks = 0
	}
	if extraBanks > 15 {
		extraBanks = 15
	}
	m := &Memory{banks: make([][CommonBase]byte, extraBanks)}
	for i := 0; i < ROMBase; i++ {
		m.bank0[i] = byte(rand.Intn(256))
	}
	copy(m.bank0[ROMBase:], bootROM[:])
	for b := range m.banks {
		for i := range m.banks[b] {
			m.banks[b][i] = byte(rand.Intn(256))
		}
	}
	return m
}

// Get reads the byte at addr through the current bank mapping.
func (m *Memory) Get(addr uint16) uint8 {
	if m.sel == 0 || addr >= CommonBase {
		return m.bank0[addr]
	}
	return m.banks[m.sel-1][addr]
}

// Set writes the byte at addr through the current bank mapping. Writes
// to the ROM page are ignored.
func (m *Memory) Set(addr uint16, data uint8) {
	if m.sel == 0 || addr >= CommonBase {
		if addr < ROMBase {
			m.bank0[addr] = data
		}
		return
	}
	m.banks[m.sel-1][addr] = data
}

// DMARead is the device side of the bus. Devices requesting the bus see
// the same mapping as the CPU.
func (m *Memory) DMARead(addr uint16) byte { return m.Get(addr) }

// DMAWrite is the device side of the bus, with the same routing and ROM
// protection as Set.
func (m *Memory) DMAWrite(addr uint16, data byte) { m.Set(addr, data) }

// SelectBank maps bank b for addresses below the common segment. Bank 0
// restores the base map. A bank the machine is not fitted with is
// refused and the selection is left unchanged.
func (m *Memory) SelectBank(b byte) error {
	if int(b) > len(m.banks) {
		return ErrNoBank
	}
	m.sel = b
	return nil
}

// SelectedBank returns the currently mapped bank number.
func (m *Memory) SelectedBank() byte { return m.sel }

// MaxBank returns the highest selectable bank number.
func (m *Memory) MaxBank() byte { return byte(len(m.banks)) }

// Reset restores the base map. Memory contents and the ROM survive, as
// they would a hardware reset.
func (m *Memory) Reset() {
	m.sel = 0
}
