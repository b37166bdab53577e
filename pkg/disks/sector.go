package disks

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// SectorSize is the fixed sector size in bytes.
	SectorSize = 128

	// SectorsPerTrack is the number of sectors on every track,
	// numbered starting at 1.
	SectorsPerTrack = 26

	// MaxTrack is the highest addressable track. Standard images carry
	// 77 tracks, so track numbers run 0 through 76 and the last sector
	// of the last track still lands inside the image.
	MaxTrack = 76

	// DMALimit is the highest transfer address a sector may start at.
	// Anything above it would run into the boot ROM page.
	DMALimit = 0xff7f
)

// Registry errors. Sector transfers never return errors; they report
// through Status like the hardware they stand in for.
var (
	ErrBadDrive = errors.New("disks: drive out of range")
	ErrBadName  = errors.New("disks: bad image name")
	ErrMounted  = errors.New("disks: image mounted on another drive")
	ErrNotFound = errors.New("disks: image not found")
)

// Status is the result of a sector transfer, as read back from the FDC
// status port.
type Status byte

// Transfer status codes, in the order the checks run.
const (
	StatusOK Status = iota
	StatusBadDrive
	StatusBadTrack
	StatusBadSector
	StatusBadDMA
	StatusNoDisk
	StatusSeek
	StatusReadFail
	StatusWriteFail
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBadDrive:
		return "drive out of range"
	case StatusBadTrack:
		return "track out of range"
	case StatusBadSector:
		return "sector out of range"
	case StatusBadDMA:
		return "transfer address out of range"
	case StatusNoDisk:
		return "no disk in drive"
	case StatusSeek:
		return "seek failed"
	case StatusReadFail:
		return "read failed"
	case StatusWriteFail:
		return "write failed"
	}
	return fmt.Sprintf("unknown status %d", byte(s))
}

// DMA is the engine's view of machine memory. Transfers go byte by
// byte through it, so the memory side keeps its usual write protection.
type DMA interface {
	DMARead(addr uint16) uint8
	DMAWrite(addr uint16, data uint8)
}

// Indicator receives drive activity signals around each transfer.
// Implementations light front panel lamps.
type Indicator interface {
	ReadLamp(on bool)
	WriteLamp(on bool)
}

// Offset returns the image byte offset of a sector. Images are flat:
// tracks in ascending order, SectorsPerTrack sectors per track, no
// interleave and no header.
func Offset(track, sector int) int64 {
	return (int64(track)*SectorsPerTrack + int64(sector) - 1) * SectorSize
}

// prepIO runs the checks shared by both transfer directions, in the
// order the status codes promise: drive, track, sector, transfer
// address, mounted disk. Only when all pass is the image opened and
// positioned. On success the caller owns the returned file.
func (r *Registry) prepIO(drive, track, sector int, addr uint16) (*os.File, Status) {
	if drive < 0 || drive >= NumDrives {
		return nil, StatusBadDrive
	}
	if track < 0 || track > MaxTrack {
		return nil, StatusBadTrack
	}
	if sector < 1 || sector > SectorsPerTrack {
		return nil, StatusBadSector
	}
	if addr > DMALimit {
		return nil, StatusBadDMA
	}
	if r.slots[drive] == "" {
		return nil, StatusNoDisk
	}
	f, err := os.OpenFile(r.slots[drive], os.O_RDWR, 0)
	if err != nil {
		// The mount probe passed once. An image that has vanished
		// since reads as an empty drive.
		return nil, StatusNoDisk
	}
	if _, err := f.Seek(Offset(track, sector), io.SeekStart); err != nil {
		f.Close()
		return nil, StatusSeek
	}
	return f, StatusOK
}

// ReadSector copies one sector from the mounted image into memory at
// addr. Memory is only touched once the whole sector has been read.
func (r *Registry) ReadSector(drive, track, sector int, addr uint16, mem DMA) Status {
	if r.lamps != nil {
		r.lamps.ReadLamp(true)
		defer r.lamps.ReadLamp(false)
	}
	f, stat := r.prepIO(drive, track, sector, addr)
	if stat != StatusOK {
		return stat
	}
	defer f.Close()
	if _, err := io.ReadFull(f, r.buf[:]); err != nil {
		return StatusReadFail
	}
	for i := 0; i < SectorSize; i++ {
		mem.DMAWrite(addr+uint16(i), r.buf[i])
	}
	return StatusOK
}

// WriteSector copies one sector from memory at addr into the mounted
// image. A short write leaves whatever the file system managed to put
// down; the status still reports the failure.
func (r *Registry) WriteSector(drive, track, sector int, addr uint16, mem DMA) Status {
	if r.lamps != nil {
		r.lamps.WriteLamp(true)
		defer r.lamps.WriteLamp(false)
	}
	f, stat := r.prepIO(drive, track, sector, addr)
	if stat != StatusOK {
		return stat
	}
	defer f.Close()
	for i := 0; i < SectorSize; i++ {
		r.buf[i] = mem.DMARead(addr + uint16(i))
	}
	if _, err := f.Write(r.buf[:]); err != nil {
		return StatusWriteFail
	}
	return StatusOK
}
