package ports

import "cyd80/pkg/disks"

// fdc is the virtual floppy controller. A command arrives as the
// memory address of a command block, written to the port low byte
// first; the second write triggers execution and the result stays
// readable on the port until the next command.
type fdc struct {
	haveLow bool
	low     uint8
	status  disks.Status
}

func (b *Bus) fdcIn() uint8 {
	return uint8(b.fdc.status)
}

func (b *Bus) fdcOut(data uint8) {
	if !b.fdc.haveLow {
		b.fdc.low = data
		b.fdc.haveLow = true
		return
	}
	b.fdc.haveLow = false
	b.fdc.status = b.fdcRun(uint16(data)<<8 | uint16(b.fdc.low))
}

// fdcRun fetches the command block and performs the transfer. The
// block is four bytes, kind, drive, track, sector, followed by the
// little endian transfer address. The kind's low bit picks the
// direction, even reads, odd writes. All values go to the engine
// exactly as fetched; it does the range checking.
func (b *Bus) fdcRun(block uint16) disks.Status {
	mem := b.cfg.Memory
	kind := mem.DMARead(block)
	drive := int(mem.DMARead(block + 1))
	track := int(mem.DMARead(block + 2))
	sector := int(mem.DMARead(block + 3))
	addr := uint16(mem.DMARead(block+4)) | uint16(mem.DMARead(block+5))<<8

	if kind&1 == 0 {
		return b.cfg.Disks.ReadSector(drive, track, sector, addr, mem)
	}
	return b.cfg.Disks.WriteSector(drive, track, sector, addr, mem)
}
