package disks_test

import (
	"os"
	"testing"

	"cyd80/pkg/disks"
)

// testDMA is a flat 64K memory standing in for the banked machine
// memory during transfers.
type testDMA struct {
	mem [0x10000]byte
}

func (d *testDMA) DMARead(addr uint16) uint8        { return d.mem[addr] }
func (d *testDMA) DMAWrite(addr uint16, data uint8) { d.mem[addr] = data }

func TestOffsetLayout(t *testing.T) {
	if off := disks.Offset(0, 1); off != 0 {
		t.Errorf("Expected first sector at offset 0, got %d", off)
	}
	if off := disks.Offset(0, 2); off != disks.SectorSize {
		t.Errorf("Expected second sector at offset %d, got %d", disks.SectorSize, off)
	}
	if off := disks.Offset(1, 1); off != disks.SectorsPerTrack*disks.SectorSize {
		t.Errorf("Expected track 1 at offset %d, got %d", disks.SectorsPerTrack*disks.SectorSize, off)
	}

	// Walking tracks and sectors in order must advance exactly one
	// sector at a time, with the last sector ending at the image size.
	next := int64(0)
	for track := 0; track <= disks.MaxTrack; track++ {
		for sector := 1; sector <= disks.SectorsPerTrack; sector++ {
			if off := disks.Offset(track, sector); off != next {
				t.Fatalf("Expected offset %d for track %d sector %d, got %d", next, track, sector, off)
			}
			next += disks.SectorSize
		}
	}
	if next != fullSize {
		t.Errorf("Expected layout to cover %d bytes, got %d", fullSize, next)
	}
}

func TestTransferValidationOrder(t *testing.T) {
	// Nothing is mounted, so every case would end in StatusNoDisk if
	// the parameter checks did not come first.
	r, _ := newRegistry(t)
	mem := &testDMA{}

	tests := []struct {
		name   string
		drive  int
		track  int
		sector int
		addr   uint16
		want   disks.Status
	}{
		{"drive low", -1, 0, 1, 0, disks.StatusBadDrive},
		{"drive high", disks.NumDrives, 0, 1, 0, disks.StatusBadDrive},
		{"track low", 0, -1, 1, 0, disks.StatusBadTrack},
		{"track high", 0, disks.MaxTrack + 1, 1, 0, disks.StatusBadTrack},
		{"sector low", 0, 0, 0, 0, disks.StatusBadSector},
		{"sector high", 0, 0, disks.SectorsPerTrack + 1, 0, disks.StatusBadSector},
		{"addr high", 0, 0, 1, disks.DMALimit + 1, disks.StatusBadDMA},
		{"no disk", 0, 0, 1, disks.DMALimit, disks.StatusNoDisk},
	}
	for _, tt := range tests {
		if got := r.ReadSector(tt.drive, tt.track, tt.sector, tt.addr, mem); got != tt.want {
			t.Errorf("%s: Expected read status %v, got %v", tt.name, tt.want, got)
		}
		if got := r.WriteSector(tt.drive, tt.track, tt.sector, tt.addr, mem); got != tt.want {
			t.Errorf("%s: Expected write status %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestSectorRoundTrip(t *testing.T) {
	r, dir := newRegistry(t)
	writeDisk(t, dir, "WORK", fullSize)
	if err := r.Mount(0, "work"); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	mem := &testDMA{}
	for i := 0; i < disks.SectorSize; i++ {
		mem.mem[0x0080+i] = byte(i ^ 0x5a)
	}
	if st := r.WriteSector(0, 5, 7, 0x0080, mem); st != disks.StatusOK {
		t.Fatalf("WriteSector failed: %v", st)
	}
	if st := r.ReadSector(0, 5, 7, 0x1000, mem); st != disks.StatusOK {
		t.Fatalf("ReadSector failed: %v", st)
	}
	for i := 0; i < disks.SectorSize; i++ {
		if mem.mem[0x1000+i] != byte(i^0x5a) {
			t.Fatalf("Expected 0x%02X at offset %d, got 0x%02X", byte(i^0x5a), i, mem.mem[0x1000+i])
		}
	}
}

func TestLastSectorInsideImage(t *testing.T) {
	r, dir := newRegistry(t)
	writeDisk(t, dir, "WORK", fullSize)
	if err := r.Mount(0, "work"); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	mem := &testDMA{}
	if st := r.WriteSector(0, disks.MaxTrack, disks.SectorsPerTrack, 0x0100, mem); st != disks.StatusOK {
		t.Errorf("Expected last sector write to succeed, got %v", st)
	}
	if st := r.ReadSector(0, disks.MaxTrack, disks.SectorsPerTrack, 0x0100, mem); st != disks.StatusOK {
		t.Errorf("Expected last sector read to succeed, got %v", st)
	}
}

func TestShortImageReadFailsCleanly(t *testing.T) {
	r, dir := newRegistry(t)
	// One sector of image; track 1 lies beyond the end.
	writeDisk(t, dir, "TINY", disks.SectorSize)
	if err := r.Mount(0, "tiny"); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	mem := &testDMA{}
	for i := range mem.mem {
		mem.mem[i] = 0xee
	}
	if st := r.ReadSector(0, 1, 1, 0x0200, mem); st != disks.StatusReadFail {
		t.Fatalf("Expected StatusReadFail, got %v", st)
	}
	for i := 0; i < disks.SectorSize; i++ {
		if mem.mem[0x0200+i] != 0xee {
			t.Fatalf("Expected memory untouched after failed read, got 0x%02X at offset %d", mem.mem[0x0200+i], i)
		}
	}
}

func TestVanishedImageReadsAsNoDisk(t *testing.T) {
	r, dir := newRegistry(t)
	path := writeDisk(t, dir, "WORK", fullSize)
	if err := r.Mount(0, "work"); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	mem := &testDMA{}
	if st := r.ReadSector(0, 0, 1, 0x0200, mem); st != disks.StatusNoDisk {
		t.Errorf("Expected StatusNoDisk, got %v", st)
	}
}

// lampLog records lamp transitions in order.
type lampLog struct {
	events []string
}

func (l *lampLog) ReadLamp(on bool) {
	if on {
		l.events = append(l.events, "r+")
	} else {
		l.events = append(l.events, "r-")
	}
}

func (l *lampLog) WriteLamp(on bool) {
	if on {
		l.events = append(l.events, "w+")
	} else {
		l.events = append(l.events, "w-")
	}
}

func TestLampsRestoredOnAnyOutcome(t *testing.T) {
	r, dir := newRegistry(t)
	writeDisk(t, dir, "WORK", fullSize)
	if err := r.Mount(0, "work"); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	lamps := &lampLog{}
	r.SetIndicator(lamps)
	mem := &testDMA{}

	r.ReadSector(0, 0, 1, 0x0200, mem)           // success
	r.ReadSector(0, disks.MaxTrack+1, 1, 0, mem) // validation failure
	r.WriteSector(3, 0, 1, 0x0200, mem)          // empty drive

	want := []string{"r+", "r-", "r+", "r-", "w+", "w-"}
	if len(lamps.events) != len(want) {
		t.Fatalf("Expected %d lamp events, got %v", len(want), lamps.events)
	}
	for i, e := range want {
		if lamps.events[i] != e {
			t.Fatalf("Expected lamp event %s at %d, got %v", e, i, lamps.events)
		}
	}
}

func TestStatusStrings(t *testing.T) {
	tests := []struct {
		status disks.Status
		want   string
	}{
		{disks.StatusOK, "ok"},
		{disks.StatusBadTrack, "track out of range"},
		{disks.StatusNoDisk, "no disk in drive"},
		{disks.Status(99), "unknown status 99"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}
