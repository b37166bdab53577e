package config_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cyd80/pkg/config"
	"cyd80/pkg/disks"
	"cyd80/pkg/machine"
	"cyd80/pkg/memory"
)

// newMachineDir builds a machine over a data directory with the
// standard layout in place.
func newMachineDir(t *testing.T) (*machine.Machine, string) {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{disks.DiskDir, disks.CodeDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", sub, err)
		}
	}
	m := machine.New(machine.Config{DataDir: dir, ExtraBanks: 1, Output: io.Discard})
	return m, dir
}

func putDisk(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, disks.DiskDir, name+disks.DiskExt)
	if err := os.WriteFile(path, make([]byte, disks.SectorSize), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
}

func putCode(t *testing.T, dir, name string, code []byte) {
	t.Helper()
	path := filepath.Join(dir, disks.CodeDir, name+disks.CodeExt)
	if err := os.WriteFile(path, code, 0o644); err != nil {
		t.Fatalf("write code: %v", err)
	}
}

// runDialog drives the dialog with scripted input and captures its
// output.
func runDialog(m *machine.Machine, script string) (bool, string) {
	var out bytes.Buffer
	d := config.NewDialog(m, strings.NewReader(script), &out)
	ok := d.Run()
	return ok, out.String()
}

func TestDialogStart(t *testing.T) {
	m, _ := newMachineDir(t)

	ok, _ := runDialog(m, "g\n")
	if !ok {
		t.Fatal("Expected dialog to report ready")
	}
	if pc := m.CPU.SPR.PC; pc != memory.ROMBase {
		t.Errorf("Expected PC at the boot ROM, got 0x%04X", pc)
	}
}

func TestDialogEndOfInput(t *testing.T) {
	m, _ := newMachineDir(t)

	if ok, _ := runDialog(m, ""); ok {
		t.Error("Expected dialog to report end of input")
	}
}

func TestDialogModelToggle(t *testing.T) {
	m, _ := newMachineDir(t)

	runDialog(m, "c\ng\n")
	if m.Model() != machine.Model8080 {
		t.Errorf("Expected model 8080 after one toggle, got %v", m.Model())
	}

	runDialog(m, "c\ng\n")
	if m.Model() != machine.ModelZ80 {
		t.Errorf("Expected model Z80 after the second toggle, got %v", m.Model())
	}
}

func TestDialogSpeed(t *testing.T) {
	m, _ := newMachineDir(t)

	// Junk and out of range answers are asked again.
	runDialog(m, "s\nfoo\n120\n7\ng\n")
	if m.Speed() != 7 {
		t.Errorf("Expected speed 7, got %d", m.Speed())
	}
}

func TestDialogPanelValue(t *testing.T) {
	m, _ := newMachineDir(t)

	runDialog(m, "p\n3c\ng\n")
	if got := m.Bus.Panel(); got != 0x3c {
		t.Errorf("Expected panel value 0x3C, got 0x%02X", got)
	}
}

func TestDialogMountCycle(t *testing.T) {
	m, dir := newMachineDir(t)
	putDisk(t, dir, "WORK")

	runDialog(m, "0\nwork\ng\n")
	if !strings.HasSuffix(m.Disks.Path(0), "WORK"+disks.DiskExt) {
		t.Fatalf("Expected WORK mounted on drive 0, got %q", m.Disks.Path(0))
	}

	runDialog(m, "0\n\ng\n")
	if m.Disks.Path(0) != "" {
		t.Errorf("Expected drive 0 unmounted, got %q", m.Disks.Path(0))
	}
}

func TestDialogMountFailureReported(t *testing.T) {
	m, _ := newMachineDir(t)

	ok, out := runDialog(m, "0\nghost\ng\n")
	if !ok {
		t.Fatal("Expected dialog to continue after a failed mount")
	}
	if !strings.Contains(out, "Mount failed") {
		t.Errorf("Expected a mount failure message, got %q", out)
	}
	if m.Disks.Path(0) != "" {
		t.Errorf("Expected drive 0 empty, got %q", m.Disks.Path(0))
	}
}

func TestDialogDriveAssignments(t *testing.T) {
	m, dir := newMachineDir(t)
	putDisk(t, dir, "WORK")

	// After the mount the reprinted menu carries the drive lines.
	_, out := runDialog(m, "1\nwork\ng\n")
	if !strings.Contains(out, "1 - drive 1: ") || !strings.Contains(out, "WORK"+disks.DiskExt) {
		t.Errorf("Expected WORK.DSK on the drive 1 menu line, got %q", out)
	}
	if !strings.Contains(out, "0 - drive 0: <empty>") {
		t.Errorf("Expected empty drives marked in the menu, got %q", out)
	}
}

func TestDialogImageListing(t *testing.T) {
	m, dir := newMachineDir(t)
	putDisk(t, dir, "ALPHA")
	putDisk(t, dir, "BETA")

	_, out := runDialog(m, "d\ng\n")
	if !strings.Contains(out, "ALPHA.DSK") || !strings.Contains(out, "BETA.DSK") {
		t.Errorf("Expected both images listed, got %q", out)
	}
}

func TestDialogCodeListing(t *testing.T) {
	m, dir := newMachineDir(t)
	putCode(t, dir, "TINY", []byte{0x76})

	// Listing is all f does; nothing is loaded and nothing starts.
	_, out := runDialog(m, "f\ng\n")
	if !strings.Contains(out, "TINY"+disks.CodeExt) {
		t.Errorf("Expected TINY.BIN in the listing, got %q", out)
	}
	if pc := m.CPU.SPR.PC; pc != memory.ROMBase {
		t.Errorf("Expected PC still at the boot ROM, got 0x%04X", pc)
	}
}

func TestDialogLoadProgram(t *testing.T) {
	m, dir := newMachineDir(t)
	putCode(t, dir, "TINY", []byte{0x76, 0x00, 0xc9})

	// r loads and falls back to the menu; g starts the machine.
	ok, out := runDialog(m, "r\ntiny\ng\n")
	if !ok {
		t.Fatal("Expected dialog to reach the start command after a load")
	}
	if !strings.Contains(out, "Loaded 3 bytes") {
		t.Errorf("Expected load report, got %q", out)
	}
	if pc := m.CPU.SPR.PC; pc != 0 {
		t.Errorf("Expected PC at 0x0000, got 0x%04X", pc)
	}
	if got := m.Memory.Get(0); got != 0x76 {
		t.Errorf("Expected 0x76 at address 0, got 0x%02X", got)
	}
}

func TestDialogLoadEmptyName(t *testing.T) {
	m, _ := newMachineDir(t)

	ok, _ := runDialog(m, "r\n\ng\n")
	if !ok {
		t.Fatal("Expected dialog to continue after an empty name")
	}
	if pc := m.CPU.SPR.PC; pc != memory.ROMBase {
		t.Errorf("Expected PC still at the boot ROM, got 0x%04X", pc)
	}
}

func TestDialogMeasure(t *testing.T) {
	m, _ := newMachineDir(t)

	_, out := runDialog(m, "m\ng\n")
	if !strings.Contains(out, "MHz") {
		t.Errorf("Expected a speed report, got %q", out)
	}
}
