// Package config persists the machine setup between sessions and
// provides the pre-run configuration dialog.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cyd80/pkg/disks"
	"cyd80/pkg/machine"
)

const (
	// Dir and File name the configuration record under the data
	// directory.
	Dir  = "CONF80"
	File = "CYD80.DAT"

	// PathLen is the fixed stored width of each image path.
	PathLen = 128
)

// recordLen is the full record: model, speed and panel value, then
// one path per drive.
const recordLen = 3 + disks.NumDrives*PathLen

// Record is the persisted machine setup. The byte layout is fixed:
// model, speed, front panel value, then the NUL padded image paths in
// drive order.
type Record struct {
	Model machine.Model
	Speed byte
	Panel byte
	Disks [disks.NumDrives]string
}

// Path returns the record location under dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, Dir, File)
}

// Load reads the record. A missing file is not an error, the record
// then holds the defaults. A short file keeps whatever fields it
// covers, so records written by older revisions still load.
func Load(dataDir string) (Record, error) {
	rec := Record{Speed: machine.DefaultSpeed}
	data, err := os.ReadFile(Path(dataDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rec, nil
		}
		return rec, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 && machine.Model(data[0]) == machine.Model8080 {
		rec.Model = machine.Model8080
	}
	if len(data) > 1 {
		rec.Speed = data[1]
	}
	if len(data) > 2 {
		rec.Panel = data[2]
	}
	for i := 0; i < disks.NumDrives; i++ {
		off := 3 + i*PathLen
		if off+PathLen > len(data) {
			break
		}
		rec.Disks[i] = string(bytes.TrimRight(data[off:off+PathLen], "\x00"))
	}
	return rec, nil
}

// Save writes the record, creating the configuration directory first
// when it is missing.
func Save(dataDir string, rec Record) error {
	buf := make([]byte, recordLen)
	buf[0] = byte(rec.Model)
	buf[1] = rec.Speed
	buf[2] = rec.Panel
	for i, p := range rec.Disks {
		if len(p) >= PathLen {
			return fmt.Errorf("config: image path too long: %s", p)
		}
		copy(buf[3+i*PathLen:], p)
	}
	dir := filepath.Join(dataDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, File), buf, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Apply pushes a loaded record into the machine. Restored mounts are
// taken as they are; run VerifyAll afterwards to prune dead ones.
func Apply(m *machine.Machine, rec Record) {
	m.SetModel(rec.Model)
	m.SetSpeed(int(rec.Speed))
	m.Bus.SetPanel(rec.Panel)
	for i, p := range rec.Disks {
		m.Disks.SetPath(i, p)
	}
}

// Snapshot captures the current machine setup into a record.
func Snapshot(m *machine.Machine) Record {
	rec := Record{
		Model: m.Model(),
		Speed: byte(m.Speed()),
		Panel: m.Bus.Panel(),
	}
	for i := range rec.Disks {
		rec.Disks[i] = m.Disks.Path(i)
	}
	return rec
}
