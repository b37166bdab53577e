// Package disks implements the drive registry and the sector I/O engine
// behind the virtual FDC: four drive slots holding flat disk images,
// validated sector transfers between an image and machine memory, and a
// bulk loader for standalone binaries.
package disks

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// NumDrives is the fixed number of drive slots.
	NumDrives = 4

	// DiskDir and CodeDir are the data directory subdirectories for
	// disk images and loadable binaries.
	DiskDir = "DISKS80"
	CodeDir = "CODE80"

	// DiskExt and CodeExt are the fixed file extensions.
	DiskExt = ".DSK"
	CodeExt = ".BIN"
)

// Image names come from the dialog: bare names without extension, at
// most 8 characters, stored upper case on the card.
var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,8}$`)

// Registry maps drive indexes to mounted image paths and owns the
// single sector buffer all transfers go through. It is not safe for
// concurrent use; the machine drives it from one execution context.
type Registry struct {
	dataDir string
	slots   [NumDrives]string
	buf     [SectorSize]byte
	lamps   Indicator
}

// NewRegistry returns a Registry rooted at dataDir with no disks
// mounted.
func NewRegistry(dataDir string) *Registry {
	return &Registry{dataDir: dataDir}
}

// SetIndicator wires the activity lamps. A nil indicator disables them.
func (r *Registry) SetIndicator(ind Indicator) {
	r.lamps = ind
}

// DataDir returns the directory the registry was rooted at.
func (r *Registry) DataDir() string { return r.dataDir }

// DiskPath returns the canonical image path for a user supplied name.
func (r *Registry) DiskPath(name string) string {
	return filepath.Join(r.dataDir, DiskDir, strings.ToUpper(name)+DiskExt)
}

// CodePath returns the canonical binary path for a user supplied name.
func (r *Registry) CodePath(name string) string {
	return filepath.Join(r.dataDir, CodeDir, strings.ToUpper(name)+CodeExt)
}

// Mount puts the named image into the drive slot. The image must exist
// and must not already be mounted on a different drive. Mounting the
// same image on the same drive again is allowed and changes nothing.
// The existence probe opens and immediately closes the file; no handle
// stays open.
func (r *Registry) Mount(drive int, name string) error {
	if drive < 0 || drive >= NumDrives {
		return ErrBadDrive
	}
	if !validName.MatchString(name) {
		return ErrBadName
	}
	path := r.DiskPath(name)
	for i, p := range r.slots {
		if i != drive && p == path {
			return ErrMounted
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return ErrNotFound
	}
	f.Close()
	r.slots[drive] = path
	return nil
}

// Unmount clears the drive slot unconditionally.
func (r *Registry) Unmount(drive int) error {
	if drive < 0 || drive >= NumDrives {
		return ErrBadDrive
	}
	r.slots[drive] = ""
	return nil
}

// Path returns the mounted image path for the drive, or "" when the
// drive is empty or out of range.
func (r *Registry) Path(drive int) string {
	if drive < 0 || drive >= NumDrives {
		return ""
	}
	return r.slots[drive]
}

// SetPath restores a persisted mount without probing. VerifyAll prunes
// paths that no longer resolve; callers restoring configuration should
// run it afterwards.
func (r *Registry) SetPath(drive int, path string) {
	if drive < 0 || drive >= NumDrives {
		return
	}
	r.slots[drive] = path
}

// VerifyAll re-probes every mounted image and clears the slots whose
// file no longer opens. It returns the cleared paths.
func (r *Registry) VerifyAll() []string {
	var cleared []string
	for i, p := range r.slots {
		if p == "" {
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			cleared = append(cleared, p)
			r.slots[i] = ""
			continue
		}
		f.Close()
	}
	return cleared
}

// List returns the entry names of a data directory subdirectory, for
// display. The pattern is accepted for call site compatibility and
// ignored: these directories hold nothing but images.
func (r *Registry) List(subdir, pattern string) ([]string, error) {
	_ = pattern
	entries, err := os.ReadDir(filepath.Join(r.dataDir, subdir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
