package disks

import (
	"fmt"
	"io"
	"os"
)

// LoadImage streams the named binary from the code directory into
// memory starting at address 0, one sector sized chunk at a time.
// Running out of file is the normal end of the load; a genuine read
// error aborts it and comes back wrapped so the two are told apart.
// Returns the number of bytes loaded.
func (r *Registry) LoadImage(name string, mem DMA) (int, error) {
	if !validName.MatchString(name) {
		return 0, ErrBadName
	}
	path := r.CodePath(name)
	f, err := os.Open(path)
	if err != nil {
		return 0, ErrNotFound
	}
	defer f.Close()

	total := 0
	for {
		n, err := io.ReadFull(f, r.buf[:])
		for i := 0; i < n; i++ {
			mem.DMAWrite(uint16(total+i), r.buf[i])
		}
		total += n
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return total, nil
}
