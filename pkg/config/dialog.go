package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cyd80/pkg/disks"
	"cyd80/pkg/machine"
)

// Dialog is the setup menu shown before the machine runs. It talks
// line oriented text, so it belongs before the terminal goes raw.
type Dialog struct {
	m   *machine.Machine
	in  *bufio.Reader
	out io.Writer
}

// NewDialog returns a dialog for the machine reading commands from in
// and printing to out.
func NewDialog(m *machine.Machine, in io.Reader, out io.Writer) *Dialog {
	return &Dialog{m: m, in: bufio.NewReader(in), out: out}
}

// Run shows the menu until the operator starts the machine. It leaves
// the machine reset and pointed at either the boot ROM or a loaded
// standalone program, and returns true. When input ends first it
// returns false.
func (d *Dialog) Run() bool {
	for {
		d.menu()
		line, err := d.readLine()
		if err != nil {
			return false
		}
		switch line {
		case "c":
			if d.m.Model() == machine.ModelZ80 {
				d.m.SetModel(machine.Model8080)
			} else {
				d.m.SetModel(machine.ModelZ80)
			}
		case "s":
			n, err := d.askInt("Processor speed in MHz, 0 unthrottled", 0, 40)
			if err != nil {
				return false
			}
			d.m.SetSpeed(n)
		case "p":
			v, err := d.askHex("Front panel value in hex")
			if err != nil {
				return false
			}
			d.m.Bus.SetPanel(v)
		case "f":
			d.listDir(disks.CodeDir)
		case "r":
			if err := d.loadProgram(); err != nil {
				return false
			}
		case "d":
			d.listDir(disks.DiskDir)
		case "0", "1", "2", "3":
			if err := d.mount(int(line[0] - '0')); err != nil {
				return false
			}
		case "m":
			fmt.Fprintf(d.out, "This host runs the processor at about %.1f MHz\n",
				machine.MeasureSpeed())
		case "g":
			return true
		}
	}
}

func (d *Dialog) menu() {
	fmt.Fprintf(d.out, "\nc - processor model (%v)\n", d.m.Model())
	if s := d.m.Speed(); s > 0 {
		fmt.Fprintf(d.out, "s - processor speed (%d MHz)\n", s)
	} else {
		fmt.Fprintln(d.out, "s - processor speed (unthrottled)")
	}
	fmt.Fprintf(d.out, "p - front panel value (0x%02X)\n", d.m.Bus.Panel())
	fmt.Fprintln(d.out, "f - list code files")
	fmt.Fprintln(d.out, "r - load code file")
	fmt.Fprintln(d.out, "d - list disk images")
	for i := 0; i < disks.NumDrives; i++ {
		if p := d.m.Disks.Path(i); p != "" {
			fmt.Fprintf(d.out, "%d - drive %d: %s\n", i, i, p)
		} else {
			fmt.Fprintf(d.out, "%d - drive %d: <empty>\n", i, i)
		}
	}
	fmt.Fprintln(d.out, "m - measure host speed")
	fmt.Fprintln(d.out, "g - start the machine")
	fmt.Fprint(d.out, "\nCommand: ")
}

func (d *Dialog) readLine() (string, error) {
	line, err := d.in.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

// askInt keeps asking until it gets a number inside the range.
func (d *Dialog) askInt(prompt string, lo, hi int) (int, error) {
	for {
		fmt.Fprintf(d.out, "%s (%d-%d): ", prompt, lo, hi)
		line, err := d.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= lo && n <= hi {
			return n, nil
		}
	}
}

// askHex keeps asking until it gets a byte in hex.
func (d *Dialog) askHex(prompt string) (uint8, error) {
	for {
		fmt.Fprintf(d.out, "%s: ", prompt)
		line, err := d.readLine()
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(line, "0x"), 16, 8)
		if err == nil {
			return uint8(v), nil
		}
	}
}

// listDir prints a directory listing five names per row.
func (d *Dialog) listDir(subdir string) {
	names, err := d.m.Disks.List(subdir, "*")
	if err != nil {
		fmt.Fprintf(d.out, "Cannot list %s: %v\n", subdir, err)
		return
	}
	for i, name := range names {
		fmt.Fprintf(d.out, "%-16s", name)
		if (i+1)%5 == 0 {
			fmt.Fprintln(d.out)
		}
	}
	if len(names)%5 != 0 {
		fmt.Fprintln(d.out)
	}
}

// mount asks for an image name and mounts it on the drive. An empty
// name unmounts instead. Only running out of input is an error; a
// failed mount just gets reported.
func (d *Dialog) mount(drive int) error {
	fmt.Fprint(d.out, "Image name, empty to unmount: ")
	line, err := d.readLine()
	if err != nil {
		return err
	}
	if line == "" {
		d.m.Disks.Unmount(drive)
		return nil
	}
	if err := d.m.Disks.Mount(drive, line); err != nil {
		fmt.Fprintf(d.out, "Mount failed: %v\n", err)
	}
	return nil
}

// loadProgram asks for a name and loads that binary at address 0 with
// the processor pointed at it. An empty name does nothing. Only
// running out of input is an error; a failed load just gets reported.
func (d *Dialog) loadProgram() error {
	fmt.Fprint(d.out, "Program name: ")
	line, err := d.readLine()
	if err != nil {
		return err
	}
	if line == "" {
		return nil
	}
	d.m.Reset()
	n, err := d.m.Disks.LoadImage(line, d.m.Memory)
	if err != nil {
		fmt.Fprintf(d.out, "Load failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(d.out, "Loaded %d bytes, starting at 0x0000\n", n)
	d.m.CPU.SPR.PC = 0
	return nil
}
