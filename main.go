// Command cyd80run is the headless batch runner: it boots a disk image
// or runs a standalone program until the processor halts, with console
// output on stdout and the run report on stderr. Useful for exercising
// guest software without a terminal session.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cyd80/pkg/config"
	"cyd80/pkg/disks"
	"cyd80/pkg/machine"
)

type options struct {
	dataDir string
	banks   int
	program string
	disk    string
	steps   int
}

func main() {
	dataDir := flag.String("data", "sdcard", "data directory holding DISKS80, CODE80 and CONF80")
	banks := flag.Int("banks", 1, "switchable memory banks beyond bank 0")
	program := flag.String("run", "", "standalone program from CODE80 to load at address 0")
	disk := flag.String("boot", "", "disk image from DISKS80 to mount on drive 0 and boot")
	steps := flag.Int("steps", 50000000, "instruction budget before giving up")
	flag.Parse()

	if *program != "" && *disk != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -boot, not both")
		os.Exit(2)
	}
	if *program == "" && *disk == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -run <program> or -boot <image>")
		flag.Usage()
		os.Exit(2)
	}

	for _, sub := range []string{disks.DiskDir, disks.CodeDir, config.Dir} {
		if err := os.MkdirAll(filepath.Join(*dataDir, sub), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", sub, err)
			os.Exit(1)
		}
	}

	opts := options{
		dataDir: *dataDir,
		banks:   *banks,
		program: *program,
		disk:    *disk,
		steps:   *steps,
	}
	m, err := run(opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}

	m.ReportFault(os.Stderr)
	fmt.Fprintf(os.Stderr, "PC=0x%04X SP=0x%04X AF=0x%04X BC=0x%04X DE=0x%04X HL=0x%04X\n",
		m.CPU.SPR.PC, m.CPU.SPR.SP,
		m.CPU.GPR.AF.U16(), m.CPU.GPR.BC.U16(),
		m.CPU.GPR.DE.U16(), m.CPU.GPR.HL.U16())
	if m.Fault() != machine.FaultOpHalt {
		os.Exit(1)
	}
}

// run builds the machine, points it at the requested boot source and
// executes it up to the instruction budget. The returned machine holds
// the fault and final processor state.
func run(opts options, out io.Writer) (*machine.Machine, error) {
	m := machine.New(machine.Config{
		DataDir:    opts.dataDir,
		ExtraBanks: opts.banks,
		Output:     out,
	})
	if opts.disk != "" {
		if err := m.Disks.Mount(0, opts.disk); err != nil {
			return nil, fmt.Errorf("mount %s: %w", opts.disk, err)
		}
	}
	m.Reset()
	if opts.program != "" {
		n, err := m.Disks.LoadImage(opts.program, m.Memory)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.program, err)
		}
		fmt.Fprintf(os.Stderr, "loaded %d bytes\n", n)
		m.CPU.SPR.PC = 0
	}
	m.StepBatch(opts.steps)
	return m, nil
}
