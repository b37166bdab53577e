// cyd80 runs the machine on the terminal: the setup dialog first in
// cooked mode, then the console goes raw and the processor boots.
// Control backslash stops the machine and returns the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"cyd80/pkg/config"
	"cyd80/pkg/console"
	"cyd80/pkg/disks"
	"cyd80/pkg/machine"
)

func main() {
	dataDir := flag.String("data", "sdcard", "data directory holding DISKS80, CODE80 and CONF80")
	banks := flag.Int("banks", 1, "switchable memory banks beyond bank 0")
	mirror := flag.Bool("mirror", false, "echo the panel display on port 254")
	flag.Parse()

	for _, sub := range []string{disks.DiskDir, disks.CodeDir, config.Dir} {
		if err := os.MkdirAll(filepath.Join(*dataDir, sub), 0o755); err != nil {
			log.Fatalf("cannot create %s: %v", sub, err)
		}
	}

	m := machine.New(machine.Config{
		DataDir:     *dataDir,
		ExtraBanks:  *banks,
		MirrorPanel: *mirror,
	})

	fmt.Println("CYD-80 virtual machine")
	fmt.Printf("Data directory %s, break key is control backslash\n", *dataDir)

	rec, err := config.Load(*dataDir)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	config.Apply(m, rec)
	for _, p := range m.Disks.VerifyAll() {
		fmt.Printf("Unmounted missing image %s\n", p)
	}

	if !config.NewDialog(m, os.Stdin, os.Stdout).Run() {
		return
	}
	if err := config.Save(*dataDir, config.Snapshot(m)); err != nil {
		fmt.Printf("Cannot save configuration: %v\n", err)
	}

	host := console.NewHost(m.SIO)
	host.OnBreak = m.RequestStop
	if err := host.Start(); err != nil {
		log.Fatalf("console: %v", err)
	}

	m.Run(context.Background())

	host.Stop()
	m.ReportFault(os.Stdout)
}
