package machine

import (
	"time"

	"github.com/koron-go/z80"
)

// measureLaps is how many times the timing loop runs. Each lap is one
// jump instruction of 10 T-states.
const measureLaps = 2000000

// MeasureSpeed runs a tight jump loop on a throwaway processor and
// returns the effective host speed in MHz. The machine itself is not
// touched, so it is safe to call between runs.
func MeasureSpeed() float64 {
	mem := z80.DumbMemory{0xc3, 0x00, 0x00} // JP 0000h
	cpu := &z80.CPU{Memory: mem}

	start := time.Now()
	for i := 0; i < measureLaps; i++ {
		cpu.Step()
	}
	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(measureLaps) * 10 / elapsed / 1e6
}
