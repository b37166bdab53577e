package console

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// DefaultBreak is the byte intercepted as the break key instead of
// being queued for the processor: control backslash.
const DefaultBreak = 0x1c

// Host owns the controlling terminal while the machine runs. It
// switches stdin to raw mode and pumps keystrokes into the SIO from a
// background goroutine, so the processor never blocks on input.
type Host struct {
	sio *SIO

	// BreakByte never reaches the SIO; OnBreak runs on the pump
	// goroutine when it arrives. Set both before Start.
	BreakByte uint8
	OnBreak   func()

	fd       int
	oldState *term.State
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewHost returns a Host pumping stdin into sio.
func NewHost(sio *SIO) *Host {
	return &Host{sio: sio, BreakByte: DefaultBreak, fd: int(os.Stdin.Fd())}
}

// Start switches the terminal to raw mode and starts the input pump.
// When stdin is not a terminal the pump still runs, just without the
// mode switch, so piped input works.
func (h *Host) Start() error {
	if term.IsTerminal(h.fd) {
		st, err := term.MakeRaw(h.fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		h.oldState = st
	}
	if err := syscall.SetNonblock(h.fd, true); err != nil {
		h.restore()
		return fmt.Errorf("nonblocking stdin: %w", err)
	}
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.pump()
	return nil
}

// Stop shuts the pump down and hands the terminal back. Calling it
// again, or without a prior Start, does nothing.
func (h *Host) Stop() {
	if h.stop == nil {
		return
	}
	h.stopOnce.Do(func() {
		close(h.stop)
		<-h.done
		h.restore()
	})
}

func (h *Host) restore() {
	syscall.SetNonblock(h.fd, false)
	if h.oldState != nil {
		term.Restore(h.fd, h.oldState)
		h.oldState = nil
	}
}

func (h *Host) pump() {
	defer close(h.done)
	var buf [64]byte
	for {
		select {
		case <-h.stop:
			return
		default:
		}
		n, err := syscall.Read(h.fd, buf[:])
		if n <= 0 {
			if err != nil && !errors.Is(err, syscall.EAGAIN) {
				return
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		for _, b := range buf[:n] {
			if b == h.BreakByte {
				if h.OnBreak != nil {
					h.OnBreak()
				}
				continue
			}
			h.sio.Feed(b)
		}
	}
}
