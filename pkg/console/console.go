// Package console carries the serial console: the SIO register pair
// the processor polls and a raw mode terminal host that feeds it.
package console

import (
	"io"
	"os"
)

// InputBacklog is how many received bytes the SIO holds before it
// starts dropping input.
const InputBacklog = 256

// SIO status bits. A clear bit means ready, like the UART it models.
const (
	StatusRXEmpty = 0x01 // no input byte waiting
	StatusTXBusy  = 0x80 // transmitter busy, never set here
)

// SIO is the console serial port. Input arrives asynchronously through
// Feed, output goes straight to the writer. The processor side is
// polled, never blocked.
type SIO struct {
	pending chan uint8
	last    uint8
	out     io.Writer
}

// NewSIO returns an SIO writing output to out, or to stdout when out
// is nil.
func NewSIO(out io.Writer) *SIO {
	if out == nil {
		out = os.Stdout
	}
	return &SIO{pending: make(chan uint8, InputBacklog), out: out}
}

// Status reports receiver and transmitter state. The transmitter is
// always ready.
func (s *SIO) Status() uint8 {
	if len(s.pending) == 0 {
		return StatusRXEmpty
	}
	return 0
}

// Data returns the next input byte, or the previous one again when
// nothing new has arrived. Software is expected to poll Status first.
func (s *SIO) Data() uint8 {
	select {
	case b := <-s.pending:
		s.last = b
	default:
	}
	return s.last
}

// Feed queues an input byte for the processor. When the backlog is
// full the byte is dropped.
func (s *SIO) Feed(b uint8) {
	select {
	case s.pending <- b:
	default:
	}
}

// Transmit prints an output byte. The high bit is stripped first; CP/M
// era software parks parity there.
func (s *SIO) Transmit(b uint8) {
	buf := [1]byte{b & 0x7f}
	s.out.Write(buf[:])
}
