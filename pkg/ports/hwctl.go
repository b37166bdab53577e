package ports

// LockState is the control port lock. The byte the port reads back is
// the state value itself.
type LockState uint8

const (
	Locked   LockState = 0xff
	Unlocked LockState = 0x00
)

// unlockByte opens the lock for exactly one following command.
const unlockByte = 0xaa

// hwctl is the privileged control port. It ignores everything while
// locked except the unlock byte, and the lock snaps shut again before
// a command takes effect, so every command needs its own unlock.
type hwctl struct {
	lock LockState
}

func (b *Bus) hwctlIn() uint8 {
	return uint8(b.hwctl.lock)
}

func (b *Bus) hwctlOut(data uint8) {
	if b.hwctl.lock != Unlocked {
		if data == unlockByte {
			b.hwctl.lock = Unlocked
		}
		return
	}

	// An unlock byte arriving here decodes as a command like any
	// other; its halt bit is set, so back to back unlocks stop the
	// machine.
	b.hwctl.lock = Locked
	switch {
	case data&0x80 != 0:
		b.cfg.Control.HaltIO()
	case data&0x40 != 0:
		b.cfg.Control.Reset()
	case data&0x20 != 0:
		b.cfg.Control.SelectZ80()
	case data&0x10 != 0:
		b.cfg.Control.Select8080()
	}
}
