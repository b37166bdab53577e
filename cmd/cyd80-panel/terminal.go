package main

// Terminal geometry, a classic 80 by 24 screen.
const (
	termCols = 80
	termRows = 24
)

// terminal is a dumb teletype surface for console output. Printable
// bytes advance the cursor, carriage return and line feed do what they
// say, backspace rubs out, and the top line scrolls away when the
// bottom runs out. It implements io.Writer so it can sit directly
// behind the SIO.
type terminal struct {
	cells [termRows * termCols]byte
	col   int
	row   int
}

func newTerminal() *terminal {
	t := &terminal{}
	t.clear()
	return t
}

func (t *terminal) clear() {
	for i := range t.cells {
		t.cells[i] = ' '
	}
	t.col, t.row = 0, 0
}

func (t *terminal) Write(p []byte) (int, error) {
	for _, b := range p {
		t.put(b)
	}
	return len(p), nil
}

func (t *terminal) put(b byte) {
	switch b {
	case '\r':
		t.col = 0
	case '\n':
		t.nextLine()
	case 0x08, 0x7f:
		if t.col > 0 {
			t.col--
			t.cells[t.row*termCols+t.col] = ' '
		}
	case 0x07:
		// Bell, nowhere to ring it.
	default:
		if b < ' ' {
			return
		}
		t.cells[t.row*termCols+t.col] = b
		t.col++
		if t.col >= termCols {
			t.col = 0
			t.nextLine()
		}
	}
}

func (t *terminal) nextLine() {
	t.row++
	if t.row >= termRows {
		t.scroll()
		t.row = termRows - 1
	}
}

func (t *terminal) scroll() {
	copy(t.cells[:], t.cells[termCols:])
	for i := (termRows - 1) * termCols; i < len(t.cells); i++ {
		t.cells[i] = ' '
	}
}

// Line returns row r as a string for drawing.
func (t *terminal) Line(r int) string {
	return string(t.cells[r*termCols : (r+1)*termCols])
}
