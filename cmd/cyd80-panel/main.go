// cyd80-panel runs the machine in a desktop window: a green phosphor
// terminal view on top and the front panel lamp row underneath. The
// machine boots straight from the saved configuration; use cyd80 on
// the terminal to change it. F10 stops the machine, a second F10
// closes the window.
package main

import (
	"flag"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"cyd80/pkg/config"
	"cyd80/pkg/disks"
	"cyd80/pkg/machine"
)

// Screen layout in logical pixels. The terminal uses the 7x13 basic
// font, the lamp row sits below it.
const (
	cellW      = 7
	lineH      = 13
	margin     = 10
	lampRowY   = margin + termRows*lineH + 26
	lampPitch  = 20
	lampRadius = 6

	screenW = margin*2 + termCols*cellW
	screenH = lampRowY + 26
)

// Per frame instruction budget: a speed MHz processor retires about
// 250000 instructions a second at 4 T-states each, spread over 60
// frames.
const (
	perFrameMHz    = 4200
	unlimitedFrame = 100000
)

var (
	backColor  = color.RGBA{0x10, 0x10, 0x10, 0xff}
	phosphor   = color.RGBA{0x33, 0xff, 0x66, 0xff}
	labelColor = color.RGBA{0x90, 0x90, 0x90, 0xff}
	lampOff    = color.RGBA{0x38, 0x18, 0x18, 0xff}
	lampOn     = color.RGBA{0xff, 0x30, 0x30, 0xff}
	driveOff   = color.RGBA{0x18, 0x30, 0x18, 0xff}
	driveOn    = color.RGBA{0x30, 0xff, 0x30, 0xff}
)

// lampAt returns the center of lamp i, laid out left to right.
func lampAt(i int) (float32, float32) {
	return float32(margin + lampRadius + i*lampPitch), float32(lampRowY)
}

type game struct {
	m    *machine.Machine
	term *terminal
	face *text.GoXFace

	readLamp  bool
	writeLamp bool
	userLED   bool
	stopped   bool
}

// The game is the drive activity indicator: transfers light the
// lamps for the frame they happen in.
func (g *game) ReadLamp(on bool) {
	if on {
		g.readLamp = true
	}
}

func (g *game) WriteLamp(on bool) {
	if on {
		g.writeLamp = true
	}
}

func (g *game) Update() error {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r < 0x80 {
			g.m.SIO.Feed(byte(r))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.m.SIO.Feed(0x0d)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.m.SIO.Feed(0x08)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		if g.stopped {
			return ebiten.Termination
		}
		g.m.RequestStop()
	}

	if g.stopped {
		return nil
	}
	g.readLamp, g.writeLamp = false, false
	n := g.m.Speed() * perFrameMHz
	if n <= 0 {
		n = unlimitedFrame
	}
	if f := g.m.StepBatch(n); f != machine.FaultNone {
		g.stopped = true
		g.m.ReportFault(g.term)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(backColor)

	for r := 0; r < termRows; r++ {
		op := &text.DrawOptions{}
		op.GeoM.Translate(margin, margin+float64(r*lineH))
		op.ColorScale.ScaleWithColor(phosphor)
		text.Draw(screen, g.term.Line(r), g.face, op)
	}

	// Panel display byte, most significant bit first.
	val := g.m.Bus.Panel()
	for i := 0; i < 8; i++ {
		x, y := lampAt(i)
		c := lampOff
		if val&(0x80>>i) != 0 {
			c = lampOn
		}
		vector.DrawFilledCircle(screen, x, y, lampRadius, c, true)
	}
	for i, on := range []bool{g.readLamp, g.writeLamp, g.userLED} {
		x, y := lampAt(9 + i)
		c := driveOff
		if on {
			c = driveOn
		}
		vector.DrawFilledCircle(screen, x, y, lampRadius, c, true)
	}

	op := &text.DrawOptions{}
	x, _ := lampAt(9)
	op.GeoM.Translate(float64(x)-lampRadius, float64(lampRowY)+10)
	op.ColorScale.ScaleWithColor(labelColor)
	text.Draw(screen, "RD WR LED", g.face, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

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

	g := &game{term: newTerminal(), face: text.NewGoXFace(basicfont.Face7x13)}
	m := machine.New(machine.Config{
		DataDir:     *dataDir,
		ExtraBanks:  *banks,
		MirrorPanel: *mirror,
		Output:      g.term,
		Indicator:   g,
		LED:         func(on bool) { g.userLED = on },
	})
	g.m = m

	rec, err := config.Load(*dataDir)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	config.Apply(m, rec)
	m.Disks.VerifyAll()
	m.Reset()

	ebiten.SetWindowSize(screenW*2, screenH*2)
	ebiten.SetWindowTitle("CYD-80")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("panel: %v", err)
	}
}
