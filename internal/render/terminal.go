package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	playerGlyph = '@'
	hudRows     = 1
)

type dot struct {
	x, z  float64
	glyph rune
	style tcell.Style
}

// Terminal draws a top-down map of the arena centred on the player: north
// (+Z) is up, one column covers twice the ground of one row so the map keeps
// its proportions in ordinary terminal cells.
type Terminal struct {
	screen tcell.Screen
	radius float64 // world units from the player to the left/right edge
	dots   []dot
	log    *zap.Logger

	quit     chan struct{}
	quitOnce sync.Once
}

// NewTerminal takes over the controlling terminal.
func NewTerminal(radius float64, log *zap.Logger) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	t := newTerminal(screen, radius, log)
	go t.pollEvents()
	return t, nil
}

// newTerminal wraps an initialised screen without starting the input loop.
func newTerminal(screen tcell.Screen, radius float64, log *zap.Logger) *Terminal {
	if log == nil {
		log = zap.NewNop()
	}
	if radius <= 0 {
		radius = 40
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	return &Terminal{
		screen: screen,
		radius: radius,
		log:    log,
		quit:   make(chan struct{}),
	}
}

// Quit is closed when the user presses Esc, Ctrl-C or q.
func (t *Terminal) Quit() <-chan struct{} { return t.quit }

func (t *Terminal) pollEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return // screen finalised
		}
		t.handleEvent(ev)
	}
}

func (t *Terminal) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			t.quitOnce.Do(func() { close(t.quit) })
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

func (t *Terminal) DrawInstanced(mesh Mesh, material Material, transforms []mgl64.Mat4) {
	style := tcell.StyleDefault.Foreground(material.Color)
	for _, m := range transforms {
		p := Position(m)
		t.dots = append(t.dots, dot{x: p.X(), z: p.Z(), glyph: mesh.Glyph, style: style})
	}
}

// Present draws the collected batches, then the markers, then the player and
// the HUD line, and shows the result.
func (t *Terminal) Present(frame Frame) {
	t.screen.Clear()
	w, h := t.screen.Size()
	mapH := h - hudRows

	for _, d := range t.dots {
		t.plot(frame.Player, d.x, d.z, w, mapH, d.glyph, d.style)
	}
	for _, mk := range frame.Markers {
		t.plot(frame.Player, mk.Position.X(), mk.Position.Z(), w, mapH, mk.Glyph, tcell.StyleDefault.Foreground(mk.Color))
	}
	t.plot(frame.Player, frame.Player.X(), frame.Player.Z(), w, mapH,
		playerGlyph, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	hud := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(frame.HUD) {
			r = rune(frame.HUD[x])
		}
		t.screen.SetContent(x, h-1, r, nil, hud)
	}

	t.screen.Show()
	t.dots = t.dots[:0]
}

// cell maps a world XZ position to a screen cell; ok is false off-map.
func (t *Terminal) cell(center mgl64.Vec3, x, z float64, w, h int) (int, int, bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	perCol := 2 * t.radius / float64(w)
	col := int(math.Floor(float64(w)/2 + (x-center.X())/perCol))
	row := int(math.Floor(float64(h)/2 - (z-center.Z())/(2*perCol)))
	if col < 0 || col >= w || row < 0 || row >= h {
		return 0, 0, false
	}
	return col, row, true
}

func (t *Terminal) plot(center mgl64.Vec3, x, z float64, w, h int, glyph rune, style tcell.Style) {
	if col, row, ok := t.cell(center, x, z, w, h); ok {
		t.screen.SetContent(col, row, glyph, nil, style)
	}
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.screen.Fini()
	t.log.Debug("terminal closed")
}
