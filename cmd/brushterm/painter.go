package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"prop-brush/internal/catalog"
	"prop-brush/internal/logging"
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
	"prop-brush/internal/session"
)

const (
	statusRows = 2
	aimHeight  = 100 // aim rays start this far above the highest terrain point
)

var (
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleProp      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleBoundary  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleValid     = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleInvalid   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	stylePlacehold = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleCursor    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Painter is a top-down terminal view over the world. Each screen cell maps
// to a patch of the XY plane; the cursor cell is where the aim ray comes
// straight down.
type Painter struct {
	screen tcell.Screen
	world  *scene.World
	sess   *session.Session
	sel    *catalog.Selection
	audio  *blipper

	lo, hi mathutil.Vec3 // viewed region

	width, height    int
	cursorX, cursorY int

	hints   session.RenderHints
	message string
}

func newPainter(screen tcell.Screen, world *scene.World, sess *session.Session, sel *catalog.Selection, lo, hi mathutil.Vec3) *Painter {
	p := &Painter{
		screen: screen,
		world:  world,
		sess:   sess,
		sel:    sel,
		lo:     lo,
		hi:     hi,
	}
	p.width, p.height = screen.Size()
	p.cursorX = p.width / 2
	p.cursorY = p.mapRows() / 2
	p.update()
	return p
}

func (p *Painter) mapRows() int {
	return max(p.height-statusRows, 1)
}

// cellToWorld returns the XY centre of a map cell. Row 0 is the far (max Y)
// edge.
func (p *Painter) cellToWorld(cx, cy int) (float64, float64) {
	w, h := max(p.width, 1), p.mapRows()
	x := p.lo[0] + (float64(cx)+0.5)/float64(w)*(p.hi[0]-p.lo[0])
	y := p.hi[1] - (float64(cy)+0.5)/float64(h)*(p.hi[1]-p.lo[1])
	return x, y
}

// worldToCell maps a world point to its cell. ok is false off the map.
func (p *Painter) worldToCell(pt mathutil.Vec3) (int, int, bool) {
	sx, sy := p.hi[0]-p.lo[0], p.hi[1]-p.lo[1]
	if sx <= 0 || sy <= 0 {
		return 0, 0, false
	}
	fx := (pt[0] - p.lo[0]) / sx * float64(p.width)
	fy := (p.hi[1] - pt[1]) / sy * float64(p.mapRows())
	if fx < 0 || fy < 0 {
		return 0, 0, false
	}
	cx, cy := int(fx), int(fy)
	if cx >= p.width || cy >= p.mapRows() {
		return 0, 0, false
	}
	return cx, cy, true
}

func (p *Painter) aim() session.FrameInput {
	x, y := p.cellToWorld(p.cursorX, p.cursorY)
	return session.FrameInput{
		Aim:      scene.Ray{Origin: mathutil.Vec3{x, y, p.hi[2] + aimHeight}, Dir: mathutil.Vec3{0, 0, -1}},
		CameraUp: mathutil.Forward,
	}
}

func (p *Painter) update() {
	p.hints = p.sess.Update(p.aim())
}

func (p *Painter) moveCursor(x, y int) {
	p.cursorX = min(max(x, 0), p.width-1)
	p.cursorY = min(max(y, 0), p.mapRows()-1)
}

func (p *Painter) handleResize() {
	p.width, p.height = p.screen.Size()
	p.moveCursor(p.cursorX, p.cursorY)
}

// handleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (p *Painter) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			p.moveCursor(p.cursorX, p.cursorY-1)
		case tcell.KeyDown:
			p.moveCursor(p.cursorX, p.cursorY+1)
		case tcell.KeyLeft:
			p.moveCursor(p.cursorX-1, p.cursorY)
		case tcell.KeyRight:
			p.moveCursor(p.cursorX+1, p.cursorY)
		case tcell.KeyRune:
			if ev.Rune() == 'q' && ev.Rune() != p.sess.CommitKey() {
				return false
			}
			p.handleRune(ev.Rune())
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		if y < p.mapRows() {
			p.moveCursor(x, y)
		}
		switch {
		case ev.Buttons()&tcell.WheelUp != 0:
			p.sess.ScrollRadius(1)
		case ev.Buttons()&tcell.WheelDown != 0:
			p.sess.ScrollRadius(-1)
		}

	case *tcell.EventResize:
		p.handleResize()
		p.screen.Sync()
	}

	p.update()
	return true
}

func (p *Painter) handleRune(r rune) {
	if r == p.sess.CommitKey() {
		p.commit()
		return
	}
	switch {
	case r == 'a':
		p.message = "tool " + p.sess.Toggle().String()
	case r == '+' || r == '=':
		p.sess.ScrollRadius(1)
	case r == '-':
		p.sess.ScrollRadius(-1)
	case r == '[':
		p.sess.SetSpawnCount(p.sess.SpawnCount() - 1)
	case r == ']':
		p.sess.SetSpawnCount(p.sess.SpawnCount() + 1)
	case r == 'u':
		if label, ok := p.world.Undo(); ok {
			p.message = "undo " + label
		} else {
			p.message = "nothing to undo"
		}
	case r >= '1' && r <= '9':
		idx := int(r - '1')
		if idx < p.sel.Len() {
			on := p.sel.Toggle(idx)
			p.sess.SetItems(p.sel.Selected())
			p.message = fmt.Sprintf("%s %s", p.sel.Item(idx).Name, onOff(on))
		}
	}
}

func (p *Painter) commit() {
	before := len(p.world.Props())
	if !p.sess.HandleKey(p.sess.CommitKey()) {
		p.message = "tool is idle (a to activate)"
		return
	}
	placed := len(p.world.Props()) - before
	p.message = fmt.Sprintf("placed %d", placed)
	logging.Logger().Info("painted", "placed", placed, "total", len(p.world.Props()))
	p.audio.commit(placed)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (p *Painter) draw() {
	p.screen.Clear()
	p.drawTerrain()

	for _, pr := range p.world.Props() {
		p.plot(pr.Position, 'o', styleProp)
	}
	for _, b := range p.hints.Boundary {
		p.plot(b, '·', styleBoundary)
	}
	for _, c := range p.hints.Candidates {
		switch {
		case c.Sample.Item == nil:
			p.plot(c.Position, '.', stylePlacehold)
		case c.Valid:
			p.plot(c.Position, '+', styleValid)
		default:
			p.plot(c.Position, 'x', styleInvalid)
		}
	}

	mainc, _, _, _ := p.screen.GetContent(p.cursorX, p.cursorY)
	if mainc == 0 {
		mainc = ' '
	}
	p.screen.SetContent(p.cursorX, p.cursorY, mainc, nil, styleCursor)

	p.drawStatus()
	p.screen.Show()
}

// drawTerrain shades every map cell by terrain height.
func (p *Painter) drawTerrain() {
	hf, ok := p.world.Terrain()
	span := p.hi[2] - p.lo[2]
	for cy := 0; cy < p.mapRows(); cy++ {
		for cx := 0; cx < p.width; cx++ {
			shade := int32(48)
			if ok {
				x, y := p.cellToWorld(cx, cy)
				if z, in := hf.HeightAt(x, y); in && span > 0 {
					shade = 24 + int32((z-p.lo[2])/span*120)
				}
			}
			bg := tcell.NewRGBColor(shade/2, shade, shade/2)
			p.screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault.Background(bg))
		}
	}
}

// plot draws r at pt, keeping the cell's background.
func (p *Painter) plot(pt mathutil.Vec3, r rune, st tcell.Style) {
	cx, cy, ok := p.worldToCell(pt)
	if !ok {
		return
	}
	_, _, old, _ := p.screen.GetContent(cx, cy)
	_, bg, _ := old.Decompose()
	p.screen.SetContent(cx, cy, r, nil, st.Background(bg))
}

func (p *Painter) drawStatus() {
	var items strings.Builder
	for i := 0; i < p.sel.Len() && i < 9; i++ {
		mark := " "
		if p.sel.Enabled(i) {
			mark = "*"
		}
		fmt.Fprintf(&items, " [%d]%s%s", i+1, p.sel.Item(i).Name, mark)
	}
	valid := 0
	for _, c := range p.hints.Candidates {
		if c.Valid && c.Sample.Item != nil {
			valid++
		}
	}
	line1 := fmt.Sprintf(" %s  r=%.2f n=%d  valid %d/%d  props %d  undo %d |%s",
		strings.ToUpper(p.sess.State().String()), p.sess.Radius(), p.sess.SpawnCount(),
		valid, len(p.hints.Candidates), len(p.world.Props()), p.world.UndoDepth(), items.String())
	line2 := fmt.Sprintf(" a:tool %c:commit +/-:radius [/]:count 1-9:items u:undo q:quit  %s",
		p.sess.CommitKey(), p.message)
	p.printRow(p.height-2, line1)
	p.printRow(p.height-1, line2)
}

func (p *Painter) printRow(y int, s string) {
	if y < 0 {
		return
	}
	x := 0
	for _, r := range s {
		if x >= p.width {
			break
		}
		p.screen.SetContent(x, y, r, nil, styleStatus)
		x++
	}
	for ; x < p.width; x++ {
		p.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
}

func (p *Painter) run() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- p.screen.PollEvent()
		}
	}()

	p.draw()
	for {
		select {
		case ev := <-eventChan:
			if ev == nil {
				return
			}
			if !p.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			p.draw()
		}
	}
}
