package main

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"prop-brush/internal/catalog"
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
	"prop-brush/internal/session"
)

func newTestPainter(t *testing.T, opts ...session.Option) (*Painter, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	world := scene.NewWorld(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up))
	sess := session.New(world, append([]session.Option{
		session.WithInstantiator(world),
		session.WithRand(rand.New(rand.NewPCG(3, 4))),
		session.WithRadius(4),
		session.WithSpawnCount(4),
	}, opts...)...)
	sel := catalog.NewSelection([]catalog.Item{
		{Name: "rock", Prefab: "props/rock", Footprint: 0.3},
		{Name: "bush", Prefab: "props/bush", Footprint: 0.3},
	})
	lo := mathutil.Vec3{-flatExtent, -flatExtent, 0}
	hi := mathutil.Vec3{flatExtent, flatExtent, 0}
	return newPainter(screen, world, sess, sel, lo, hi), screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func rowText(s tcell.SimulationScreen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestCellWorldRoundTrip(t *testing.T) {
	p, _ := newTestPainter(t)
	for _, c := range [][2]int{{0, 0}, {40, 11}, {79, 21}} {
		x, y := p.cellToWorld(c[0], c[1])
		cx, cy, ok := p.worldToCell(mathutil.Vec3{x, y, 0})
		if !ok || cx != c[0] || cy != c[1] {
			t.Errorf("cell %v -> (%.2f, %.2f) -> (%d, %d, %v)", c, x, y, cx, cy, ok)
		}
	}
	if _, _, ok := p.worldToCell(mathutil.Vec3{flatExtent + 1, 0, 0}); ok {
		t.Error("point east of the map should be off screen")
	}
}

func TestPaintCommitUndo(t *testing.T) {
	p, _ := newTestPainter(t)

	if p.hints.HasFrame {
		t.Fatal("idle tool should have no frame")
	}
	p.handleEvent(key('a'))
	if p.sess.State() != session.Active {
		t.Fatalf("state = %v after 'a'", p.sess.State())
	}
	if !p.hints.HasFrame || len(p.hints.Candidates) != 4 {
		t.Fatalf("active hints: frame %v, %d candidates", p.hints.HasFrame, len(p.hints.Candidates))
	}

	// No items enabled yet: placeholders only.
	p.handleEvent(key('p'))
	if n := len(p.world.Props()); n != 0 {
		t.Fatalf("placeholder commit placed %d props", n)
	}

	p.handleEvent(key('1'))
	if !p.sel.Enabled(0) || len(p.sess.Items()) != 1 {
		t.Fatalf("item 1 not enabled")
	}
	p.handleEvent(key('p'))
	if n := len(p.world.Props()); n != 4 {
		t.Fatalf("commit placed %d props, want 4", n)
	}
	if !strings.Contains(p.message, "placed 4") {
		t.Errorf("message = %q", p.message)
	}

	p.handleEvent(key('u'))
	if n := len(p.world.Props()); n != 0 {
		t.Errorf("props after undo = %d", n)
	}
}

func TestBrushKeysAndWheel(t *testing.T) {
	p, _ := newTestPainter(t)
	p.handleEvent(key('a'))

	p.handleEvent(key('+'))
	if got := p.sess.Radius(); math.Abs(got-4.2) > 1e-9 {
		t.Errorf("radius after + = %v, want 4.2", got)
	}
	p.handleEvent(key('-'))
	if got := p.sess.Radius(); math.Abs(got-3.99) > 1e-9 {
		t.Errorf("radius after - = %v, want 3.99", got)
	}

	p.handleEvent(key(']'))
	p.handleEvent(key(']'))
	p.handleEvent(key('['))
	if got := p.sess.SpawnCount(); got != 5 {
		t.Errorf("spawn count = %d, want 5", got)
	}

	p.handleEvent(tcell.NewEventMouse(10, 5, tcell.WheelDown, tcell.ModNone))
	if p.cursorX != 10 || p.cursorY != 5 {
		t.Errorf("cursor = (%d, %d), want (10, 5)", p.cursorX, p.cursorY)
	}
	if got := p.sess.Radius(); got >= 3.99 {
		t.Errorf("wheel down should shrink the radius, got %v", got)
	}

	p.handleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	p.handleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if p.cursorX != 9 || p.cursorY != 4 {
		t.Errorf("cursor = (%d, %d), want (9, 4)", p.cursorX, p.cursorY)
	}

	if p.handleEvent(key('q')) {
		t.Error("q should quit")
	}
	if p.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should quit")
	}
}

func TestCursorClampsToMap(t *testing.T) {
	p, _ := newTestPainter(t)
	for i := 0; i < 40; i++ {
		p.handleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	}
	if p.cursorY != p.mapRows()-1 {
		t.Errorf("cursorY = %d, want %d", p.cursorY, p.mapRows()-1)
	}
}

func TestDrawStatusLine(t *testing.T) {
	p, screen := newTestPainter(t)
	p.handleEvent(key('a'))
	p.handleEvent(key('2'))
	p.draw()

	status := rowText(screen, 22)
	if !strings.Contains(status, "ACTIVE") || !strings.Contains(status, "[2]bush*") {
		t.Errorf("status line = %q", status)
	}
	help := rowText(screen, 23)
	if !strings.Contains(help, "p:commit") || !strings.Contains(help, "bush on") {
		t.Errorf("help line = %q", help)
	}

	found := false
	for y := 0; y < p.mapRows() && !found; y++ {
		found = strings.ContainsRune(rowText(screen, y), '+')
	}
	if !found {
		t.Error("no valid candidate marker drawn")
	}
}

func TestCommitKeyOverridesQuit(t *testing.T) {
	p, _ := newTestPainter(t, session.WithCommitKey('q'))
	p.handleEvent(key('a'))
	p.handleEvent(key('1'))

	if !p.handleEvent(key('q')) {
		t.Fatal("q is the commit key and should not quit")
	}
	if n := len(p.world.Props()); n != 4 {
		t.Errorf("commit on q placed %d props, want 4", n)
	}
	if p.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should still quit")
	}
}
