package session

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"prop-brush/internal/brush"
	"prop-brush/internal/catalog"
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 7))
}

func height(h float64) *float64 { return &h }

var downAim = FrameInput{
	Aim:      scene.Ray{Origin: mathutil.Vec3{0, 0, 50}, Dir: mathutil.Vec3{0, 0, -1}},
	CameraUp: mathutil.Forward,
}

type fakeInstantiator struct {
	placed []scene.Placement
	groups [][]scene.Handle
	fail   string
}

func (f *fakeInstantiator) Instantiate(p scene.Placement) (scene.Handle, error) {
	if p.Prefab == f.fail {
		return 0, errors.New("boom")
	}
	f.placed = append(f.placed, p)
	return scene.Handle(len(f.placed)), nil
}

func (f *fakeInstantiator) RecordUndo(label string, handles []scene.Handle) {
	f.groups = append(f.groups, handles)
}

func TestBlockedSingleItemCommitsNothing(t *testing.T) {
	itemA := &catalog.Item{Name: "itemA", Prefab: "props/a", Height: height(1), Footprint: 0.5}
	// Every ray hits (0,0,-1) facing +Z, including the clearance check.
	always := scene.CastFunc(func(o, d mathutil.Vec3, maxDist float64) (scene.Hit, bool) {
		return scene.Hit{Point: mathutil.Vec3{0, 0, -1}, Normal: mathutil.Up, Distance: 0.5, Object: "wall"}, true
	})
	inst := &fakeInstantiator{}
	s := New(always,
		WithItems([]*catalog.Item{itemA}),
		WithSpawnCount(1),
		WithRadius(2),
		WithRand(seeded(1)),
		WithInstantiator(inst),
	)
	s.Activate()

	hints := s.UpdateFrame(brush.IdentityFrame(mathutil.Vec3{}))
	if len(hints.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(hints.Candidates))
	}
	if hints.Candidates[0].Valid {
		t.Fatal("candidate should be invalid: clearance ray hits within the item height")
	}
	if hints.Candidates[0].Position != (mathutil.Vec3{}) {
		t.Errorf("single spawn should snap to the frame origin, got %v", hints.Candidates[0].Position)
	}

	if reqs := s.Commit(); len(reqs) != 0 {
		t.Fatalf("commit emitted %d requests, want 0", len(reqs))
	}
	if len(inst.placed) != 0 {
		t.Errorf("instantiator called %d times", len(inst.placed))
	}
}

func TestUpdateIdleAndMiss(t *testing.T) {
	s := New(scene.Miss, WithRand(seeded(2)))
	if h := s.Update(downAim); h.HasFrame || h.State != Idle {
		t.Fatalf("idle update = %+v", h)
	}

	s.Activate()
	h := s.Update(downAim)
	if h.HasFrame || len(h.Candidates) != 0 || len(h.Boundary) != 0 {
		t.Fatalf("missed aim should produce no frame, got %+v", h)
	}
	if reqs := s.Commit(); reqs == nil || len(reqs) != 0 {
		t.Fatalf("commit after miss = %v, want empty slice", reqs)
	}
}

func TestClamping(t *testing.T) {
	s := New(scene.Miss, WithRadius(0.2), WithSpawnCount(-4), WithRand(seeded(3)))
	if s.Radius() != MinRadius || s.SpawnCount() != MinSpawnCount {
		t.Fatalf("New did not clamp: radius %v count %d", s.Radius(), s.SpawnCount())
	}
	s.SetRadius(-10)
	s.SetSpawnCount(0)
	if s.Radius() != 1 || s.SpawnCount() != 1 {
		t.Fatalf("setters did not clamp: radius %v count %d", s.Radius(), s.SpawnCount())
	}
	if len(s.Samples()) != 1 {
		t.Fatalf("samples = %d, want 1", len(s.Samples()))
	}
}

func TestParameterChangesRegenerate(t *testing.T) {
	s := New(scene.Miss, WithRand(seeded(4)), WithSpawnCount(5))
	before := s.Samples()

	s.SetSpawnCount(12)
	if len(s.Samples()) != 12 {
		t.Fatalf("samples = %d, want 12", len(s.Samples()))
	}

	s.SetSpawnCount(5)
	mid := s.Samples()
	if reflect.DeepEqual(before, mid) {
		t.Error("batch should be fully regenerated")
	}

	s.SetRadius(4)
	if reflect.DeepEqual(mid, s.Samples()) {
		t.Error("radius change should regenerate")
	}

	item := &catalog.Item{Name: "x", Prefab: "props/x"}
	s.SetItems([]*catalog.Item{item})
	for _, sm := range s.Samples() {
		if sm.Item != item {
			t.Fatal("catalog change should regenerate with the new items")
		}
	}
}

func TestScrollRadius(t *testing.T) {
	s := New(scene.Miss, WithRadius(2), WithRand(seeded(5)))
	s.ScrollRadius(3)
	if math.Abs(s.Radius()-2.1) > 1e-12 {
		t.Fatalf("scroll up: radius %v, want 2.1", s.Radius())
	}
	s.ScrollRadius(-0.5)
	if math.Abs(s.Radius()-2.1*0.95) > 1e-12 {
		t.Fatalf("scroll down: radius %v", s.Radius())
	}
	r := s.Radius()
	s.ScrollRadius(0)
	if s.Radius() != r {
		t.Fatal("zero scroll changed the radius")
	}
	s.SetRadius(1)
	s.ScrollRadius(-1)
	if s.Radius() != MinRadius {
		t.Fatalf("scroll below minimum: %v", s.Radius())
	}
}

func TestCommitIntoWorldAndUndo(t *testing.T) {
	world := scene.NewWorld(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up))
	rock := &catalog.Item{Name: "rock", Prefab: "props/rock", Height: height(1), Footprint: 0.3}
	s := New(world,
		WithItems([]*catalog.Item{rock}),
		WithSpawnCount(4),
		WithRadius(3),
		WithRand(seeded(6)),
		WithInstantiator(world),
	)
	s.Activate()

	h := s.Update(downAim)
	if !h.HasFrame || len(h.Candidates) != 4 {
		t.Fatalf("hints = %+v", h)
	}
	if len(h.Boundary) != brush.DefaultBoundaryDetail {
		t.Fatalf("boundary has %d points", len(h.Boundary))
	}
	for _, c := range h.Candidates {
		if !c.Valid {
			t.Fatalf("open ground candidate invalid: %+v", c)
		}
		if c.Position.Sub(h.Frame.Origin).Len() > s.Radius()+1e-9 {
			t.Fatalf("candidate %v outside the brush", c.Position)
		}
	}

	before := s.Samples()
	reqs := s.Commit()
	if len(reqs) != 4 {
		t.Fatalf("commit emitted %d requests, want 4", len(reqs))
	}
	if len(world.Props()) != 4 || world.UndoDepth() != 1 {
		t.Fatalf("world has %d props, %d undo groups", len(world.Props()), world.UndoDepth())
	}
	if reflect.DeepEqual(before, s.Samples()) {
		t.Error("commit should regenerate the samples")
	}
	if again := s.Commit(); len(again) != 0 {
		t.Errorf("second commit without update placed %d items", len(again))
	}

	// Painting exactly where the props stand is blocked by them.
	for _, p := range world.Props() {
		c := brush.Candidate{Position: p.Position, Rotation: p.Rotation, Sample: brush.DiscSample{Item: rock}}
		if brush.Validate(c, world) {
			t.Fatalf("candidate inside prop %v validated", p.Name)
		}
	}

	if label, ok := world.Undo(); !ok || label != UndoLabel {
		t.Fatalf("Undo = %q %v", label, ok)
	}
	if len(world.Props()) != 0 {
		t.Fatalf("undo left %d props", len(world.Props()))
	}
}

func TestMarkersAreNeverCommitted(t *testing.T) {
	inst := &fakeInstantiator{}
	s := New(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up),
		WithSpawnCount(6), WithRand(seeded(7)), WithInstantiator(inst))
	s.Activate()
	h := s.Update(downAim)
	if len(h.Candidates) != 6 {
		t.Fatalf("got %d marker candidates, want 6", len(h.Candidates))
	}
	if reqs := s.Commit(); len(reqs) != 0 || len(inst.placed) != 0 {
		t.Fatalf("markers committed: %v", reqs)
	}
}

func TestInstantiateFailureIsSkipped(t *testing.T) {
	good := &catalog.Item{Name: "good", Prefab: "props/good", Footprint: 0.5}
	bad := &catalog.Item{Name: "bad", Prefab: "props/bad", Footprint: 0.5}
	inst := &fakeInstantiator{fail: "props/bad"}
	s := New(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up),
		WithItems([]*catalog.Item{good, bad}), WithSpawnCount(20), WithRand(seeded(8)), WithInstantiator(inst))
	s.Activate()
	s.Update(downAim)
	reqs := s.Commit()

	goods := 0
	for _, r := range reqs {
		if r.Item == good {
			goods++
		}
	}
	if goods == 0 || goods == len(reqs) {
		t.Fatalf("seed should mix items: %d good of %d", goods, len(reqs))
	}
	if len(inst.placed) != goods {
		t.Errorf("placed %d, want %d", len(inst.placed), goods)
	}
	if len(inst.groups) != 1 || len(inst.groups[0]) != goods {
		t.Errorf("undo groups = %v", inst.groups)
	}
	if p := inst.placed[0]; p.Height != 1 || p.Radius != 0.5 {
		t.Errorf("item without height should occupy 2×footprint, got %+v", p)
	}
}

func TestHandleKeyAndToggle(t *testing.T) {
	inst := &fakeInstantiator{}
	item := &catalog.Item{Name: "tree", Prefab: "props/tree", Footprint: 0.5}
	s := New(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up),
		WithItems([]*catalog.Item{item}), WithSpawnCount(3), WithCommitKey('k'),
		WithRand(seeded(9)), WithInstantiator(inst))

	if s.HandleKey('k') {
		t.Fatal("idle session consumed the commit key")
	}
	if s.Toggle() != Active {
		t.Fatal("toggle should activate")
	}
	s.Update(downAim)
	if s.HandleKey('p') {
		t.Fatal("wrong key consumed")
	}
	if !s.HandleKey('k') || len(inst.placed) != 3 {
		t.Fatalf("commit key placed %d items, want 3", len(inst.placed))
	}
	if s.Toggle() != Idle {
		t.Fatal("toggle should deactivate")
	}
	if h := s.Last(); h.HasFrame || len(h.Candidates) != 0 {
		t.Error("deactivation should drop the frame")
	}
}

func TestSessionsWithSameSeedAgree(t *testing.T) {
	world := scene.NewWorld(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up))
	items := []*catalog.Item{{Name: "a", Prefab: "a"}, {Name: "b", Prefab: "b"}}
	run := func() []Request {
		s := New(world, WithItems(items), WithSpawnCount(5), WithRand(seeded(10)))
		s.Activate()
		s.Update(downAim)
		return s.Commit()
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different commits")
	}
}

func TestCommitFollowsSettersWithoutUpdate(t *testing.T) {
	a := &catalog.Item{Name: "a", Prefab: "props/a", Footprint: 0.3}
	b := &catalog.Item{Name: "b", Prefab: "props/b", Footprint: 0.3}
	inst := &fakeInstantiator{}
	s := New(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up),
		WithItems([]*catalog.Item{a}),
		WithSpawnCount(8),
		WithRadius(3),
		WithRand(seeded(11)),
		WithInstantiator(inst),
	)
	s.Activate()
	if h := s.UpdateFrame(brush.IdentityFrame(mathutil.Vec3{})); len(h.Candidates) != 8 {
		t.Fatalf("got %d candidates, want 8", len(h.Candidates))
	}

	s.SetSpawnCount(1)
	s.SetItems([]*catalog.Item{b})
	if h := s.Last(); len(h.Candidates) != 1 || h.Candidates[0].Sample.Item != b {
		t.Fatalf("hints not refreshed after setters: %d candidates", len(h.Candidates))
	}

	reqs := s.Commit()
	if len(reqs) != 1 {
		t.Fatalf("commit emitted %d requests, want 1", len(reqs))
	}
	if reqs[0].Item != b {
		t.Errorf("committed %q, want the current item b", reqs[0].Item.Name)
	}
	if reqs[0].Position != (mathutil.Vec3{}) {
		t.Errorf("single spawn should snap to the frame origin, got %v", reqs[0].Position)
	}
}

func TestSetRadiusRefreshesCandidates(t *testing.T) {
	s := New(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up),
		WithSpawnCount(16), WithRadius(1), WithRand(seeded(12)))
	s.Activate()
	s.UpdateFrame(brush.IdentityFrame(mathutil.Vec3{}))
	s.SetRadius(10)

	h := s.Last()
	if h.Radius != 10 {
		t.Fatalf("hints radius = %v, want 10", h.Radius)
	}
	far := 0
	for _, c := range h.Candidates {
		if c.Position.Len() > 1+1e-9 {
			far++
		}
	}
	if far == 0 {
		t.Error("candidates still lie within the old radius")
	}
}

func TestIdleSessionDoesNotCommit(t *testing.T) {
	item := &catalog.Item{Name: "a", Prefab: "props/a", Footprint: 0.3}
	inst := &fakeInstantiator{}
	s := New(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up),
		WithItems([]*catalog.Item{item}), WithSpawnCount(4), WithRand(seeded(13)), WithInstantiator(inst))

	if h := s.UpdateFrame(brush.IdentityFrame(mathutil.Vec3{})); len(h.Candidates) != 4 {
		t.Fatalf("got %d candidates, want 4", len(h.Candidates))
	}
	if reqs := s.Commit(); reqs == nil || len(reqs) != 0 || len(inst.placed) != 0 {
		t.Fatalf("idle session committed %d requests", len(reqs))
	}
}

func TestNonFiniteRadiusClamps(t *testing.T) {
	for _, r := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		s := New(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up), WithRadius(r), WithRand(seeded(14)))
		if s.Radius() != MinRadius {
			t.Errorf("New with radius %v: got %v", r, s.Radius())
		}
		s.SetRadius(5)
		s.SetRadius(r)
		if s.Radius() != MinRadius {
			t.Errorf("SetRadius(%v) = %v, want %v", r, s.Radius(), MinRadius)
		}
	}
}
