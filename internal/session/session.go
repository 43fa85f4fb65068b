// Package session drives the brush from a host's per-frame loop: it keeps
// the current sample batch, recomputes candidates for each aim ray and
// turns valid candidates into instantiation requests on commit.
//
// A Session is single-threaded. The host calls it from one goroutine; the
// RenderHints it returns are snapshots that may be handed to other
// goroutines.
package session

import (
	"math"
	"math/rand/v2"
	"time"

	"prop-brush/internal/brush"
	"prop-brush/internal/catalog"
	"prop-brush/internal/logging"
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
)

// State is the tool's activation state.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

const (
	MinRadius     = 1.0
	MinSpawnCount = 1

	// scrollStep is the relative radius change per scroll notch.
	scrollStep = 0.05

	// UndoLabel names the undo group recorded for each commit.
	UndoLabel = "Spawned Objects"
)

// Request asks the host to instantiate one item.
type Request struct {
	Item     *catalog.Item
	Position mathutil.Vec3
	Rotation mathutil.Quat
}

// Placement converts the request to a scene placement.
func (r Request) Placement() scene.Placement {
	p := scene.Placement{
		Prefab:   r.Item.Prefab,
		Position: r.Position,
		Rotation: r.Rotation,
		Radius:   r.Item.Footprint,
	}
	if r.Item.Height != nil {
		p.Height = *r.Item.Height
	} else {
		p.Height = 2 * r.Item.Footprint
	}
	return p
}

// Instantiator places committed requests into the host scene.
type Instantiator interface {
	Instantiate(p scene.Placement) (scene.Handle, error)
}

// UndoRecorder is implemented by instantiators that can group the props of
// one commit into a single undo step.
type UndoRecorder interface {
	RecordUndo(label string, handles []scene.Handle)
}

// FrameInput is what the host supplies every interaction frame.
type FrameInput struct {
	Aim      scene.Ray     // from the camera through the cursor
	CameraUp mathutil.Vec3 // keeps the brush tangent level with the view
}

// RenderHints is everything the host needs to draw one frame.
type RenderHints struct {
	State      State
	HasFrame   bool
	Frame      brush.TangentFrame
	Radius     float64
	Candidates []brush.Candidate
	Boundary   []mathutil.Vec3
}

// Option configures a Session.
type Option func(*Session)

// WithRand injects the random source used for sample generation.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithInstantiator sets where committed requests go.
func WithInstantiator(inst Instantiator) Option {
	return func(s *Session) { s.inst = inst }
}

// WithItems sets the initial item list.
func WithItems(items []*catalog.Item) Option {
	return func(s *Session) { s.items = items }
}

// WithRadius sets the initial brush radius.
func WithRadius(r float64) Option {
	return func(s *Session) { s.radius = r }
}

// WithSpawnCount sets the initial number of samples.
func WithSpawnCount(n int) Option {
	return func(s *Session) { s.count = n }
}

// WithCommitKey sets the key HandleKey commits on.
func WithCommitKey(k rune) Option {
	return func(s *Session) { s.commitKey = k }
}

// WithBoundaryDetail sets the number of outline samples.
func WithBoundaryDetail(n int) Option {
	return func(s *Session) { s.detail = n }
}

// Session is the placement state machine.
type Session struct {
	caster    scene.Caster
	inst      Instantiator
	rng       *rand.Rand
	state     State
	radius    float64
	count     int
	commitKey rune
	detail    int
	items     []*catalog.Item
	samples   []brush.DiscSample
	last      RenderHints
}

// New creates an idle session casting against caster. Defaults: radius 2,
// 8 samples, commit key 'p', 128 outline points, time-seeded randomness.
func New(caster scene.Caster, opts ...Option) *Session {
	s := &Session{
		caster:    caster,
		radius:    2,
		count:     8,
		commitKey: 'p',
		detail:    brush.DefaultBoundaryDetail,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	s.radius = clampRadius(s.radius)
	s.count = max(s.count, MinSpawnCount)
	s.regenerate()
	return s
}

func (s *Session) State() State { return s.state }

func (s *Session) Radius() float64 { return s.radius }

func (s *Session) SpawnCount() int { return s.count }

func (s *Session) CommitKey() rune { return s.commitKey }

func (s *Session) Items() []*catalog.Item { return s.items }

// Samples returns the current sample batch.
func (s *Session) Samples() []brush.DiscSample {
	return s.samples
}

// Activate arms the tool.
func (s *Session) Activate() {
	s.setState(Active)
}

// Deactivate disarms the tool and drops the last frame's candidates.
func (s *Session) Deactivate() {
	s.setState(Idle)
	s.last = RenderHints{State: Idle, Radius: s.radius}
}

// Toggle flips between Idle and Active and returns the new state.
func (s *Session) Toggle() State {
	if s.state == Active {
		s.Deactivate()
	} else {
		s.Activate()
	}
	return s.state
}

func (s *Session) setState(st State) {
	if s.state != st {
		logging.Logger().Debug("session state", "from", s.state, "to", st)
	}
	s.state = st
}

// SetRadius clamps r to MinRadius and regenerates the samples. NaN and
// infinite radii become MinRadius.
func (s *Session) SetRadius(r float64) {
	s.radius = clampRadius(r)
	s.regenerate()
}

func clampRadius(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return MinRadius
	}
	return max(r, MinRadius)
}

// ScrollRadius grows or shrinks the radius by 5% per notch in the direction
// of delta's sign.
func (s *Session) ScrollRadius(delta float64) {
	dir := mathutil.Sign(delta)
	if dir == 0 {
		return
	}
	s.SetRadius(s.radius * (1 + dir*scrollStep))
}

// SetSpawnCount clamps n to MinSpawnCount and regenerates the samples.
func (s *Session) SetSpawnCount(n int) {
	s.count = max(n, MinSpawnCount)
	s.regenerate()
}

// SetItems replaces the active item list and regenerates the samples.
func (s *Session) SetItems(items []*catalog.Item) {
	s.items = items
	s.regenerate()
}

// regenerate draws a new batch. When the last update had a frame its
// candidates are recomputed on that frame, so they always come from the
// current batch, radius and items.
func (s *Session) regenerate() {
	s.samples = brush.Generate(s.rng, s.count, s.items)
	logging.Logger().Debug("samples regenerated", "count", len(s.samples), "items", len(s.items), "radius", s.radius)
	if s.last.HasFrame {
		s.UpdateFrame(s.last.Frame)
	}
}

// Update recomputes the frame from the aim ray. Idle sessions and aim rays
// that miss produce hints without a frame.
func (s *Session) Update(in FrameInput) RenderHints {
	if s.state != Active {
		s.last = RenderHints{State: s.state, Radius: s.radius}
		return s.last
	}
	hit, ok := scene.Cast(s.caster, in.Aim, scene.Unbounded)
	if !ok {
		s.last = RenderHints{State: s.state, Radius: s.radius}
		return s.last
	}
	return s.UpdateFrame(brush.FrameFromHit(hit.Point, hit.Normal, in.CameraUp))
}

// UpdateFrame computes candidates, validity and the outline for f. It runs
// regardless of state so hosts and tests can drive a known frame.
func (s *Session) UpdateFrame(f brush.TangentFrame) RenderHints {
	cands := make([]brush.Candidate, 0, len(s.samples))
	for _, sm := range s.samples {
		c, ok := brush.Project(f, sm, s.radius, s.count, s.caster)
		if !ok {
			continue
		}
		c.Valid = brush.Validate(c, s.caster)
		cands = append(cands, c)
	}
	s.last = RenderHints{
		State:      s.state,
		HasFrame:   true,
		Frame:      f,
		Radius:     s.radius,
		Candidates: cands,
		Boundary:   brush.TraceBoundary(f, s.radius, s.detail, s.caster),
	}
	return s.last
}

// Last returns the hints from the most recent update.
func (s *Session) Last() RenderHints {
	return s.last
}

// Commit emits a request for every valid candidate of the last update that
// has an item and hands them to the instantiator. Idle sessions commit
// nothing. When there were any candidates the samples are regenerated and
// the candidates cleared, so placed items are not offered again.
func (s *Session) Commit() []Request {
	reqs := []Request{}
	if s.state != Active || len(s.last.Candidates) == 0 {
		return reqs
	}
	for _, c := range s.last.Candidates {
		if !c.Valid || c.Sample.Item == nil {
			continue
		}
		reqs = append(reqs, Request{Item: c.Sample.Item, Position: c.Position, Rotation: c.Rotation})
	}

	log := logging.Logger()
	if s.inst != nil && len(reqs) > 0 {
		handles := make([]scene.Handle, 0, len(reqs))
		for _, r := range reqs {
			h, err := s.inst.Instantiate(r.Placement())
			if err != nil {
				log.Warn("instantiate failed", "prefab", r.Item.Prefab, "err", err)
				continue
			}
			handles = append(handles, h)
		}
		if rec, ok := s.inst.(UndoRecorder); ok {
			rec.RecordUndo(UndoLabel, handles)
		}
	}
	log.Info("commit", "requests", len(reqs), "candidates", len(s.last.Candidates))

	s.regenerate()
	s.last.Candidates = nil
	return reqs
}

// HandleKey commits when key is the commit key and the tool is active. It
// reports whether the key was consumed.
func (s *Session) HandleKey(key rune) bool {
	if s.state != Active || key != s.commitKey {
		return false
	}
	s.Commit()
	return true
}
