package scene

import (
	"fmt"

	"prop-brush/internal/logging"
	"prop-brush/internal/mathutil"
)

// World is the scene a brush paints into: static surfaces plus props
// instantiated by earlier commits, with an undo history grouped per commit.
// It is not safe for concurrent use.
type World struct {
	surfaces []Caster
	props    []*Prop
	undo     []undoGroup
	next     Handle
}

type undoGroup struct {
	label   string
	handles []Handle
}

// NewWorld creates a world over the given static surfaces.
func NewWorld(surfaces ...Caster) *World {
	return &World{surfaces: surfaces, next: 1}
}

// AddSurface appends a static surface.
func (w *World) AddSurface(c Caster) {
	w.surfaces = append(w.surfaces, c)
}

// Surfaces returns the static surfaces.
func (w *World) Surfaces() []Caster {
	return w.surfaces
}

// Props returns the instantiated props in creation order.
func (w *World) Props() []*Prop {
	return w.props
}

// Terrain returns the first heightfield surface, if any.
func (w *World) Terrain() (*Heightfield, bool) {
	for _, s := range w.surfaces {
		if hf, ok := s.(*Heightfield); ok {
			return hf, true
		}
	}
	return nil, false
}

// CastRay returns the nearest hit over surfaces and props.
func (w *World) CastRay(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool) {
	var best Hit
	found := false
	consider := func(c Caster) {
		limit := maxDist
		if found {
			limit = best.Distance
		}
		if h, ok := c.CastRay(origin, dir, limit); ok && (!found || h.Distance < best.Distance) {
			best, found = h, true
		}
	}
	for _, s := range w.surfaces {
		consider(s)
	}
	for _, p := range w.props {
		consider(p)
	}
	return best, found
}

// Instantiate adds a prop and returns its handle. The prop name defaults to
// "<prefab>#<handle>".
func (w *World) Instantiate(pl Placement) (Handle, error) {
	if pl.Prefab == "" {
		return 0, fmt.Errorf("scene: instantiate: empty prefab reference")
	}
	h := w.next
	w.next++
	if pl.Name == "" {
		pl.Name = fmt.Sprintf("%s#%d", pl.Prefab, h)
	}
	if pl.Rotation == (mathutil.Quat{}) {
		pl.Rotation = mathutil.QuatIdentity()
	}
	w.props = append(w.props, &Prop{Handle: h, Placement: pl})
	logging.Logger().Debug("prop instantiated", "handle", h, "prefab", pl.Prefab,
		"x", pl.Position[0], "y", pl.Position[1], "z", pl.Position[2])
	return h, nil
}

// RecordUndo groups handles into one undo step named label.
func (w *World) RecordUndo(label string, handles []Handle) {
	if len(handles) == 0 {
		return
	}
	w.undo = append(w.undo, undoGroup{label: label, handles: append([]Handle(nil), handles...)})
}

// Undo removes the props of the most recent undo group. It returns the
// group's label and false when there is nothing to undo.
func (w *World) Undo() (string, bool) {
	if len(w.undo) == 0 {
		return "", false
	}
	g := w.undo[len(w.undo)-1]
	w.undo = w.undo[:len(w.undo)-1]

	drop := make(map[Handle]bool, len(g.handles))
	for _, h := range g.handles {
		drop[h] = true
	}
	kept := w.props[:0]
	for _, p := range w.props {
		if !drop[p.Handle] {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(w.props); i++ {
		w.props[i] = nil
	}
	w.props = kept
	logging.Logger().Debug("undo", "label", g.label, "removed", len(g.handles))
	return g.label, true
}

// UndoDepth returns the number of undo groups recorded.
func (w *World) UndoDepth() int {
	return len(w.undo)
}

// Snapshot returns a copy of the world that shares surfaces and props but
// not the prop list or undo history, so later edits to w do not show up in
// it. Props are never mutated after instantiation.
func (w *World) Snapshot() *World {
	return &World{
		surfaces: w.surfaces,
		props:    append([]*Prop(nil), w.props...),
		next:     w.next,
	}
}
