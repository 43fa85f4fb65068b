package stroke

import (
	"fmt"

	"prop-brush/internal/catalog"
	"prop-brush/internal/logging"
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
	"prop-brush/internal/session"
)

// Frame is a preview snapshot taken after a step.
type Frame struct {
	Step  int
	Label string
	World *scene.World
	Hints session.RenderHints
}

// Result summarizes a replay.
type Result struct {
	Frames   []Frame
	Commits  int
	Requests int
	Undone   int
}

// Replay activates s and applies every step of sc in order. Toggles flip
// entries of sel and push the selection into the session. Commits go to
// whatever instantiator s was built with; Undo steps pop w's undo stack.
func Replay(s *session.Session, w *scene.World, sel *catalog.Selection, sc Script) (*Result, error) {
	up := mathutil.Forward
	if sc.CameraUp != nil {
		up = *sc.CameraUp
	}
	log := logging.Logger()
	res := &Result{}

	s.Activate()
	for i, st := range sc.Steps {
		if len(st.Toggle) > 0 {
			if sel == nil {
				return nil, fmt.Errorf("stroke: step %d: toggle without a catalog", i)
			}
			for _, idx := range st.Toggle {
				if idx < 0 || idx >= sel.Len() {
					return nil, fmt.Errorf("stroke: step %d: item index %d out of range [0,%d)", i, idx, sel.Len())
				}
				sel.Toggle(idx)
			}
			s.SetItems(sel.Selected())
		}
		if st.Radius != 0 {
			s.SetRadius(st.Radius)
		}
		if st.Count != 0 {
			s.SetSpawnCount(st.Count)
		}
		if st.Scroll != 0 {
			s.ScrollRadius(st.Scroll)
		}
		if st.Deactivate {
			s.Deactivate()
		}
		if st.Activate {
			s.Activate()
		}
		if st.Aim != nil {
			s.Update(session.FrameInput{
				Aim:      scene.Ray{Origin: st.Aim.Origin, Dir: st.Aim.Dir.Normalize()},
				CameraUp: up,
			})
		}
		// Preview before commit so the frame shows the candidates that get placed.
		if st.Preview {
			res.Frames = append(res.Frames, Frame{
				Step:  i,
				Label: st.Label,
				World: w.Snapshot(),
				Hints: s.Last(),
			})
		}
		if st.Key != "" {
			r := []rune(st.Key)
			if len(r) != 1 {
				return nil, fmt.Errorf("stroke: step %d: key %q is not a single character", i, st.Key)
			}
			before := len(w.Props())
			if s.HandleKey(r[0]) {
				res.Commits++
				res.Requests += len(w.Props()) - before
			}
		}
		if st.Commit {
			reqs := s.Commit()
			res.Commits++
			res.Requests += len(reqs)
		}
		if st.Undo {
			if label, ok := w.Undo(); ok {
				res.Undone++
				log.Debug("undo", "step", i, "label", label)
			}
		}
	}
	return res, nil
}
