package brush

import (
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
)

// SurfaceOffset lifts projection rays above the frame plane so they do not
// start inside the surface the frame was derived from.
const SurfaceOffset = 1.5

// Candidate is a fully computed placement pose.
type Candidate struct {
	Position mathutil.Vec3
	Rotation mathutil.Quat
	Sample   DiscSample
	Valid    bool
}

// Up returns the candidate's local +Y axis in world space.
func (c Candidate) Up() mathutil.Vec3 {
	return c.Rotation.Rotate(mathutil.Forward)
}

// DiscRay returns the downward ray for disc point p on a brush of the given
// radius.
func DiscRay(f TangentFrame, p mathutil.Vec2, radius float64) scene.Ray {
	m := f.Matrix()
	origin := m.MulPoint(mathutil.Vec3{p[0] * radius, p[1] * radius, SurfaceOffset})
	return scene.Ray{Origin: origin, Dir: m.MulVector(mathutil.Vec3{0, 0, -1})}
}

// Project casts the sample's ray onto the surface. It reports false on a
// miss. The rotation aims local +Y along the hit normal, spun around it by
// the sample angle. With spawnCount below 2 the position snaps to the frame
// origin instead of the hit point.
func Project(f TangentFrame, s DiscSample, radius float64, spawnCount int, c scene.Caster) (Candidate, bool) {
	ray := DiscRay(f, s.Point, radius)
	hit, ok := c.CastRay(ray.Origin, ray.Dir, scene.Unbounded)
	if !ok {
		return Candidate{}, false
	}

	spin := mathutil.AngleAxis(mathutil.Up, mathutil.Deg2Rad(s.AngleDeg))
	tilt := mathutil.AngleAxis(mathutil.Right, mathutil.Deg2Rad(90))
	rot := mathutil.LookRotation(hit.Normal, mathutil.Forward).Mul(spin).Mul(tilt)

	pos := hit.Point
	if spawnCount < 2 {
		pos = f.Origin
	}
	return Candidate{Position: pos, Rotation: rot, Sample: s}, true
}
