package brush

import (
	"math"

	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
)

// DefaultBoundaryDetail is the number of outline samples drawn per frame.
const DefaultBoundaryDetail = 128

// boundaryLift keeps the outline visibly above the surface.
const boundaryLift = 0.02

// TraceBoundary projects detail evenly spaced points of the brush rim onto
// the surface. Sample i sits at angle 2π·i/detail. Missed samples fall back
// to the ray origin, i.e. the flat brush circle. Joining the points in order
// and closing last to first gives the outline.
func TraceBoundary(f TangentFrame, radius float64, detail int, c scene.Caster) []mathutil.Vec3 {
	if detail <= 0 {
		return nil
	}
	points := make([]mathutil.Vec3, detail)
	for i := range points {
		a := mathutil.Tau * float64(i) / float64(detail)
		ray := DiscRay(f, mathutil.Vec2{math.Cos(a), math.Sin(a)}, radius)
		if hit, ok := c.CastRay(ray.Origin, ray.Dir, scene.Unbounded); ok {
			points[i] = hit.Point.Add(hit.Normal.Scale(boundaryLift))
		} else {
			points[i] = ray.Origin
		}
	}
	return points
}
