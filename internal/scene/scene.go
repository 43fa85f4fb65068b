// Package scene provides ray-castable geometry standing in for a host
// engine's physics scene: planes, heightfield terrain and instantiated props.
package scene

import (
	"math"

	"prop-brush/internal/mathutil"
)

// Unbounded is the maxDist to pass for rays without a length limit.
var Unbounded = math.Inf(1)

// MinDistance is the smallest hit distance reported by surfaces. It keeps a
// ray that starts on a surface from hitting that surface at its origin.
const MinDistance = 1e-4

// Ray is a half-line starting at Origin heading along Dir.
type Ray struct {
	Origin mathutil.Vec3
	Dir    mathutil.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mathutil.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// ObjectRef names the object a ray hit.
type ObjectRef string

// Hit describes the nearest intersection of a ray with the scene.
type Hit struct {
	Point    mathutil.Vec3
	Normal   mathutil.Vec3
	Distance float64
	Object   ObjectRef
}

// Caster casts a ray against geometry. dir must be normalized. It reports
// the nearest hit with MinDistance <= Distance <= maxDist; solids report
// Distance 0 for rays that start inside them.
type Caster interface {
	CastRay(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool)
}

// CastFunc adapts a function to Caster.
type CastFunc func(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool)

func (f CastFunc) CastRay(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool) {
	return f(origin, dir, maxDist)
}

// Miss is a Caster that never hits anything.
var Miss = CastFunc(func(mathutil.Vec3, mathutil.Vec3, float64) (Hit, bool) {
	return Hit{}, false
})

// Cast is a convenience wrapper taking a Ray.
func Cast(c Caster, r Ray, maxDist float64) (Hit, bool) {
	return c.CastRay(r.Origin, r.Dir.Normalize(), maxDist)
}
