package scene

import (
	"math"

	"prop-brush/internal/mathutil"
)

// Plane is an infinite two-sided plane.
type Plane struct {
	Name   ObjectRef
	Point  mathutil.Vec3
	Normal mathutil.Vec3
}

// NewPlane returns a plane through point with the given normal.
func NewPlane(name ObjectRef, point, normal mathutil.Vec3) *Plane {
	return &Plane{Name: name, Point: point, Normal: normal.Normalize()}
}

func (p *Plane) CastRay(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool) {
	denom := p.Normal.Dot(dir)
	if math.Abs(denom) < 1e-9 {
		return Hit{}, false
	}
	t := p.Normal.Dot(p.Point.Sub(origin)) / denom
	if t < MinDistance || t > maxDist {
		return Hit{}, false
	}
	n := p.Normal
	if denom > 0 {
		n = n.Neg()
	}
	return Hit{
		Point:    origin.Add(dir.Scale(t)),
		Normal:   n,
		Distance: t,
		Object:   p.Name,
	}, true
}
