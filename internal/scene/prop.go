package scene

import (
	"math"

	"prop-brush/internal/mathutil"
)

// Handle identifies an instantiated prop.
type Handle uint64

// Placement is a request to put a prefab into the world.
type Placement struct {
	Name     string
	Prefab   string
	Position mathutil.Vec3
	Rotation mathutil.Quat
	Height   float64 // extent along the prop's local +Y
	Radius   float64 // footprint radius around the local Y axis
}

// Prop is an instantiated placement. As geometry it is a solid upright
// cylinder in the prop's local frame: radius Radius around local +Y,
// spanning y in [0, Height].
type Prop struct {
	Handle Handle
	Placement
}

// Up returns the prop's local +Y axis in world space.
func (p *Prop) Up() mathutil.Vec3 {
	return p.Rotation.Rotate(mathutil.Forward)
}

// Transform maps the prop's local space to world space.
func (p *Prop) Transform() mathutil.Mat4 {
	return mathutil.TRS(p.Position, p.Rotation)
}

// CastRay intersects the prop cylinder. A ray whose origin lies inside the
// solid, base included, hits immediately at distance 0 with the normal
// facing the ray.
func (p *Prop) CastRay(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool) {
	if p.Radius <= 0 || p.Height <= 0 {
		return Hit{}, false
	}
	inv := p.Rotation.Conjugate()
	o := inv.Rotate(origin.Sub(p.Position))
	d := inv.Rotate(dir)
	r2 := p.Radius * p.Radius

	if o[1] > -1e-9 && o[1] < p.Height && o[0]*o[0]+o[2]*o[2] < r2 {
		return Hit{Point: origin, Normal: dir.Neg(), Distance: 0, Object: p.ref()}, true
	}

	best := math.Inf(1)
	var bestN mathutil.Vec3

	// Side wall.
	a := d[0]*d[0] + d[2]*d[2]
	if a > 1e-12 {
		bq := 2 * (o[0]*d[0] + o[2]*d[2])
		c := o[0]*o[0] + o[2]*o[2] - r2
		if disc := bq*bq - 4*a*c; disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range [2]float64{(-bq - sq) / (2 * a), (-bq + sq) / (2 * a)} {
				if t < MinDistance || t >= best {
					continue
				}
				y := o[1] + d[1]*t
				if y < 0 || y > p.Height {
					continue
				}
				best = t
				bestN = mathutil.Vec3{o[0] + d[0]*t, 0, o[2] + d[2]*t}.Normalize()
			}
		}
	}

	// Caps.
	if math.Abs(d[1]) > 1e-12 {
		for _, lid := range [2]struct{ y, ny float64 }{{0, -1}, {p.Height, 1}} {
			t := (lid.y - o[1]) / d[1]
			if t < MinDistance || t >= best {
				continue
			}
			x, z := o[0]+d[0]*t, o[2]+d[2]*t
			if x*x+z*z > r2 {
				continue
			}
			best = t
			bestN = mathutil.Vec3{0, lid.ny, 0}
		}
	}

	if math.IsInf(best, 1) || best > maxDist {
		return Hit{}, false
	}
	return Hit{
		Point:    origin.Add(dir.Scale(best)),
		Normal:   p.Rotation.Rotate(bestN),
		Distance: best,
		Object:   p.ref(),
	}, true
}

func (p *Prop) ref() ObjectRef {
	return ObjectRef(p.Name)
}
