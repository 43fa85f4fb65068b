package scene

import (
	"math"

	"prop-brush/internal/mathutil"
)

// Heightfield is a regular grid of terrain heights. Sample (i, j) sits at
// Origin + (i*CellSize, j*CellSize, Heights[j*Width+i]).
type Heightfield struct {
	Name     ObjectRef
	Width    int
	Depth    int
	CellSize float64
	Origin   mathutil.Vec3
	Heights  []float64

	minZ, maxZ float64
}

// NewHeightfield wraps heights (row-major, width*depth values). It returns
// ErrEmptyHeightmap when the grid has fewer than 2×2 samples.
func NewHeightfield(name ObjectRef, width, depth int, cellSize float64, heights []float64) (*Heightfield, error) {
	if width < 2 || depth < 2 || len(heights) < width*depth {
		return nil, ErrEmptyHeightmap
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	hf := &Heightfield{
		Name:     name,
		Width:    width,
		Depth:    depth,
		CellSize: cellSize,
		Heights:  heights[:width*depth],
		minZ:     math.Inf(1),
		maxZ:     math.Inf(-1),
	}
	for _, h := range hf.Heights {
		hf.minZ = math.Min(hf.minZ, h)
		hf.maxZ = math.Max(hf.maxZ, h)
	}
	return hf, nil
}

// Bounds returns the world-space axis-aligned box enclosing the terrain.
func (hf *Heightfield) Bounds() (min, max mathutil.Vec3) {
	min = hf.Origin.Add(mathutil.Vec3{0, 0, hf.minZ})
	max = hf.Origin.Add(mathutil.Vec3{
		float64(hf.Width-1) * hf.CellSize,
		float64(hf.Depth-1) * hf.CellSize,
		hf.maxZ,
	})
	return min, max
}

// HeightAt returns the bilinearly interpolated world height at (x, y).
// ok is false outside the grid.
func (hf *Heightfield) HeightAt(x, y float64) (float64, bool) {
	gx := (x - hf.Origin[0]) / hf.CellSize
	gy := (y - hf.Origin[1]) / hf.CellSize
	if gx < 0 || gy < 0 || gx > float64(hf.Width-1) || gy > float64(hf.Depth-1) {
		return 0, false
	}
	x0, y0 := int(gx), int(gy)
	if x0 >= hf.Width-1 {
		x0 = hf.Width - 2
	}
	if y0 >= hf.Depth-1 {
		y0 = hf.Depth - 2
	}
	dx, dy := gx-float64(x0), gy-float64(y0)

	h00 := hf.Heights[y0*hf.Width+x0]
	h10 := hf.Heights[y0*hf.Width+x0+1]
	h01 := hf.Heights[(y0+1)*hf.Width+x0]
	h11 := hf.Heights[(y0+1)*hf.Width+x0+1]

	h := h00*(1-dx)*(1-dy) + h10*dx*(1-dy) + h01*(1-dx)*dy + h11*dx*dy
	return hf.Origin[2] + h, true
}

// NormalAt returns the surface normal at (x, y) from central differences.
func (hf *Heightfield) NormalAt(x, y float64) mathutil.Vec3 {
	d := hf.CellSize * 0.5
	sample := func(px, py float64) float64 {
		h, ok := hf.HeightAt(px, py)
		if !ok {
			h, _ = hf.HeightAt(hf.clampX(px), hf.clampY(py))
		}
		return h
	}
	dhdx := (sample(x+d, y) - sample(x-d, y)) / (2 * d)
	dhdy := (sample(x, y+d) - sample(x, y-d)) / (2 * d)
	return mathutil.Vec3{-dhdx, -dhdy, 1}.Normalize()
}

func (hf *Heightfield) clampX(x float64) float64 {
	return math.Max(hf.Origin[0], math.Min(x, hf.Origin[0]+float64(hf.Width-1)*hf.CellSize))
}

func (hf *Heightfield) clampY(y float64) float64 {
	return math.Max(hf.Origin[1], math.Min(y, hf.Origin[1]+float64(hf.Depth-1)*hf.CellSize))
}

// CastRay marches the ray through the terrain box and refines the first
// above-to-below crossing by bisection. Rays starting below the surface only
// hit after they have come back above it.
func (hf *Heightfield) CastRay(origin, dir mathutil.Vec3, maxDist float64) (Hit, bool) {
	lo, hi := hf.Bounds()
	// Pad vertically so flat terrain still has a box to march through.
	lo[2] -= hf.CellSize
	hi[2] += hf.CellSize
	t0, t1, ok := clipBox(origin, dir, lo, hi)
	if !ok {
		return Hit{}, false
	}
	t0 = math.Max(t0, MinDistance)
	t1 = math.Min(t1, maxDist)
	if t0 > t1 {
		return Hit{}, false
	}

	above := func(t float64) (float64, bool) {
		p := origin.Add(dir.Scale(t))
		h, ok := hf.HeightAt(p[0], p[1])
		return p[2] - h, ok
	}

	step := hf.CellSize * 0.25
	prevT := t0
	prevF, prevOK := above(prevT)
	for t := t0 + step; ; t += step {
		if t > t1 {
			t = t1
		}
		f, ok := above(t)
		if ok && prevOK && prevF > 0 && f <= 0 {
			a, b := prevT, t
			for i := 0; i < 32; i++ {
				m := (a + b) * 0.5
				if fm, _ := above(m); fm > 0 {
					a = m
				} else {
					b = m
				}
			}
			p := origin.Add(dir.Scale(b))
			return Hit{
				Point:    p,
				Normal:   hf.NormalAt(p[0], p[1]),
				Distance: b,
				Object:   hf.Name,
			}, true
		}
		if t >= t1 {
			return Hit{}, false
		}
		prevT, prevF, prevOK = t, f, ok
	}
}

// clipBox intersects a ray with an axis-aligned box (slab method).
func clipBox(origin, dir, lo, hi mathutil.Vec3) (float64, float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for k := 0; k < 3; k++ {
		if math.Abs(dir[k]) < 1e-12 {
			if origin[k] < lo[k] || origin[k] > hi[k] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / dir[k]
		a := (lo[k] - origin[k]) * inv
		b := (hi[k] - origin[k]) * inv
		if a > b {
			a, b = b, a
		}
		tmin = math.Max(tmin, a)
		tmax = math.Min(tmax, b)
	}
	if tmax < math.Max(tmin, 0) {
		return 0, 0, false
	}
	return math.Max(tmin, 0), tmax, true
}
