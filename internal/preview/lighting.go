package preview

import (
	"math"

	"prop-brush/internal/mathutil"
)

// LightConfig holds the hillshade lighting for the terrain background.
type LightConfig struct {
	SunDir   mathutil.Vec3
	FillDir  mathutil.Vec3
	Ambient  float64
	Direct   float64
	Fill     float64
	Exposure float64
}

// DefaultLightConfig returns a low north-west sun with a weak opposite fill,
// the usual cartographic hillshade setup.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		SunDir:   mathutil.Vec3{-1, 1, 1.2}.Normalize(),
		FillDir:  mathutil.Vec3{1, -1, 0.6}.Normalize(),
		Ambient:  0.35,
		Direct:   0.85,
		Fill:     0.15,
		Exposure: 1.1,
	}
}

// ComputeShade returns the lighting scalar for a surface normal.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	sun := math.Max(0, normal.Dot(lc.SunDir))
	fill := math.Max(0, normal.Dot(lc.FillDir))
	return (lc.Ambient + sun*lc.Direct + fill*lc.Fill) * lc.Exposure
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// elevationColor maps a normalized height in [0,1] to a linear RGB tint:
// lowland green, rock brown, snow white.
func elevationColor(t float64) [3]float64 {
	stops := [...]struct {
		at  float64
		rgb [3]float64
	}{
		{0.0, [3]float64{0.18, 0.32, 0.12}},
		{0.45, [3]float64{0.35, 0.42, 0.18}},
		{0.75, [3]float64{0.42, 0.33, 0.24}},
		{1.0, [3]float64{0.92, 0.92, 0.95}},
	}
	t = math.Max(0, math.Min(1, t))
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].at {
			a, b := stops[i-1], stops[i]
			f := (t - a.at) / (b.at - a.at)
			return [3]float64{
				a.rgb[0] + (b.rgb[0]-a.rgb[0])*f,
				a.rgb[1] + (b.rgb[1]-a.rgb[1])*f,
				a.rgb[2] + (b.rgb[2]-a.rgb[2])*f,
			}
		}
	}
	return stops[len(stops)-1].rgb
}

func toSRGB8(linear float64) uint8 {
	v := math.Pow(math.Max(0, math.Min(1, linear)), 1/2.2)
	return uint8(v*255 + 0.5)
}
