// Package brush turns random samples inside a unit disc into placement poses
// on a surface and traces the brush outline over that surface.
package brush

import (
	"math/rand/v2"

	"prop-brush/internal/catalog"
	"prop-brush/internal/mathutil"
)

// DiscSample is one random offset inside the brush footprint. Item is nil
// when no catalog item was available; the sample then places a marker.
type DiscSample struct {
	Point    mathutil.Vec2 // |Point| <= 1
	AngleDeg float64       // [0, 360)
	Item     *catalog.Item
}

// Generate returns exactly count samples drawn from rng (none when count <= 0).
// Points are uniform over the closed unit disc by rejection from the
// enclosing square.
func Generate(rng *rand.Rand, count int, items []*catalog.Item) []DiscSample {
	if count <= 0 {
		return []DiscSample{}
	}
	samples := make([]DiscSample, count)
	for i := range samples {
		s := DiscSample{
			Point:    insideUnitDisc(rng),
			AngleDeg: rng.Float64() * 360,
		}
		if len(items) > 0 {
			s.Item = items[rng.IntN(len(items))]
		}
		samples[i] = s
	}
	return samples
}

func insideUnitDisc(rng *rand.Rand) mathutil.Vec2 {
	for {
		p := mathutil.Vec2{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		if p.LenSq() <= 1 {
			return p
		}
	}
}
