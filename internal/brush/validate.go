package brush

import "prop-brush/internal/scene"

// Validate reports whether the candidate's item has clear space along its
// local up axis for its declared height. Candidates without an item or
// without a declared height are always valid.
func Validate(c Candidate, caster scene.Caster) bool {
	it := c.Sample.Item
	if it == nil || it.Height == nil {
		return true
	}
	_, hit := caster.CastRay(c.Position, c.Up(), *it.Height)
	return !hit
}
