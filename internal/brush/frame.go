package brush

import (
	"math"

	"prop-brush/internal/mathutil"
)

// TangentFrame is an orthonormal basis at the aimed surface point. Brush
// disc coordinates (x, y) map to Tangent*x + Bitangent*y.
type TangentFrame struct {
	Origin    mathutil.Vec3
	Normal    mathutil.Vec3
	Tangent   mathutil.Vec3
	Bitangent mathutil.Vec3
}

// IdentityFrame returns the world-axis frame at origin: tangent +X,
// bitangent +Y, normal +Z.
func IdentityFrame(origin mathutil.Vec3) TangentFrame {
	return TangentFrame{
		Origin:    origin,
		Normal:    mathutil.Up,
		Tangent:   mathutil.Right,
		Bitangent: mathutil.Forward,
	}
}

// FrameFromHit builds the frame at a surface hit so the tangent stays level
// with the camera: Tangent = normalize(normal × cameraUp) and
// Bitangent = normal × Tangent. When normal and cameraUp are parallel any
// perpendicular tangent is used.
func FrameFromHit(point, normal, cameraUp mathutil.Vec3) TangentFrame {
	n := normal.Normalize()
	t := n.Cross(cameraUp)
	if t.Len() < 1e-9 {
		hint := mathutil.Right
		if math.Abs(n[0]) > 0.9 {
			hint = mathutil.Forward
		}
		t = n.Cross(hint)
	}
	t = t.Normalize()
	return TangentFrame{
		Origin:    point,
		Normal:    n,
		Tangent:   t,
		Bitangent: n.Cross(t),
	}
}

// Matrix returns the tangent-to-world transform (columns tangent,
// bitangent, normal; translation origin).
func (f TangentFrame) Matrix() mathutil.Mat4 {
	r := mathutil.Mat3FromColumns(f.Tangent, f.Bitangent, f.Normal)
	return mathutil.FromMat3Translation(r, f.Origin)
}
