package mathutil

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestQuatMatrixRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
	}{
		{"identity", QuatIdentity()},
		{"z90", AngleAxis(Up, math.Pi/2)},
		{"x180", AngleAxis(Right, math.Pi)},
		{"oblique", AngleAxis(Vec3{1, 2, 3}, 2.1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := QuatFromMat3(QuatToMat3(tt.q))
			v := Vec3{0.3, -1.2, 2.5}
			if got, want := back.Rotate(v), tt.q.Rotate(v); !got.ApproxEqual(want, 1e-9) {
				t.Fatalf("round trip rotates %v to %v, want %v", v, got, want)
			}
		})
	}
}

func TestAngleAxisMatchesRotationMatrices(t *testing.T) {
	a := Deg2Rad(37)
	v := Vec3{1, 2, 3}
	if got, want := AngleAxis(Right, a).Rotate(v), RotX(a).MulVec3(v); !got.ApproxEqual(want, eps) {
		t.Errorf("x: got %v want %v", got, want)
	}
	if got, want := AngleAxis(Up, a).Rotate(v), RotZ(a).MulVec3(v); !got.ApproxEqual(want, eps) {
		t.Errorf("z: got %v want %v", got, want)
	}
}

func TestMulAppliesRightOperandFirst(t *testing.T) {
	rz := AngleAxis(Up, math.Pi/2)
	rx := AngleAxis(Right, math.Pi/2)
	// rx takes +Y to +Z, rz leaves +Z alone.
	if got := rz.Mul(rx).Rotate(Forward); !got.ApproxEqual(Up, eps) {
		t.Fatalf("got %v, want %v", got, Up)
	}
}

func TestLookRotation(t *testing.T) {
	tests := []struct {
		name        string
		forward, up Vec3
	}{
		{"down", Vec3{0, 0, -1}, Forward},
		{"tilted", Vec3{0.2, -0.4, 0.9}, Forward},
		{"parallel to up", Forward, Forward},
		{"along x and parallel", Right, Right},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := LookRotation(tt.forward, tt.up)
			f := tt.forward.Normalize()
			if got := q.Rotate(Vec3{0, 0, 1}); !got.ApproxEqual(f, 1e-9) {
				t.Fatalf("local +Z -> %v, want %v", got, f)
			}
			y := q.Rotate(Forward)
			if d := y.Dot(f); math.Abs(d) > 1e-9 {
				t.Fatalf("local +Y not perpendicular to forward: dot %v", d)
			}
		})
	}
}

func TestTRS(t *testing.T) {
	m := TRS(Vec3{1, 2, 3}, AngleAxis(Up, math.Pi/2))
	if got := m.MulPoint(Right); !got.ApproxEqual(Vec3{1, 3, 3}, eps) {
		t.Errorf("MulPoint = %v", got)
	}
	if got := m.MulVector(Right); !got.ApproxEqual(Forward, eps) {
		t.Errorf("MulVector = %v", got)
	}
}
