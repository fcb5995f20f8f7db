package types

import (
	"math"
	"testing"
)

func TestVec3Ops(t *testing.T) {
	v1 := XYZ(1, 2, 3)
	v2 := XYZ(-2, 0.5, 4)

	type spec struct {
		got Vec3
		exp Vec3
	}
	specs := []spec{
		{v1.Add(v2), XYZ(-1, 2.5, 7)},
		{v1.Sub(v2), XYZ(3, 1.5, -1)},
		{v1.Mul(2), XYZ(2, 4, 6)},
		{v1.MulVec(v2), XYZ(-2, 1, 12)},
		{v1.Neg(), XYZ(-1, -2, -3)},
		{XYZ(1, 0, 0).Cross(XYZ(0, 1, 0)), XYZ(0, 0, 1)},
		{XYZ(0, 3, 4).Normalize(), XYZ(0, 0.6, 0.8)},
		{Vec3{}.Normalize(), Vec3{}},
		{MinVec3(v1, v2), XYZ(-2, 0.5, 3)},
		{MaxVec3(v1, v2), XYZ(1, 2, 4)},
		{XYZW(1, 2, 3, 4).Vec3(), v1},
	}
	for index, s := range specs {
		if !ApproxEqual(s.got, s.exp, 1e-6) {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, s.got)
		}
	}

	if d := v1.Dot(v2); d != 11 {
		t.Fatalf("expected dot product 11; got %f", d)
	}
	if l := XYZ(0, 3, 4).Len(); l != 5 {
		t.Fatalf("expected length 5; got %f", l)
	}
}

func TestMat4Transforms(t *testing.T) {
	m := Translate(XYZ(1, 2, 3)).Mul4(RotateAxis(math.Pi/2, XYZ(0, 0, 2))).Mul4(Scale(XYZ(2, 2, 2)))

	// Scale, then rotate +X onto +Y, then translate.
	p := m.TransformPoint(XYZ(1, 0, 0))
	if !ApproxEqual(p, XYZ(1, 4, 3), 1e-5) {
		t.Fatalf("expected transformed point (1, 4, 3); got %v", p)
	}

	// Directions ignore the translation.
	d := m.TransformDir(XYZ(1, 0, 0))
	if !ApproxEqual(d, XYZ(0, 2, 0), 1e-5) {
		t.Fatalf("expected transformed direction (0, 2, 0); got %v", d)
	}

	back := m.Inv().TransformPoint(p)
	if !ApproxEqual(back, XYZ(1, 0, 0), 1e-5) {
		t.Fatalf("expected inverse transform to restore (1, 0, 0); got %v", back)
	}

	if Ident4().TransformPoint(XYZ(4, 5, 6)) != XYZ(4, 5, 6) {
		t.Fatal("expected identity transform to leave points unchanged")
	}
}
