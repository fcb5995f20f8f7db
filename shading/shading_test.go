package shading

import (
	"math"
	"math/rand"
	"testing"

	"github.com/achilleasa/emissive/types"
)

const tolerance = 1e-5

func randVec3(rng *rand.Rand) types.Vec3 {
	return types.XYZ(rng.Float32()*2-1, rng.Float32()*2-1, rng.Float32()*2-1)
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func TestBuildFrameIsOrthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for index := 0; index < 1000; index++ {
		n := randVec3(rng)
		b := randVec3(rng)
		v := randVec3(rng)

		// Skip degenerate inputs (zero-length or parallel normal/bitangent)
		if n.Len() < 0.1 || v.Len() < 0.1 || n.Normalize().Cross(b).Len() < 0.1 {
			continue
		}

		f := BuildFrame(GeometrySample{
			ViewDir:    v,
			Normal:     n,
			Bitangent:  b,
			FaceNormal: n.Normalize(),
		})

		for name, vec := range map[string]types.Vec3{"T": f.T, "B": f.B, "N": f.N, "V": f.V} {
			if abs32(vec.Len()-1) > tolerance {
				t.Fatalf("[spec %d] expected %s to have unit length; got %f", index, name, vec.Len())
			}
		}

		if d := abs32(f.T.Dot(f.B)); d > tolerance {
			t.Fatalf("[spec %d] expected T.B to be 0; got %f", index, d)
		}
		if d := abs32(f.T.Dot(f.N)); d > tolerance {
			t.Fatalf("[spec %d] expected T.N to be 0; got %f", index, d)
		}
		if d := abs32(f.B.Dot(f.N)); d > tolerance {
			t.Fatalf("[spec %d] expected B.N to be 0; got %f", index, d)
		}

		// Right-handed: cross(T, B) == N
		if !types.ApproxEqual(f.T.Cross(f.B), f.N, 1e-4) {
			t.Fatalf("[spec %d] expected cross(T, B) to equal N %v; got %v", index, f.N, f.T.Cross(f.B))
		}
	}
}

func TestBuildFrameUV(t *testing.T) {
	s := GeometrySample{
		ViewDir:   types.XYZ(0, 0, 1),
		Normal:    types.XYZ(0, 0, 2),
		Bitangent: types.XYZ(0, 3, 0),
		UV:        types.XY(0.25, 0.75),
	}

	f := BuildFrame(s)
	if f.UV != (types.Vec2{}) {
		t.Fatalf("expected missing UV to default to (0, 0); got %v", f.UV)
	}

	s.HasUV = true
	f = BuildFrame(s)
	if f.UV != s.UV {
		t.Fatalf("expected UV to be %v; got %v", s.UV, f.UV)
	}

	if !types.ApproxEqual(f.T, types.XYZ(1, 0, 0), tolerance) {
		t.Fatalf("expected T to be (1, 0, 0); got %v", f.T)
	}
}

func TestMaterialRoundTrip(t *testing.T) {
	specs := []MaterialParams{
		DefaultMaterialParams(),
		{
			Diffuse:     types.XYZ(0.1, 0.2, 0.3),
			Opacity:     0.5,
			Specular:    types.XYZ(0.04, 0.05, 0.06),
			Roughness:   0.3,
			Emissive:    types.XYZ(10, 20, 30),
			IoR:         1.5,
			DoubleSided: true,
		},
	}

	for index, m := range specs {
		pm := EncodeMaterial(m)
		if got := DecodeMaterial(pm); got != m {
			t.Fatalf("[spec %d] expected decoded material to be %+v; got %+v", index, m, got)
		}

		// Reserved channels must not leak into decoded values
		pm[2][3] = 99
		pm[3][2] = 99
		pm[3][3] = 99
		if got := DecodeMaterial(pm); got != m {
			t.Fatalf("[spec %d] expected reserved channels to be ignored; got %+v", index, got)
		}
	}
}

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterialParams()
	if m.Opacity != 1 || m.Roughness != 1 || m.IoR != 1 || m.DoubleSided {
		t.Fatalf("unexpected default material %+v", m)
	}

	sr := Assemble(BuildFrame(GeometrySample{
		ViewDir:    types.XYZ(0, 0, 1),
		Normal:     types.XYZ(0, 0, 1),
		Bitangent:  types.XYZ(0, 1, 0),
		FaceNormal: types.XYZ(0, 0, 1),
	}), m)
	if got := sr.Material(); got != m {
		t.Fatalf("expected record material to be %+v; got %+v", m, got)
	}
	if got := DecodeMaterial(EncodeMaterial(sr.Material())); got != m {
		t.Fatalf("expected record material round trip to be %+v; got %+v", m, got)
	}
}

func TestAssembleBackFacePolicy(t *testing.T) {
	type spec struct {
		viewZ       float32
		doubleSided bool
		expFlip     bool
	}
	specs := []spec{
		{1, false, false},
		{-1, false, false},
		{1, true, false},
		{-1, true, true},
		{-0.5, true, true},
	}

	for index, s := range specs {
		f := BuildFrame(GeometrySample{
			ViewDir:    types.XYZ(0.3, 0, s.viewZ),
			Normal:     types.XYZ(0, 0, 1),
			Bitangent:  types.XYZ(0, 1, 0),
			FaceNormal: types.XYZ(0, 0, 1),
		})
		m := DefaultMaterialParams()
		m.DoubleSided = s.doubleSided
		m.Roughness = 0.5

		sr := Assemble(f, m)
		rawNdotV := f.N.Dot(f.V)

		if s.expFlip {
			if sr.N != f.N.Neg() {
				t.Fatalf("[spec %d] expected N to be flipped to %v; got %v", index, f.N.Neg(), sr.N)
			}
			if sr.NdotV != -rawNdotV || sr.NdotV <= 0 {
				t.Fatalf("[spec %d] expected NdotV to be %f; got %f", index, -rawNdotV, sr.NdotV)
			}
		} else {
			if sr.N != f.N {
				t.Fatalf("[spec %d] expected N to stay %v; got %v", index, f.N, sr.N)
			}
			if sr.NdotV != rawNdotV {
				t.Fatalf("[spec %d] expected NdotV to be %f; got %f", index, rawNdotV, sr.NdotV)
			}
		}

		if abs32(sr.NdotV) != abs32(rawNdotV) {
			t.Fatalf("[spec %d] expected |NdotV| to be preserved", index)
		}

		expFront := s.viewZ >= 0
		if sr.FrontFacing != expFront {
			t.Fatalf("[spec %d] expected front facing to be %t; got %t", index, expFront, sr.FrontFacing)
		}

		if sr.Roughness != 0.25 {
			t.Fatalf("[spec %d] expected roughness alpha 0.25; got %f", index, sr.Roughness)
		}
	}
}

func TestLocalFrameTransforms(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sr := Assemble(BuildFrame(GeometrySample{
		ViewDir:    types.XYZ(1, 2, 3),
		Normal:     types.XYZ(0.2, 0.9, -0.3),
		Bitangent:  types.XYZ(1, 0.1, 0.4),
		FaceNormal: types.XYZ(0, 1, 0),
	}), DefaultMaterialParams())

	for index := 0; index < 100; index++ {
		v := randVec3(rng)
		if got := sr.FromLocal(sr.ToLocal(v)); !types.ApproxEqual(got, v, tolerance) {
			t.Fatalf("[spec %d] expected fromLocal(toLocal(v)) to be %v; got %v", index, v, got)
		}
		if got := sr.ToLocal(sr.FromLocal(v)); !types.ApproxEqual(got, v, tolerance) {
			t.Fatalf("[spec %d] expected toLocal(fromLocal(v)) to be %v; got %v", index, v, got)
		}
	}

	if got := sr.ToLocal(sr.N); !types.ApproxEqual(got, types.XYZ(0, 0, 1), tolerance) {
		t.Fatalf("expected N in local space to be (0, 0, 1); got %v", got)
	}
}
