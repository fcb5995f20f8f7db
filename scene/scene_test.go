package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/achilleasa/emissive/types"
)

func TestFaceNormalAndArea(t *testing.T) {
	type spec struct {
		p       [3]types.Vec3
		expN    types.Vec3
		expArea float32
	}
	specs := []spec{
		{[3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, types.Vec3{0, 0, 1}, 0.5},
		{[3]types.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}}, types.Vec3{0, 0, -1}, 0.5},
		{[3]types.Vec3{{0, 0, 0}, {0, 0, 2}, {0, 2, 0}}, types.Vec3{-1, 0, 0}, 2},
		// degenerate
		{[3]types.Vec3{{1, 1, 1}, {1, 1, 1}, {2, 2, 2}}, types.Vec3{}, 0},
	}

	for index, s := range specs {
		n, area := FaceNormalAndArea(s.p)
		if !types.ApproxEqual(n, s.expN, 1e-6) || math.Abs(float64(area-s.expArea)) > 1e-6 {
			t.Fatalf("[spec %d] expected (%v, %f); got (%v, %f)", index, s.expN, s.expArea, n, area)
		}
	}
}

func TestAddMeshValidation(t *testing.T) {
	sc := NewScene()
	matIdx := sc.AddMaterial(&Material{Name: "m"})
	positions := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	type spec struct {
		mesh   *Mesh
		expErr string
	}
	specs := []spec{
		{&Mesh{Name: "a", Positions: positions, Indices: []uint32{0, 1}}, "not a multiple of 3"},
		{&Mesh{Name: "b", Positions: positions, Indices: []uint32{0, 1, 2}, MaterialIndex: 3}, "unknown material"},
		{&Mesh{Name: "c", Positions: positions, Indices: []uint32{0, 1, 3}}, "out of range vertex"},
		{&Mesh{Name: "d", Positions: positions, Indices: []uint32{0, 1, 2}, UVs: []types.Vec2{{0, 0}}}, "has 1 UVs for 3 vertices"},
		{&Mesh{Name: "e", Positions: positions, Indices: []uint32{0, 1, 2}, MaterialIndex: matIdx}, ""},
	}

	for index, s := range specs {
		_, err := sc.AddMesh(s.mesh)
		if s.expErr == "" {
			if err != nil {
				t.Fatalf("[spec %d] unexpected error %v", index, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}

	if _, err := sc.AddMeshInstance(5, types.Ident4()); err == nil {
		t.Fatal("expected an error instancing an unknown mesh")
	}
}

func TestMaterialEmission(t *testing.T) {
	type spec struct {
		mat         Material
		expEmissive bool
		expTextured bool
	}
	specs := []spec{
		{Material{}, false, false},
		{Material{EmissiveColor: types.XYZ(1, 1, 1)}, false, false},
		{Material{EmissiveColor: types.XYZ(0, 0.1, 0), EmissiveFactor: 1}, true, false},
		{Material{EmissiveFactor: 1}, false, false},
		{Material{EmissiveFactor: 2, EmissiveTexture: "glow.png"}, true, true},
	}
	for index, s := range specs {
		if s.mat.IsEmissive() != s.expEmissive || s.mat.IsTextured() != s.expTextured {
			t.Fatalf("[spec %d] expected emissive %t, textured %t", index, s.expEmissive, s.expTextured)
		}
	}
}

func TestTriangleQueries(t *testing.T) {
	sc := NewScene()
	matIdx := sc.AddMaterial(&Material{Name: "glow", EmissiveColor: types.XYZ(1, 1, 1), EmissiveFactor: 1})
	meshIdx, err := sc.AddMesh(&Mesh{
		Positions: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		UVs:       []types.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		Joints:    [][4]uint32{{0, 1}, {0, 1}, {1}, {1}},
		Weights:   []types.Vec4{{0.5, 0.5}, {1, 0}, {1}, {1}},

		MaterialIndex: matIdx,
	})
	if err != nil {
		t.Fatal(err)
	}
	instID, err := sc.AddMeshInstance(meshIdx, types.Translate(types.XYZ(0, 0, -2)))
	if err != nil {
		t.Fatal(err)
	}

	if sc.InstanceTriangleCount(instID) != 2 || sc.InstanceMaterial(instID).Name != "glow" {
		t.Fatal("unexpected instance triangle count or material")
	}
	if uvs := sc.TriangleUVs(instID, 1); uvs != [3]types.Vec2{{0, 0}, {1, 1}, {0, 1}} {
		t.Fatalf("unexpected uvs %v", uvs)
	}

	// Bind pose: only the instance transform applies.
	p := sc.TriangleVertices(instID, 0)
	if p[2] != types.XYZ(1, 1, -2) {
		t.Fatalf("expected bind pose vertex (1, 1, -2); got %v", p[2])
	}

	// Joint 1 lifts its vertices by 1 unit along Y; vertex 0 is split evenly between both joints.
	sc.MeshInstances[instID].JointMatrices = []types.Mat4{
		types.Ident4(),
		types.Translate(types.XYZ(0, 1, 0)),
	}
	p = sc.TriangleVertices(instID, 0)
	exp := [3]types.Vec3{{0, 0.5, -2}, {1, 0, -2}, {1, 2, -2}}
	for k := 0; k < 3; k++ {
		if !types.ApproxEqual(p[k], exp[k], 1e-6) {
			t.Fatalf("[vertex %d] expected skinned position %v; got %v", k, exp[k], p[k])
		}
	}
}

func TestMissingUVsDefaultToZero(t *testing.T) {
	sc := NewScene()
	matIdx := sc.AddMaterial(&Material{})
	meshIdx, err := sc.AddMesh(&Mesh{
		Positions:     []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:       []uint32{0, 1, 2},
		MaterialIndex: matIdx,
	})
	if err != nil {
		t.Fatal(err)
	}
	instID, _ := sc.AddMeshInstance(meshIdx, types.Ident4())
	if uvs := sc.TriangleUVs(instID, 0); uvs != ([3]types.Vec2{}) {
		t.Fatalf("expected zero uvs; got %v", uvs)
	}
}
