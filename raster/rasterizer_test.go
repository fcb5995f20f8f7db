package raster

import (
	"testing"

	"github.com/achilleasa/emissive/asset/texture"
	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/lights"
	"github.com/achilleasa/emissive/scene"
	"github.com/achilleasa/emissive/types"
)

func TestAccumulateCoverage(t *testing.T) {
	// 4x4 texture where each texel encodes its coordinates.
	tex := &texture.Texture{Width: 4, Height: 4, Data: make([]types.Vec4, 16)}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			tex.Data[y*4+x] = types.XYZW(float32(x), float32(y), 1, 1)
		}
	}

	type spec struct {
		uvs      [3]types.Vec2
		expCount float32
	}
	specs := []spec{
		// Lower-left half including the diagonal: 4+3+2+1 texel centers
		{[3]types.Vec2{{0, 0}, {1, 0}, {0, 1}}, 10},
		// Same triangle with the opposite winding
		{[3]types.Vec2{{0, 0}, {0, 1}, {1, 0}}, 10},
		// Full coverage of the texture by a large triangle
		{[3]types.Vec2{{0, 0}, {2, 0}, {0, 2}}, 36},
		// Too small to cover any texel center
		{[3]types.Vec2{{0.01, 0.01}, {0.02, 0.01}, {0.01, 0.02}}, 0},
		// Degenerate
		{[3]types.Vec2{{0, 0}, {0.5, 0.5}, {1, 1}}, 0},
	}

	for index, s := range specs {
		sum := accumulate(tex, s.uvs[0], s.uvs[1], s.uvs[2])
		if sum[3] != s.expCount {
			t.Fatalf("[spec %d] expected %f covered texels; got %f", index, s.expCount, sum[3])
		}
		if sum[2] != s.expCount {
			t.Fatalf("[spec %d] expected blue channel sum %f; got %f", index, s.expCount, sum[2])
		}
	}
}

func TestAccumulateWrapsCoordinates(t *testing.T) {
	tex := &texture.Texture{Width: 2, Height: 2, Data: []types.Vec4{
		{1, 0, 0, 1}, {0, 1, 0, 1},
		{0, 0, 1, 1}, {1, 1, 1, 1},
	}}

	base := accumulate(tex, types.XY(0, 0), types.XY(1, 0), types.XY(1, 1))
	shifted := accumulate(tex, types.XY(1, -1), types.XY(2, -1), types.XY(2, 0))
	if base != shifted {
		t.Fatalf("expected wrapped triangle to sum to %v; got %v", base, shifted)
	}

	// Centers (0.5, 0.5), (1.5, 0.5) and (1.5, 1.5) are covered.
	exp := types.XYZW(2, 2, 1, 3)
	if base != exp {
		t.Fatalf("expected sum %v; got %v", exp, base)
	}
}

func TestAccumulateTexelSums(t *testing.T) {
	sc := scene.NewScene()
	plain := sc.AddMaterial(&scene.Material{EmissiveColor: types.XYZ(1, 1, 1), EmissiveFactor: 1})
	sign := sc.AddMaterial(&scene.Material{EmissiveFactor: 1, EmissiveTexture: "sign.png"})

	positions := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0.4, 0.4, 0}, {0.41, 0.4, 0}, {0.4, 0.41, 0}}
	meshes := []*scene.Mesh{
		{Positions: positions[:3], Indices: []uint32{0, 1, 2}, MaterialIndex: plain},
		{
			Positions: positions,
			UVs:       []types.Vec2{{0, 0}, {1, 0}, {0, 1}, {0.4, 0.4}, {0.41, 0.4}, {0.4, 0.41}},
			Indices:   []uint32{0, 1, 2, 3, 4, 5},

			MaterialIndex: sign,
		},
	}
	for _, mesh := range meshes {
		meshIdx, err := sc.AddMesh(mesh)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = sc.AddMeshInstance(meshIdx, types.Ident4()); err != nil {
			t.Fatal(err)
		}
	}

	c, err := lights.NewCollection(lights.FromScene(sc))
	if err != nil {
		t.Fatal(err)
	}
	exec := dispatch.NewExecutor(2, nil)
	if _, err = c.Build(exec, sc); err != nil {
		t.Fatal(err)
	}

	tex := &texture.Texture{Width: 2, Height: 2, Data: []types.Vec4{
		{0.5, 0.5, 0.5, 1}, {0.5, 0.5, 0.5, 1},
		{0.5, 0.5, 0.5, 1}, {0.5, 0.5, 0.5, 1},
	}}
	sums := AccumulateTexelSums(exec, c, map[uint32]*texture.Texture{1: tex})

	if len(sums) != 3 {
		t.Fatalf("expected 3 texel sums; got %d", len(sums))
	}

	expSums := []types.Vec4{
		{},
		{1.5, 1.5, 1.5, 3},
		{},
	}
	for index, exp := range expSums {
		if sums[index] != exp {
			t.Fatalf("[triangle %d] expected sum %v; got %v", index, exp, sums[index])
		}
	}

	// Feed the sums to the integrator; the uncovered triangle gets the neutral fallback.
	if _, err = c.Integrate(exec, sums); err != nil {
		t.Fatal(err)
	}
	if !types.ApproxEqual(c.Triangles[1].AverageRadiance, types.XYZ(0.5, 0.5, 0.5), 1e-6) {
		t.Fatalf("expected average radiance 0.5; got %v", c.Triangles[1].AverageRadiance)
	}
	if c.Triangles[2].AverageRadiance != lights.UnsampledRadiance {
		t.Fatalf("expected fallback radiance; got %v", c.Triangles[2].AverageRadiance)
	}
}
