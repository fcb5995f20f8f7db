package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/lights"
	"github.com/achilleasa/emissive/scene"
	"github.com/achilleasa/emissive/types"
)

func TestDriverRequiresScene(t *testing.T) {
	if _, err := NewDriver(nil, Options{}); err != ErrNoScene {
		t.Fatalf("expected ErrNoScene; got %v", err)
	}
	if _, err := NewDriverForCollection(nil, &lights.Collection{}, Options{}); err != ErrNoScene {
		t.Fatalf("expected ErrNoScene; got %v", err)
	}
}

func TestStageOrdering(t *testing.T) {
	d, err := NewDriver(testScene(t, ""), Options{NumWorkers: 2})
	if err != nil {
		t.Fatal(err)
	}

	if err = d.Run(); err != ErrNoStages {
		t.Fatalf("expected ErrNoStages; got %v", err)
	}

	type spec struct {
		stage Stage
	}
	specs := []spec{
		{UpdateStage()},
		{IntegrateStage()},
		{RasterizeStage()},
	}
	for index, s := range specs {
		if err = d.Run(s.stage); err != ErrNotBuilt {
			t.Fatalf("[spec %d] expected stage %q to fail with ErrNotBuilt; got %v", index, s.stage.Name, err)
		}
	}
}

func TestDefaultStagesUntextured(t *testing.T) {
	d, err := NewDriver(testScene(t, ""), Options{NumWorkers: 3, Scheduler: dispatch.PerfectScheduler()})
	if err != nil {
		t.Fatal(err)
	}

	if err = d.Run(DefaultStages()...); err != nil {
		t.Fatal(err)
	}

	stats := d.Stats()
	if stats.Frame != 1 || len(stats.Stages) != 3 {
		t.Fatalf("expected 3 stage stats for frame 1; got %d for frame %d", len(stats.Stages), stats.Frame)
	}
	expNames := []string{"build", "rasterize", "integrate"}
	for index, exp := range expNames {
		if stats.Stages[index].Name != exp {
			t.Fatalf("[stage %d] expected name %q; got %q", index, exp, stats.Stages[index].Name)
		}
	}

	// Without a texture path the second quad does not emit; only the two
	// triangles of the unit quad emitting (2, 2, 2) are collected.
	c := d.Collection()
	if c.TriangleCount() != 2 {
		t.Fatalf("expected 2 emissive triangles; got %d", c.TriangleCount())
	}
	expFlux := float64(lights.Luminance(types.XYZ(2, 2, 2))) * math.Pi
	if math.Abs(stats.TotalFlux-expFlux) > 1e-4 {
		t.Fatalf("expected total flux %f; got %f", expFlux, stats.TotalFlux)
	}
}

func TestTexturedLightsAndAnimation(t *testing.T) {
	texFile := filepath.Join(t.TempDir(), "glow.png")
	writeSolidPNG(t, texFile, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	sc := testScene(t, texFile)
	sc.MeshInstances[1].Transform = types.Translate(types.XYZ(5, 0, 0))

	d, err := NewDriver(sc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err = d.Run(DefaultStages()...); err != nil {
		t.Fatal(err)
	}

	c := d.Collection()
	for triIdx := range c.Triangles {
		if c.States[triIdx] != lights.Integrated {
			t.Fatalf("[triangle %d] expected integrated state; got %d", triIdx, c.States[triIdx])
		}
	}

	// A white texture with factor 3 averages to radiance 3.
	lightIdx := uint32(1)
	triIdx := c.GlobalIndex(lightIdx, 0)
	if !types.ApproxEqual(c.Triangles[triIdx].AverageRadiance, types.XYZ(3, 3, 3), 1e-5) {
		t.Fatalf("expected textured radiance (3, 3, 3); got %v", c.Triangles[triIdx].AverageRadiance)
	}
	fluxBefore := d.Stats().TotalFlux

	// Doubling the size of the textured quad quadruples its flux once re-integrated.
	sc.MeshInstances[1].Transform = types.Translate(types.XYZ(5, 0, 0)).Mul4(types.Scale(types.XYZ(2, 2, 2)))
	if err = d.Run(AnimationStages(false)...); err != nil {
		t.Fatal(err)
	}
	if d.Stats().TotalFlux != fluxBefore {
		t.Fatal("expected update without integration to keep the flux unchanged")
	}

	if err = d.Run(AnimationStages(true)...); err != nil {
		t.Fatal(err)
	}
	texturedFlux := float64(c.Triangles[triIdx].Flux) + float64(c.Triangles[triIdx+1].Flux)
	expFlux := float64(lights.Luminance(types.XYZ(3, 3, 3))) * 4 * math.Pi
	if math.Abs(texturedFlux-expFlux) > 1e-3 {
		t.Fatalf("expected textured flux %f; got %f", expFlux, texturedFlux)
	}
	if d.Stats().Frame != 3 {
		t.Fatalf("expected frame counter 3; got %d", d.Stats().Frame)
	}
}

func TestMissingTexture(t *testing.T) {
	sc := testScene(t, filepath.Join(t.TempDir(), "missing.png"))

	d, err := NewDriver(sc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err = d.Run(DefaultStages()...); err == nil {
		t.Fatal("expected an error for a missing emissive texture")
	}
	if len(d.Stats().Stages) != 1 {
		t.Fatalf("expected only the build stage to complete; got %d stages", len(d.Stats().Stages))
	}

	// Skipping textures falls back to the neutral radiance.
	d, err = NewDriver(sc, Options{SkipTextures: true})
	if err != nil {
		t.Fatal(err)
	}
	if err = d.Run(DefaultStages()...); err != nil {
		t.Fatal(err)
	}
	c := d.Collection()
	if c.Triangles[c.GlobalIndex(1, 0)].AverageRadiance != lights.UnsampledRadiance {
		t.Fatal("expected the unsampled radiance fallback")
	}
}

// Build a scene with an untextured unit quad emitting (2, 2, 2) and a
// textured unit quad with emissive factor 3.
func testScene(t *testing.T, texFile string) *scene.Scene {
	sc := scene.NewScene()
	plain := sc.AddMaterial(&scene.Material{Name: "plain", EmissiveColor: types.XYZ(1, 1, 1), EmissiveFactor: 2})
	textured := sc.AddMaterial(&scene.Material{Name: "textured", EmissiveFactor: 3, EmissiveTexture: texFile})

	for _, matIdx := range []uint32{plain, textured} {
		mesh := &scene.Mesh{
			Positions:     []types.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			UVs:           []types.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			Indices:       []uint32{0, 1, 2, 0, 2, 3},
			MaterialIndex: matIdx,
		}
		meshIdx, err := sc.AddMesh(mesh)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = sc.AddMeshInstance(meshIdx, types.Ident4()); err != nil {
			t.Fatal(err)
		}
	}
	return sc
}

func writeSolidPNG(t *testing.T, file string, c color.NRGBA) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err = png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
