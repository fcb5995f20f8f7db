package cmd

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/achilleasa/emissive/scene"
	"github.com/achilleasa/emissive/scene/writer"
	"github.com/achilleasa/emissive/types"
	"github.com/urfave/cli"
)

const demoTextureSize = 64

// Write a small scene archive with a constant quad light, a textured
// triangle light and a skinned light strip.
func WriteDemoScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing output scene file argument")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return errors.New("the demo scene must be written to a file with a .zip extension")
	}

	texFile, err := filepath.Abs(strings.TrimSuffix(sceneFile, ".zip") + "_emissive.png")
	if err != nil {
		return err
	}
	if err = writeDemoTexture(texFile); err != nil {
		return err
	}

	sc, err := demoScene(texFile)
	if err != nil {
		return err
	}

	logger.Noticef("writing demo scene to %s", sceneFile)
	return writer.WriteScene(sc, sceneFile)
}

func demoScene(texFile string) (*scene.Scene, error) {
	sc := scene.NewScene()
	sc.Camera.Position = types.XYZ(0, 2, 8)
	sc.Camera.LookAt = types.XYZ(0, 1, 0)

	floorMat := sc.AddMaterial(&scene.Material{Name: "floor"})
	panelMat := sc.AddMaterial(&scene.Material{Name: "panel", EmissiveColor: types.XYZ(1, 0.9, 0.8), EmissiveFactor: 5})
	signMat := sc.AddMaterial(&scene.Material{Name: "sign", EmissiveFactor: 2, EmissiveTexture: texFile})
	stripMat := sc.AddMaterial(&scene.Material{Name: "strip", EmissiveColor: types.XYZ(0.2, 0.4, 1), EmissiveFactor: 3})

	meshes := []struct {
		mesh      *scene.Mesh
		transform types.Mat4
	}{
		{
			&scene.Mesh{
				Name:          "floor",
				Positions:     []types.Vec3{{-5, 0, -5}, {5, 0, -5}, {5, 0, 5}, {-5, 0, 5}},
				Indices:       []uint32{0, 2, 1, 0, 3, 2},
				MaterialIndex: floorMat,
			},
			types.Ident4(),
		},
		{
			&scene.Mesh{
				Name:          "panel",
				Positions:     []types.Vec3{{-1, 0, 0}, {1, 0, 0}, {1, 0, 1}, {-1, 0, 1}},
				UVs:           []types.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
				Indices:       []uint32{0, 1, 2, 0, 2, 3},
				MaterialIndex: panelMat,
			},
			types.Translate(types.XYZ(0, 4, -0.5)),
		},
		{
			&scene.Mesh{
				Name:          "sign",
				Positions:     []types.Vec3{{0, 0, 0}, {2, 0, 0}, {1, 1.5, 0}},
				UVs:           []types.Vec2{{0, 1}, {1, 1}, {0.5, 0}},
				Indices:       []uint32{0, 1, 2},
				MaterialIndex: signMat,
			},
			types.Translate(types.XYZ(-1, 1, -3)),
		},
		{
			demoStrip(stripMat),
			types.Translate(types.XYZ(3, 0.5, 0)),
		},
	}

	for _, entry := range meshes {
		meshIdx, err := sc.AddMesh(entry.mesh)
		if err != nil {
			return nil, err
		}
		if _, err = sc.AddMeshInstance(meshIdx, entry.transform); err != nil {
			return nil, err
		}
	}

	return sc, nil
}

// A vertical strip of 4 quads skinned to 2 joints.
func demoStrip(matIdx uint32) *scene.Mesh {
	const segments = 4

	mesh := &scene.Mesh{Name: "strip", MaterialIndex: matIdx}
	for s := 0; s <= segments; s++ {
		y := float32(s) * 0.5
		w := float32(s) / segments
		for _, x := range []float32{-0.1, 0.1} {
			mesh.Positions = append(mesh.Positions, types.XYZ(x, y, 0))
			mesh.UVs = append(mesh.UVs, types.XY((x+0.1)/0.2, 1-w))
			mesh.Joints = append(mesh.Joints, [4]uint32{0, 1, 0, 0})
			mesh.Weights = append(mesh.Weights, types.XYZW(1-w, w, 0, 0))
		}
	}
	for s := uint32(0); s < segments; s++ {
		i := s * 2
		mesh.Indices = append(mesh.Indices, i, i+1, i+3, i, i+3, i+2)
	}
	return mesh
}

// Write a radial gradient to be used as the emissive texture of the demo sign.
func writeDemoTexture(file string) error {
	img := image.NewNRGBA(image.Rect(0, 0, demoTextureSize, demoTextureSize))
	half := float32(demoTextureSize) / 2
	for y := 0; y < demoTextureSize; y++ {
		for x := 0; x < demoTextureSize; x++ {
			dist := types.XYZ(float32(x)-half, float32(y)-half, 0).Len() / half
			if dist > 1 {
				dist = 1
			}
			v := uint8(255 * (1 - dist))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
