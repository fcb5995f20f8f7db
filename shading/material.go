package shading

import "github.com/achilleasa/emissive/types"

// Material parameters consumed by the shading record.
type MaterialParams struct {
	Diffuse types.Vec3
	Opacity float32

	Specular types.Vec3

	// Linear (perceptual) roughness.
	Roughness float32

	Emissive types.Vec3

	IoR         float32
	DoubleSided bool
}

// The compact material representation. Layout:
// [0] diffuse.rgb, opacity
// [1] specular.rgb, linear roughness
// [2] emissive.rgb, reserved
// [3] IoR, double sided (0 or 1), reserved, reserved
type PackedMaterial [4]types.Vec4

// Create the default material: black diffuse/specular/emissive, fully
// opaque, fully rough, IoR 1 and single sided.
func DefaultMaterialParams() MaterialParams {
	return MaterialParams{
		Opacity:   1.0,
		Roughness: 1.0,
		IoR:       1.0,
	}
}

// Pack material parameters.
func EncodeMaterial(m MaterialParams) PackedMaterial {
	var doubleSided float32
	if m.DoubleSided {
		doubleSided = 1.0
	}

	return PackedMaterial{
		m.Diffuse.Vec4(m.Opacity),
		m.Specular.Vec4(m.Roughness),
		m.Emissive.Vec4(0),
		types.XYZW(m.IoR, doubleSided, 0, 0),
	}
}

// Unpack material parameters. Reserved channels are ignored.
func DecodeMaterial(pm PackedMaterial) MaterialParams {
	return MaterialParams{
		Diffuse:     pm[0].Vec3(),
		Opacity:     pm[0][3],
		Specular:    pm[1].Vec3(),
		Roughness:   pm[1][3],
		Emissive:    pm[2].Vec3(),
		IoR:         pm[3][0],
		DoubleSided: pm[3][1] != 0,
	}
}
