package shading

import "github.com/achilleasa/emissive/types"

// The fully resolved geometric and material quantities needed to evaluate
// a BRDF at a surface point.
type ShadingRecord struct {
	PosW types.Vec3
	V    types.Vec3

	N     types.Vec3
	T     types.Vec3
	B     types.Vec3
	FaceN types.Vec3

	UV types.Vec2

	NdotV       float32
	FrontFacing bool

	Diffuse  types.Vec3
	Opacity  float32
	Specular types.Vec3

	// Linear roughness and the derived microfacet alpha (roughness^2).
	LinearRoughness float32
	Roughness       float32

	Emissive    types.Vec3
	IoR         float32
	DoubleSided bool
}

// Merge a geometry frame with material parameters. NdotV is computed from
// the frame normal before any back-face correction; double sided materials
// viewed from behind get N and NdotV flipped.
func Assemble(f GeometryFrame, m MaterialParams) ShadingRecord {
	sr := ShadingRecord{
		PosW:            f.PosW,
		V:               f.V,
		N:               f.N,
		T:               f.T,
		B:               f.B,
		FaceN:           f.FaceN,
		UV:              f.UV,
		NdotV:           f.N.Dot(f.V),
		FrontFacing:     f.V.Dot(f.FaceN) >= 0,
		Diffuse:         m.Diffuse,
		Opacity:         m.Opacity,
		Specular:        m.Specular,
		LinearRoughness: m.Roughness,
		Roughness:       m.Roughness * m.Roughness,
		Emissive:        m.Emissive,
		IoR:             m.IoR,
		DoubleSided:     m.DoubleSided,
	}

	if sr.NdotV <= 0 && sr.DoubleSided {
		sr.N = sr.N.Neg()
		sr.NdotV = -sr.NdotV
	}

	return sr
}

// Extract the material parameters stored in the record.
func (sr *ShadingRecord) Material() MaterialParams {
	return MaterialParams{
		Diffuse:     sr.Diffuse,
		Opacity:     sr.Opacity,
		Specular:    sr.Specular,
		Roughness:   sr.LinearRoughness,
		Emissive:    sr.Emissive,
		IoR:         sr.IoR,
		DoubleSided: sr.DoubleSided,
	}
}

// Transform a world space vector into the local {T, B, N} frame.
func (sr *ShadingRecord) ToLocal(v types.Vec3) types.Vec3 {
	return types.XYZ(v.Dot(sr.T), v.Dot(sr.B), v.Dot(sr.N))
}

// Transform a vector from the local {T, B, N} frame into world space.
func (sr *ShadingRecord) FromLocal(v types.Vec3) types.Vec3 {
	return sr.T.Mul(v[0]).Add(sr.B.Mul(v[1])).Add(sr.N.Mul(v[2]))
}
