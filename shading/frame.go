package shading

import "github.com/achilleasa/emissive/types"

// Raw geometric quantities sampled at a pixel or vertex. Direction inputs
// need not be normalized but must not be zero-length.
type GeometrySample struct {
	// World space position.
	PosW types.Vec3

	// Direction towards the viewer.
	ViewDir types.Vec3

	// Interpolated shading normal and bitangent.
	Normal    types.Vec3
	Bitangent types.Vec3

	// Normalized geometric (face) normal.
	FaceNormal types.Vec3

	// Texture coordinates; ignored unless HasUV is set.
	UV    types.Vec2
	HasUV bool
}

// An orthonormal right-handed shading frame plus the view vector.
type GeometryFrame struct {
	PosW types.Vec3
	V    types.Vec3

	T types.Vec3
	B types.Vec3
	N types.Vec3

	// Passed through from the sample as-is.
	FaceN types.Vec3

	UV types.Vec2
}

// Build a shading frame from a geometry sample. The bitangent is
// orthogonalized against the normal (Gram-Schmidt) and the tangent is
// derived as cross(B, N).
func BuildFrame(s GeometrySample) GeometryFrame {
	n := s.Normal.Normalize()
	b := s.Bitangent.Sub(n.Mul(s.Bitangent.Dot(n))).Normalize()

	frame := GeometryFrame{
		PosW:  s.PosW,
		V:     s.ViewDir.Normalize(),
		T:     b.Cross(n),
		B:     b,
		N:     n,
		FaceN: s.FaceNormal,
	}

	if s.HasUV {
		frame.UV = s.UV
	}

	return frame
}
