package types

import "github.com/go-gl/mathgl/mgl32"

// A column-major 4x4 affine transformation.
type Mat4 mgl32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Create a non-uniform scale matrix.
func Scale(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Create a rotation matrix for angle radians around axis.
func RotateAxis(angle float32, axis Vec3) Mat4 {
	return Mat4(mgl32.HomogRotate3D(angle, mgl32.Vec3(axis.Normalize())))
}

// Multiply with another matrix (m * m2).
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Invert the matrix.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Transform a point (w = 1).
func (m Mat4) TransformPoint(v Vec3) Vec3 {
	return Vec3(mgl32.TransformCoordinate(mgl32.Vec3(v), mgl32.Mat4(m)))
}

// Transform a direction (w = 0). The result is not normalized.
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return Vec3(mgl32.TransformNormal(mgl32.Vec3(v), mgl32.Mat4(m)))
}
