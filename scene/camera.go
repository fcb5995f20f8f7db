package scene

import "github.com/achilleasa/emissive/types"

// The camera type describes the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Camera FOV in degrees.
	FOV float32

	// Thin lens parameters. A zero aperture radius describes a pinhole
	// camera without depth of field.
	ApertureRadius float32
	FocalDistance  float32
}

// Create a pinhole camera at the origin looking down the -Z axis.
func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
	}
}

// Returns true if the camera jitters primary rays over a lens aperture.
func (c *Camera) HasDepthOfField() bool {
	return c.ApertureRadius > 0
}
