package scene

import (
	"fmt"

	"github.com/achilleasa/emissive/types"
)

// The Geometry interface is implemented by scene representations that can
// feed the emissive light passes. Implementations must report positions
// for whatever pose (bind or skinned/animated) is current when queried.
type Geometry interface {
	// Get the 3 world space vertex positions of a mesh instance triangle.
	TriangleVertices(meshInstanceID, triIdx uint32) [3]types.Vec3

	// Get the 3 texture coordinates of a mesh instance triangle.
	TriangleUVs(meshInstanceID, triIdx uint32) [3]types.Vec2

	// Calculate the face normal and area for a triangle.
	FaceNormalAndArea(p [3]types.Vec3) (types.Vec3, float32)
}

// A material with emissive properties.
type Material struct {
	Name string

	EmissiveColor  types.Vec3
	EmissiveFactor float32

	// Path or URL of an emissive texture, already resolved by the scene
	// reader. An empty path means the emissive color is constant over the
	// surface.
	EmissiveTexture string
}

// Returns true if the material emits light.
func (m *Material) IsEmissive() bool {
	if m.EmissiveFactor <= 0 {
		return false
	}
	if m.EmissiveTexture != "" {
		return true
	}
	return m.EmissiveColor[0] > 0 || m.EmissiveColor[1] > 0 || m.EmissiveColor[2] > 0
}

// Returns true if the emission is modulated by a texture.
func (m *Material) IsTextured() bool {
	return m.EmissiveTexture != ""
}

// An indexed triangle mesh. Meshes that can be skinned specify up to four
// joint influences per vertex.
type Mesh struct {
	Name string

	Positions []types.Vec3
	UVs       []types.Vec2
	Indices   []uint32

	Joints  [][4]uint32
	Weights []types.Vec4

	MaterialIndex uint32
}

// Get the number of triangles in the mesh.
func (m *Mesh) TriangleCount() uint32 {
	return uint32(len(m.Indices) / 3)
}

// Returns true if the mesh carries skinning data.
func (m *Mesh) IsSkinned() bool {
	return len(m.Joints) == len(m.Positions) && len(m.Weights) == len(m.Positions) && len(m.Positions) > 0
}

// The MeshInstance structure positions a mesh inside the scene and
// optionally deforms it with a set of joint matrices.
type MeshInstance struct {
	MeshIndex uint32
	Transform types.Mat4

	// Current skinning pose; nil means the mesh is rendered in its bind pose.
	JointMatrices []types.Mat4
}

// The scene contains the meshes, instances and materials that the light
// passes query.
type Scene struct {
	Meshes        []*Mesh
	MeshInstances []*MeshInstance
	Materials     []*Material
	Camera        *Camera
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes:        make([]*Mesh, 0),
		MeshInstances: make([]*MeshInstance, 0),
		Materials:     make([]*Material, 0),
		Camera:        NewCamera(45.0),
	}
}

// Add a material and return its index.
func (sc *Scene) AddMaterial(mat *Material) uint32 {
	sc.Materials = append(sc.Materials, mat)
	return uint32(len(sc.Materials) - 1)
}

// Add a mesh and return its index.
func (sc *Scene) AddMesh(mesh *Mesh) (uint32, error) {
	if len(mesh.Indices)%3 != 0 {
		return 0, fmt.Errorf("scene: mesh %q index count %d is not a multiple of 3", mesh.Name, len(mesh.Indices))
	}
	if int(mesh.MaterialIndex) >= len(sc.Materials) {
		return 0, fmt.Errorf("scene: mesh %q references unknown material %d", mesh.Name, mesh.MaterialIndex)
	}
	for _, index := range mesh.Indices {
		if int(index) >= len(mesh.Positions) {
			return 0, fmt.Errorf("scene: mesh %q references out of range vertex %d", mesh.Name, index)
		}
	}
	if len(mesh.UVs) != 0 && len(mesh.UVs) != len(mesh.Positions) {
		return 0, fmt.Errorf("scene: mesh %q has %d UVs for %d vertices", mesh.Name, len(mesh.UVs), len(mesh.Positions))
	}

	sc.Meshes = append(sc.Meshes, mesh)
	return uint32(len(sc.Meshes) - 1), nil
}

// Add a mesh instance and return its id.
func (sc *Scene) AddMeshInstance(meshIndex uint32, transform types.Mat4) (uint32, error) {
	if int(meshIndex) >= len(sc.Meshes) {
		return 0, fmt.Errorf("scene: unknown mesh %d", meshIndex)
	}
	sc.MeshInstances = append(sc.MeshInstances, &MeshInstance{
		MeshIndex: meshIndex,
		Transform: transform,
	})
	return uint32(len(sc.MeshInstances) - 1), nil
}

// Get the material of a mesh instance.
func (sc *Scene) InstanceMaterial(meshInstanceID uint32) *Material {
	mesh := sc.Meshes[sc.MeshInstances[meshInstanceID].MeshIndex]
	return sc.Materials[mesh.MaterialIndex]
}

// Get the number of triangles of a mesh instance.
func (sc *Scene) InstanceTriangleCount(meshInstanceID uint32) uint32 {
	return sc.Meshes[sc.MeshInstances[meshInstanceID].MeshIndex].TriangleCount()
}

// Get the 3 world space vertex positions of a mesh instance triangle.
func (sc *Scene) TriangleVertices(meshInstanceID, triIdx uint32) [3]types.Vec3 {
	mi := sc.MeshInstances[meshInstanceID]
	mesh := sc.Meshes[mi.MeshIndex]

	var out [3]types.Vec3
	for k := uint32(0); k < 3; k++ {
		vIdx := mesh.Indices[triIdx*3+k]
		out[k] = mi.Transform.TransformPoint(mi.skin(mesh, vIdx))
	}
	return out
}

// Get the 3 texture coordinates of a mesh instance triangle. Meshes
// without UVs report (0, 0) for every vertex.
func (sc *Scene) TriangleUVs(meshInstanceID, triIdx uint32) [3]types.Vec2 {
	mesh := sc.Meshes[sc.MeshInstances[meshInstanceID].MeshIndex]

	var out [3]types.Vec2
	if len(mesh.UVs) == 0 {
		return out
	}
	for k := uint32(0); k < 3; k++ {
		out[k] = mesh.UVs[mesh.Indices[triIdx*3+k]]
	}
	return out
}

// Calculate the face normal and area for a triangle. The normal follows
// the counter-clockwise winding of p. Degenerate triangles get a zero
// normal and area.
func (sc *Scene) FaceNormalAndArea(p [3]types.Vec3) (types.Vec3, float32) {
	return FaceNormalAndArea(p)
}

// Calculate the face normal and area for a triangle.
func FaceNormalAndArea(p [3]types.Vec3) (types.Vec3, float32) {
	n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
	return n.Normalize(), 0.5 * n.Len()
}

// Apply linear blend skinning to a bind pose vertex.
func (mi *MeshInstance) skin(mesh *Mesh, vIdx uint32) types.Vec3 {
	pos := mesh.Positions[vIdx]
	if len(mi.JointMatrices) == 0 || !mesh.IsSkinned() {
		return pos
	}

	var out types.Vec3
	joints := mesh.Joints[vIdx]
	weights := mesh.Weights[vIdx]
	for j := 0; j < 4; j++ {
		if weights[j] == 0 || int(joints[j]) >= len(mi.JointMatrices) {
			continue
		}
		out = out.Add(mi.JointMatrices[joints[j]].TransformPoint(pos).Mul(weights[j]))
	}
	return out
}
