package lights

import (
	"math"
	"sort"

	"github.com/achilleasa/emissive/log"
	"github.com/achilleasa/emissive/scene"
	"github.com/achilleasa/emissive/types"
)

// The lifecycle state of an emissive triangle.
type TriangleState uint8

const (
	// No build pass has populated the triangle yet.
	Unbuilt TriangleState = iota

	// Geometry (positions, normal, area) is populated; radiance and flux are not.
	Built

	// Radiance and flux have been integrated. Later updates refresh the
	// geometry without changing this state.
	Integrated
)

// A mesh light aggregates the emissive triangles of one mesh instance.
type MeshLight struct {
	MeshInstanceID uint32

	// The range of global triangle indices owned by this light.
	TriangleCount  uint32
	TriangleOffset uint32

	EmissiveColor  types.Vec3
	EmissiveFactor float32

	// True if emission is modulated by a texture.
	Textured bool
}

// The mesh light properties needed to allocate a collection.
type MeshLightDesc struct {
	MeshInstanceID uint32
	TriangleCount  uint32
	EmissiveColor  types.Vec3
	EmissiveFactor float32
	Textured       bool
}

// A light emitting triangle.
type EmissiveTriangle struct {
	// Index of the owning mesh light.
	LightIdx uint32

	// World space face normal and area (m^2).
	Normal types.Vec3
	Area   float32

	// Average emitted radiance and the flux (lumens) derived from it.
	AverageRadiance types.Vec3
	Flux            float32
}

// The Collection owns a flat arena of emissive triangles addressed by a
// global index (meshLight.TriangleOffset + local triangle index) together
// with the mesh lights and the vertex/UV staging buffers that the passes
// populate.
type Collection struct {
	MeshLights []MeshLight
	Triangles  []EmissiveTriangle
	States     []TriangleState

	// Staging buffers indexed by triIdx*3 + vertex.
	Positions []types.Vec3
	UVs       []types.Vec2

	// Set once a build pass has established the triangle to light mapping.
	built bool

	logger log.Logger
}

// Allocate a collection for a set of mesh lights. Triangle ranges are
// assigned in order so that the global index space is gap-free.
func NewCollection(descs []MeshLightDesc) (*Collection, error) {
	c := &Collection{
		MeshLights: make([]MeshLight, len(descs)),
		logger:     log.New("light collection"),
	}

	var offset uint64
	for idx, d := range descs {
		c.MeshLights[idx] = MeshLight{
			MeshInstanceID: d.MeshInstanceID,
			TriangleCount:  d.TriangleCount,
			TriangleOffset: uint32(offset),
			EmissiveColor:  d.EmissiveColor,
			EmissiveFactor: d.EmissiveFactor,
			Textured:       d.Textured,
		}
		offset += uint64(d.TriangleCount)
		if offset > math.MaxUint32 {
			return nil, ErrTooManyTriangles
		}
	}

	c.Triangles = make([]EmissiveTriangle, offset)
	c.States = make([]TriangleState, offset)
	c.Positions = make([]types.Vec3, 3*offset)
	c.UVs = make([]types.Vec2, 3*offset)

	c.logger.Infof("allocated %d emissive triangles for %d mesh lights", offset, len(descs))
	return c, nil
}

// Enumerate the emissive mesh instances of a scene. Instances are listed
// in scene order.
func FromScene(sc *scene.Scene) []MeshLightDesc {
	logger := log.New("light collection")

	descs := make([]MeshLightDesc, 0)
	for id := range sc.MeshInstances {
		instanceID := uint32(id)
		mat := sc.InstanceMaterial(instanceID)
		if !mat.IsEmissive() {
			continue
		}

		triCount := sc.InstanceTriangleCount(instanceID)
		if triCount == 0 {
			continue
		}

		descs = append(descs, MeshLightDesc{
			MeshInstanceID: instanceID,
			TriangleCount:  triCount,
			EmissiveColor:  mat.EmissiveColor,
			EmissiveFactor: mat.EmissiveFactor,
			Textured:       mat.IsTextured(),
		})
	}

	if len(descs) == 0 {
		logger.Warning("the scene contains no emissive mesh instances; the light collection will be empty")
	}
	return descs
}

// Get the total number of emissive triangles.
func (c *Collection) TriangleCount() uint32 {
	return uint32(len(c.Triangles))
}

// Returns true once a build pass has run.
func (c *Collection) IsBuilt() bool {
	return c.built
}

// Get the global triangle index for a local triangle of a mesh light.
func (c *Collection) GlobalIndex(lightIdx, localIdx uint32) uint32 {
	return c.MeshLights[lightIdx].TriangleOffset + localIdx
}

// Resolve the mesh light and local triangle index owning a global index
// using the light range table.
func (c *Collection) Locate(triIdx uint32) (lightIdx, localIdx uint32, ok bool) {
	if triIdx >= c.TriangleCount() {
		return 0, 0, false
	}

	// Find the first light whose range ends past triIdx; empty ranges are skipped.
	idx := sort.Search(len(c.MeshLights), func(i int) bool {
		ml := c.MeshLights[i]
		return ml.TriangleOffset+ml.TriangleCount > triIdx
	})
	if idx == len(c.MeshLights) {
		return 0, 0, false
	}
	return uint32(idx), triIdx - c.MeshLights[idx].TriangleOffset, true
}

// Sum the flux of all integrated triangles.
func (c *Collection) TotalFlux() float64 {
	var total float64
	for idx := range c.Triangles {
		if c.States[idx] == Integrated {
			total += float64(c.Triangles[idx].Flux)
		}
	}
	return total
}

// Get the number of triangles owned by textured mesh lights.
func (c *Collection) texturedTriangleCount() uint32 {
	var count uint32
	for _, ml := range c.MeshLights {
		if ml.Textured {
			count += ml.TriangleCount
		}
	}
	return count
}
