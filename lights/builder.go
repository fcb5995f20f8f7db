package lights

import (
	"time"

	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/scene"
)

// Per-mesh dispatch parameters for the build pass.
type BuildParams struct {
	LightIdx       uint32
	MeshInstanceID uint32
	TriangleCount  uint32
	TriangleOffset uint32
}

// Get the build parameters for a mesh light.
func (c *Collection) BuildParams(lightIdx uint32) BuildParams {
	ml := c.MeshLights[lightIdx]
	return BuildParams{
		LightIdx:       lightIdx,
		MeshInstanceID: ml.MeshInstanceID,
		TriangleCount:  ml.TriangleCount,
		TriangleOffset: ml.TriangleOffset,
	}
}

// Populate geometry for every mesh light, one dispatch per light.
func (c *Collection) Build(exec *dispatch.Executor, sc scene.Geometry) ([]dispatch.PassStats, error) {
	start := time.Now()

	stats := make([]dispatch.PassStats, 0, len(c.MeshLights))
	for lightIdx := range c.MeshLights {
		passStats, err := c.BuildMeshLight(exec, sc, c.BuildParams(uint32(lightIdx)))
		if err != nil {
			return nil, err
		}
		stats = append(stats, passStats)
	}

	c.logger.Infof("built %d mesh lights (%d triangles) in %d ms", len(c.MeshLights), len(c.Triangles), time.Since(start).Nanoseconds()/1e6)
	return stats, nil
}

// Populate geometry for the triangles of a single mesh light. Each work
// item fetches the world space vertices and UVs of one triangle, copies
// them to the staging buffers and writes the triangle's owner, normal
// and area.
func (c *Collection) BuildMeshLight(exec *dispatch.Executor, sc scene.Geometry, p BuildParams) (dispatch.PassStats, error) {
	if int(p.LightIdx) >= len(c.MeshLights) || uint64(p.TriangleOffset)+uint64(p.TriangleCount) > uint64(len(c.Triangles)) {
		return dispatch.PassStats{}, ErrInvalidBuildParams
	}

	grid := dispatch.GridFor(p.TriangleCount)
	stats := exec.Dispatch("build", grid, func(x, y uint32) {
		c.buildTriangle(sc, p, grid.Index(x, y))
	})

	c.built = true
	return stats, nil
}

func (c *Collection) buildTriangle(sc scene.Geometry, p BuildParams, triIdx uint32) {
	if triIdx >= p.TriangleCount {
		return
	}

	localIdx := triIdx
	triIdx += p.TriangleOffset

	pos := sc.TriangleVertices(p.MeshInstanceID, localIdx)
	uvs := sc.TriangleUVs(p.MeshInstanceID, localIdx)

	base := int(triIdx) * 3
	copy(c.Positions[base:base+3], pos[:])
	copy(c.UVs[base:base+3], uvs[:])

	normal, area := sc.FaceNormalAndArea(pos)
	tri := &c.Triangles[triIdx]
	tri.LightIdx = p.LightIdx
	tri.Normal = normal
	tri.Area = area

	c.States[triIdx] = Built
}
