package lights

import (
	"time"

	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/scene"
)

// Refresh the world space positions, normals and areas of all emissive
// triangles after their mesh instances moved or were re-skinned. The pass
// runs as a single dispatch over the global index range; the triangle to
// light mapping, UVs, radiance and flux are left untouched.
func (c *Collection) Update(exec *dispatch.Executor, sc scene.Geometry) (dispatch.PassStats, error) {
	if !c.built {
		return dispatch.PassStats{}, ErrNotBuilt
	}

	start := time.Now()
	grid := dispatch.GridFor(c.TriangleCount())
	stats := exec.Dispatch("update", grid, func(x, y uint32) {
		c.updateTriangle(sc, grid.Index(x, y))
	})

	c.logger.Debugf("updated %d triangles in %d ms", len(c.Triangles), time.Since(start).Nanoseconds()/1e6)
	return stats, nil
}

func (c *Collection) updateTriangle(sc scene.Geometry, triIdx uint32) {
	if triIdx >= c.TriangleCount() || c.States[triIdx] == Unbuilt {
		return
	}

	tri := &c.Triangles[triIdx]
	ml := &c.MeshLights[tri.LightIdx]
	localIdx := triIdx - ml.TriangleOffset

	pos := sc.TriangleVertices(ml.MeshInstanceID, localIdx)

	base := int(triIdx) * 3
	copy(c.Positions[base:base+3], pos[:])

	tri.Normal, tri.Area = sc.FaceNormalAndArea(pos)
}
