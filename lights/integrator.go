package lights

import (
	"math"
	"time"

	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/types"
)

// Per-triangle texel accumulations produced by rasterizing textured
// emissive triangles: rgb holds the summed emissive color and w the number
// of texels that contributed.
type TexelSums []types.Vec4

// The radiance assigned to textured triangles that covered no texels.
// Using a neutral value keeps unsampled triangles from being excluded when
// lights are picked by flux; it is an approximation of the true average.
var UnsampledRadiance = types.XYZ(1, 1, 1)

// Rec.709 luminance.
func Luminance(rgb types.Vec3) float32 {
	return 0.2126*rgb[0] + 0.7152*rgb[1] + 0.0722*rgb[2]
}

// Compute the average radiance and flux of every built triangle. sums is
// indexed by global triangle index and may be nil if no mesh light is
// textured. Re-running the pass without texture changes is idempotent.
func (c *Collection) Integrate(exec *dispatch.Executor, sums TexelSums) (dispatch.PassStats, error) {
	if !c.built {
		return dispatch.PassStats{}, ErrNotBuilt
	}
	if c.texturedTriangleCount() > 0 && len(sums) < len(c.Triangles) {
		return dispatch.PassStats{}, ErrTexelSumsMissing
	}

	start := time.Now()
	grid := dispatch.GridFor(c.TriangleCount())
	stats := exec.Dispatch("integrate", grid, func(x, y uint32) {
		c.integrateTriangle(sums, grid.Index(x, y))
	})

	c.logger.Infof("integrated radiance for %d triangles (total flux %.3f lm) in %d ms", len(c.Triangles), c.TotalFlux(), time.Since(start).Nanoseconds()/1e6)
	return stats, nil
}

func (c *Collection) integrateTriangle(sums TexelSums, triIdx uint32) {
	if triIdx >= c.TriangleCount() || c.States[triIdx] == Unbuilt {
		return
	}

	tri := &c.Triangles[triIdx]
	ml := &c.MeshLights[tri.LightIdx]

	var radiance types.Vec3
	if !ml.Textured {
		radiance = ml.EmissiveColor.Mul(ml.EmissiveFactor)
	} else if sum := sums[triIdx]; sum[3] > 0 {
		radiance = sum.Vec3().Mul(ml.EmissiveFactor / sum[3])
	} else {
		radiance = UnsampledRadiance
	}

	tri.AverageRadiance = radiance
	tri.Flux = Luminance(radiance) * tri.Area * math.Pi
	c.States[triIdx] = Integrated
}
