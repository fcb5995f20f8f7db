package raster

import (
	"math"
	"time"

	"github.com/achilleasa/emissive/asset/texture"
	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/lights"
	"github.com/achilleasa/emissive/log"
	"github.com/achilleasa/emissive/types"
)

// The TexelRasterizer computes the per-triangle texel sums consumed by the
// light integrator. Each textured emissive triangle is rasterized in the
// texel space of its emissive texture and the colors of all texels whose
// centers fall inside the triangle are accumulated.
type TexelRasterizer struct {
	logger log.Logger

	// Emissive textures keyed by mesh light index.
	textures map[uint32]*texture.Texture
}

// Create a new rasterizer for a set of emissive textures keyed by mesh
// light index.
func NewTexelRasterizer(textures map[uint32]*texture.Texture) *TexelRasterizer {
	return &TexelRasterizer{
		logger:   log.New("texel rasterizer"),
		textures: textures,
	}
}

// Rasterize all textured triangles of a built collection. The returned
// buffer holds one entry per global triangle index; untextured or unbuilt
// triangles and triangles that cover no texel centers get a zero entry.
func (r *TexelRasterizer) Accumulate(exec *dispatch.Executor, c *lights.Collection) (lights.TexelSums, dispatch.PassStats) {
	start := time.Now()

	sums := make(lights.TexelSums, c.TriangleCount())
	grid := dispatch.GridFor(c.TriangleCount())
	stats := exec.Dispatch("rasterize", grid, func(x, y uint32) {
		triIdx := grid.Index(x, y)
		if triIdx >= c.TriangleCount() || c.States[triIdx] == lights.Unbuilt {
			return
		}

		tex := r.textures[c.Triangles[triIdx].LightIdx]
		if tex == nil || tex.Width == 0 || tex.Height == 0 {
			return
		}

		base := int(triIdx) * 3
		sums[triIdx] = accumulate(tex, c.UVs[base], c.UVs[base+1], c.UVs[base+2])
	})

	r.logger.Debugf("rasterized %d triangles in %d ms", c.TriangleCount(), time.Since(start).Nanoseconds()/1e6)
	return sums, stats
}

// Rasterize all textured triangles of a collection using a set of
// emissive textures keyed by mesh light index.
func AccumulateTexelSums(exec *dispatch.Executor, c *lights.Collection, textures map[uint32]*texture.Texture) lights.TexelSums {
	sums, _ := NewTexelRasterizer(textures).Accumulate(exec, c)
	return sums
}

// Sum the texels whose centers lie inside a UV triangle. UV (0, 0) maps to
// the top-left texel; coordinates outside [0, 1] wrap around. Texels on an
// edge are counted.
func accumulate(tex *texture.Texture, uv0, uv1, uv2 types.Vec2) types.Vec4 {
	w, h := float64(tex.Width), float64(tex.Height)
	x0, y0 := float64(uv0[0])*w, float64(uv0[1])*h
	x1, y1 := float64(uv1[0])*w, float64(uv1[1])*h
	x2, y2 := float64(uv2[0])*w, float64(uv2[1])*h

	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return types.Vec4{}
	}

	minX := int(math.Floor(min3(x0, x1, x2)))
	maxX := int(math.Ceil(max3(x0, x1, x2)))
	minY := int(math.Floor(min3(y0, y1, y2)))
	maxY := int(math.Ceil(max3(y0, y1, y2)))

	var sum types.Vec4
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			// Normalize the edge functions by the winding so both orientations are accepted
			e0 := edge(x1, y1, x2, y2, px, py) * area
			e1 := edge(x2, y2, x0, y0, px, py) * area
			e2 := edge(x0, y0, x1, y1, px, py) * area
			if e0 < 0 || e1 < 0 || e2 < 0 {
				continue
			}

			texel := tex.Texel(x, y)
			sum = sum.Add(types.XYZW(texel[0], texel[1], texel[2], 1))
		}
	}

	return sum
}

// Twice the signed area of triangle (a, b, p).
func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
