package lights

import "sort"

// FluxSampler selects emissive triangles with probability proportional to
// their flux. If no triangle carries flux, triangles are picked uniformly.
type FluxSampler struct {
	cdf  []float64
	pdf  []float32
	flux float64
}

// Build a sampler from the current flux values of a collection.
// Triangles that have not been integrated carry zero weight.
func NewFluxSampler(c *Collection) *FluxSampler {
	count := len(c.Triangles)
	fs := &FluxSampler{
		cdf: make([]float64, count),
		pdf: make([]float32, count),
	}
	if count == 0 {
		return fs
	}

	weights := make([]float64, count)
	for idx := range c.Triangles {
		if c.States[idx] == Integrated && c.Triangles[idx].Flux > 0 {
			weights[idx] = float64(c.Triangles[idx].Flux)
			fs.flux += weights[idx]
		}
	}

	total := fs.flux
	if total == 0 {
		for idx := range weights {
			weights[idx] = 1
		}
		total = float64(count)
	}

	var cumulative float64
	for idx, w := range weights {
		cumulative += w
		fs.cdf[idx] = cumulative / total
		fs.pdf[idx] = float32(w / total)
	}
	fs.cdf[count-1] = 1

	return fs
}

// Select a triangle using a uniform random number u in [0, 1). Returns the
// global triangle index and its selection probability. An empty sampler
// returns (0, 0).
func (fs *FluxSampler) Sample(u float32) (uint32, float32) {
	if len(fs.cdf) == 0 {
		return 0, 0
	}

	// Find the first triangle whose cdf exceeds u; zero-weight triangles are never selected.
	uu := float64(u)
	idx := sort.Search(len(fs.cdf), func(i int) bool {
		return fs.cdf[i] > uu
	})
	if idx == len(fs.cdf) {
		idx = len(fs.cdf) - 1
	}
	for idx > 0 && fs.pdf[idx] == 0 {
		idx--
	}
	return uint32(idx), fs.pdf[idx]
}

// Get the selection probability of a triangle.
func (fs *FluxSampler) Pdf(triIdx uint32) float32 {
	if int(triIdx) >= len(fs.pdf) {
		return 0
	}
	return fs.pdf[triIdx]
}

// Get the total flux the sampler was built from.
func (fs *FluxSampler) TotalFlux() float64 {
	return fs.flux
}
