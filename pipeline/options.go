package pipeline

import "github.com/achilleasa/emissive/dispatch"

type Options struct {
	// Number of dispatch workers; 0 selects GOMAXPROCS.
	NumWorkers int

	// Row block scheduler; nil selects the naive scheduler.
	Scheduler dispatch.BlockScheduler

	// Do not load emissive textures. Textured lights are integrated with
	// the unsampled radiance fallback.
	SkipTextures bool
}
