package pipeline

import (
	"time"

	"github.com/achilleasa/emissive/dispatch"
)

type StageStat struct {
	// The stage name.
	Name string

	// Dispatches issued by the stage.
	Passes []dispatch.PassStats

	// Wall time for the stage including any host side work.
	Time time.Duration
}

type FrameStats struct {
	// Sequence number of the Run call that produced these stats.
	Frame uint32

	// Individual stage stats.
	Stages []StageStat

	// Total light flux after the last stage.
	TotalFlux float64

	// Total time for all stages.
	Time time.Duration
}
