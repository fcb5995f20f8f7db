package pipeline

import (
	"time"

	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/lights"
	"github.com/achilleasa/emissive/log"
	"github.com/achilleasa/emissive/scene"
)

// The Driver owns a light collection for a scene and runs pipeline stages
// against it, recording per-stage statistics.
type Driver struct {
	logger log.Logger

	opts Options
	exec *dispatch.Executor

	scene      *scene.Scene
	collection *lights.Collection

	// Emissive textures keyed by mesh light index and the texel sums
	// produced by the last rasterize stage.
	textures map[uint32]*textureEntry
	sums     lights.TexelSums

	frame uint32
	stats FrameStats
}

// Create a new driver and allocate a light collection for the emissive
// mesh instances of sc.
func NewDriver(sc *scene.Scene, opts Options) (*Driver, error) {
	if sc == nil {
		return nil, ErrNoScene
	}

	c, err := lights.NewCollection(lights.FromScene(sc))
	if err != nil {
		return nil, err
	}
	return NewDriverForCollection(sc, c, opts)
}

// Create a new driver for an existing (for example archived) collection.
func NewDriverForCollection(sc *scene.Scene, c *lights.Collection, opts Options) (*Driver, error) {
	if sc == nil {
		return nil, ErrNoScene
	}

	return &Driver{
		logger:     log.New("pipeline"),
		opts:       opts,
		exec:       dispatch.NewExecutor(opts.NumWorkers, opts.Scheduler),
		scene:      sc,
		collection: c,
		textures:   make(map[uint32]*textureEntry),
	}, nil
}

// Get the light collection managed by the driver.
func (d *Driver) Collection() *lights.Collection {
	return d.collection
}

// Get the scene.
func (d *Driver) Scene() *scene.Scene {
	return d.scene
}

// Get the stats for the last Run call.
func (d *Driver) Stats() FrameStats {
	return d.stats
}

// Run a sequence of stages. Execution stops at the first failing stage;
// stats for the stages that completed are still recorded.
func (d *Driver) Run(stages ...Stage) error {
	if len(stages) == 0 {
		return ErrNoStages
	}

	d.frame++
	d.stats = FrameStats{
		Frame:  d.frame,
		Stages: make([]StageStat, 0, len(stages)),
	}

	start := time.Now()
	defer func() {
		d.stats.Time = time.Since(start)
		d.stats.TotalFlux = d.collection.TotalFlux()
	}()

	for _, stage := range stages {
		stageStart := time.Now()
		passes, err := stage.Run(d)
		if err != nil {
			d.logger.Errorf("stage %q failed: %s", stage.Name, err.Error())
			return err
		}

		d.stats.Stages = append(d.stats.Stages, StageStat{
			Name:   stage.Name,
			Passes: passes,
			Time:   time.Since(stageStart),
		})
	}

	d.logger.Debugf("frame %d: ran %d stages in %d ms", d.frame, len(stages), time.Since(start).Nanoseconds()/1e6)
	return nil
}
