package cmd

import (
	"errors"

	"github.com/achilleasa/emissive/inspect"
	"github.com/achilleasa/emissive/pipeline"
	"github.com/achilleasa/emissive/scene/reader"
	"github.com/urfave/cli"
)

// Build the lights of a scene and print the shading record rebuilt at the
// centroid of an emissive triangle.
func InspectTriangle(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	opts, err := pipelineOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	d, err := pipeline.NewDriver(sc, opts)
	if err != nil {
		return err
	}
	if err = d.Run(pipeline.DefaultStages()...); err != nil {
		return err
	}

	ps, err := inspect.SampleTriangle(d.Collection(), uint32(ctx.Int("triangle")))
	if err != nil {
		return err
	}

	logger.Noticef("inspection result:\n%s", inspect.NewInspector(sc.Camera).Inspect(ps).String())
	return nil
}
