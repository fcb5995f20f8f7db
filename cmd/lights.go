package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/emissive/asset"
	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/lights"
	"github.com/achilleasa/emissive/pipeline"
	"github.com/achilleasa/emissive/scene/reader"
	"github.com/urfave/cli"
)

// Build the emissive light collection for one or more scenes and write it
// next to each scene file.
func BuildLights(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	opts, err := pipelineOptions(ctx)
	if err != nil {
		return err
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)

		logger.Noticef("building emissive lights for scene: %s", sceneFile)
		sc, err := reader.ReadScene(sceneFile)
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
		displayFrameStats(d.Stats())

		c := d.Collection()
		logger.Noticef("light collection:\n%s", c.Stats())

		outFile := ctx.String("out")
		if outFile == "" || ctx.NArg() > 1 {
			outFile = lightsFile(sceneFile)
		}
		if err = lights.WriteCollection(c, outFile); err != nil {
			return err
		}
	}

	return nil
}

// Display the contents of a light collection archive.
func ShowLightInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing light collection zip file")
	}

	c, err := readLights(ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("light collection:\n%s", c.Stats())

	if samples := ctx.Int("samples"); samples > 0 {
		sampler := lights.NewFluxSampler(c)
		for idx := 0; idx < samples; idx++ {
			u := (float32(idx) + 0.5) / float32(samples)
			triIdx, pdf := sampler.Sample(u)
			lightIdx, localIdx, _ := c.Locate(triIdx)
			logger.Noticef("u=%.3f -> triangle %d (light %d, local %d) pdf=%.5f", u, triIdx, lightIdx, localIdx, pdf)
		}
	}

	return nil
}

func readLights(filename string) (*lights.Collection, error) {
	if !strings.HasSuffix(filename, ".zip") {
		return nil, errors.New("only light collection files with a .zip extension are supported")
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return lights.ReadCollection(res)
}

// Get the name of the light collection archive for a scene file.
func lightsFile(sceneFile string) string {
	for _, ext := range []string{".obj", ".zip"} {
		if strings.HasSuffix(sceneFile, ext) {
			return strings.TrimSuffix(sceneFile, ext) + ".lights.zip"
		}
	}
	return sceneFile + ".lights.zip"
}

func pipelineOptions(ctx *cli.Context) (pipeline.Options, error) {
	opts := pipeline.Options{
		NumWorkers:   ctx.GlobalInt("workers"),
		SkipTextures: ctx.Bool("skip-textures"),
	}

	switch ctx.GlobalString("scheduler") {
	case "", "naive":
		opts.Scheduler = dispatch.NaiveScheduler()
	case "perfect":
		opts.Scheduler = dispatch.PerfectScheduler()
	default:
		return opts, fmt.Errorf("unknown block scheduler %q", ctx.GlobalString("scheduler"))
	}

	return opts, nil
}
