package main

import (
	"os"

	"github.com/achilleasa/emissive/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	pipelineFlags := []cli.Flag{
		cli.BoolFlag{
			Name:  "skip-textures",
			Usage: "do not load emissive textures; textured lights use a neutral radiance",
		},
	}

	app := cli.NewApp()
	app.Name = "emissive"
	app.Usage = "build and animate emissive triangle light collections"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level (debug, info, notice, warning, error)",
		},
		cli.IntFlag{
			Name:  "workers, w",
			Value: 0,
			Usage: "number of dispatch workers (0 = number of CPUs)",
		},
		cli.StringFlag{
			Name:  "scheduler",
			Value: "naive",
			Usage: "row block scheduler (naive, perfect)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build the emissive light collection for a scene",
			Description: `
Parse a scene from a wavefront obj file or a scene archive, collect the
triangles of every emissive mesh instance, rasterize emissive textures and
integrate per-triangle radiance and flux.

The light collection is written to a zip archive next to the scene file
(scene.lights.zip) unless an output file is specified.`,
			ArgsUsage: "scene_file1.obj scene_file2.zip ...",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output file for the light collection (single scene only)",
				},
			}, pipelineFlags...),
			Action: cmd.BuildLights,
		},
		{
			Name:  "animate",
			Usage: "animate the emissive instances of a scene and refresh the lights per frame",
			Description: `
Rotate every emissive mesh instance around its Y axis, bend skinned emitters
and update the light collection for each frame. Unless integration is
disabled the flux of each frame is recomputed from the updated triangle
areas.`,
			ArgsUsage: "scene_file",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames",
					Value: 10,
					Usage: "number of frames to animate",
				},
				cli.Float64Flag{
					Name:  "angle",
					Value: 15,
					Usage: "rotation per frame in degrees",
				},
				cli.BoolFlag{
					Name:  "no-integrate",
					Usage: "only update triangle geometry; flux is left stale",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "write the light collection of the last frame to this file",
				},
			}, pipelineFlags...),
			Action: cmd.AnimateLights,
		},
		{
			Name:      "info",
			Usage:     "display the contents of a light collection archive",
			ArgsUsage: "scene.lights.zip",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "samples",
					Value: 0,
					Usage: "draw this many stratified flux samples from the collection",
				},
			},
			Action: cmd.ShowLightInfo,
		},
		{
			Name:      "inspect",
			Usage:     "print the shading record at the centroid of an emissive triangle",
			ArgsUsage: "scene_file",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "triangle, t",
					Value: 0,
					Usage: "global emissive triangle index",
				},
			}, pipelineFlags...),
			Action: cmd.InspectTriangle,
		},
		{
			Name:      "demo",
			Usage:     "write a demo scene archive with a few emissive meshes",
			ArgsUsage: "demo.zip",
			Action:    cmd.WriteDemoScene,
		},
	}

	app.Run(os.Args)
}
