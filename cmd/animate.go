package cmd

import (
	"errors"
	"math"

	"github.com/achilleasa/emissive/lights"
	"github.com/achilleasa/emissive/pipeline"
	"github.com/achilleasa/emissive/scene"
	"github.com/achilleasa/emissive/scene/reader"
	"github.com/achilleasa/emissive/types"
	"github.com/urfave/cli"
)

// Spin the emissive instances of a scene around their local Y axis, bend
// any skinned emitters and refresh the light collection for each frame.
func AnimateLights(ctx *cli.Context) error {
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
	logger.Noticef("frame 0: total flux %.3f lm", d.Stats().TotalFlux)

	frames := ctx.Int("frames")
	step := float32(ctx.Float64("angle") * math.Pi / 180.0)
	stages := pipeline.AnimationStages(!ctx.Bool("no-integrate"))
	for frame := 1; frame <= frames; frame++ {
		poseLights(sc, d.Collection(), step, float32(frame))

		if err = d.Run(stages...); err != nil {
			return err
		}
		logger.Noticef("frame %d: total flux %.3f lm", frame, d.Stats().TotalFlux)
		if ctx.GlobalBool("vv") {
			displayFrameStats(d.Stats())
		}
	}

	if outFile := ctx.String("out"); outFile != "" {
		return lights.WriteCollection(d.Collection(), outFile)
	}
	return nil
}

// Apply the animation pose for a frame to every instance that owns a mesh light.
func poseLights(sc *scene.Scene, c *lights.Collection, step, frame float32) {
	yAxis := types.XYZ(0, 1, 0)
	zAxis := types.XYZ(0, 0, 1)

	for _, ml := range c.MeshLights {
		inst := sc.MeshInstances[ml.MeshInstanceID]
		inst.Transform = inst.Transform.Mul4(types.RotateAxis(step, yAxis))

		mesh := sc.Meshes[inst.MeshIndex]
		if !mesh.IsSkinned() {
			continue
		}

		// Each joint past the root bends a little further.
		numJoints := jointCount(mesh)
		inst.JointMatrices = make([]types.Mat4, numJoints)
		for j := 0; j < numJoints; j++ {
			inst.JointMatrices[j] = types.RotateAxis(step*frame*float32(j)/float32(numJoints), zAxis)
		}
	}
}

func jointCount(mesh *scene.Mesh) int {
	var maxJoint uint32
	for _, joints := range mesh.Joints {
		for _, j := range joints {
			if j > maxJoint {
				maxJoint = j
			}
		}
	}
	return int(maxJoint) + 1
}
