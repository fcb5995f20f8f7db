package pipeline

import (
	"fmt"

	"github.com/achilleasa/emissive/asset"
	"github.com/achilleasa/emissive/asset/texture"
	"github.com/achilleasa/emissive/dispatch"
	"github.com/achilleasa/emissive/raster"
)

// A named pipeline step operating on the driver's light collection.
type Stage struct {
	Name string
	Run  func(d *Driver) ([]dispatch.PassStats, error)
}

// A cached emissive texture and the path it was loaded from.
type textureEntry struct {
	path string
	tex  *texture.Texture
}

// The stages needed to go from a scene to an integrated light collection.
func DefaultStages() []Stage {
	return []Stage{BuildStage(), RasterizeStage(), IntegrateStage()}
}

// The stages to run after instances have moved or been re-skinned. If
// reintegrate is set, flux is refreshed from the updated areas.
func AnimationStages(reintegrate bool) []Stage {
	if !reintegrate {
		return []Stage{UpdateStage()}
	}
	return []Stage{UpdateStage(), IntegrateStage()}
}

// Populate triangle geometry for every mesh light.
func BuildStage() Stage {
	return Stage{
		Name: "build",
		Run: func(d *Driver) ([]dispatch.PassStats, error) {
			return d.collection.Build(d.exec, d.scene)
		},
	}
}

// Load the emissive textures of textured lights and accumulate per-triangle
// texel sums for the integrator.
func RasterizeStage() Stage {
	return Stage{
		Name: "rasterize",
		Run: func(d *Driver) ([]dispatch.PassStats, error) {
			if !d.collection.IsBuilt() {
				return nil, ErrNotBuilt
			}

			textures, err := d.loadTextures()
			if err != nil {
				return nil, err
			}

			sums, stats := raster.NewTexelRasterizer(textures).Accumulate(d.exec, d.collection)
			d.sums = sums
			return []dispatch.PassStats{stats}, nil
		},
	}
}

// Compute average radiance and flux using the last rasterized texel sums.
func IntegrateStage() Stage {
	return Stage{
		Name: "integrate",
		Run: func(d *Driver) ([]dispatch.PassStats, error) {
			if !d.collection.IsBuilt() {
				return nil, ErrNotBuilt
			}

			stats, err := d.collection.Integrate(d.exec, d.sums)
			if err != nil {
				return nil, err
			}
			return []dispatch.PassStats{stats}, nil
		},
	}
}

// Refresh triangle geometry from the current instance transforms and
// skinning poses.
func UpdateStage() Stage {
	return Stage{
		Name: "update",
		Run: func(d *Driver) ([]dispatch.PassStats, error) {
			if !d.collection.IsBuilt() {
				return nil, ErrNotBuilt
			}

			stats, err := d.collection.Update(d.exec, d.scene)
			if err != nil {
				return nil, err
			}
			return []dispatch.PassStats{stats}, nil
		},
	}
}

// Load (or fetch from the cache) the emissive texture of each textured
// mesh light.
func (d *Driver) loadTextures() (map[uint32]*texture.Texture, error) {
	textures := make(map[uint32]*texture.Texture)
	if d.opts.SkipTextures {
		return textures, nil
	}

	for lightIdx, ml := range d.collection.MeshLights {
		if !ml.Textured {
			continue
		}

		path := d.scene.InstanceMaterial(ml.MeshInstanceID).EmissiveTexture
		entry, cached := d.textures[uint32(lightIdx)]
		if !cached || entry.path != path {
			tex, err := loadTexture(path)
			if err != nil {
				return nil, fmt.Errorf("pipeline: could not load emissive texture for light %d: %s", lightIdx, err.Error())
			}
			entry = &textureEntry{path: path, tex: tex}
			d.textures[uint32(lightIdx)] = entry
			d.logger.Infof("loaded %dx%d emissive texture %s for light %d", tex.Width, tex.Height, path, lightIdx)
		}
		textures[uint32(lightIdx)] = entry.tex
	}

	return textures, nil
}

func loadTexture(path string) (*texture.Texture, error) {
	res, err := asset.NewResource(path, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return texture.New(res)
}
