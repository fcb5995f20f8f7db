package lights

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/achilleasa/emissive/asset"
	"github.com/achilleasa/emissive/log"
)

const (
	meshLightsFile = "mesh_lights.bin"
	positionsFile  = "positions.bin"
	uvsFile        = "uvs.bin"
)

// The gob encoded part of an archived collection. Vertex staging data is
// stored separately using the wire layout.
type archivedCollection struct {
	MeshLights []MeshLight
	Triangles  []EmissiveTriangle
	States     []TriangleState
}

// Write a collection to a zip archive.
func WriteCollection(c *Collection, filename string) error {
	logger := log.New("light archive")
	logger.Noticef("writing light collection to %s", filename)
	start := time.Now()

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	w, err := zw.Create(meshLightsFile)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(w).Encode(&archivedCollection{
		MeshLights: c.MeshLights,
		Triangles:  c.Triangles,
		States:     c.States,
	})
	if err != nil {
		return fmt.Errorf("lights: failed to encode collection: %s", err.Error())
	}

	for name, data := range map[string][]byte{
		positionsFile: EncodePositions(c.Positions),
		uvsFile:       EncodeUVs(c.UVs),
	} {
		w, err = zw.Create(name)
		if err != nil {
			return err
		}
		if _, err = w.Write(data); err != nil {
			return err
		}
	}

	if err = zw.Close(); err != nil {
		return err
	}

	logger.Noticef("wrote light collection in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Read a collection from a zip archive resource.
func ReadCollection(res *asset.Resource) (*Collection, error) {
	logger := log.New("light archive")
	logger.Noticef(`reading light collection from "%s"`, res.Path())
	start := time.Now()

	// zip requires an io.ReaderAt; buffer the entire stream
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	c := &Collection{logger: log.New("light collection")}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}

		switch f.Name {
		case meshLightsFile:
			var ac archivedCollection
			err = gob.NewDecoder(rc).Decode(&ac)
			c.MeshLights, c.Triangles, c.States = ac.MeshLights, ac.Triangles, ac.States
		case positionsFile:
			var raw []byte
			if raw, err = io.ReadAll(rc); err == nil {
				c.Positions, err = DecodePositions(raw)
			}
		case uvsFile:
			var raw []byte
			if raw, err = io.ReadAll(rc); err == nil {
				c.UVs, err = DecodeUVs(raw)
			}
		default:
			logger.Warningf("unknown file %s in light archive; skipping", f.Name)
		}
		rc.Close()

		if err != nil {
			return nil, fmt.Errorf("lights: failed to load %s: %s", f.Name, err.Error())
		}
	}

	if len(c.States) != len(c.Triangles) || len(c.Positions) != 3*len(c.Triangles) || len(c.UVs) != 3*len(c.Triangles) {
		return nil, fmt.Errorf("lights: archive %s is incomplete", res.Path())
	}
	if err = c.validateRanges(); err != nil {
		return nil, err
	}

	for _, state := range c.States {
		if state != Unbuilt {
			c.built = true
			break
		}
	}

	logger.Noticef("loaded light collection in %d ms", time.Since(start).Nanoseconds()/1e6)
	return c, nil
}

// Check that the mesh light ranges tile the triangle arena without gaps and
// that every built triangle points back to the light owning its range.
func (c *Collection) validateRanges() error {
	var offset uint64
	for _, ml := range c.MeshLights {
		if uint64(ml.TriangleOffset) != offset {
			return ErrInvalidArchive
		}
		offset += uint64(ml.TriangleCount)
	}
	if offset != uint64(len(c.Triangles)) {
		return ErrInvalidArchive
	}

	for triIdx, tri := range c.Triangles {
		if tri.LightIdx >= uint32(len(c.MeshLights)) {
			return ErrInvalidArchive
		}
		if c.States[triIdx] == Unbuilt {
			continue
		}
		if lightIdx, _, ok := c.Locate(uint32(triIdx)); !ok || lightIdx != tri.LightIdx {
			return ErrInvalidArchive
		}
	}
	return nil
}
