package reader

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/emissive/asset"
	"github.com/achilleasa/emissive/log"
	"github.com/achilleasa/emissive/scene"
	"github.com/achilleasa/emissive/types"
)

// The subset of wavefront material properties that affect emission.
type wavefrontMaterial struct {
	Name string

	// Emissive color and scaler.
	Ke       types.Vec3
	KeScaler float32

	// Emissive texture, resolved against the material library location.
	KeTex string
}

// Convert to a scene material. Emissive materials without an explicit
// scaler use a factor of 1.
func (wf *wavefrontMaterial) sceneMaterial() *scene.Material {
	factor := wf.KeScaler
	if factor == 0 && (wf.KeTex != "" || wf.Ke[0] > 0 || wf.Ke[1] > 0 || wf.Ke[2] > 0) {
		factor = 1
	}
	return &scene.Material{
		Name:            wf.Name,
		EmissiveColor:   wf.Ke,
		EmissiveFactor:  factor,
		EmissiveTexture: wf.KeTex,
	}
}

// A mesh under construction. Faces of the same object that use different
// materials are split into separate meshes.
type wavefrontMesh struct {
	object string
	mesh   *scene.Mesh
	hasUVs bool

	// Maps (vertex, uv) index pairs to mesh vertex indices.
	vertexMap map[[2]int]uint32
}

type wavefrontSceneReader struct {
	logger log.Logger

	sc *scene.Scene

	// A map of material names to scene material indices.
	matNameToIndex map[string]uint32
	materials      []*wavefrontMaterial

	// Currently selected object and material.
	curObject   string
	curMaterial int

	meshes    []*wavefrontMesh
	instances []string

	// List of vertices and uv coords.
	vertexList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:         log.New("wavefront scene reader"),
		sc:             scene.NewScene(),
		matNameToIndex: make(map[string]uint32),
		curObject:      "default",
		curMaterial:    -1,
		meshes:         make([]*wavefrontMesh, 0),
		vertexList:     make([]types.Vec3, 0),
		uvList:         make([]types.Vec2, 0),
		errStack:       make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	for _, wfMat := range r.materials {
		r.sc.AddMaterial(wfMat.sceneMaterial())
	}

	meshIndices := make(map[string][]uint32)
	for _, wfMesh := range r.meshes {
		if !wfMesh.hasUVs {
			wfMesh.mesh.UVs = nil
		}
		meshIndex, err := r.sc.AddMesh(wfMesh.mesh)
		if err != nil {
			return nil, r.emitError(sceneRes.Path(), 0, err.Error())
		}
		meshIndices[wfMesh.object] = append(meshIndices[wfMesh.object], meshIndex)
	}

	// If no mesh instances are defined, create instances for each defined mesh
	if len(r.instances) == 0 {
		for meshIndex := range r.sc.Meshes {
			if _, err = r.sc.AddMeshInstance(uint32(meshIndex), types.Ident4()); err != nil {
				return nil, err
			}
		}
	}
	for _, def := range r.instances {
		if err = r.addMeshInstances(strings.Fields(def), meshIndices); err != nil {
			return nil, r.emitError(sceneRes.Path(), 0, err.Error())
		}
	}

	r.logger.Noticef(
		"parsed scene with %d meshes, %d instances and %d materials in %d ms",
		len(r.sc.Meshes), len(r.sc.MeshInstances), len(r.sc.Materials), time.Since(start).Nanoseconds()/1e6,
	)
	return r.sc, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if line > 0 {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("[%s] error: %s\n%s", file, msg, strings.Join(r.errStack, "\n"))
	}

	return fmt.Errorf("%s", strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Select the default (non-emissive) material, creating it if needed.
func (r *wavefrontSceneReader) defaultMaterial() int {
	matIndex, exists := r.matNameToIndex[""]
	if !exists {
		r.materials = append(r.materials, &wavefrontMaterial{})
		matIndex = uint32(len(r.materials) - 1)
		r.matNameToIndex[""] = matIndex
	}
	return int(matIndex)
}

// Get the mesh that receives faces for the current object and material.
func (r *wavefrontSceneReader) currentMesh() *wavefrontMesh {
	if r.curMaterial < 0 {
		r.curMaterial = r.defaultMaterial()
	}

	if last := len(r.meshes) - 1; last >= 0 {
		wfMesh := r.meshes[last]
		if wfMesh.object == r.curObject && wfMesh.mesh.MaterialIndex == uint32(r.curMaterial) {
			return wfMesh
		}
	}

	name := r.curObject
	for _, wfMesh := range r.meshes {
		if wfMesh.object == r.curObject {
			name = fmt.Sprintf("%s/%s", r.curObject, r.materials[r.curMaterial].Name)
			break
		}
	}

	wfMesh := &wavefrontMesh{
		object: r.curObject,
		mesh: &scene.Mesh{
			Name:          name,
			MaterialIndex: uint32(r.curMaterial),
		},
		vertexMap: make(map[[2]int]uint32),
	}
	r.meshes = append(r.meshes, wfMesh)
	return wfMesh
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for 'usemtl'; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matIndex, exists := r.matNameToIndex[lineTokens[1]]
			if !exists {
				return r.emitError(res.Path(), lineNum, `undefined material with name "%s"`, lineTokens[1])
			}
			r.curMaterial = int(matIndex)
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			r.curObject = lineTokens[1]
		case "f":
			if err = r.parseFace(lineTokens, relVertexOffset, relUvOffset); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "camera_fov":
			r.sc.Camera.FOV, err = parseFloat32(lineTokens)
		case "camera_eye":
			r.sc.Camera.Position, err = parseVec3(lineTokens)
		case "camera_look":
			r.sc.Camera.LookAt, err = parseVec3(lineTokens)
		case "camera_up":
			r.sc.Camera.Up, err = parseVec3(lineTokens)
		case "camera_aperture":
			r.sc.Camera.ApertureRadius, err = parseFloat32(lineTokens)
		case "camera_focal_dist":
			r.sc.Camera.FocalDistance, err = parseFloat32(lineTokens)
		case "instance":
			// Instances may reference objects defined later on; resolve them once parsing completes.
			if len(lineTokens) != 11 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "instance"; expected 10 arguments: mesh_name tX tY tZ yaw pitch roll sX sY sZ; got %d`, len(lineTokens)-1)
			}
			r.instances = append(r.instances, strings.Join(lineTokens, " "))
		}

		if err != nil {
			return r.emitError(res.Path(), lineNum, err.Error())
		}
	}

	return scanner.Err()
}

// Parse mesh instance definition and instantiate every mesh generated for
// the referenced object. Definitions use the following format:
// instance object_name tX tY tZ yaw pitch roll sX sY sZ
// where:
// - tX, tY, tZ       : translation vector
// - yaw, pitch, roll : rotation angles in degrees
// - sX, sY, sZ	      : scale
func (r *wavefrontSceneReader) addMeshInstances(lineTokens []string, meshIndices map[string][]uint32) error {
	indices, exists := meshIndices[lineTokens[1]]
	if !exists {
		return fmt.Errorf(`unknown mesh with name "%s"`, lineTokens[1])
	}

	var args [9]float32
	for index := range args {
		v, err := strconv.ParseFloat(lineTokens[index+2], 32)
		if err != nil {
			return err
		}
		args[index] = float32(v)
	}

	toRad := float32(math.Pi / 180.0)
	rotMat := types.RotateAxis(args[5]*toRad, types.XYZ(0, 0, 1)).
		Mul4(types.RotateAxis(args[4]*toRad, types.XYZ(0, 1, 0))).
		Mul4(types.RotateAxis(args[3]*toRad, types.XYZ(1, 0, 0)))

	// M = T * R * S
	transform := types.Translate(types.XYZ(args[0], args[1], args[2])).
		Mul4(rotMat).
		Mul4(types.Scale(types.XYZ(args[6], args[7], args[8])))

	for _, meshIndex := range indices {
		if _, err := r.sc.AddMeshInstance(meshIndex, transform); err != nil {
			return err
		}
	}
	return nil
}

// Parse face definition. Each face definition consists of at least 3
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The
// following formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the
// end of the vertex/uv list. Normal indices are ignored as face normals are
// always derived from the vertex winding. Polygons are triangulated as fans.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset int) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	wfMesh := r.currentMesh()

	faceIndices := make([]uint32, len(lineTokens)-1)
	expIndices := 0
	for arg := 0; arg < len(faceIndices); arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}

		uvOffset := -1
		if expIndices > 1 && vTokens[1] != "" {
			uvOffset, err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		key := [2]int{vOffset, uvOffset}
		meshVertex, exists := wfMesh.vertexMap[key]
		if !exists {
			var uv types.Vec2
			if uvOffset >= 0 {
				uv = r.uvList[uvOffset]
				wfMesh.hasUVs = true
			}
			meshVertex = uint32(len(wfMesh.mesh.Positions))
			wfMesh.mesh.Positions = append(wfMesh.mesh.Positions, r.vertexList[vOffset])
			wfMesh.mesh.UVs = append(wfMesh.mesh.UVs, uv)
			wfMesh.vertexMap[key] = meshVertex
		}
		faceIndices[arg] = meshVertex
	}

	for k := 1; k < len(faceIndices)-1; k++ {
		wfMesh.mesh.Indices = append(wfMesh.mesh.Indices, faceIndices[0], faceIndices[k], faceIndices[k+1])
	}
	return nil
}

// Parse a wavefront material library.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int
	var err error

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *wavefrontMaterial
	var matName string

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName = lineTokens[1]
			if _, exists := r.matNameToIndex[matName]; exists {
				return r.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			curMaterial = &wavefrontMaterial{Name: matName}
			r.materials = append(r.materials, curMaterial)
			r.matNameToIndex[matName] = uint32(len(r.materials) - 1)
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				baseMaterialIndex, exists := r.matNameToIndex[lineTokens[1]]
				if !exists {
					return r.emitError(res.Path(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				*curMaterial = *r.materials[baseMaterialIndex]
				curMaterial.Name = matName
			case "Ke":
				curMaterial.Ke, err = parseVec3(lineTokens)
			case "KeScaler":
				curMaterial.KeScaler, err = parseFloat32(lineTokens)
			case "map_Ke":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}
				curMaterial.KeTex, err = asset.ResolvePath(lineTokens[len(lineTokens)-1], res)
			}

			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	return scanner.Err()
}

// Given an index for a face coord type (vertex, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for '%s'; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for '%s'; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for '%s'; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
