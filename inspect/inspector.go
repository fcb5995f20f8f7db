package inspect

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/emissive/lights"
	"github.com/achilleasa/emissive/log"
	"github.com/achilleasa/emissive/scene"
	"github.com/achilleasa/emissive/shading"
	"github.com/achilleasa/emissive/types"
	"github.com/olekukonko/tablewriter"
)

// Approximation reported when the inspected camera uses a thin lens.
const DepthOfFieldApproximation = "view vector reconstructed from the lens center; depth of field jitter is ignored"

// The data read back for a single selected pixel. The view direction of
// the geometry sample is ignored and rebuilt from the camera position.
type PixelSample struct {
	X, Y uint32

	Geometry shading.GeometrySample
	Material shading.PackedMaterial
}

// The shading record rebuilt for an inspected pixel together with any
// known deviations from the render path.
type Result struct {
	X, Y uint32

	Record         shading.ShadingRecord
	Approximations []string
}

// The Inspector re-derives shading records for individual pixels using the
// same frame and material decoding logic as the render path.
type Inspector struct {
	logger log.Logger
	camera *scene.Camera
}

// Create a new inspector for a camera.
func NewInspector(camera *scene.Camera) *Inspector {
	return &Inspector{
		logger: log.New("pixel inspector"),
		camera: camera,
	}
}

// Rebuild the shading record for a pixel.
func (in *Inspector) Inspect(ps PixelSample) Result {
	geom := ps.Geometry
	geom.ViewDir = in.camera.Position.Sub(geom.PosW)

	res := Result{
		X:      ps.X,
		Y:      ps.Y,
		Record: shading.Assemble(shading.BuildFrame(geom), shading.DecodeMaterial(ps.Material)),
	}

	if in.camera.HasDepthOfField() {
		in.logger.Warningf("pixel (%d, %d): %s", ps.X, ps.Y, DepthOfFieldApproximation)
		res.Approximations = append(res.Approximations, DepthOfFieldApproximation)
	}

	return res
}

// Build a sample located at the centroid of an emissive triangle. The
// triangle's average radiance is used as the emissive material color.
func SampleTriangle(c *lights.Collection, triIdx uint32) (PixelSample, error) {
	if triIdx >= c.TriangleCount() {
		return PixelSample{}, fmt.Errorf("inspect: triangle %d out of range [0, %d)", triIdx, c.TriangleCount())
	}
	if c.States[triIdx] == lights.Unbuilt {
		return PixelSample{}, lights.ErrNotBuilt
	}

	tri := c.Triangles[triIdx]
	base := int(triIdx) * 3
	p := c.Positions[base : base+3]
	uv := c.UVs[base : base+3]

	mat := shading.DefaultMaterialParams()
	mat.Emissive = tri.AverageRadiance

	return PixelSample{
		Geometry: shading.GeometrySample{
			PosW:       p[0].Add(p[1]).Add(p[2]).Mul(1.0 / 3.0),
			Normal:     tri.Normal,
			Bitangent:  p[2].Sub(p[0]),
			FaceNormal: tri.Normal,
			UV:         uv[0].Add(uv[1]).Add(uv[2]).Mul(1.0 / 3.0),
			HasUV:      true,
		},
		Material: shading.EncodeMaterial(mat),
	}, nil
}

// Render the result as a table.
func (r Result) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Pixel (%d, %d)\n", r.X, r.Y)

	sr := r.Record
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Position", fmtVec3(sr.PosW)})
	table.Append([]string{"V", fmtVec3(sr.V)})
	table.Append([]string{"N", fmtVec3(sr.N)})
	table.Append([]string{"T", fmtVec3(sr.T)})
	table.Append([]string{"B", fmtVec3(sr.B)})
	table.Append([]string{"Face normal", fmtVec3(sr.FaceN)})
	table.Append([]string{"UV", fmt.Sprintf("(%.4f, %.4f)", sr.UV[0], sr.UV[1])})
	table.Append([]string{"NdotV", fmt.Sprintf("%.4f", sr.NdotV)})
	table.Append([]string{"Front facing", fmt.Sprintf("%t", sr.FrontFacing)})
	table.Append([]string{"Diffuse", fmtVec3(sr.Diffuse)})
	table.Append([]string{"Opacity", fmt.Sprintf("%.4f", sr.Opacity)})
	table.Append([]string{"Specular", fmtVec3(sr.Specular)})
	table.Append([]string{"Roughness (linear / alpha)", fmt.Sprintf("%.4f / %.4f", sr.LinearRoughness, sr.Roughness)})
	table.Append([]string{"Emissive", fmtVec3(sr.Emissive)})
	table.Append([]string{"IoR", fmt.Sprintf("%.4f", sr.IoR)})
	table.Append([]string{"Double sided", fmt.Sprintf("%t", sr.DoubleSided)})
	table.Render()

	for _, note := range r.Approximations {
		fmt.Fprintf(&buf, "approximation: %s\n", note)
	}

	return buf.String()
}

func fmtVec3(v types.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}
