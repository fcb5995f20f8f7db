package lights

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of the collection memory footprint and
// its mesh lights.
func (c *Collection) Stats() string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Buffer", "Entries", "Size"})
	table.Append([]string{"Mesh lights", fmt.Sprintf("%d", len(c.MeshLights)), fmtSize(c.MeshLights)})
	table.Append([]string{"Triangles", fmt.Sprintf("%d", len(c.Triangles)), fmtSize(c.Triangles, c.States)})
	table.Append([]string{"Positions", fmt.Sprintf("%d", len(c.Positions)), fmtSize(c.Positions)})
	table.Append([]string{"UVs", fmt.Sprintf("%d", len(c.UVs)), fmtSize(c.UVs)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(c.MeshLights, c.Triangles, c.States, c.Positions, c.UVs), " ")})
	table.Render()

	// Aggregate per-light flux and lifecycle counts
	flux := make([]float64, len(c.MeshLights))
	integrated := make([]uint32, len(c.MeshLights))
	for idx, tri := range c.Triangles {
		if c.States[idx] != Integrated {
			continue
		}
		flux[tri.LightIdx] += float64(tri.Flux)
		integrated[tri.LightIdx]++
	}

	buf.WriteString("\n")
	table = tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Light", "Mesh instance", "Triangles", "Offset", "Textured", "Integrated", "Flux (lm)"})
	for idx, ml := range c.MeshLights {
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			fmt.Sprintf("%d", ml.MeshInstanceID),
			fmt.Sprintf("%d", ml.TriangleCount),
			fmt.Sprintf("%d", ml.TriangleOffset),
			fmt.Sprintf("%t", ml.Textured),
			fmt.Sprintf("%d", integrated[idx]),
			fmt.Sprintf("%.3f", flux[idx]),
		})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d", len(c.Triangles)), "", "", "TOTAL", fmt.Sprintf("%.3f", c.TotalFlux())})
	table.Render()

	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
