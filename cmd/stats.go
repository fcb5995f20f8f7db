package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/emissive/pipeline"
	"github.com/olekukonko/tablewriter"
)

func displayFrameStats(stats pipeline.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Pass", "Worker", "Block rows", "% of grid", "Time"})
	for _, stage := range stats.Stages {
		for _, pass := range stage.Passes {
			for _, worker := range pass.Workers {
				table.Append([]string{
					stage.Name,
					pass.Name,
					worker.Id,
					fmt.Sprintf("%d-%d", worker.BlockY, worker.BlockY+worker.BlockH),
					fmt.Sprintf("%02.1f %%", worker.GridPercent),
					fmt.Sprintf("%s", worker.DispatchTime),
				})
			}
		}
		table.Append([]string{stage.Name, "", "", "", "", fmt.Sprintf("%s", stage.Time)})
	}
	table.SetFooter([]string{"", "", "", fmt.Sprintf("FLUX %.3f lm", stats.TotalFlux), "TOTAL", fmt.Sprintf("%s", stats.Time)})

	table.Render()
	logger.Noticef("frame %d statistics\n%s", stats.Frame, buf.String())
}
