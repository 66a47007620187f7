package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/glint/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List available scene presets.
func ListPresets(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Preset", "Entities", "Lights", "Description"})

	for _, name := range scene.PresetNames() {
		sc, err := scene.Preset(name, scene.PresetOptions{})
		if err != nil {
			return err
		}
		table.Append([]string{
			name,
			fmt.Sprintf("%d", sc.Entities.Len()),
			fmt.Sprintf("%d", len(sc.Lights)),
			scene.PresetDescription(name),
		})
	}

	table.Render()
	logger.Noticef("available scene presets\n%s", buf.String())
	return nil
}
