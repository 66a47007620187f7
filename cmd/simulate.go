package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/achilleasa/glint/engine"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/sim"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Run a headless fixed step simulation and display the detected collisions.
func Simulate(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	sc, err := engine.LoadScene(context.Background(), cfg)
	if err != nil {
		return err
	}

	hook, err := engine.LoadHook(context.Background(), cfg, sc)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Frame", "Time", "Dynamic", "Static", "Overlap"})

	world := sim.NewWorld(sc, hook)
	frames := ctx.Int("frames")
	numCollisions := 0
	for frame := 0; frame < frames; frame++ {
		collisions, err := world.Step(cfg.TimeStep)
		if err != nil {
			return err
		}

		for _, c := range collisions {
			table.Append([]string{
				fmt.Sprintf("%d", frame),
				fmt.Sprintf("%.3fs", float32(frame+1)*cfg.TimeStep),
				entityName(sc, c.Dynamic),
				entityName(sc, c.Static),
				fmt.Sprintf("%.3f", c.Overlap),
			})
		}
		numCollisions += len(collisions)
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%d", numCollisions)})

	table.Render()
	logger.Noticef("simulated %d frames of preset %q\n%s", frames, cfg.Scene.Preset, buf.String())
	return nil
}

func entityName(sc *scene.Scene, id scene.EntityID) string {
	if ent, ok := sc.Entities.Get(id); ok {
		return ent.Name
	}
	return id.String()
}
