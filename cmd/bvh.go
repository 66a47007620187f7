package cmd

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/achilleasa/glint/engine"
	"github.com/achilleasa/glint/scene/bvh"
	"github.com/achilleasa/glint/scene/compiler"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Build the BVH for a scene preset and display its statistics.
func BuildBvh(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	sc, err := engine.LoadScene(context.Background(), cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	compiled, err := compiler.Compile(sc, compiler.Options{
		MaxPrimsPerNode: cfg.Bvh.MaxPrimsPerNode,
		SplitMethod:     cfg.SplitMethod(),
	})
	if err != nil {
		return err
	}

	displayBvhStats(cfg.Scene.Preset, cfg.SplitMethod(), len(compiled.Triangles), bvh.CollectStats(compiled.BvhNodes), time.Since(start))
	return nil
}

func displayBvhStats(preset string, method bvh.SplitMethod, triangles int, stats bvh.Stats, buildTime time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.AppendBulk([][]string{
		{"Preset", preset},
		{"Split method", method.String()},
		{"Triangles", fmt.Sprintf("%d", triangles)},
		{"Nodes", fmt.Sprintf("%d", stats.Nodes)},
		{"Interior nodes", fmt.Sprintf("%d", stats.Interior)},
		{"Leafs", fmt.Sprintf("%d", stats.Leafs)},
		{"Max depth", fmt.Sprintf("%d", stats.MaxDepth)},
		{"Leaf primitives (min/avg/max)", fmt.Sprintf("%d / %.2f / %d", stats.MinLeafPrimitives, stats.AvgLeafPrimitives(), stats.MaxLeafPrimitives)},
		{"Relative node area", fmt.Sprintf("%.2f", stats.RelativeArea)},
	})
	table.SetFooter([]string{"Build time", buildTime.String()})

	table.Render()
	logger.Noticef("bvh statistics\n%s", buf.String())
}
