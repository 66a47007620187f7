package cmd

import (
	"context"

	"github.com/achilleasa/glint/config"
	"github.com/urfave/cli"
)

// Load the config file selected by the --config flag and apply command line
// overrides on top of it.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if location := ctx.GlobalString("config"); location != "" {
		var err error
		if cfg, err = config.Load(context.Background(), location); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet("preset") {
		cfg.Scene.Preset = ctx.String("preset")
	}
	if ctx.IsSet("script") {
		cfg.Scene.Script = ctx.String("script")
	}
	if ctx.IsSet("floor-texture") {
		cfg.Scene.FloorTexture = ctx.String("floor-texture")
	}
	if ctx.IsSet("width") {
		cfg.Window.Width = uint32(ctx.Int("width"))
	}
	if ctx.IsSet("height") {
		cfg.Window.Height = uint32(ctx.Int("height"))
	}
	if ctx.IsSet("max-prims") {
		cfg.Bvh.MaxPrimsPerNode = ctx.Int("max-prims")
	}
	if ctx.IsSet("split") {
		cfg.Bvh.SplitMethod = ctx.String("split")
	}
	if ctx.IsSet("timestep") {
		cfg.TimeStep = float32(ctx.Float64("timestep"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
