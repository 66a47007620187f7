package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/achilleasa/glint/config"
	"github.com/achilleasa/glint/engine"
	"github.com/urfave/cli"
)

// Render the scene interactively using deferred shading.
func RenderDeferred(ctx *cli.Context) error {
	return render(ctx, config.Deferred)
}

// Render the scene interactively using the compute shader ray tracer.
func RenderRayTrace(ctx *cli.Context) error {
	return render(ctx, config.RayTrace)
}

func render(ctx *cli.Context, path config.RenderPath) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg.RenderPath = path
	if ctx.Bool("no-vsync") {
		cfg.Window.VSync = false
	}

	e, err := engine.Open(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Notice("arrow keys/WASD move, QE change height, left mouse rotates, P pauses, ESC exits")
	return e.Run(runCtx)
}
