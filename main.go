package main

import (
	"os"
	"runtime"

	"github.com/achilleasa/glint/cmd"
	"github.com/urfave/cli"
)

func init() {
	// glfw and the OpenGL context must be driven from the main thread.
	runtime.LockOSThread()
}

func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "preset, p",
			Value: "cubes",
			Usage: "scene preset to load (see the presets command)",
		},
		cli.StringFlag{
			Name:  "floor-texture",
			Usage: "image used to texture the floor",
		},
		cli.StringFlag{
			Name:  "script",
			Usage: "go source file defining func Update(dt float32)",
		},
		cli.Float64Flag{
			Name:  "timestep",
			Value: 1.0 / 60.0,
			Usage: "fixed simulation timestep in seconds",
		},
	}
}

func bvhFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "max-prims",
			Value: 4,
			Usage: "max primitives per bvh leaf",
		},
		cli.StringFlag{
			Name:  "split",
			Value: "sah",
			Usage: "bvh split method (sah or equal-counts)",
		},
	}
}

func renderFlags() []cli.Flag {
	flags := append(sceneFlags(), bvhFlags()...)
	return append(flags,
		cli.IntFlag{
			Name:  "width",
			Value: 1024,
			Usage: "window width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 768,
			Usage: "window height",
		},
		cli.BoolFlag{
			Name:  "no-vsync",
			Usage: "disable vertical sync",
		},
	)
}

func main() {
	app := cli.NewApp()
	app.Name = "glint"
	app.Usage = "real-time rendering of 3D scenes using deferred shading or compute ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "yaml configuration file or URL; command line flags override its values",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render scene interactively",
			Subcommands: []cli.Command{
				{
					Name:  "deferred",
					Usage: "render using deferred shading with light volumes",
					Description: `
Render opaque geometry into a G-buffer and shade it by drawing one volume per
light. Transparent geometry is forward shaded on top of the lit frame.`,
					Flags:  renderFlags(),
					Action: cmd.RenderDeferred,
				},
				{
					Name:  "raytrace",
					Usage: "render using the compute shader ray tracer",
					Description: `
Compile the scene into flat vertex, triangle, material and BVH buffers and
trace one primary ray per pixel in a compute shader.`,
					Flags:  renderFlags(),
					Action: cmd.RenderRayTrace,
				},
			},
		},
		{
			Name:   "bvh",
			Usage:  "build the BVH for a scene preset and display its statistics",
			Flags:  append(sceneFlags(), bvhFlags()...),
			Action: cmd.BuildBvh,
		},
		{
			Name:  "simulate",
			Usage: "run a headless simulation and display detected collisions",
			Flags: append(sceneFlags(), cli.IntFlag{
				Name:  "frames, n",
				Value: 300,
				Usage: "number of simulation steps",
			}),
			Action: cmd.Simulate,
		},
		{
			Name:   "presets",
			Usage:  "list available scene presets",
			Action: cmd.ListPresets,
		},
	}

	if err := app.Run(os.Args); err != nil {
		cmd.Fatal(err)
	}
}
