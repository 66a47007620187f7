package engine

import (
	"context"
	"fmt"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/config"
	"github.com/achilleasa/glint/renderer"
	"github.com/achilleasa/glint/renderer/opengl"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/compiler"
	"github.com/achilleasa/glint/scene/sim"
	"github.com/achilleasa/glint/script"
	"github.com/achilleasa/glint/tracer"
	"github.com/achilleasa/glint/types"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// LoadScene builds the configured scene preset and sets up its camera for
// the configured window.
func LoadScene(ctx context.Context, cfg *config.Config) (*scene.Scene, error) {
	var opts scene.PresetOptions
	if cfg.Scene.FloorTexture != "" {
		tex, err := asset.LoadTexture(ctx, cfg.Scene.FloorTexture)
		if err != nil {
			return nil, err
		}
		opts.FloorTexture = tex
	}

	sc, err := scene.Preset(cfg.Scene.Preset, opts)
	if err != nil {
		return nil, err
	}

	for _, model := range cfg.Scene.Models {
		if err = addModel(ctx, sc, model); err != nil {
			return nil, err
		}
	}

	sc.Camera.FOV = cfg.Camera.FOV
	sc.Camera.Near = cfg.Camera.Near
	sc.Camera.Far = cfg.Camera.Far
	sc.Camera.SetupProjection(float32(cfg.Window.Width) / float32(cfg.Window.Height))
	return sc, nil
}

// Load a wavefront model and attach it to a new static entity.
func addModel(ctx context.Context, sc *scene.Scene, model config.Model) error {
	mesh, err := asset.LoadMesh(ctx, model.Path)
	if err != nil {
		return err
	}

	color := types.Vec3(model.Color)
	if color == (types.Vec3{}) {
		color = types.XYZ(0.7, 0.7, 0.7)
	}
	mat, err := sc.AddMaterial(asset.NewMaterial(color))
	if err != nil {
		return err
	}

	name := model.Name
	if name == "" {
		name = mesh.Name
	}
	ent := sc.Entities.Create(name)
	ent.Transform.Position = types.Vec3(model.Position)
	if model.Scale != 0 {
		ent.Transform.Scale = types.Splat3(model.Scale)
	}
	return sc.AttachRenderer(ent.ID, sc.AddMesh(mesh), mat)
}

// LoadHook loads the configured script. It returns a nil hook if no script
// is configured.
func LoadHook(ctx context.Context, cfg *config.Config, sc *scene.Scene) (sim.Hook, error) {
	if cfg.Scene.Script == "" {
		return nil, nil
	}

	h, err := script.Load(ctx, cfg.Scene.Script, sc)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Open creates the window, GPU device and render path for the configured
// scene. Must be called from the main thread.
func Open(ctx context.Context, cfg *config.Config) (*Engine, error) {
	sc, err := LoadScene(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hook, err := LoadHook(ctx, cfg, sc)
	if err != nil {
		return nil, err
	}

	win, err := opengl.NewWindow(opengl.WindowOptions{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
		VSync:  cfg.Window.VSync,
	}, sc.Camera)
	if err != nil {
		return nil, err
	}

	dev, err := opengl.NewDevice(cfg.Window.Width, cfg.Window.Height, sc.BgColor)
	if err != nil {
		win.Close()
		return nil, err
	}

	r, err := newRenderPath(cfg, sc, dev)
	if err != nil {
		win.Close()
		return nil, err
	}

	e := New(cfg, sc, win, r, hook)
	e.closers = append(e.closers, win.Close)

	win.OnCameraChange(func(cam *scene.Camera) {
		e.logger.Debugf("%s", cam)
	})
	win.OnKey(func(key glfw.Key) {
		if key == glfw.KeyP {
			e.TogglePause()
		}
	})

	e.logger.Noticef("rendering preset %q using the %s path", cfg.Scene.Preset, cfg.RenderPath)
	return e, nil
}

// The render path takes ownership of the device and closes it on error.
func newRenderPath(cfg *config.Config, sc *scene.Scene, dev *opengl.Device) (renderer.Renderer, error) {
	switch cfg.RenderPath {
	case config.Deferred:
		r, err := renderer.NewDeferred(dev, sc, renderer.Options{
			FrameW:      cfg.Window.Width,
			FrameH:      cfg.Window.Height,
			LightCutoff: cfg.LightCutoff,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.RayTrace:
		tr, err := tracer.NewComputeTracer("opengl", dev)
		if err != nil {
			dev.Close()
			return nil, err
		}
		if err = tr.Setup(cfg.Window.Width, cfg.Window.Height); err != nil {
			tr.Close()
			return nil, err
		}

		p, err := newTracePath(tr, sc, compiler.Options{
			MaxPrimsPerNode: cfg.Bvh.MaxPrimsPerNode,
			SplitMethod:     cfg.SplitMethod(),
		})
		if err != nil {
			tr.Close()
			return nil, err
		}
		return p, nil
	}

	dev.Close()
	return nil, fmt.Errorf("engine: unsupported render path %q", cfg.RenderPath)
}
