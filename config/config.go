package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/bvh"
	"gopkg.in/yaml.v3"
)

// The render pipeline used by the engine.
type RenderPath string

const (
	Deferred RenderPath = "deferred"
	RayTrace RenderPath = "raytrace"
)

type Window struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type Camera struct {
	FOV  float32 `yaml:"fov"`
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
}

type Bvh struct {
	MaxPrimsPerNode int    `yaml:"max_prims_per_node"`
	SplitMethod     string `yaml:"split_method"`
}

type Scene struct {
	Preset string `yaml:"preset"`

	// Optional image used as the floor texture by the presets.
	FloorTexture string `yaml:"floor_texture"`

	// Optional script defining func Update(dt float32).
	Script string `yaml:"script"`

	// Wavefront models added on top of the preset.
	Models []Model `yaml:"models"`
}

// Model places a wavefront obj mesh in the scene.
type Model struct {
	Name     string     `yaml:"name"`
	Path     string     `yaml:"path"`
	Position [3]float32 `yaml:"position"`
	Scale    float32    `yaml:"scale"`
	Color    [3]float32 `yaml:"color"`
}

// Config holds the engine settings.
type Config struct {
	Window     Window     `yaml:"window"`
	RenderPath RenderPath `yaml:"render_path"`
	Camera     Camera     `yaml:"camera"`
	Bvh        Bvh        `yaml:"bvh"`
	Scene      Scene      `yaml:"scene"`

	// Fixed simulation timestep in seconds.
	TimeStep float32 `yaml:"timestep"`

	// Light contributions below this value are ignored when sizing light volumes.
	LightCutoff float32 `yaml:"light_cutoff"`
}

// Default returns the default engine configuration.
func Default() *Config {
	return &Config{
		Window: Window{
			Width:  1024,
			Height: 768,
			Title:  "glint",
			VSync:  true,
		},
		RenderPath: Deferred,
		Camera: Camera{
			FOV:  45,
			Near: 0.1,
			Far:  1000,
		},
		Bvh: Bvh{
			MaxPrimsPerNode: 4,
			SplitMethod:     bvh.SplitSAH.String(),
		},
		Scene: Scene{
			Preset: "cubes",
		},
		TimeStep:    1.0 / 60.0,
		LightCutoff: scene.DefaultLightCutoff,
	}
}

// Load a YAML config from a local path or URL and overlay it on the defaults.
func Load(ctx context.Context, location string) (*Config, error) {
	data, err := asset.ReadSource(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: could not load %s: %w", location, err)
	}
	return cfg, nil
}

// Parse a YAML document and overlay it on the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate the config values.
func (c *Config) Validate() error {
	var errs []error

	if c.Window.Width == 0 || c.Window.Height == 0 {
		errs = append(errs, fmt.Errorf("window dimensions must be non-zero; got %dx%d", c.Window.Width, c.Window.Height))
	}

	switch c.RenderPath {
	case Deferred, RayTrace:
	default:
		errs = append(errs, fmt.Errorf("unknown render path %q", c.RenderPath))
	}

	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be in (0, 180); got %v", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip planes must satisfy 0 < near < far; got %v, %v", c.Camera.Near, c.Camera.Far))
	}

	if c.Bvh.MaxPrimsPerNode < 1 || c.Bvh.MaxPrimsPerNode > bvh.MaxLeafPrimitives {
		errs = append(errs, fmt.Errorf("bvh max_prims_per_node must be in [1, %d]; got %d", bvh.MaxLeafPrimitives, c.Bvh.MaxPrimsPerNode))
	}
	if _, err := bvh.ParseSplitMethod(c.Bvh.SplitMethod); err != nil {
		errs = append(errs, err)
	}

	for i, m := range c.Scene.Models {
		if m.Path == "" {
			errs = append(errs, fmt.Errorf("scene model %d does not specify a path", i))
		}
		if m.Scale < 0 {
			errs = append(errs, fmt.Errorf("scene model %d scale must not be negative; got %v", i, m.Scale))
		}
	}

	if c.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("timestep must be positive; got %v", c.TimeStep))
	}
	if c.LightCutoff <= 0 {
		errs = append(errs, fmt.Errorf("light_cutoff must be positive; got %v", c.LightCutoff))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

// SplitMethod returns the parsed BVH split method.
func (c *Config) SplitMethod() bvh.SplitMethod {
	method, _ := bvh.ParseSplitMethod(c.Bvh.SplitMethod)
	return method
}
