package renderer

import "github.com/achilleasa/glint/scene"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Light contributions below this value are ignored when sizing light volumes.
	LightCutoff float32
}

// Get default render options.
func DefaultOptions() Options {
	return Options{
		FrameW:      1024,
		FrameH:      768,
		LightCutoff: scene.DefaultLightCutoff,
	}
}
