package renderer

import "time"

type PassStat struct {
	Pass Pass

	// GPU time reported by the device timer queries.
	GPUTime time.Duration
}

type FrameStats struct {
	// Per-pass GPU timings from the last completed frame.
	Passes []PassStat

	MeshesDrawn  int
	MeshesCulled int
	LightsDrawn  int
	LightsCulled int

	// Triangles submitted during the geometry and transparency passes.
	Triangles int

	// CPU time spent submitting the frame.
	RenderTime time.Duration
}

// GPUTime returns the sum of all pass timings.
func (s FrameStats) GPUTime() time.Duration {
	var total time.Duration
	for _, p := range s.Passes {
		total += p.GPUTime
	}
	return total
}
