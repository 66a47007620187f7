package renderer

import (
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
)

type Renderer interface {
	// Render frame.
	RenderFrame(frame *Frame) error

	// Shutdown renderer and release GPU resources.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// Frame describes what to draw. Entities and lights are candidates; the
// pipeline frustum-culls them before submitting draw calls.
type Frame struct {
	View      types.Mat4
	Proj      types.Mat4
	CameraPos types.Vec3

	Entities []*scene.Entity
	Lights   []scene.Light
}

// NewFrame collects the renderable entities and lights of a scene as seen
// from the scene camera.
func NewFrame(sc *scene.Scene) *Frame {
	frame := &Frame{
		View:      sc.Camera.ViewMat,
		Proj:      sc.Camera.ProjMat,
		CameraPos: sc.Camera.Position,
		Entities:  make([]*scene.Entity, 0, sc.Entities.Len()),
		Lights:    sc.Lights,
	}

	sc.Entities.Each(func(ent *scene.Entity) {
		if ent.Renderer != nil {
			frame.Entities = append(frame.Entities, ent)
		}
	})
	return frame
}
