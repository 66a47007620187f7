package engine

import (
	"time"

	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/renderer"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/compiler"
	"github.com/achilleasa/glint/tracer"
	"github.com/achilleasa/glint/types"
)

// tracePath adapts a tracer to the renderer.Renderer interface. The compiled
// scene is rebuilt and re-uploaded whenever a renderable entity is added,
// removed or transformed.
type tracePath struct {
	logger log.Logger
	tracer tracer.Tracer
	scene  *scene.Scene
	opts   compiler.Options

	// Renderable entity state at the last upload.
	uploaded map[scene.EntityID]renderableState

	triangles int
	stats     renderer.FrameStats
}

func newTracePath(tr tracer.Tracer, sc *scene.Scene, opts compiler.Options) (*tracePath, error) {
	p := &tracePath{
		logger:   log.New("trace path"),
		tracer:   tr,
		scene:    sc,
		opts:     opts,
		uploaded: make(map[scene.EntityID]renderableState),
	}

	if err := p.upload(tracer.Synchronous); err != nil {
		return nil, err
	}

	light, _ := sc.PrimaryLight()
	if err := tr.UpdateState(tracer.Synchronous, tracer.UpdatePrimaryLight, light); err != nil {
		return nil, err
	}
	if err := tr.UpdateState(tracer.Synchronous, tracer.UpdateCamera, sc.Camera); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *tracePath) upload(mode tracer.UpdateMode) error {
	cs, err := compiler.Compile(p.scene, p.opts)
	if err != nil {
		return err
	}
	if err = tracer.UploadScene(p.tracer, mode, cs); err != nil {
		return err
	}

	p.triangles = len(cs.Triangles)
	p.uploaded = renderableStates(p.scene)
	return nil
}

// RenderFrame queues the frame camera and any geometry changes and traces
// the frame.
func (p *tracePath) RenderFrame(frame *renderer.Frame) error {
	start := time.Now()

	if geometryChanged(p.uploaded, renderableStates(p.scene)) {
		if err := p.upload(tracer.Asynchronous); err != nil {
			return err
		}
	}
	p.tracer.AppendChange(tracer.UpdateCamera, p.scene.Camera)

	if err := p.tracer.Trace(); err != nil {
		return err
	}

	lights := 0
	if _, ok := p.scene.PrimaryLight(); ok {
		lights = 1
	}
	p.stats = renderer.FrameStats{
		MeshesDrawn: len(frame.Entities),
		LightsDrawn: lights,
		Triangles:   p.triangles,
		RenderTime:  time.Since(start),
	}
	return nil
}

func (p *tracePath) Stats() renderer.FrameStats {
	return p.stats
}

func (p *tracePath) Close() {
	if p.tracer != nil {
		p.tracer.Close()
		p.tracer = nil
	}
}

// The parts of a renderable entity that end up in the compiled scene.
type renderableState struct {
	world    types.Mat4
	renderer scene.MeshRenderer
}

// Collect the state of every entity with a renderer.
func renderableStates(sc *scene.Scene) map[scene.EntityID]renderableState {
	states := make(map[scene.EntityID]renderableState, sc.Entities.Len())
	sc.Entities.Each(func(ent *scene.Entity) {
		if ent.Renderer != nil {
			states[ent.ID] = renderableState{
				world:    ent.Transform.Matrix(),
				renderer: *ent.Renderer,
			}
		}
	})
	return states
}

// Returns true if the renderable set differs or any renderable entity was
// transformed or changed its mesh or material since the last upload.
func geometryChanged(uploaded, current map[scene.EntityID]renderableState) bool {
	if len(uploaded) != len(current) {
		return true
	}
	for id, state := range current {
		prev, ok := uploaded[id]
		if !ok || prev != state {
			return true
		}
	}
	return false
}
