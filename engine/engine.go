package engine

import (
	"context"
	"fmt"

	"github.com/achilleasa/glint/config"
	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/renderer"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/sim"
)

// Upper bound of simulation steps per rendered frame. Slower frames drop
// simulation time instead of spiralling.
const maxStepsPerFrame = 5

// Display is the window surface driven by the engine loop.
type Display interface {
	ShouldClose() bool
	PollEvents()
	SwapBuffers()
	SetTitle(string)

	// Seconds since the display was created.
	Time() float64
}

// Engine runs the input, update and render loop for a scene.
type Engine struct {
	logger log.Logger
	cfg    *config.Config

	scene    *scene.Scene
	world    *sim.World
	display  Display
	renderer renderer.Renderer

	// Resources released by Close in reverse order.
	closers []func()

	lastTime    float64
	accumulator float32
	paused      bool

	frames     uint64
	fpsFrames  uint64
	fpsStarted float64
}

// Create an engine for a scene. The hook may be nil.
func New(cfg *config.Config, sc *scene.Scene, display Display, r renderer.Renderer, hook sim.Hook) *Engine {
	return &Engine{
		logger:   log.New("engine"),
		cfg:      cfg,
		scene:    sc,
		world:    sim.NewWorld(sc, hook),
		display:  display,
		renderer: r,
	}
}

// Scene returns the scene driven by the engine.
func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

// Frames returns the number of rendered frames.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// Run the main loop until the display is closed or the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.lastTime = e.display.Time()
	e.fpsStarted = e.lastTime

	for !e.display.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := e.Frame(); err != nil {
			return err
		}
	}

	e.logger.Noticef("rendered %d frames", e.frames)
	return nil
}

// Frame runs a single loop iteration: poll input, advance the simulation
// in fixed steps and render.
func (e *Engine) Frame() error {
	e.display.PollEvents()

	now := e.display.Time()
	e.accumulator += float32(now - e.lastTime)
	e.lastTime = now

	if err := e.UpdateScene(); err != nil {
		return err
	}

	if err := e.renderer.RenderFrame(renderer.NewFrame(e.scene)); err != nil {
		return fmt.Errorf("engine: render failed at frame %d: %w", e.frames, err)
	}
	e.display.SwapBuffers()

	e.frames++
	e.updateTitle(now)
	return nil
}

// TogglePause stops or resumes the simulation. Rendering continues while
// paused.
func (e *Engine) TogglePause() {
	e.paused = !e.paused
	e.logger.Noticef("simulation paused: %t", e.paused)
}

// UpdateScene consumes the accumulated time in fixed timestep increments.
func (e *Engine) UpdateScene() error {
	if e.paused {
		e.accumulator = 0
		return nil
	}

	dt := e.cfg.TimeStep
	steps := 0
	for e.accumulator >= dt {
		if steps == maxStepsPerFrame {
			e.logger.Debugf("dropping %.3fs of simulation time", e.accumulator)
			e.accumulator = 0
			break
		}

		collisions, err := e.world.Step(dt)
		if err != nil {
			return err
		}
		for _, c := range collisions {
			e.logger.Infof("collision: %s -> %s", c.Dynamic, c.Static)
		}

		e.accumulator -= dt
		steps++
	}
	return nil
}

func (e *Engine) updateTitle(now float64) {
	e.fpsFrames++
	elapsed := now - e.fpsStarted
	if elapsed < 1 {
		return
	}

	stats := e.renderer.Stats()
	e.display.SetTitle(fmt.Sprintf(
		"%s - %.1f fps, %d meshes, %d lights, gpu %s",
		e.cfg.Window.Title, float64(e.fpsFrames)/elapsed, stats.MeshesDrawn, stats.LightsDrawn, stats.GPUTime(),
	))
	e.fpsFrames, e.fpsStarted = 0, now
}

// Close the renderer and any resources acquired by Open.
func (e *Engine) Close() {
	if e.renderer != nil {
		e.renderer.Close()
		e.renderer = nil
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}
