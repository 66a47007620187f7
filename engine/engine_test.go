package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/config"
	"github.com/achilleasa/glint/renderer"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/bvh"
	"github.com/achilleasa/glint/scene/compiler"
	"github.com/achilleasa/glint/scene/sim"
	"github.com/achilleasa/glint/tracer"
	"github.com/achilleasa/glint/types"
	"github.com/stretchr/testify/require"
)

type mockDisplay struct {
	now      float64
	step     float64
	maxSwaps int

	swaps  int
	polls  int
	titles []string
}

func (d *mockDisplay) ShouldClose() bool { return d.maxSwaps > 0 && d.swaps >= d.maxSwaps }
func (d *mockDisplay) PollEvents()       { d.polls++ }
func (d *mockDisplay) SwapBuffers()      { d.swaps++ }
func (d *mockDisplay) SetTitle(t string) { d.titles = append(d.titles, t) }

func (d *mockDisplay) Time() float64 {
	t := d.now
	d.now += d.step
	return t
}

type mockRenderer struct {
	frames []*renderer.Frame
	err    error
	closed bool
}

func (r *mockRenderer) RenderFrame(frame *renderer.Frame) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, frame)
	return nil
}

func (r *mockRenderer) Close()                     { r.closed = true }
func (r *mockRenderer) Stats() renderer.FrameStats { return renderer.FrameStats{} }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TimeStep = 0.01
	return cfg
}

func TestFrameStepsSimulation(t *testing.T) {
	sc, err := scene.Preset("collision", scene.PresetOptions{})
	require.NoError(t, err)

	r := &mockRenderer{}
	e := New(testConfig(), sc, &mockDisplay{}, r, nil)

	e.accumulator = 0.035
	require.NoError(t, e.UpdateScene())
	require.Equal(t, uint64(3), e.world.Frame())
	require.InDelta(t, 0.005, e.accumulator, 1e-4)

	// Long frames are capped
	e.accumulator = 1
	require.NoError(t, e.UpdateScene())
	require.Equal(t, uint64(3+maxStepsPerFrame), e.world.Frame())
	require.Zero(t, e.accumulator)

	e.TogglePause()
	e.accumulator = 0.5
	require.NoError(t, e.UpdateScene())
	require.Equal(t, uint64(3+maxStepsPerFrame), e.world.Frame())
}

func TestRunUntilDisplayCloses(t *testing.T) {
	sc, err := scene.Preset("cubes", scene.PresetOptions{})
	require.NoError(t, err)

	display := &mockDisplay{step: 0.25, maxSwaps: 6}
	r := &mockRenderer{}
	e := New(testConfig(), sc, display, r, nil)

	require.NoError(t, e.Run(context.Background()))
	require.Equal(t, uint64(6), e.Frames())
	require.Len(t, r.frames, 6)
	require.Equal(t, 6, display.polls)
	require.NotEmpty(t, display.titles)

	// Only entities with a renderer are submitted
	renderable := 0
	sc.Entities.Each(func(ent *scene.Entity) {
		if ent.Renderer != nil {
			renderable++
		}
	})
	require.Len(t, r.frames[0].Entities, renderable)

	e.Close()
	require.True(t, r.closed)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	display := &mockDisplay{step: 0.01}
	e := New(testConfig(), scene.NewScene(), display, &mockRenderer{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))
	require.Zero(t, e.Frames())
}

func TestRenderErrorAbortsLoop(t *testing.T) {
	renderErr := errors.New("device lost")
	display := &mockDisplay{step: 0.01, maxSwaps: 10}
	e := New(testConfig(), scene.NewScene(), display, &mockRenderer{err: renderErr}, nil)

	err := e.Run(context.Background())
	require.ErrorIs(t, err, renderErr)
	require.Zero(t, display.swaps)
}

type failingHook struct{}

func (failingHook) Update(float32) error { return errors.New("boom") }

func TestHookErrorAbortsLoop(t *testing.T) {
	display := &mockDisplay{step: 0.5, maxSwaps: 10}
	e := New(testConfig(), scene.NewScene(), display, &mockRenderer{}, failingHook{})

	require.Error(t, e.Run(context.Background()))
}

type mockTracer struct {
	sync    []tracer.ChangeType
	pending map[tracer.ChangeType]interface{}

	// Pending changes consumed by the last Trace call.
	traced map[tracer.ChangeType]interface{}
	traces int
	closed bool
}

func newMockTracer() *mockTracer {
	return &mockTracer{pending: make(map[tracer.ChangeType]interface{})}
}

func (tr *mockTracer) Id() string                        { return "mock" }
func (tr *mockTracer) Close()                            { tr.closed = true }
func (tr *mockTracer) Setup(frameW, frameH uint32) error { return nil }
func (tr *mockTracer) Stats() *tracer.Stats              { return &tracer.Stats{} }

func (tr *mockTracer) UpdateState(mode tracer.UpdateMode, change tracer.ChangeType, data interface{}) error {
	if mode == tracer.Asynchronous {
		tr.AppendChange(change, data)
		return nil
	}
	tr.sync = append(tr.sync, change)
	return nil
}

func (tr *mockTracer) AppendChange(change tracer.ChangeType, data interface{}) {
	tr.pending[change] = data
}

func (tr *mockTracer) ApplyPendingChanges() error {
	tr.pending = make(map[tracer.ChangeType]interface{})
	return nil
}

func (tr *mockTracer) Trace() error {
	tr.traces++
	tr.traced = tr.pending
	return tr.ApplyPendingChanges()
}

func TestTracePath(t *testing.T) {
	sc, err := scene.Preset("cubes", scene.PresetOptions{})
	require.NoError(t, err)

	tr := newMockTracer()
	p, err := newTracePath(tr, sc, compiler.Options{MaxPrimsPerNode: 4, SplitMethod: bvh.SplitSAH})
	require.NoError(t, err)

	require.Equal(t, []tracer.ChangeType{
		tracer.SetVertices, tracer.SetTriangles, tracer.SetMaterials, tracer.SetBvhNodes,
		tracer.UpdatePrimaryLight, tracer.UpdateCamera,
	}, tr.sync)

	// Static scenes only queue the camera
	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Equal(t, 1, tr.traces)
	require.Len(t, tr.traced, 1)
	require.Contains(t, tr.traced, tracer.UpdateCamera)
	require.NotZero(t, p.Stats().Triangles)

	// Velocity alone does not change the traced geometry
	ent, ok := sc.Entities.Find("cube_0_0")
	require.True(t, ok)
	ent.Collider = scene.NewSphereCollider(1, true)
	ent.Transform.Velocity = types.XYZ(1, 0, 0)
	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Len(t, tr.traced, 1)

	// Moved entities trigger a rebuild
	sim.Integrate(sc, 0.5)
	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Equal(t, 3, tr.traces)
	require.Len(t, tr.traced, 5)
	require.Contains(t, tr.traced, tracer.SetBvhNodes)
	require.Contains(t, tr.traced, tracer.UpdateCamera)
	require.Equal(t, 1, p.Stats().LightsDrawn)

	p.Close()
	require.True(t, tr.closed)
}

// Build a scene with a ball heading towards a static box and a collider-less
// marker. The scene has no directional light.
func collisionTraceScene(t *testing.T) (sc *scene.Scene, ball, marker *scene.Entity) {
	sc = scene.NewScene()
	cube := sc.AddMesh(asset.Cube(1))
	mat, err := sc.AddMaterial(asset.NewMaterial(types.XYZ(1, 0, 0)))
	require.NoError(t, err)

	ball = sc.Entities.Create("ball")
	ball.Transform.Position = types.XYZ(-3, 0, 0)
	ball.Transform.Velocity = types.XYZ(1, 0, 0)
	ball.Collider = scene.NewSphereCollider(1, true)
	require.NoError(t, sc.AttachRenderer(ball.ID, cube, mat))

	box := sc.Entities.Create("box")
	box.Collider = scene.NewBoxCollider(types.Splat3(1), false)
	require.NoError(t, sc.AttachRenderer(box.ID, cube, mat))

	marker = sc.Entities.Create("marker")
	marker.Transform.Position = types.XYZ(0, 5, 0)
	require.NoError(t, sc.AttachRenderer(marker.ID, cube, mat))
	return sc, ball, marker
}

func TestTracePathUploadsCollisionStep(t *testing.T) {
	sc, ball, _ := collisionTraceScene(t)
	tr := newMockTracer()
	p, err := newTracePath(tr, sc, compiler.Options{MaxPrimsPerNode: 4, SplitMethod: bvh.SplitSAH})
	require.NoError(t, err)

	// The ball moves and stops in the same step
	collisions := sim.Update(sc, 0.5)
	require.Len(t, collisions, 1)
	require.Equal(t, types.Vec3{}, ball.Transform.Velocity)
	require.Equal(t, types.XYZ(-2.5, 0, 0), ball.Transform.Position)

	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Len(t, tr.traced, 5)
	require.Contains(t, tr.traced, tracer.SetVertices)

	// Nothing moves after the collision
	sim.Update(sc, 0.5)
	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Len(t, tr.traced, 1)

	require.Zero(t, p.Stats().LightsDrawn)
}

func TestTracePathUploadsColliderlessMovement(t *testing.T) {
	sc, ball, marker := collisionTraceScene(t)
	ball.Transform.Velocity = types.Vec3{}
	tr := newMockTracer()
	p, err := newTracePath(tr, sc, compiler.Options{MaxPrimsPerNode: 4, SplitMethod: bvh.SplitSAH})
	require.NoError(t, err)

	marker.Transform.Velocity = types.XYZ(1, 0, 0)
	sim.Integrate(sc, 0.5)
	require.Equal(t, types.XYZ(0.5, 5, 0), marker.Transform.Position)
	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Len(t, tr.traced, 5)

	// Positions written directly, as scripts do, are picked up as well
	marker.Transform.Velocity = types.Vec3{}
	marker.Transform.Position = types.XYZ(2, 5, 0)
	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Len(t, tr.traced, 5)

	// Removed renderables trigger a rebuild too
	require.True(t, sc.Entities.Destroy(marker.ID))
	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Len(t, tr.traced, 5)

	require.NoError(t, p.RenderFrame(renderer.NewFrame(sc)))
	require.Len(t, tr.traced, 1)
}

func TestLoadScene(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 800, 400
	cfg.Camera.FOV = 60
	cfg.Scene.Preset = "lights"

	sc, err := LoadScene(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, float32(60), sc.Camera.FOV)
	require.Equal(t, types.Perspective4(60, 2, cfg.Camera.Near, cfg.Camera.Far), sc.Camera.ProjMat)

	cfg.Scene.Preset = "unknown"
	_, err = LoadScene(context.Background(), cfg)
	require.Error(t, err)

	cfg.Scene.Preset = "cubes"
	cfg.Scene.FloorTexture = filepath.Join(t.TempDir(), "missing.png")
	_, err = LoadScene(context.Background(), cfg)
	require.Error(t, err)
}

func TestLoadSceneWithModels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644))

	cfg := config.Default()
	cfg.Scene.Preset = "lights"
	cfg.Scene.Models = []config.Model{{Name: "tri", Path: path, Position: [3]float32{0, 2, 0}, Scale: 3}}

	sc, err := LoadScene(context.Background(), cfg)
	require.NoError(t, err)

	ent, ok := sc.Entities.Find("tri")
	require.True(t, ok)
	require.Equal(t, types.XYZ(0, 2, 0), ent.Transform.Position)
	require.Equal(t, types.Splat3(3), ent.Transform.Scale)

	mesh, ok := sc.Mesh(ent.Renderer)
	require.True(t, ok)
	require.Len(t, mesh.Data.Indices, 3)
	require.Equal(t, types.XYZW(0.7, 0.7, 0.7, 1), sc.Materials[ent.Renderer.Material].Diffuse)

	cfg.Scene.Models[0].Path = filepath.Join(t.TempDir(), "missing.obj")
	_, err = LoadScene(context.Background(), cfg)
	require.Error(t, err)
}

func TestLoadHookWithoutScript(t *testing.T) {
	hook, err := LoadHook(context.Background(), config.Default(), scene.NewScene())
	require.NoError(t, err)
	require.Nil(t, hook)
}
