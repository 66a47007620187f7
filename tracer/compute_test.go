package tracer

import (
	"errors"
	"testing"
	"time"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/bvh"
	"github.com/achilleasa/glint/scene/compiler"
	"github.com/achilleasa/glint/types"
	"github.com/stretchr/testify/require"
)

type mockDevice struct {
	uploads   map[Binding]int
	uploadErr error

	frameW     uint32
	frameH     uint32
	dispatches [][2]uint32
	uniforms   Uniforms
	presents   int
	clears     int
	closed     bool
}

func newMockDevice() *mockDevice {
	return &mockDevice{uploads: make(map[Binding]int)}
}

func (d *mockDevice) UploadBuffer(binding Binding, data interface{}) error {
	if d.uploadErr != nil {
		return d.uploadErr
	}
	_, size := SliceData(data)
	d.uploads[binding] = size
	return nil
}

func (d *mockDevice) ResizeTarget(frameW, frameH uint32) error {
	d.frameW, d.frameH = frameW, frameH
	return nil
}

func (d *mockDevice) Dispatch(groupsX, groupsY uint32, uniforms Uniforms) error {
	d.dispatches = append(d.dispatches, [2]uint32{groupsX, groupsY})
	d.uniforms = uniforms
	return nil
}

func (d *mockDevice) ClearTarget() error {
	d.clears++
	return nil
}

func (d *mockDevice) Present() error {
	d.presents++
	return nil
}

func (d *mockDevice) DispatchTime() time.Duration { return time.Millisecond }

func (d *mockDevice) Close() { d.closed = true }

func compiledTestScene(t *testing.T) *compiler.CompiledScene {
	sc, err := scene.Preset("cubes", scene.PresetOptions{})
	require.NoError(t, err)

	cs, err := compiler.Compile(sc, compiler.Options{MaxPrimsPerNode: 4, SplitMethod: bvh.SplitSAH})
	require.NoError(t, err)
	return cs
}

func TestDispatchGroups(t *testing.T) {
	type spec struct {
		w, h       uint32
		expX, expY uint32
	}
	specs := []spec{
		{16, 16, 1, 1},
		{17, 16, 2, 1},
		{1024, 768, 64, 48},
		{1, 1, 1, 1},
		{1280, 721, 80, 46},
	}

	for index, s := range specs {
		x, y := DispatchGroups(s.w, s.h)
		if x != s.expX || y != s.expY {
			t.Fatalf("[spec %d] expected %dx%d groups; got %dx%d", index, s.expX, s.expY, x, y)
		}
	}
}

func TestUploadSceneBufferLayout(t *testing.T) {
	cs := compiledTestScene(t)
	dev := newMockDevice()
	tr, err := NewComputeTracer("test", dev)
	require.NoError(t, err)

	require.NoError(t, UploadScene(tr, Synchronous, cs))

	require.Equal(t, 32*len(cs.BvhNodes), dev.uploads[NodeBuffer])
	require.Equal(t, 64*len(cs.Vertices), dev.uploads[VertexBuffer])
	require.Equal(t, 16*len(cs.Triangles), dev.uploads[TriangleBuffer])
	require.Equal(t, 64*len(cs.Materials), dev.uploads[MaterialBuffer])
}

func TestTraceDispatch(t *testing.T) {
	cs := compiledTestScene(t)
	dev := newMockDevice()
	tr, err := NewComputeTracer("test", dev)
	require.NoError(t, err)

	require.NoError(t, tr.Setup(1024, 768))
	require.NoError(t, UploadScene(tr, Asynchronous, cs))

	// Nothing is uploaded before the next frame
	require.Empty(t, dev.uploads)

	cam := scene.NewCamera(60)
	cam.Position = types.XYZ(1, 2, 3)
	cam.SetupProjection(4.0 / 3.0)
	cam.Update()
	tr.AppendChange(UpdateCamera, cam)

	sun := &scene.Light{Type: scene.DirectionalLight, Color: types.XYZ(1, 1, 1), Intensity: 2, Direction: types.XYZ(0, -2, 0)}
	tr.AppendChange(UpdatePrimaryLight, sun)

	require.NoError(t, tr.Trace())
	require.Len(t, dev.uploads, int(NumBindings))
	require.Equal(t, [][2]uint32{{64, 48}}, dev.dispatches)
	require.Equal(t, 1, dev.presents)

	u := dev.uniforms
	require.Equal(t, uint32(len(cs.BvhNodes)), u.NumNodes)
	require.Equal(t, uint32(1024), u.FrameW)
	require.Equal(t, cam.Position, u.CameraPos)
	require.Equal(t, cam.InvViewMat(), u.InvView)
	require.InDeltaSlice(t, []float32{0, -1, 0}, u.LightDir[:], 1e-6)
	require.InDeltaSlice(t, []float32{2, 2, 2}, u.LightColor[:], 1e-6)

	stats := tr.Stats()
	require.Equal(t, uint32(64), stats.GroupsX)
	require.Equal(t, time.Millisecond, stats.GPUTime)

	// Queued state is consumed once
	dev.uploads = make(map[Binding]int)
	require.NoError(t, tr.Trace())
	require.Empty(t, dev.uploads)
	require.Len(t, dev.dispatches, 2)
}

func TestTraceSkipsDispatchForEmptyBvh(t *testing.T) {
	dev := newMockDevice()
	tr, err := NewComputeTracer("test", dev)
	require.NoError(t, err)

	require.NoError(t, tr.Setup(64, 64))
	require.NoError(t, UploadScene(tr, Synchronous, &compiler.CompiledScene{}))
	require.NoError(t, tr.Trace())

	require.Empty(t, dev.dispatches)
	require.Equal(t, 1, dev.clears)
	require.Equal(t, 1, dev.presents)
	require.Zero(t, tr.Stats().GroupsX)
}

func TestTraceClearsStaleOutputWhenSceneEmpties(t *testing.T) {
	dev := newMockDevice()
	tr, err := NewComputeTracer("test", dev)
	require.NoError(t, err)

	require.NoError(t, tr.Setup(64, 64))
	require.NoError(t, UploadScene(tr, Synchronous, compiledTestScene(t)))
	require.NoError(t, tr.Trace())
	require.Len(t, dev.dispatches, 1)
	require.Zero(t, dev.clears)

	// Removing all geometry must not present the previous frame again
	require.NoError(t, UploadScene(tr, Asynchronous, &compiler.CompiledScene{}))
	require.NoError(t, tr.Trace())
	require.Len(t, dev.dispatches, 1)
	require.Equal(t, 1, dev.clears)
	require.Equal(t, 2, dev.presents)
}

func TestTracerErrors(t *testing.T) {
	_, err := NewComputeTracer("test", nil)
	require.ErrorIs(t, err, ErrDeviceNotDefined)

	dev := newMockDevice()
	tr, err := NewComputeTracer("test", dev)
	require.NoError(t, err)

	require.ErrorIs(t, tr.Setup(0, 10), ErrInvalidFrameSize)
	require.ErrorIs(t, tr.Trace(), ErrInvalidFrameSize)
	require.ErrorIs(t, tr.UpdateState(Synchronous, SetBvhNodes, []asset.Vertex{}), ErrUnsupportedChangeData)

	uploadErr := errors.New("out of memory")
	dev.uploadErr = uploadErr
	require.ErrorIs(t, tr.UpdateState(Synchronous, SetVertices, []asset.Vertex{{}}), uploadErr)

	tr.Close()
	require.True(t, dev.closed)
	require.ErrorIs(t, tr.Trace(), ErrDeviceNotDefined)
}
