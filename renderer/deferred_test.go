package renderer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
	"github.com/stretchr/testify/require"
)

type mockDevice struct {
	calls []string

	meshes   []*asset.MeshData
	textures []*asset.Texture

	draws      []MeshDrawCmd
	lights     []LightDrawCmd
	lightCull  []CullFace
	lightBlend []BlendMode

	cull  CullFace
	blend BlendMode

	uploadErr error
	closed    bool
}

func (d *mockDevice) UploadMesh(mesh *asset.MeshData) (MeshHandle, error) {
	if d.uploadErr != nil {
		return 0, d.uploadErr
	}
	d.meshes = append(d.meshes, mesh)
	return MeshHandle(len(d.meshes)), nil
}

func (d *mockDevice) UploadTexture(tex *asset.Texture) (TextureHandle, error) {
	d.textures = append(d.textures, tex)
	return TextureHandle(len(d.textures)), nil
}

func (d *mockDevice) BeginPass(pass Pass, _ PassParams) {
	d.calls = append(d.calls, "begin "+pass.String())
}

func (d *mockDevice) EndPass(pass Pass) {
	d.calls = append(d.calls, "end "+pass.String())
}

func (d *mockDevice) SetCullFace(face CullFace) { d.cull = face }

func (d *mockDevice) SetBlendMode(mode BlendMode) { d.blend = mode }

func (d *mockDevice) DrawMesh(cmd MeshDrawCmd) {
	d.draws = append(d.draws, cmd)
}

func (d *mockDevice) DrawLight(cmd LightDrawCmd) {
	d.lights = append(d.lights, cmd)
	d.lightCull = append(d.lightCull, d.cull)
	d.lightBlend = append(d.lightBlend, d.blend)
}

func (d *mockDevice) BlitDepth() {
	d.calls = append(d.calls, "blit depth")
}

func (d *mockDevice) PassTime(pass Pass) time.Duration {
	return time.Duration(pass+1) * time.Millisecond
}

func (d *mockDevice) Close() { d.closed = true }

func (d *mockDevice) reset() {
	d.calls, d.draws, d.lights, d.lightCull, d.lightBlend = nil, nil, nil, nil, nil
}

func testScene(t *testing.T) *scene.Scene {
	sc := scene.NewScene()
	sc.Camera.FOV = 90
	sc.Camera.Near = 0.1
	sc.Camera.Far = 100
	sc.Camera.SetupProjection(1)

	cube := sc.AddMesh(asset.Cube(1))
	opaque, err := sc.AddMaterial(asset.NewMaterial(types.XYZ(1, 0, 0)))
	require.NoError(t, err)

	texMat := asset.NewMaterial(types.XYZ(1, 1, 1))
	texMat.DiffuseTexture = sc.AddTexture(asset.White())
	textured, err := sc.AddMaterial(texMat)
	require.NoError(t, err)

	glassMat := asset.NewMaterial(types.XYZ(0, 0, 1))
	glassMat.Opacity = 0.5
	glass, err := sc.AddMaterial(glassMat)
	require.NoError(t, err)

	add := func(name string, pos types.Vec3, mat uint32) {
		ent := sc.Entities.Create(name)
		ent.Transform.Position = pos
		require.NoError(t, sc.AttachRenderer(ent.ID, cube, mat))
	}

	add("front", types.XYZ(0, 0, -5), opaque)
	add("textured", types.XYZ(1, 0, -5), textured)
	add("behind", types.XYZ(0, 0, 10), opaque)
	add("glass near", types.XYZ(0, 0, -3), glass)
	add("glass far", types.XYZ(0, 0, -8), glass)

	// Entities without a renderer are never drawn
	sc.Entities.Create("trigger")
	return sc
}

func TestDeferredPassOrder(t *testing.T) {
	sc := testScene(t)
	dev := &mockDevice{}
	r, err := NewDeferred(dev, sc, DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, r.RenderFrame(NewFrame(sc)))
	require.Equal(t, []string{
		"begin geometry", "end geometry",
		"blit depth",
		"begin lighting", "end lighting",
		"begin transparency", "end transparency",
	}, dev.calls)

	stats := r.Stats()
	require.Equal(t, 4, stats.MeshesDrawn)
	require.Equal(t, 1, stats.MeshesCulled)
	require.Equal(t, 4*12, stats.Triangles)
	require.Len(t, stats.Passes, 3)
	require.Equal(t, 6*time.Millisecond, stats.GPUTime())

	r.Close()
	require.True(t, dev.closed)
	require.ErrorIs(t, r.RenderFrame(NewFrame(sc)), ErrDeviceNotDefined)
}

func TestDeferredSkipsTransparencyPassWithoutTransparentMeshes(t *testing.T) {
	sc := testScene(t)
	for _, name := range []string{"glass near", "glass far"} {
		ent, ok := sc.Entities.Find(name)
		require.True(t, ok)
		sc.Entities.Destroy(ent.ID)
	}

	dev := &mockDevice{}
	r, err := NewDeferred(dev, sc, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, r.RenderFrame(NewFrame(sc)))
	require.NotContains(t, dev.calls, "begin transparency")
}

func TestDeferredTextureFallback(t *testing.T) {
	sc := testScene(t)
	dev := &mockDevice{}
	r, err := NewDeferred(dev, sc, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, r.RenderFrame(NewFrame(sc)))

	// The scene texture is uploaded first followed by the 1x1 white fallback
	sceneTex, white := TextureHandle(1), TextureHandle(2)
	require.Equal(t, asset.White(), dev.textures[white-1])

	require.Len(t, dev.draws, 4)
	require.Equal(t, white, dev.draws[0].DiffuseTexture)
	require.Equal(t, white, dev.draws[0].SpecularTexture)
	require.Equal(t, sceneTex, dev.draws[1].DiffuseTexture)
	require.Equal(t, white, dev.draws[1].SpecularTexture)
}

func TestDeferredTransparentBackToFront(t *testing.T) {
	sc := testScene(t)
	dev := &mockDevice{}
	r, err := NewDeferred(dev, sc, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, r.RenderFrame(NewFrame(sc)))

	// 2 opaque draws followed by the transparent ones sorted by distance
	require.Len(t, dev.draws, 4)
	require.InDelta(t, -8, dev.draws[2].Model[14], 1e-6)
	require.InDelta(t, -3, dev.draws[3].Model[14], 1e-6)
	require.Equal(t, BlendAlpha, dev.blend)
}

func TestDeferredLightVolumes(t *testing.T) {
	sc := testScene(t)
	sc.Lights = []scene.Light{
		// Camera sits inside this volume
		{Type: scene.PointLight, Color: types.XYZ(1, 1, 1), Intensity: 1, Position: types.XYZ(0, 0, -2)},
		// Camera is outside this volume
		{Type: scene.PointLight, Color: types.XYZ(1, 1, 1), Intensity: 0.05, Position: types.XYZ(0, 0, -20)},
		// Below cutoff
		{Type: scene.PointLight, Color: types.XYZ(1, 1, 1), Intensity: 0.001, Position: types.XYZ(0, 0, -5)},
		// Behind the camera and out of reach
		{Type: scene.PointLight, Color: types.XYZ(1, 1, 1), Intensity: 0.05, Position: types.XYZ(0, 0, 50)},
		{Type: scene.SpotLight, Color: types.XYZ(1, 1, 1), Intensity: 0.05, Position: types.XYZ(2, 0, -10), Direction: types.XYZ(0, -1, 0)},
		{Type: scene.DirectionalLight, Color: types.XYZ(1, 1, 1), Intensity: 1, Direction: types.XYZ(0, -1, 0)},
	}

	dev := &mockDevice{}
	r, err := NewDeferred(dev, sc, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, r.RenderFrame(NewFrame(sc)))

	require.Len(t, dev.lights, 4)
	require.Equal(t, 4, r.Stats().LightsDrawn)
	require.Equal(t, 2, r.Stats().LightsCulled)

	type spec struct {
		volume LightVolume
		cull   CullFace
	}
	specs := []spec{
		{SphereVolume, CullFront},
		{SphereVolume, CullBack},
		{CubeVolume, CullBack},
		{FullscreenVolume, CullBack},
	}
	for index, s := range specs {
		require.Equal(t, s.volume, dev.lights[index].Volume, fmt.Sprintf("light %d", index))
		require.Equal(t, s.cull, dev.lightCull[index], fmt.Sprintf("light %d", index))
		require.Equal(t, BlendAdditive, dev.lightBlend[index], fmt.Sprintf("light %d", index))
	}

	// Radius is derived from luminance
	exp := sc.Lights[0].VolumeRadius(scene.DefaultLightCutoff)
	require.Equal(t, exp, dev.lights[0].Radius)

	// Face culling is restored after the lighting pass
	require.Equal(t, CullBack, dev.cull)
}

func TestDeferredScratchIsResetPerFrame(t *testing.T) {
	sc := testScene(t)
	sc.Lights = []scene.Light{
		{Type: scene.PointLight, Color: types.XYZ(1, 1, 1), Intensity: 1, Position: types.XYZ(0, 0, -5)},
	}

	dev := &mockDevice{}
	r, err := NewDeferred(dev, sc, DefaultOptions())
	require.NoError(t, err)

	for frame := 0; frame < 3; frame++ {
		dev.reset()
		require.NoError(t, r.RenderFrame(NewFrame(sc)))
		require.Len(t, dev.draws, 4, "frame %d", frame)
		require.Len(t, dev.lights, 1, "frame %d", frame)
	}
}

func TestDeferredUploadError(t *testing.T) {
	uploadErr := errors.New("out of memory")
	dev := &mockDevice{uploadErr: uploadErr}

	_, err := NewDeferred(dev, testScene(t), DefaultOptions())
	require.ErrorIs(t, err, uploadErr)
	require.True(t, dev.closed)

	_, err = NewDeferred(nil, testScene(t), DefaultOptions())
	require.ErrorIs(t, err, ErrDeviceNotDefined)
}
