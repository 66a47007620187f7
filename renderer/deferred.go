package renderer

import (
	"fmt"
	"sort"
	"time"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
)

// A light volume instance derived from a scene light for the current frame.
type lightVolume struct {
	light  *scene.Light
	radius float32
	model  types.Mat4
	inside bool
}

type transparentDraw struct {
	cmd      MeshDrawCmd
	distance float32
}

// Deferred renders opaque geometry into a geometry buffer and then
// accumulates the contribution of each visible light by rasterizing a
// bounding volume for it. Transparent geometry is forward rendered last.
type Deferred struct {
	logger log.Logger
	device Device
	scene  *scene.Scene
	opts   Options

	meshes   []MeshHandle
	textures []TextureHandle
	white    TextureHandle

	sphereVolume MeshHandle
	cubeVolume   MeshHandle

	// Per-frame scratch space; reset at the start of each frame.
	lightVolumes []lightVolume
	transparent  []transparentDraw

	stats FrameStats
}

// Create a deferred renderer for a scene and upload its meshes and textures
// to the device.
func NewDeferred(device Device, sc *scene.Scene, opts Options) (*Deferred, error) {
	if device == nil {
		return nil, ErrDeviceNotDefined
	}
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if opts.LightCutoff <= 0 {
		opts.LightCutoff = scene.DefaultLightCutoff
	}

	r := &Deferred{
		logger: log.New("deferred renderer"),
		device: device,
		scene:  sc,
		opts:   opts,
	}

	if err := r.uploadResources(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Deferred) uploadResources() error {
	var err error

	r.meshes = make([]MeshHandle, len(r.scene.Meshes))
	for index, mesh := range r.scene.Meshes {
		if r.meshes[index], err = r.device.UploadMesh(mesh.Data); err != nil {
			return fmt.Errorf("deferred renderer: could not upload mesh %q: %w", mesh.Data.Name, err)
		}
	}

	r.textures = make([]TextureHandle, len(r.scene.Textures))
	for index, tex := range r.scene.Textures {
		if r.textures[index], err = r.device.UploadTexture(tex); err != nil {
			return fmt.Errorf("deferred renderer: could not upload texture %d: %w", index, err)
		}
	}

	if r.white, err = r.device.UploadTexture(asset.White()); err != nil {
		return fmt.Errorf("deferred renderer: could not upload fallback texture: %w", err)
	}
	if r.sphereVolume, err = r.device.UploadMesh(asset.UVSphere(12, 24)); err != nil {
		return fmt.Errorf("deferred renderer: could not upload sphere light volume: %w", err)
	}
	if r.cubeVolume, err = r.device.UploadMesh(asset.Cube(2)); err != nil {
		return fmt.Errorf("deferred renderer: could not upload cube light volume: %w", err)
	}

	r.logger.Infof("uploaded %d meshes and %d textures", len(r.meshes), len(r.textures))
	return nil
}

// Close the renderer and its device.
func (r *Deferred) Close() {
	if r.device != nil {
		r.device.Close()
		r.device = nil
	}
}

// Stats returns the statistics for the last rendered frame.
func (r *Deferred) Stats() FrameStats {
	return r.stats
}

// RenderFrame runs the geometry, depth blit, lighting and transparency
// passes for the given frame.
func (r *Deferred) RenderFrame(frame *Frame) error {
	if r.device == nil {
		return ErrDeviceNotDefined
	}

	start := time.Now()
	r.stats = FrameStats{Passes: make([]PassStat, 0, NumPasses)}
	r.lightVolumes = r.lightVolumes[:0]
	r.transparent = r.transparent[:0]

	viewProj := frame.Proj.Mul4(frame.View)
	planes := scene.ExtractFrustumPlanes(viewProj)
	params := PassParams{
		View:      frame.View,
		Proj:      frame.Proj,
		CameraPos: frame.CameraPos,
	}

	if err := r.geometryPass(frame, planes, params); err != nil {
		return err
	}

	r.device.BlitDepth()
	r.lightingPass(frame, planes, viewProj, params)

	if len(r.transparent) != 0 {
		params.Lights = frame.Lights
		r.transparencyPass(params)
	}

	for pass := GeometryPass; pass < NumPasses; pass++ {
		r.stats.Passes = append(r.stats.Passes, PassStat{Pass: pass, GPUTime: r.device.PassTime(pass)})
	}
	r.stats.RenderTime = time.Since(start)
	return nil
}

// Draw opaque meshes that survive frustum culling into the geometry buffer.
// Transparent meshes are queued for the transparency pass.
func (r *Deferred) geometryPass(frame *Frame, planes scene.FrustumPlanes, params PassParams) error {
	r.device.BeginPass(GeometryPass, params)
	defer r.device.EndPass(GeometryPass)

	r.device.SetBlendMode(BlendNone)
	r.device.SetCullFace(CullBack)

	for _, ent := range frame.Entities {
		mesh, ok := r.scene.Mesh(ent.Renderer)
		if !ok {
			continue
		}
		if int(ent.Renderer.Mesh) >= len(r.meshes) {
			return ErrUnknownMesh
		}

		model := ent.Transform.Matrix()
		if scene.ShouldCull(mesh.Bounds, model, planes) {
			r.stats.MeshesCulled++
			continue
		}

		cmd := r.drawCmd(ent.Renderer, model)
		r.stats.MeshesDrawn++
		r.stats.Triangles += len(mesh.Data.Indices) / 3

		if cmd.Material.Transparent() {
			r.transparent = append(r.transparent, transparentDraw{
				cmd:      cmd,
				distance: ent.Transform.Position.Distance(frame.CameraPos),
			})
			continue
		}
		r.device.DrawMesh(cmd)
	}

	return nil
}

func (r *Deferred) drawCmd(mr *scene.MeshRenderer, model types.Mat4) MeshDrawCmd {
	cmd := MeshDrawCmd{
		Mesh:            r.meshes[mr.Mesh],
		Model:           model,
		DiffuseTexture:  r.white,
		SpecularTexture: r.white,
	}

	if int(mr.Material) < len(r.scene.Materials) {
		cmd.Material = r.scene.Materials[mr.Material]
	} else {
		cmd.Material = asset.NewMaterial(types.XYZ(1, 0, 1))
	}

	if tex := cmd.Material.DiffuseTexture; tex != asset.NoTexture && int(tex) < len(r.textures) {
		cmd.DiffuseTexture = r.textures[tex]
	}
	if tex := cmd.Material.SpecularTexture; tex != asset.NoTexture && int(tex) < len(r.textures) {
		cmd.SpecularTexture = r.textures[tex]
	}
	return cmd
}

// Derive light volumes for the frame lights and additively blend the
// contribution of each visible volume.
func (r *Deferred) lightingPass(frame *Frame, planes scene.FrustumPlanes, viewProj types.Mat4, params PassParams) {
	r.collectLightVolumes(frame, planes)

	r.device.BeginPass(LightingPass, params)
	defer r.device.EndPass(LightingPass)

	r.device.SetBlendMode(BlendAdditive)

	for i := range r.lightVolumes {
		lv := &r.lightVolumes[i]
		cmd := LightDrawCmd{
			Volume: FullscreenVolume,
			Light:  *lv.light,
			Radius: lv.radius,
			MVP:    types.Ident4(),
		}

		cullFace := CullBack
		if lv.light.HasVolume() {
			cmd.MVP = viewProj.Mul4(lv.model)
			cmd.Volume, cmd.Mesh = SphereVolume, r.sphereVolume
			if lv.light.Type == scene.SpotLight {
				cmd.Volume, cmd.Mesh = CubeVolume, r.cubeVolume
			}

			// The near plane clips the volume front faces when the camera is inside it
			if lv.inside {
				cullFace = CullFront
			}
		}

		r.device.SetCullFace(cullFace)
		r.device.DrawLight(cmd)
		r.stats.LightsDrawn++
	}

	r.device.SetCullFace(CullBack)
}

func (r *Deferred) collectLightVolumes(frame *Frame, planes scene.FrustumPlanes) {
	for i := range frame.Lights {
		light := &frame.Lights[i]
		if !light.HasVolume() {
			r.lightVolumes = append(r.lightVolumes, lightVolume{light: light})
			continue
		}

		radius := light.VolumeRadius(r.opts.LightCutoff)
		if radius <= 0 {
			r.stats.LightsCulled++
			continue
		}

		model := light.VolumeMatrix(radius)
		if scene.ShouldCull(scene.UnitVolumeBounds(), model, planes) {
			r.stats.LightsCulled++
			continue
		}

		r.lightVolumes = append(r.lightVolumes, lightVolume{
			light:  light,
			radius: radius,
			model:  model,
			inside: frame.CameraPos.Distance(light.Position) < radius,
		})
	}
}

// Forward render transparent meshes back to front.
func (r *Deferred) transparencyPass(params PassParams) {
	sort.SliceStable(r.transparent, func(i, j int) bool {
		return r.transparent[i].distance > r.transparent[j].distance
	})

	r.device.BeginPass(TransparencyPass, params)
	defer r.device.EndPass(TransparencyPass)

	r.device.SetBlendMode(BlendAlpha)
	for _, t := range r.transparent {
		r.device.DrawMesh(t.cmd)
	}
}
