package opengl

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/renderer"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.3-core/gl"
)

type glMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Device implements renderer.Device and tracer.Device on top of an OpenGL
// 4.3 core context. It must be created and used from the thread that owns
// the context.
type Device struct {
	logger log.Logger

	frameW, frameH int32
	bgColor        types.Vec3

	gbuf *gbuffer

	meshProgram         *program
	lightProgram        *program
	transparencyProgram *program
	traceProgram        *program
	presentProgram      *program

	// Bound program for the active pass.
	active *program

	meshes   []glMesh
	textures []uint32

	// An empty VAO for attribute-less fullscreen draws.
	emptyVao uint32

	cullFace    renderer.CullFace
	passTimers  [renderer.NumPasses]*timer
	traceTimer  *timer
	ssbos       [numSSBOs]uint32
	traceTarget uint32
	traceFbo    uint32
}

// Create a device for the current OpenGL context.
func NewDevice(frameW, frameH uint32, bgColor types.Vec3) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl device: could not init opengl: %w", err)
	}

	d := &Device{
		logger:  log.New("opengl device"),
		frameW:  int32(frameW),
		frameH:  int32(frameH),
		bgColor: bgColor,
	}
	d.logger.Noticef("using %s (%s)", gl.GoStr(gl.GetString(gl.RENDERER)), gl.GoStr(gl.GetString(gl.VERSION)))

	if err := d.init(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	var err error

	programs := []struct {
		target **program
		name   string
		stages map[uint32]string
	}{
		{&d.meshProgram, "geometry", map[uint32]string{gl.VERTEX_SHADER: meshVertexShader, gl.FRAGMENT_SHADER: geometryFragmentShader}},
		{&d.lightProgram, "light volume", map[uint32]string{gl.VERTEX_SHADER: lightVertexShader, gl.FRAGMENT_SHADER: lightFragmentShader}},
		{&d.transparencyProgram, "transparency", map[uint32]string{gl.VERTEX_SHADER: meshVertexShader, gl.FRAGMENT_SHADER: transparencyFragmentShader}},
		{&d.traceProgram, "trace", map[uint32]string{gl.COMPUTE_SHADER: traceComputeShader}},
		{&d.presentProgram, "present", map[uint32]string{gl.VERTEX_SHADER: presentVertexShader, gl.FRAGMENT_SHADER: presentFragmentShader}},
	}
	for _, p := range programs {
		if *p.target, err = newProgram(p.name, p.stages); err != nil {
			return err
		}
	}

	if d.gbuf, err = newGBuffer(d.frameW, d.frameH); err != nil {
		return err
	}

	for pass := range d.passTimers {
		d.passTimers[pass] = newTimer()
	}
	d.traceTimer = newTimer()

	gl.GenVertexArrays(1, &d.emptyVao)
	gl.GenBuffers(int32(numSSBOs), &d.ssbos[0])

	gl.Viewport(0, 0, d.frameW, d.frameH)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	return nil
}

// Close releases all GPU resources owned by the device.
func (d *Device) Close() {
	for _, p := range []*program{d.meshProgram, d.lightProgram, d.transparencyProgram, d.traceProgram, d.presentProgram} {
		if p != nil {
			p.delete()
		}
	}
	d.meshProgram, d.lightProgram, d.transparencyProgram, d.traceProgram, d.presentProgram = nil, nil, nil, nil, nil

	for _, m := range d.meshes {
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		gl.DeleteVertexArrays(1, &m.vao)
	}
	d.meshes = nil

	if len(d.textures) != 0 {
		gl.DeleteTextures(int32(len(d.textures)), &d.textures[0])
		d.textures = nil
	}

	for pass, t := range d.passTimers {
		if t != nil {
			t.delete()
			d.passTimers[pass] = nil
		}
	}
	if d.traceTimer != nil {
		d.traceTimer.delete()
		d.traceTimer = nil
	}

	if d.gbuf != nil {
		d.gbuf.delete()
		d.gbuf = nil
	}
	if d.emptyVao != 0 {
		gl.DeleteVertexArrays(1, &d.emptyVao)
		gl.DeleteBuffers(int32(numSSBOs), &d.ssbos[0])
		d.emptyVao = 0
	}
	d.deleteTraceTarget()
}

// UploadMesh copies mesh vertices and indices into a new VAO.
func (d *Device) UploadMesh(mesh *asset.MeshData) (renderer.MeshHandle, error) {
	if mesh == nil || len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return 0, fmt.Errorf("opengl device: cannot upload empty mesh")
	}

	var m glMesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	defer gl.BindVertexArray(0)

	vertexSize := int32(unsafe.Sizeof(asset.Vertex{}))
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(vertexSize), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	// position, normal, uv and tangent are consecutive vec4 attributes
	for attr := uint32(0); attr < 4; attr++ {
		gl.EnableVertexAttribArray(attr)
		gl.VertexAttribPointerWithOffset(attr, 4, gl.FLOAT, false, vertexSize, uintptr(attr*16))
	}

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	m.indexCount = int32(len(mesh.Indices))

	d.meshes = append(d.meshes, m)
	return renderer.MeshHandle(len(d.meshes) - 1), nil
}

// UploadTexture copies RGBA8 texture data into a new mipmapped texture.
func (d *Device) UploadTexture(tex *asset.Texture) (renderer.TextureHandle, error) {
	if tex == nil || len(tex.Pixels) == 0 {
		return 0, fmt.Errorf("opengl device: cannot upload empty texture")
	}

	var handle uint32
	gl.GenTextures(1, &handle)
	gl.BindTexture(gl.TEXTURE_2D, handle)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(tex.Width), int32(tex.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	d.textures = append(d.textures, handle)
	return renderer.TextureHandle(len(d.textures) - 1), nil
}

// BeginPass binds the pass render target and program and starts its timer.
func (d *Device) BeginPass(pass renderer.Pass, params renderer.PassParams) {
	d.passTimers[pass].begin()

	switch pass {
	case renderer.GeometryPass:
		gl.BindFramebuffer(gl.FRAMEBUFFER, d.gbuf.fbo)
		gl.ClearColor(0, 0, 0, 0)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthMask(true)
		gl.DepthFunc(gl.LESS)
		d.active = d.meshProgram
	case renderer.LightingPass:
		// Depth was already copied into the default framebuffer
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.ClearColor(d.bgColor[0], d.bgColor[1], d.bgColor[2], 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.DepthMask(false)
		d.active = d.lightProgram
	case renderer.TransparencyPass:
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
		gl.DepthMask(false)
		d.active = d.transparencyProgram
	}

	d.active.use()
	d.active.setVec3("cameraPos", params.CameraPos)

	switch pass {
	case renderer.LightingPass:
		d.gbuf.bindTargets(d.active)
		d.active.setVec2("screenSize", types.XY(float32(d.frameW), float32(d.frameH)))
	default:
		d.active.setMat4("view", params.View)
		d.active.setMat4("proj", params.Proj)
	}

	if pass == renderer.TransparencyPass {
		numLights := len(params.Lights)
		if numLights > maxForwardLights {
			numLights = maxForwardLights
		}
		d.active.setInt("numLights", int32(numLights))
		for index := 0; index < numLights; index++ {
			setLightUniforms(d.active, fmt.Sprintf("lights[%d]", index), &params.Lights[index], math32.MaxFloat32)
		}
	}
}

// EndPass stops the pass timer and restores the default depth state.
func (d *Device) EndPass(pass renderer.Pass) {
	d.passTimers[pass].end()
	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.DEPTH_TEST)
	d.active = nil
}

func (d *Device) SetCullFace(face renderer.CullFace) {
	d.cullFace = face
	gl.CullFace(glCullFace(face))
}

func (d *Device) SetBlendMode(mode renderer.BlendMode) {
	src, dst, enabled := glBlendFunc(mode)
	if !enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(src, dst)
}

// DrawMesh draws a mesh with the active mesh program.
func (d *Device) DrawMesh(cmd renderer.MeshDrawCmd) {
	if int(cmd.Mesh) >= len(d.meshes) || d.active == nil {
		return
	}
	p := d.active

	p.setMat4("model", cmd.Model)
	p.setVec4("diffuse", cmd.Material.Diffuse)
	p.setVec4("specular", cmd.Material.Specular)
	p.setFloat("roughness", cmd.Material.Roughness)
	p.setFloat("opacity", cmd.Material.Opacity)

	d.bindTexture(0, cmd.DiffuseTexture)
	p.setInt("diffuseTex", 0)
	d.bindTexture(1, cmd.SpecularTexture)
	p.setInt("specularTex", 1)

	m := d.meshes[cmd.Mesh]
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *Device) bindTexture(unit uint32, handle renderer.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	if int(handle) < len(d.textures) {
		gl.BindTexture(gl.TEXTURE_2D, d.textures[handle])
	}
}

// DrawLight rasterizes a light volume. Front faces are depth tested against
// the scene with LEQUAL; when front faces are culled the back faces are
// tested with GEQUAL instead. Fullscreen lights skip the depth test.
func (d *Device) DrawLight(cmd renderer.LightDrawCmd) {
	if d.active == nil {
		return
	}
	p := d.active
	setLightUniforms(p, "light", &cmd.Light, cmd.Radius)

	if cmd.Volume == renderer.FullscreenVolume {
		p.setBool("fullscreen", true)
		gl.Disable(gl.DEPTH_TEST)
		gl.BindVertexArray(d.emptyVao)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
		gl.BindVertexArray(0)
		gl.Enable(gl.DEPTH_TEST)
		return
	}

	if int(cmd.Mesh) >= len(d.meshes) {
		return
	}

	p.setBool("fullscreen", false)
	p.setMat4("mvp", cmd.MVP)
	gl.DepthFunc(glLightDepthFunc(d.cullFace))

	m := d.meshes[cmd.Mesh]
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func setLightUniforms(p *program, prefix string, l *scene.Light, radius float32) {
	p.setInt(prefix+".type", int32(l.Type))
	p.setVec3(prefix+".radiance", l.Radiance())
	p.setVec3(prefix+".position", l.Position)
	p.setVec3(prefix+".direction", l.Direction)
	p.setFloat(prefix+".radius", radius)
	p.setFloat(prefix+".spotCos", math32.Cos(l.SpotAngle*math32.Pi/180))
}

// BlitDepth copies the geometry buffer depth to the default framebuffer.
func (d *Device) BlitDepth() {
	d.gbuf.blitDepth()
}

// PassTime returns the GPU time of a pass from the last completed frame.
func (d *Device) PassTime(pass renderer.Pass) time.Duration {
	if int(pass) >= len(d.passTimers) || d.passTimers[pass] == nil {
		return 0
	}
	return d.passTimers[pass].elapsed
}

func glCullFace(face renderer.CullFace) uint32 {
	if face == renderer.CullFront {
		return gl.FRONT
	}
	return gl.BACK
}

func glBlendFunc(mode renderer.BlendMode) (src, dst uint32, enabled bool) {
	switch mode {
	case renderer.BlendAdditive:
		return gl.ONE, gl.ONE, true
	case renderer.BlendAlpha:
		return gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, true
	}
	return gl.ONE, gl.ZERO, false
}

func glLightDepthFunc(face renderer.CullFace) uint32 {
	if face == renderer.CullFront {
		return gl.GEQUAL
	}
	return gl.LEQUAL
}
