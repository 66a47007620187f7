package opengl

import (
	"fmt"
	"time"

	"github.com/achilleasa/glint/tracer"
	"github.com/go-gl/gl/v4.3-core/gl"
)

const numSSBOs = int(tracer.NumBindings)

// UploadBuffer replaces the contents of a trace shader storage buffer.
func (d *Device) UploadBuffer(binding tracer.Binding, data interface{}) error {
	if int(binding) >= numSSBOs {
		return fmt.Errorf("opengl device: unknown storage buffer binding %d", binding)
	}

	ptr, size := tracer.SliceData(data)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, d.ssbos[binding])
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, ptr, gl.STATIC_DRAW)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(binding), d.ssbos[binding])
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	d.logger.Debugf("uploaded %d bytes to %s buffer", size, binding)
	return nil
}

// ResizeTarget allocates the image written by the trace shader.
func (d *Device) ResizeTarget(frameW, frameH uint32) error {
	d.deleteTraceTarget()

	gl.GenTextures(1, &d.traceTarget)
	gl.BindTexture(gl.TEXTURE_2D, d.traceTarget)
	gl.TexStorage2D(gl.TEXTURE_2D, 1, gl.RGBA8, int32(frameW), int32(frameH))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &d.traceFbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.traceFbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, d.traceTarget, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("opengl device: incomplete trace target framebuffer (status 0x%x)", status)
	}

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return fmt.Errorf("opengl device: could not allocate %dx%d trace target (error 0x%x)", frameW, frameH, errCode)
	}

	// Storage allocated by TexStorage2D is undefined until written
	return d.ClearTarget()
}

// ClearTarget fills the trace output with the background color.
func (d *Device) ClearTarget() error {
	if d.traceFbo == 0 {
		return fmt.Errorf("opengl device: trace target not allocated")
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, d.traceFbo)
	gl.ClearColor(d.bgColor[0], d.bgColor[1], d.bgColor[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (d *Device) deleteTraceTarget() {
	if d.traceFbo != 0 {
		gl.DeleteFramebuffers(1, &d.traceFbo)
		d.traceFbo = 0
	}
	if d.traceTarget != 0 {
		gl.DeleteTextures(1, &d.traceTarget)
		d.traceTarget = 0
	}
}

// Dispatch runs the trace shader.
func (d *Device) Dispatch(groupsX, groupsY uint32, uniforms tracer.Uniforms) error {
	if d.traceTarget == 0 {
		return fmt.Errorf("opengl device: trace target not allocated")
	}

	p := d.traceProgram
	p.use()
	p.setVec3("cameraPos", uniforms.CameraPos)
	p.setMat4("invView", uniforms.InvView)
	p.setMat4("invProj", uniforms.InvProj)
	p.setVec3("lightDir", uniforms.LightDir)
	p.setVec3("lightColor", uniforms.LightColor)
	p.setUint("numNodes", uniforms.NumNodes)

	for binding := 0; binding < numSSBOs; binding++ {
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(binding), d.ssbos[binding])
	}
	gl.BindImageTexture(0, d.traceTarget, 0, false, 0, gl.WRITE_ONLY, gl.RGBA8)

	d.traceTimer.begin()
	gl.DispatchCompute(groupsX, groupsY, 1)
	d.traceTimer.end()

	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_FETCH_BARRIER_BIT)
	return nil
}

// Present draws the trace output as a fullscreen triangle.
func (d *Device) Present() error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ClearColor(d.bgColor[0], d.bgColor[1], d.bgColor[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if d.traceTarget == 0 {
		return nil
	}

	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)

	d.presentProgram.use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.traceTarget)
	d.presentProgram.setInt("image", 0)

	gl.BindVertexArray(d.emptyVao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	return nil
}

// DispatchTime returns the GPU time of the last completed dispatch.
func (d *Device) DispatchTime() time.Duration {
	if d.traceTimer == nil {
		return 0
	}
	return d.traceTimer.elapsed
}
