package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Geometry buffer color attachments.
const (
	gPosition = iota
	gNormal
	gDiffuse
	gSpecular
	numGBufferTargets
)

var gbufferTargetNames = [numGBufferTargets]string{"gPosition", "gNormal", "gDiffuse", "gSpecular"}

// The geometry buffer stores world-space position and normal, diffuse
// albedo and specular color with roughness in the alpha channel.
type gbuffer struct {
	fbo     uint32
	targets [numGBufferTargets]uint32
	depth   uint32
	w, h    int32
}

func newGBuffer(w, h int32) (*gbuffer, error) {
	g := &gbuffer{w: w, h: h}

	gl.GenFramebuffers(1, &g.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	formats := [numGBufferTargets]struct {
		internal int32
		format   uint32
		xtype    uint32
	}{
		{gl.RGBA32F, gl.RGBA, gl.FLOAT},
		{gl.RGBA16F, gl.RGBA, gl.FLOAT},
		{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
		{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	}

	gl.GenTextures(numGBufferTargets, &g.targets[0])
	drawBuffers := make([]uint32, numGBufferTargets)
	for index, f := range formats {
		gl.BindTexture(gl.TEXTURE_2D, g.targets[index])
		gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, w, h, 0, f.format, f.xtype, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

		attachment := uint32(gl.COLOR_ATTACHMENT0 + index)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, g.targets[index], 0)
		drawBuffers[index] = attachment
	}
	gl.DrawBuffers(numGBufferTargets, &drawBuffers[0])

	gl.GenRenderbuffers(1, &g.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, g.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, g.depth)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		g.delete()
		return nil, fmt.Errorf("opengl device: incomplete geometry buffer (status 0x%x)", status)
	}

	return g, nil
}

// Bind the geometry buffer targets to consecutive texture units.
func (g *gbuffer) bindTargets(p *program) {
	for index, tex := range g.targets {
		gl.ActiveTexture(uint32(gl.TEXTURE0 + index))
		gl.BindTexture(gl.TEXTURE_2D, tex)
		p.setInt(gbufferTargetNames[index], int32(index))
	}
}

// Copy depth into the default framebuffer so light volumes and forward
// rendered geometry are depth tested against the scene.
func (g *gbuffer) blitDepth() {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, g.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, g.w, g.h, 0, 0, g.w, g.h, gl.DEPTH_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (g *gbuffer) delete() {
	gl.DeleteTextures(numGBufferTargets, &g.targets[0])
	gl.DeleteRenderbuffers(1, &g.depth)
	gl.DeleteFramebuffers(1, &g.fbo)
}
