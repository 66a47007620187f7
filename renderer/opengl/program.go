package opengl

import (
	"fmt"
	"strings"

	"github.com/achilleasa/glint/types"
	"github.com/go-gl/gl/v4.3-core/gl"
)

// A linked shader program with a cache of uniform locations.
type program struct {
	name     string
	handle   uint32
	uniforms map[string]int32
}

// Compile and link a program from the supplied shader stages.
func newProgram(name string, stages map[uint32]string) (*program, error) {
	handle := gl.CreateProgram()
	shaders := make([]uint32, 0, len(stages))
	defer func() {
		for _, shader := range shaders {
			gl.DeleteShader(shader)
		}
	}()

	for stage, src := range stages {
		shader, err := compileShader(src, stage)
		if err != nil {
			gl.DeleteProgram(handle)
			return nil, fmt.Errorf("opengl device: %s program: %w", name, err)
		}
		gl.AttachShader(handle, shader)
		shaders = append(shaders, shader)
	}

	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(log))
		gl.DeleteProgram(handle)
		return nil, fmt.Errorf("opengl device: could not link %s program: %s", name, strings.TrimRight(log, "\x00"))
	}

	return &program{
		name:     name,
		handle:   handle,
		uniforms: make(map[string]int32),
	}, nil
}

func compileShader(source string, stage uint32) (uint32, error) {
	shader := gl.CreateShader(stage)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("could not compile %s shader: %s", stageName(stage), strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

func stageName(stage uint32) string {
	switch stage {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	case gl.COMPUTE_SHADER:
		return "compute"
	}
	return "unknown"
}

func (p *program) use() {
	gl.UseProgram(p.handle)
}

func (p *program) location(name string) int32 {
	loc, ok := p.uniforms[name]
	if !ok {
		loc = gl.GetUniformLocation(p.handle, gl.Str(name+"\x00"))
		p.uniforms[name] = loc
	}
	return loc
}

func (p *program) setMat4(name string, m types.Mat4) {
	gl.UniformMatrix4fv(p.location(name), 1, false, &m[0])
}

func (p *program) setVec2(name string, v types.Vec2) {
	gl.Uniform2fv(p.location(name), 1, &v[0])
}

func (p *program) setVec3(name string, v types.Vec3) {
	gl.Uniform3fv(p.location(name), 1, &v[0])
}

func (p *program) setVec4(name string, v types.Vec4) {
	gl.Uniform4fv(p.location(name), 1, &v[0])
}

func (p *program) setFloat(name string, v float32) {
	gl.Uniform1f(p.location(name), v)
}

func (p *program) setInt(name string, v int32) {
	gl.Uniform1i(p.location(name), v)
}

func (p *program) setUint(name string, v uint32) {
	gl.Uniform1ui(p.location(name), v)
}

func (p *program) setBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	gl.Uniform1i(p.location(name), i)
}

func (p *program) delete() {
	if p.handle != 0 {
		gl.DeleteProgram(p.handle)
		p.handle = 0
	}
}
