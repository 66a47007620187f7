package opengl

import (
	"testing"
	"unsafe"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/renderer"
	"github.com/achilleasa/glint/scene/bvh"
	"github.com/go-gl/gl/v4.3-core/gl"
)

func TestBlendFuncMapping(t *testing.T) {
	type spec struct {
		mode       renderer.BlendMode
		expSrc     uint32
		expDst     uint32
		expEnabled bool
	}
	specs := []spec{
		{renderer.BlendNone, gl.ONE, gl.ZERO, false},
		{renderer.BlendAdditive, gl.ONE, gl.ONE, true},
		{renderer.BlendAlpha, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, true},
	}

	for index, s := range specs {
		src, dst, enabled := glBlendFunc(s.mode)
		if src != s.expSrc || dst != s.expDst || enabled != s.expEnabled {
			t.Fatalf("[spec %d] expected blend (0x%x, 0x%x, %t); got (0x%x, 0x%x, %t)", index, s.expSrc, s.expDst, s.expEnabled, src, dst, enabled)
		}
	}
}

func TestCullFaceMapping(t *testing.T) {
	if glCullFace(renderer.CullBack) != gl.BACK {
		t.Fatal("expected CullBack to map to GL_BACK")
	}
	if glCullFace(renderer.CullFront) != gl.FRONT {
		t.Fatal("expected CullFront to map to GL_FRONT")
	}

	// Back faces of volumes containing the camera are tested behind the scene
	if glLightDepthFunc(renderer.CullFront) != gl.GEQUAL {
		t.Fatal("expected GEQUAL depth test when culling front faces")
	}
	if glLightDepthFunc(renderer.CullBack) != gl.LEQUAL {
		t.Fatal("expected LEQUAL depth test when culling back faces")
	}
}

// The trace shader declares std430 structs that must match the Go layouts.
func TestStorageBufferLayouts(t *testing.T) {
	type spec struct {
		name    string
		size    uintptr
		expSize uintptr
	}
	specs := []spec{
		{"node", unsafe.Sizeof(bvh.LinearNode{}), 32},
		{"vertex", unsafe.Sizeof(asset.Vertex{}), 64},
		{"triangle", unsafe.Sizeof(asset.Triangle{}), 16},
		{"material", unsafe.Sizeof(asset.Material{}), 64},
	}

	for index, s := range specs {
		if s.size != s.expSize {
			t.Fatalf("[spec %d] expected %s record to take %d bytes; got %d", index, s.name, s.expSize, s.size)
		}
	}
}
