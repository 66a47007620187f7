package renderer

import (
	"time"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
)

// Handles to GPU resources owned by a Device.
type MeshHandle uint32
type TextureHandle uint32

type Pass uint8

const (
	GeometryPass Pass = iota
	LightingPass
	TransparencyPass
	NumPasses
)

func (p Pass) String() string {
	switch p {
	case GeometryPass:
		return "geometry"
	case LightingPass:
		return "lighting"
	case TransparencyPass:
		return "transparency"
	}
	return "unknown"
}

type CullFace uint8

const (
	CullBack CullFace = iota
	CullFront
)

type BlendMode uint8

const (
	BlendNone BlendMode = iota
	// Additive blending with ONE, ONE factors.
	BlendAdditive
	// Standard SRC_ALPHA, ONE_MINUS_SRC_ALPHA blending.
	BlendAlpha
)

type LightVolume uint8

const (
	SphereVolume LightVolume = iota
	CubeVolume
	FullscreenVolume
)

// PassParams are the per-pass uniforms shared by every draw call in a pass.
type PassParams struct {
	View      types.Mat4
	Proj      types.Mat4
	CameraPos types.Vec3

	// Lights used for forward shading in the transparency pass.
	Lights []scene.Light
}

// MeshDrawCmd draws an indexed mesh.
type MeshDrawCmd struct {
	Mesh     MeshHandle
	Model    types.Mat4
	Material asset.Material

	DiffuseTexture  TextureHandle
	SpecularTexture TextureHandle
}

// LightDrawCmd rasterizes a light volume that samples the geometry buffer.
type LightDrawCmd struct {
	Volume LightVolume
	Mesh   MeshHandle

	// Projection * view * model matrix for the volume mesh.
	MVP types.Mat4

	Light  scene.Light
	Radius float32
}

// Device is the GPU command interface used by the render pipelines.
type Device interface {
	// Upload resources. Handles remain valid until the device is closed.
	UploadMesh(mesh *asset.MeshData) (MeshHandle, error)
	UploadTexture(tex *asset.Texture) (TextureHandle, error)

	// Begin and end a timed render pass.
	BeginPass(pass Pass, params PassParams)
	EndPass(pass Pass)

	SetCullFace(face CullFace)
	SetBlendMode(mode BlendMode)

	DrawMesh(cmd MeshDrawCmd)
	DrawLight(cmd LightDrawCmd)

	// Copy the geometry buffer depth to the default framebuffer.
	BlitDepth()

	// Get the GPU time spent in a pass during the last completed frame.
	PassTime(pass Pass) time.Duration

	Close()
}
