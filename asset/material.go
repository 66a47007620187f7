package asset

import "github.com/achilleasa/glint/types"

// NoTexture marks an unset material texture slot.
const NoTexture int32 = -1

// Material is a fixed-size, std430 friendly material record. Each material
// takes 64 bytes and the same layout is shared by the rasterizer uniforms
// and the ray tracer material buffer.
type Material struct {
	Ambient  types.Vec4
	Diffuse  types.Vec4
	Specular types.Vec4

	Opacity   float32
	Roughness float32

	// Indices into the scene texture list or NoTexture.
	DiffuseTexture  int32
	SpecularTexture int32
}

// Create an opaque material with the given diffuse color and no textures.
func NewMaterial(diffuse types.Vec3) Material {
	return Material{
		Ambient:         diffuse.Mul(0.1).Vec4(1),
		Diffuse:         diffuse.Vec4(1),
		Specular:        types.XYZW(0.5, 0.5, 0.5, 1),
		Opacity:         1,
		Roughness:       0.5,
		DiffuseTexture:  NoTexture,
		SpecularTexture: NoTexture,
	}
}

// Transparent returns true if the material needs to be rendered in the
// forward transparency pass.
func (m *Material) Transparent() bool {
	return m.Opacity < 1
}
