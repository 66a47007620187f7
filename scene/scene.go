package scene

import (
	"fmt"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/types"
)

// Mesh is a model-space mesh together with its cached bounds.
type Mesh struct {
	Data   *asset.MeshData
	Bounds Bounds
}

// Scene is the root context shared by the update, render and trace passes.
// It owns every entity, light and asset referenced by a frame.
type Scene struct {
	Camera *Camera

	Entities EntityStore

	Meshes    []Mesh
	Materials []asset.Material
	Textures  []*asset.Texture
	Lights    []Light

	BgColor types.Vec3
}

func NewScene() *Scene {
	return &Scene{
		Camera:    NewCamera(45),
		Meshes:    make([]Mesh, 0),
		Materials: make([]asset.Material, 0),
		Textures:  make([]*asset.Texture, 0),
		Lights:    make([]Light, 0),
	}
}

// Add a mesh to the scene and return its index.
func (s *Scene) AddMesh(data *asset.MeshData) uint32 {
	min, max := data.Bounds()
	s.Meshes = append(s.Meshes, Mesh{
		Data:   data,
		Bounds: Bounds{Min: min, Max: max},
	})
	return uint32(len(s.Meshes) - 1)
}

// Add a material to the scene and return its index.
func (s *Scene) AddMaterial(material asset.Material) (uint32, error) {
	for _, texIndex := range []int32{material.DiffuseTexture, material.SpecularTexture} {
		if texIndex != asset.NoTexture && (texIndex < 0 || int(texIndex) >= len(s.Textures)) {
			return 0, fmt.Errorf("scene: material references unknown texture %d; ensure that the texture is added to the scene before adding the material", texIndex)
		}
	}
	s.Materials = append(s.Materials, material)
	return uint32(len(s.Materials) - 1), nil
}

// Add a texture to the scene and return its index.
func (s *Scene) AddTexture(tex *asset.Texture) int32 {
	s.Textures = append(s.Textures, tex)
	return int32(len(s.Textures) - 1)
}

// Add a light to the scene.
func (s *Scene) AddLight(light Light) {
	s.Lights = append(s.Lights, light)
}

// Attach a mesh renderer to an entity.
func (s *Scene) AttachRenderer(id EntityID, mesh, material uint32) error {
	ent, ok := s.Entities.Get(id)
	if !ok {
		return fmt.Errorf("scene: unknown %s", id)
	}
	if int(mesh) >= len(s.Meshes) {
		return fmt.Errorf("scene: renderer references unknown mesh %d", mesh)
	}
	if int(material) >= len(s.Materials) {
		return fmt.Errorf("scene: renderer references unknown material %d", material)
	}

	ent.Renderer = &MeshRenderer{Mesh: mesh, Material: material}
	return nil
}

// Mesh returns the mesh drawn by a renderer component.
func (s *Scene) Mesh(r *MeshRenderer) (*Mesh, bool) {
	if r == nil || int(r.Mesh) >= len(s.Meshes) {
		return nil, false
	}
	return &s.Meshes[r.Mesh], true
}

// PrimaryLight returns the first directional light in the scene.
func (s *Scene) PrimaryLight() (*Light, bool) {
	for i := range s.Lights {
		if s.Lights[i].Type == DirectionalLight {
			return &s.Lights[i], true
		}
	}
	return nil, false
}
