package asset

import (
	"github.com/achilleasa/glint/types"
)

// Vertex uses 4-component attributes so that arrays of vertices can be
// uploaded to std430 storage buffers without repacking. Each vertex takes
// 64 bytes.
type Vertex struct {
	Position types.Vec4
	Normal   types.Vec4
	UV       types.Vec4
	Tangent  types.Vec4
}

// Triangle references three vertices and a material record. Each triangle
// takes 16 bytes.
type Triangle struct {
	Indices  [3]uint32
	Material uint32
}

// MeshData is the geometry of a single mesh in model space.
type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// Triangles converts the mesh index list into triangle records that use the
// given material and vertex offset.
func (m *MeshData) Triangles(material, vertexOffset uint32) []Triangle {
	tris := make([]Triangle, len(m.Indices)/3)
	for i := range tris {
		tris[i] = Triangle{
			Indices: [3]uint32{
				m.Indices[3*i] + vertexOffset,
				m.Indices[3*i+1] + vertexOffset,
				m.Indices[3*i+2] + vertexOffset,
			},
			Material: material,
		}
	}
	return tris
}

// Bounds returns the model-space min and max extents of the mesh vertices.
func (m *MeshData) Bounds() (min, max types.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min = m.Vertices[0].Position.Vec3()
	max = min
	for _, v := range m.Vertices[1:] {
		min = types.MinVec3(min, v.Position.Vec3())
		max = types.MaxVec3(max, v.Position.Vec3())
	}
	return min, max
}

func vertex(pos, normal types.Vec3, u, v float32, tangent types.Vec3) Vertex {
	return Vertex{
		Position: pos.Vec4(1),
		Normal:   normal.Vec4(0),
		UV:       types.XYZW(u, v, 0, 0),
		Tangent:  tangent.Vec4(1),
	}
}
