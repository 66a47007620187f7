package asset

import (
	"github.com/achilleasa/glint/types"
	"github.com/chewxy/math32"
)

type cubeFace struct {
	normal, u, v types.Vec3
}

var cubeFaces = [6]cubeFace{
	{types.XYZ(1, 0, 0), types.XYZ(0, 0, -1), types.XYZ(0, 1, 0)},
	{types.XYZ(-1, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0)},
	{types.XYZ(0, 1, 0), types.XYZ(1, 0, 0), types.XYZ(0, 0, -1)},
	{types.XYZ(0, -1, 0), types.XYZ(1, 0, 0), types.XYZ(0, 0, 1)},
	{types.XYZ(0, 0, 1), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)},
	{types.XYZ(0, 0, -1), types.XYZ(-1, 0, 0), types.XYZ(0, 1, 0)},
}

// Cube generates an axis-aligned cube centered at the origin with the given
// edge length. Faces are wound counter-clockwise when viewed from outside.
func Cube(size float32) *MeshData {
	h := size * 0.5
	mesh := &MeshData{
		Name:     "cube",
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}

	for _, f := range cubeFaces {
		base := uint32(len(mesh.Vertices))
		center := f.normal.Mul(h)
		corners := [4]struct{ su, sv float32 }{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, c := range corners {
			pos := center.Add(f.u.Mul(c.su * h)).Add(f.v.Mul(c.sv * h))
			mesh.Vertices = append(mesh.Vertices, vertex(pos, f.normal, (c.su+1)*0.5, (c.sv+1)*0.5, f.u))
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	return mesh
}

// UVSphere generates a unit sphere tessellated into the given number of
// rings and sectors.
func UVSphere(rings, sectors int) *MeshData {
	if rings < 2 {
		rings = 2
	}
	if sectors < 3 {
		sectors = 3
	}

	mesh := &MeshData{
		Name:     "sphere",
		Vertices: make([]Vertex, 0, (rings+1)*(sectors+1)),
		Indices:  make([]uint32, 0, rings*sectors*6),
	}

	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		phi := v * math32.Pi
		for s := 0; s <= sectors; s++ {
			u := float32(s) / float32(sectors)
			theta := u * 2 * math32.Pi
			pos := types.XYZ(
				math32.Cos(theta)*math32.Sin(phi),
				math32.Cos(phi),
				math32.Sin(theta)*math32.Sin(phi),
			)
			tangent := types.XYZ(-math32.Sin(theta), 0, math32.Cos(theta))
			mesh.Vertices = append(mesh.Vertices, vertex(pos, pos, u, v, tangent))
		}
	}

	stride := uint32(sectors + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(sectors); s++ {
			i0 := r*stride + s
			i1 := i0 + stride
			mesh.Indices = append(mesh.Indices, i0, i0+1, i1, i1, i0+1, i1+1)
		}
	}

	return mesh
}

// Plane generates a square on the XZ plane facing +Y.
func Plane(size float32) *MeshData {
	h := size * 0.5
	up := types.XYZ(0, 1, 0)
	tangent := types.XYZ(1, 0, 0)
	return &MeshData{
		Name: "plane",
		Vertices: []Vertex{
			vertex(types.XYZ(-h, 0, h), up, 0, 0, tangent),
			vertex(types.XYZ(h, 0, h), up, 1, 0, tangent),
			vertex(types.XYZ(h, 0, -h), up, 1, 1, tangent),
			vertex(types.XYZ(-h, 0, -h), up, 0, 1, tangent),
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
