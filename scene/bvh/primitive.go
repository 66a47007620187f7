package bvh

import (
	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
)

// PrimitiveInfo caches the bounds and centroid of a single triangle while
// the BVH is being built.
type PrimitiveInfo struct {
	// Index into the original triangle list.
	Index uint32

	Bounds   scene.Bounds
	Centroid types.Vec3
}

// Create the primitive info for triangle index.
func NewPrimitiveInfo(index uint32, bounds scene.Bounds) PrimitiveInfo {
	return PrimitiveInfo{
		Index:    index,
		Bounds:   bounds,
		Centroid: bounds.Centroid(),
	}
}

// Calculate the bounds of a triangle.
func TriangleBounds(vertices []asset.Vertex, tri asset.Triangle) scene.Bounds {
	return scene.BoundsFromPoints(
		vertices[tri.Indices[0]].Position.Vec3(),
		vertices[tri.Indices[1]].Position.Vec3(),
		vertices[tri.Indices[2]].Position.Vec3(),
	)
}

func primitiveInfos(vertices []asset.Vertex, triangles []asset.Triangle) []PrimitiveInfo {
	infos := make([]PrimitiveInfo, len(triangles))
	for index, tri := range triangles {
		infos[index] = NewPrimitiveInfo(uint32(index), TriangleBounds(vertices, tri))
	}
	return infos
}
