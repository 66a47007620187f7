package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/bvh"
	"github.com/achilleasa/glint/types"
)

// Options control the BVH generated for the compiled scene.
type Options struct {
	MaxPrimsPerNode int
	SplitMethod     bvh.SplitMethod
}

// CompiledScene holds the flattened world-space geometry of a scene in the
// buffer layouts consumed by the ray tracer.
type CompiledScene struct {
	Vertices  []asset.Vertex
	Triangles []asset.Triangle
	BvhNodes  []bvh.LinearNode
	Materials []asset.Material
}

type sceneCompiler struct {
	scene    *scene.Scene
	compiled *CompiledScene
	opts     Options
	logger   log.Logger
}

// Compile flattens the renderable entities of a scene into world-space vertex
// and triangle buffers and builds a BVH over them. Entities without a mesh
// renderer are skipped.
func Compile(sc *scene.Scene, opts Options) (*CompiledScene, error) {
	compiler := &sceneCompiler{
		scene: sc,
		compiled: &CompiledScene{
			Materials: append([]asset.Material(nil), sc.Materials...),
		},
		opts:   opts,
		logger: log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Infof("compiling scene")

	err := compiler.flattenGeometry()
	if err != nil {
		return nil, err
	}

	compiler.partitionGeometry()

	compiler.logger.Infof(
		"compiled scene in %d ms; vertices: %d, triangles: %d, bvh nodes: %d",
		time.Since(start).Nanoseconds()/1e6,
		len(compiler.compiled.Vertices), len(compiler.compiled.Triangles), len(compiler.compiled.BvhNodes),
	)
	return compiler.compiled, nil
}

// Transform the mesh of each renderable entity into world space and append
// it to the compiled vertex and triangle lists.
func (sc *sceneCompiler) flattenGeometry() error {
	var err error
	sc.scene.Entities.Each(func(ent *scene.Entity) {
		if err != nil || ent.Renderer == nil {
			return
		}

		mesh, ok := sc.scene.Mesh(ent.Renderer)
		if !ok {
			err = fmt.Errorf("compiler: entity %q references unknown mesh %d", ent.Name, ent.Renderer.Mesh)
			return
		}
		if int(ent.Renderer.Material) >= len(sc.compiled.Materials) {
			err = fmt.Errorf("compiler: entity %q references unknown material %d", ent.Name, ent.Renderer.Material)
			return
		}

		sc.appendMesh(mesh.Data, ent.Transform.Matrix(), ent.Renderer.Material)
	})
	return err
}

func (sc *sceneCompiler) appendMesh(mesh *asset.MeshData, model types.Mat4, material uint32) {
	normalMat := model.Inv().Transpose()
	vertexOffset := uint32(len(sc.compiled.Vertices))

	for _, v := range mesh.Vertices {
		v.Position = model.MulPoint(v.Position.Vec3()).Vec4(1)
		v.Normal = normalMat.Mul4x1(v.Normal.Vec3().Vec4(0)).Vec3().Normalize().Vec4(0)
		v.Tangent = model.Mul4x1(v.Tangent.Vec3().Vec4(0)).Vec3().Normalize().Vec4(v.Tangent[3])
		sc.compiled.Vertices = append(sc.compiled.Vertices, v)
	}

	sc.compiled.Triangles = append(sc.compiled.Triangles, mesh.Triangles(material, vertexOffset)...)
}

// Build a BVH over the world-space triangles. The triangle list is replaced
// by its BVH-ordered copy.
func (sc *sceneCompiler) partitionGeometry() {
	if len(sc.compiled.Triangles) == 0 {
		sc.logger.Warning("scene contains no renderable geometry")
		return
	}

	sc.compiled.Triangles, sc.compiled.BvhNodes = bvh.Build(
		sc.compiled.Vertices,
		sc.compiled.Triangles,
		sc.opts.MaxPrimsPerNode,
		sc.opts.SplitMethod,
	)
}
