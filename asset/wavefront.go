package asset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/achilleasa/glint/types"
)

// Identifies a unique position/uv/normal combination referenced by a face.
type faceVertexKey [3]int

type wavefrontReader struct {
	name string

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	mesh     *MeshData
	vertexOf map[faceVertexKey]uint32

	// Vertices without an explicit normal receive the sum of the normals
	// of the faces that share them.
	needsNormal map[uint32]bool
}

// LoadMesh reads a wavefront obj model from a local path or URL.
func LoadMesh(ctx context.Context, location string) (*MeshData, error) {
	src, err := OpenSource(ctx, location)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return ParseWavefront(src.Name(), src)
}

// ParseWavefront parses the geometry of a wavefront obj stream into a single
// mesh. Polygonal faces are triangulated as fans. Material libraries, groups
// and smoothing directives are ignored.
func ParseWavefront(name string, r io.Reader) (*MeshData, error) {
	wr := &wavefrontReader{
		name:        name,
		mesh:        &MeshData{Name: name},
		vertexOf:    make(map[faceVertexKey]uint32),
		needsNormal: make(map[uint32]bool),
	}
	if err := wr.parse(r); err != nil {
		return nil, err
	}
	if len(wr.mesh.Indices) == 0 {
		return nil, fmt.Errorf("wavefront: %s does not define any faces", name)
	}
	wr.finalizeNormals()
	return wr.mesh, nil
}

func (r *wavefrontReader) emitError(line int, msgFormat string, args ...interface{}) error {
	return fmt.Errorf("wavefront: [%s: %d] %s", r.name, line, fmt.Sprintf(msgFormat, args...))
}

func (r *wavefrontReader) parse(in io.Reader) error {
	lineNum := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(lineNum, err.Error())
			}
			r.normalList = append(r.normalList, v.Normalize())
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(lineNum, err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "f":
			if err := r.parseFace(lineTokens); err != nil {
				return r.emitError(lineNum, err.Error())
			}
		case "o", "g", "s", "mtllib", "usemtl", "l", "p":
		default:
			return r.emitError(lineNum, "unsupported statement '%s'", lineTokens[0])
		}
	}

	return scanner.Err()
}

// Parse face definition. Each face argument is comprised of 1, 2 or 3
// indices separated by a slash character:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the end
// of the coord list.
func (r *wavefrontReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf("unsupported syntax for 'f'; expected at least 3 arguments; got %d", len(lineTokens)-1)
	}

	indices := make([]uint32, len(lineTokens)-1)
	expIndices := 0
	for arg := range indices {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}
		if len(vTokens) > 3 || vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		key := faceVertexKey{-1, -1, -1}
		lists := [3]int{len(r.vertexList), len(r.uvList), len(r.normalList)}
		for tokIdx, tok := range vTokens {
			if tok == "" {
				continue
			}
			offset, err := selectFaceCoordIndex(tok, lists[tokIdx])
			if err != nil {
				return fmt.Errorf("could not parse coord %d for face argument %d: %s", tokIdx, arg, err.Error())
			}
			key[tokIdx] = offset
		}
		indices[arg] = r.vertexIndex(key)
	}

	for i := 1; i+1 < len(indices); i++ {
		r.addTriangle(indices[0], indices[i], indices[i+1])
	}
	return nil
}

// Return the mesh vertex for a face argument, creating it on first use.
func (r *wavefrontReader) vertexIndex(key faceVertexKey) uint32 {
	if index, exists := r.vertexOf[key]; exists {
		return index
	}

	var uv types.Vec2
	if key[1] >= 0 {
		uv = r.uvList[key[1]]
	}
	var normal types.Vec3
	if key[2] >= 0 {
		normal = r.normalList[key[2]]
	}

	index := uint32(len(r.mesh.Vertices))
	r.mesh.Vertices = append(r.mesh.Vertices, vertex(r.vertexList[key[0]], normal, uv[0], uv[1], types.XYZ(1, 0, 0)))
	if key[2] < 0 {
		r.needsNormal[index] = true
	}
	r.vertexOf[key] = index
	return index
}

func (r *wavefrontReader) addTriangle(i0, i1, i2 uint32) {
	r.mesh.Indices = append(r.mesh.Indices, i0, i1, i2)
	if len(r.needsNormal) == 0 {
		return
	}

	v := r.mesh.Vertices
	p0 := v[i0].Position.Vec3()
	faceNormal := v[i1].Position.Vec3().Sub(p0).Cross(v[i2].Position.Vec3().Sub(p0))
	for _, index := range []uint32{i0, i1, i2} {
		if r.needsNormal[index] {
			v[index].Normal = v[index].Normal.Add(faceNormal.Vec4(0))
		}
	}
}

func (r *wavefrontReader) finalizeNormals() {
	for index := range r.needsNormal {
		n := r.mesh.Vertices[index].Normal.Vec3()
		if n.Len() == 0 {
			n = types.XYZ(0, 1, 0)
		}
		r.mesh.Vertices[index].Normal = n.Normalize().Vec4(0)
	}
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf("unsupported syntax for '%s'; expected 2 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
