package scene

import (
	"fmt"

	"github.com/achilleasa/glint/types"
	"github.com/chewxy/math32"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// Extents below this threshold are considered degenerate.
const DegenerateExtent float32 = 1e-6

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "X"
	case YAxis:
		return "Y"
	case ZAxis:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Bounds is an axis-aligned bounding box. An empty box uses +Inf/-Inf
// sentinels so that the first union yields the other operand unchanged.
type Bounds struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty bounding box.
func EmptyBounds() Bounds {
	inf := math32.Inf(1)
	return Bounds{
		Min: types.Splat3(inf),
		Max: types.Splat3(-inf),
	}
}

// Create the tightest bounding box enclosing the given points.
func BoundsFromPoints(points ...types.Vec3) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

// IsEmpty returns true if max < min along any axis.
func (b Bounds) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Union returns the box enclosing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// UnionPoint returns the box enclosing b and p.
func (b Bounds) UnionPoint(p types.Vec3) Bounds {
	return Bounds{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// Extent returns the box diagonal.
func (b Bounds) Extent() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Centroid returns the box center.
func (b Bounds) Centroid() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// SurfaceArea returns the box surface area. Empty boxes have no area.
func (b Bounds) SurfaceArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	e := b.Extent()
	return 2 * (e[0]*e[1] + e[0]*e[2] + e[1]*e[2])
}

// MaximumExtent returns the axis with the largest extent. Ties resolve to
// the lowest axis.
func (b Bounds) MaximumExtent() Axis {
	e := b.Extent()
	if e[0] >= e[1] && e[0] >= e[2] {
		return XAxis
	}
	if e[1] >= e[2] {
		return YAxis
	}
	return ZAxis
}

// Offset returns the relative position of p inside the box; (0,0,0) is
// the min corner and (1,1,1) the max corner. Zero-width axes yield 0.
func (b Bounds) Offset(p types.Vec3) types.Vec3 {
	o := p.Sub(b.Min)
	for axis := 0; axis < 3; axis++ {
		if w := b.Max[axis] - b.Min[axis]; w > 0 {
			o[axis] /= w
		} else {
			o[axis] = 0
		}
	}
	return o
}

// IsDegenerate returns true if the box extent along axis is too small to
// separate its contents.
func (b Bounds) IsDegenerate(axis Axis) bool {
	return b.Max[axis]-b.Min[axis] < DegenerateExtent
}

// Contains returns true if other lies entirely within b.
func (b Bounds) Contains(other Bounds) bool {
	for axis := 0; axis < 3; axis++ {
		if other.Min[axis] < b.Min[axis] || other.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Corners returns the 8 box corners.
func (b Bounds) Corners() [8]types.Vec3 {
	mn, mx := b.Min, b.Max
	return [8]types.Vec3{
		{mn[0], mn[1], mn[2]},
		{mx[0], mn[1], mn[2]},
		{mn[0], mx[1], mn[2]},
		{mx[0], mx[1], mn[2]},
		{mn[0], mn[1], mx[2]},
		{mx[0], mn[1], mx[2]},
		{mn[0], mx[1], mx[2]},
		{mx[0], mx[1], mx[2]},
	}
}

// Transform returns the axis-aligned box enclosing the 8 corners of b
// after transforming them by m.
func (b Bounds) Transform(m types.Mat4) Bounds {
	out := EmptyBounds()
	for _, c := range b.Corners() {
		out = out.UnionPoint(m.MulPoint(c))
	}
	return out
}

// TransformedMin returns the min corner of b transformed by m.
func (b Bounds) TransformedMin(m types.Mat4) types.Vec3 {
	return b.Transform(m).Min
}

// TransformedMax returns the max corner of b transformed by m.
func (b Bounds) TransformedMax(m types.Mat4) types.Vec3 {
	return b.Transform(m).Max
}

func (b Bounds) String() string {
	return fmt.Sprintf("[(%3.3f, %3.3f, %3.3f) - (%3.3f, %3.3f, %3.3f)]",
		b.Min[0], b.Min[1], b.Min[2],
		b.Max[0], b.Max[1], b.Max[2],
	)
}
