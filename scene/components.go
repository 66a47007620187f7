package scene

import (
	"fmt"

	"github.com/achilleasa/glint/types"
)

// Transform places an entity in world space.
type Transform struct {
	Position types.Vec3
	Rotation types.Quat
	Scale    types.Vec3

	// World-space velocity in units per second.
	Velocity types.Vec3
}

// Create an identity transform.
func NewTransform() Transform {
	return Transform{
		Rotation: types.QuatIdent(),
		Scale:    types.Splat3(1),
	}
}

// Matrix returns the model matrix (translate * rotate * scale).
func (t Transform) Matrix() types.Mat4 {
	return types.Translate4(t.Position).Mul4(t.Rotation.Mat4()).Mul4(types.Scale4(t.Scale))
}

type ColliderShape uint8

const (
	SphereCollider ColliderShape = iota
	BoxCollider
)

func (s ColliderShape) String() string {
	switch s {
	case SphereCollider:
		return "sphere"
	case BoxCollider:
		return "box"
	}
	return fmt.Sprintf("ColliderShape(%d)", uint8(s))
}

// Collider is a world-aligned sphere or box centered at the entity position.
type Collider struct {
	Shape ColliderShape

	// Sphere radius.
	Radius float32

	// Box half extents.
	HalfExtents types.Vec3

	// Dynamic colliders are tested against every static collider.
	Dynamic bool

	// Recomputed on every update.
	Colliding bool
	Other     EntityID
}

// Create a sphere collider.
func NewSphereCollider(radius float32, dynamic bool) *Collider {
	return &Collider{Shape: SphereCollider, Radius: radius, Dynamic: dynamic}
}

// Create a box collider.
func NewBoxCollider(halfExtents types.Vec3, dynamic bool) *Collider {
	return &Collider{Shape: BoxCollider, HalfExtents: halfExtents, Dynamic: dynamic}
}

// ExtentToward returns the distance from the collider center to its surface
// along the normalized direction dir.
func (c *Collider) ExtentToward(dir types.Vec3) float32 {
	switch c.Shape {
	case BoxCollider:
		return dir.Abs().Dot(c.HalfExtents)
	default:
		return c.Radius
	}
}

// Bounds returns the collider bounds relative to its center.
func (c *Collider) Bounds() Bounds {
	ext := c.HalfExtents
	if c.Shape == SphereCollider {
		ext = types.Splat3(c.Radius)
	}
	return Bounds{Min: ext.Mul(-1), Max: ext}
}

// MeshRenderer draws a scene mesh with a scene material.
type MeshRenderer struct {
	Mesh     uint32
	Material uint32
}
