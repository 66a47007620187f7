package scene

import "github.com/achilleasa/glint/types"

// Frustum plane indices.
const (
	LeftPlane = iota
	RightPlane
	BottomPlane
	TopPlane
	NearPlane
	FarPlane
)

// FrustumPlanes holds the 6 view frustum planes as (a, b, c, d) tuples with
// normals pointing into the frustum.
type FrustumPlanes [6]types.Vec4

// Extract the frustum planes from a combined view-projection matrix. Each
// plane is normalized so that plane distances are in world units.
func ExtractFrustumPlanes(viewProj types.Mat4) FrustumPlanes {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	planes := FrustumPlanes{
		LeftPlane:   r3.Add(r0),
		RightPlane:  r3.Sub(r0),
		BottomPlane: r3.Add(r1),
		TopPlane:    r3.Sub(r1),
		NearPlane:   r3.Add(r2),
		FarPlane:    r3.Sub(r2),
	}

	for i, p := range planes {
		if l := p.Vec3().Len(); l > 0 {
			planes[i] = p.Mul(1.0 / l)
		}
	}
	return planes
}

// ShouldCull returns true if the model-space bounds, once transformed by
// model, lie completely outside any of the frustum planes. For each plane
// only the box corner furthest along the plane normal (the positive vertex)
// is tested.
func ShouldCull(bounds Bounds, model types.Mat4, planes FrustumPlanes) bool {
	if bounds.IsEmpty() {
		return true
	}

	world := bounds.Transform(model)
	for _, p := range planes {
		var v types.Vec3
		for axis := 0; axis < 3; axis++ {
			if p[axis] >= 0 {
				v[axis] = world.Max[axis]
			} else {
				v[axis] = world.Min[axis]
			}
		}

		if v.Dot(p.Vec3())+p[3] <= 0 {
			return true
		}
	}

	return false
}
