package sim

import (
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
)

const (
	// Dynamic colliders are tested at the position they will reach after
	// this many frames at their current velocity.
	LookaheadFrames = 3

	// Minimum overlap between two colliders that counts as a collision.
	CollisionThreshold float32 = 0.01
)

// Collision records a dynamic collider hitting a static collider.
type Collision struct {
	Dynamic scene.EntityID
	Static  scene.EntityID

	// Overlap between the two colliders at the predicted position.
	Overlap float32
}

// Integrate advances the position of every movable entity by velocity*dt.
// Entities with a static collider never move.
func Integrate(sc *scene.Scene, dt float32) {
	sc.Entities.Each(func(ent *scene.Entity) {
		if ent.Collider != nil && !ent.Collider.Dynamic {
			return
		}
		tr := &ent.Transform
		tr.Position = tr.Position.Add(tr.Velocity.Mul(dt))
	})
}

// DetectCollisions tests each dynamic collider against every static collider
// and returns the detected collisions. Collider state is rebuilt from scratch
// on every call. A dynamic collider stops at the first static collider it
// hits; colliding dynamic entities have their velocity zeroed.
func DetectCollisions(sc *scene.Scene, dt float32) []Collision {
	var dynamic, static []*scene.Entity
	sc.Entities.Each(func(ent *scene.Entity) {
		if ent.Collider == nil {
			return
		}
		ent.Collider.Colliding = false
		ent.Collider.Other = scene.NoEntity

		if ent.Collider.Dynamic {
			dynamic = append(dynamic, ent)
		} else {
			static = append(static, ent)
		}
	})

	var collisions []Collision
	for _, dyn := range dynamic {
		predicted := dyn.Transform.Position.Add(dyn.Transform.Velocity.Mul(LookaheadFrames * dt))
		for _, st := range static {
			overlap := colliderOverlap(predicted, dyn.Collider, st.Transform.Position, st.Collider)
			if overlap < CollisionThreshold {
				continue
			}

			dyn.Transform.Velocity = types.Vec3{}
			dyn.Collider.Colliding = true
			dyn.Collider.Other = st.ID
			st.Collider.Colliding = true
			st.Collider.Other = dyn.ID

			collisions = append(collisions, Collision{
				Dynamic: dyn.ID,
				Static:  st.ID,
				Overlap: overlap,
			})
			break
		}
	}

	return collisions
}

// Update integrates all transforms and then resolves collisions.
func Update(sc *scene.Scene, dt float32) []Collision {
	Integrate(sc, dt)
	return DetectCollisions(sc, dt)
}

// Returns how far the two colliders penetrate each other along the line
// connecting their centers.
func colliderOverlap(posA types.Vec3, a *scene.Collider, posB types.Vec3, b *scene.Collider) float32 {
	delta := posB.Sub(posA)
	dir := delta.Normalize()
	return a.ExtentToward(dir) + b.ExtentToward(dir) - delta.Len()
}
