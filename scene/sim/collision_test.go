package sim

import (
	"errors"
	"testing"

	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
	"github.com/stretchr/testify/require"
)

func addCollider(sc *scene.Scene, name string, pos, vel types.Vec3, c *scene.Collider) *scene.Entity {
	ent := sc.Entities.Create(name)
	ent.Transform.Position = pos
	ent.Transform.Velocity = vel
	ent.Collider = c
	return ent
}

func TestSphereHitsBox(t *testing.T) {
	sc := scene.NewScene()
	ball := addCollider(sc, "ball", types.XYZ(-3, 0, 0), types.XYZ(1, 0, 0), scene.NewSphereCollider(1, true))
	wall := addCollider(sc, "wall", types.XYZ(0, 0, 0), types.Vec3{}, scene.NewBoxCollider(types.Splat3(1), false))

	collisions := Update(sc, 0.5)

	// ball moves to x=-2.5 and is tested at x=-1: overlap = 1 + 1 - 1
	require.InDelta(t, -2.5, ball.Transform.Position[0], 1e-6)
	require.Len(t, collisions, 1)
	require.Equal(t, ball.ID, collisions[0].Dynamic)
	require.Equal(t, wall.ID, collisions[0].Static)
	require.InDelta(t, 1, collisions[0].Overlap, 1e-5)

	require.Equal(t, types.Vec3{}, ball.Transform.Velocity)
	require.True(t, ball.Collider.Colliding)
	require.True(t, wall.Collider.Colliding)
	require.Equal(t, wall.ID, ball.Collider.Other)
	require.Equal(t, ball.ID, wall.Collider.Other)
}

func TestNoCollisionBelowThreshold(t *testing.T) {
	type spec struct {
		gap float32
		exp bool
	}

	specs := []spec{
		{-0.5, true},
		{-0.02, true},
		{-0.005, false},
		{0, false},
		{2, false},
	}

	for index, s := range specs {
		sc := scene.NewScene()
		// Stationary spheres with radius 1 whose surfaces are gap units apart
		a := addCollider(sc, "a", types.XYZ(0, 0, 0), types.Vec3{}, scene.NewSphereCollider(1, true))
		addCollider(sc, "b", types.XYZ(2+s.gap, 0, 0), types.Vec3{}, scene.NewSphereCollider(1, false))

		collisions := DetectCollisions(sc, 1.0/60)
		require.Equal(t, s.exp, len(collisions) == 1, "spec %d", index)
		require.Equal(t, s.exp, a.Collider.Colliding, "spec %d", index)
	}
}

func TestFirstHitWins(t *testing.T) {
	sc := scene.NewScene()
	ball := addCollider(sc, "ball", types.XYZ(0, 0, 0), types.Vec3{}, scene.NewSphereCollider(1, true))
	first := addCollider(sc, "first", types.XYZ(1.2, 0, 0), types.Vec3{}, scene.NewBoxCollider(types.Splat3(0.5), false))
	second := addCollider(sc, "second", types.XYZ(-1, 0, 0), types.Vec3{}, scene.NewBoxCollider(types.Splat3(0.5), false))

	collisions := DetectCollisions(sc, 1.0/60)
	require.Len(t, collisions, 1)
	require.Equal(t, first.ID, ball.Collider.Other)
	require.True(t, first.Collider.Colliding)
	require.False(t, second.Collider.Colliding, "only the first static collider should be marked")
}

func TestCollisionStateIsRecomputed(t *testing.T) {
	sc := scene.NewScene()
	ball := addCollider(sc, "ball", types.XYZ(0, 0, 0), types.Vec3{}, scene.NewSphereCollider(1, true))
	wall := addCollider(sc, "wall", types.XYZ(1.5, 0, 0), types.Vec3{}, scene.NewBoxCollider(types.Splat3(1), false))

	require.Len(t, DetectCollisions(sc, 0.1), 1)

	// Separate the pair; stale collision state must be cleared
	ball.Transform.Position = types.XYZ(-10, 0, 0)
	require.Empty(t, DetectCollisions(sc, 0.1))
	require.False(t, ball.Collider.Colliding)
	require.False(t, wall.Collider.Colliding)
	require.Equal(t, scene.NoEntity, ball.Collider.Other)
	require.Equal(t, scene.NoEntity, wall.Collider.Other)
}

func TestIntegrate(t *testing.T) {
	sc := scene.NewScene()
	free := addCollider(sc, "free", types.XYZ(1, 1, 1), types.XYZ(2, 0, -4), nil)
	dyn := addCollider(sc, "dyn", types.Vec3{}, types.XYZ(0, 1, 0), scene.NewSphereCollider(1, true))
	st := addCollider(sc, "static", types.Vec3{}, types.XYZ(1, 0, 0), scene.NewBoxCollider(types.Splat3(1), false))

	Integrate(sc, 0.5)
	require.Equal(t, types.XYZ(2, 1, -1), free.Transform.Position)
	require.Equal(t, types.XYZ(0, 0.5, 0), dyn.Transform.Position)
	require.Equal(t, types.Vec3{}, st.Transform.Position)
}

type mockHook struct {
	calls int
	err   error
	fn    func(dt float32)
}

func (h *mockHook) Update(dt float32) error {
	h.calls++
	if h.fn != nil {
		h.fn(dt)
	}
	return h.err
}

func TestWorldStep(t *testing.T) {
	sc := scene.NewScene()
	ball := addCollider(sc, "ball", types.XYZ(-10, 0, 0), types.Vec3{}, scene.NewSphereCollider(1, true))
	addCollider(sc, "wall", types.XYZ(0, 0, 0), types.Vec3{}, scene.NewBoxCollider(types.Splat3(1), false))

	// The hook runs before integration so velocity changes apply to the same step
	hook := &mockHook{fn: func(dt float32) {
		ball.Transform.Velocity = types.XYZ(60, 0, 0)
	}}
	w := NewWorld(sc, hook)

	var hits int
	for i := 0; i < 20 && hits == 0; i++ {
		collisions, err := w.Step(1.0 / 60)
		require.NoError(t, err)
		hits += len(collisions)
	}

	require.Equal(t, 1, hits)
	require.Equal(t, uint64(hook.calls), w.Frame())
	require.Less(t, ball.Transform.Position[0], float32(-1))
}

func TestWorldStepHookError(t *testing.T) {
	hookErr := errors.New("boom")
	w := NewWorld(scene.NewScene(), &mockHook{err: hookErr})

	_, err := w.Step(0.1)
	require.ErrorIs(t, err, hookErr)
	require.Zero(t, w.Frame())
}
