package sim

import (
	"errors"
	"testing"

	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
	"github.com/stretchr/testify/require"
)

// Records the position seen by the hook and pushes the entity up.
type liftHook struct {
	ent  *scene.Entity
	seen []types.Vec3
	err  error
}

func (h *liftHook) Update(dt float32) error {
	if h.err != nil {
		return h.err
	}
	h.seen = append(h.seen, h.ent.Transform.Position)
	h.ent.Transform.Velocity = types.XYZ(0, 1, 0)
	return nil
}

func TestWorldRunsHookBeforeIntegration(t *testing.T) {
	sc := scene.NewScene()
	ent := addCollider(sc, "box", types.Vec3{}, types.Vec3{}, scene.NewSphereCollider(0.5, true))

	hook := &liftHook{ent: ent}
	w := NewWorld(sc, hook)

	for i := 0; i < 2; i++ {
		collisions, err := w.Step(0.5)
		require.NoError(t, err)
		require.Empty(t, collisions)
	}

	require.Equal(t, uint64(2), w.Frame())
	require.Equal(t, []types.Vec3{{0, 0, 0}, {0, 0.5, 0}}, hook.seen)
	require.InDelta(t, 1, ent.Transform.Position[1], 1e-6)
}

func TestWorldHookError(t *testing.T) {
	hookErr := errors.New("bad script")
	sc := scene.NewScene()
	ent := addCollider(sc, "box", types.Vec3{}, types.XYZ(1, 0, 0), nil)

	w := NewWorld(sc, &liftHook{ent: ent, err: hookErr})
	_, err := w.Step(1)
	require.ErrorIs(t, err, hookErr)
	require.Contains(t, err.Error(), "frame 0")

	// A failed step does not advance the world
	require.Zero(t, w.Frame())
	require.Equal(t, types.Vec3{}, ent.Transform.Position)
}

func TestWorldWithoutHook(t *testing.T) {
	sc := scene.NewScene()
	ball := addCollider(sc, "ball", types.XYZ(-3, 0, 0), types.XYZ(1, 0, 0), scene.NewSphereCollider(1, true))
	addCollider(sc, "wall", types.Vec3{}, types.Vec3{}, scene.NewBoxCollider(types.Splat3(1), false))

	collisions, err := NewWorld(sc, nil).Step(0.5)
	require.NoError(t, err)
	require.Len(t, collisions, 1)
	require.Equal(t, ball.ID, collisions[0].Dynamic)
}
