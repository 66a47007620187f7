package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntityStoreLifecycle(t *testing.T) {
	var store EntityStore

	a := store.Create("a")
	b := store.Create("b")
	require.NotEqual(t, NoEntity, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, 2, store.Len())

	got, ok := store.Get(a.ID)
	require.True(t, ok)
	require.Same(t, a, got)

	require.True(t, store.Destroy(a.ID))
	require.False(t, store.Destroy(a.ID), "destroying a stale id should be a no-op")
	require.Equal(t, 1, store.Len())

	_, ok = store.Get(a.ID)
	require.False(t, ok)

	// The freed slot is recycled with a new generation
	c := store.Create("c")
	require.Equal(t, a.ID.Index(), c.ID.Index())
	require.NotEqual(t, a.ID.Generation(), c.ID.Generation())

	_, ok = store.Get(a.ID)
	require.False(t, ok, "stale id must not resolve to the recycled slot")

	got, ok = store.Get(c.ID)
	require.True(t, ok)
	require.Equal(t, "c", got.Name)
}

func TestEntityStoreLookupMiss(t *testing.T) {
	var store EntityStore

	_, ok := store.Get(NoEntity)
	require.False(t, ok)

	_, ok = store.Get(newEntityID(42, 1))
	require.False(t, ok)

	_, ok = store.Find("missing")
	require.False(t, ok)
}

func TestEntityStoreEach(t *testing.T) {
	var store EntityStore
	for _, name := range []string{"a", "b", "c", "d"} {
		store.Create(name)
	}
	b, ok := store.Find("b")
	require.True(t, ok)
	store.Destroy(b.ID)

	var names []string
	store.Each(func(ent *Entity) {
		names = append(names, ent.Name)
	})
	require.Equal(t, []string{"a", "c", "d"}, names)
}
