package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

func TestStorePutGetRemove(t *testing.T) {
	s := NewStore()
	a := &terrain.Chunk{Pos: terrain.ChunkPos{X: 1, Z: 2}}
	b := &terrain.Chunk{Pos: terrain.ChunkPos{X: 1, Z: 2}}

	_, ok := s.Get(a.Pos)
	assert.False(t, ok)

	require.NoError(t, s.Put(a.Pos, a))
	got, ok := s.Get(a.Pos)
	require.True(t, ok)
	assert.Same(t, a, got)

	err := s.Put(a.Pos, b)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	got, _ = s.Get(a.Pos)
	assert.Same(t, a, got, "failed put keeps the resident chunk")

	s.Replace(a.Pos, b)
	got, _ = s.Get(a.Pos)
	assert.Same(t, b, got)

	removed, ok := s.Remove(a.Pos)
	require.True(t, ok)
	assert.Same(t, b, removed)
	assert.Equal(t, 0, s.Len())

	_, ok = s.Remove(a.Pos)
	assert.False(t, ok, "removing an absent chunk is a no-op")
}

func TestStoreKeysSnapshotSorted(t *testing.T) {
	s := NewStore()
	for _, p := range []terrain.ChunkPos{{X: 2, Z: 0}, {X: -1, Z: 5}, {X: 2, Z: -3}, {X: 0, Z: 0}} {
		require.NoError(t, s.Put(p, &terrain.Chunk{Pos: p}))
	}

	keys := s.Keys()
	assert.Equal(t, []terrain.ChunkPos{{X: -1, Z: 5}, {X: 0, Z: 0}, {X: 2, Z: -3}, {X: 2, Z: 0}}, keys)

	s.Remove(terrain.ChunkPos{X: 0, Z: 0})
	assert.Len(t, keys, 4, "snapshot is not affected by later removals")
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(terrain.ChunkPos{X: 2, Z: 0}))
	assert.False(t, s.Has(terrain.ChunkPos{X: 0, Z: 0}))
}
