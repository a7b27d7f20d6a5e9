package world

import (
	"fmt"
	"slices"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

// Store holds the resident chunks keyed by position.
// Accessed only from the simulation loop goroutine.
type Store struct {
	chunks map[terrain.ChunkPos]*terrain.Chunk
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{chunks: make(map[terrain.ChunkPos]*terrain.Chunk)}
}

// Get returns the chunk at pos if resident.
func (s *Store) Get(pos terrain.ChunkPos) (*terrain.Chunk, bool) {
	c, ok := s.chunks[pos]
	return c, ok
}

// Has reports whether pos is resident.
func (s *Store) Has(pos terrain.ChunkPos) bool {
	_, ok := s.chunks[pos]
	return ok
}

// Put inserts c at pos. It refuses to overwrite a resident chunk.
func (s *Store) Put(pos terrain.ChunkPos, c *terrain.Chunk) error {
	if _, ok := s.chunks[pos]; ok {
		return fmt.Errorf("put %s: %w", pos, ErrDuplicateKey)
	}
	s.chunks[pos] = c
	return nil
}

// Replace inserts c at pos, overwriting any resident chunk.
func (s *Store) Replace(pos terrain.ChunkPos, c *terrain.Chunk) {
	s.chunks[pos] = c
}

// Remove deletes pos and hands the chunk back to the caller.
func (s *Store) Remove(pos terrain.ChunkPos) (*terrain.Chunk, bool) {
	c, ok := s.chunks[pos]
	if ok {
		delete(s.chunks, pos)
	}
	return c, ok
}

// Len returns the number of resident chunks.
func (s *Store) Len() int {
	return len(s.chunks)
}

// Keys returns a snapshot of resident positions sorted by X then Z.
func (s *Store) Keys() []terrain.ChunkPos {
	keys := make([]terrain.ChunkPos, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, terrain.ChunkPos.Compare)
	return keys
}
