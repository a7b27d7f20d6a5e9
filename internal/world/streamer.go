package world

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

// Diff lists the chunks a reconcile pass generated and evicted.
type Diff struct {
	Center  terrain.ChunkPos
	Added   []terrain.ChunkPos
	Removed []terrain.ChunkPos
}

// Empty reports whether the pass changed nothing.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Streamer keeps the Store equal to the square window of chunks around the
// player. With a Pool attached, generation happens off the loop goroutine and
// the window fills in as Flush publishes results.
type Streamer struct {
	store    *Store
	field    *terrain.HeightField
	radius   int
	observer Observer
	log      *slog.Logger

	id     uuid.UUID
	epoch  uint64
	center terrain.ChunkPos

	pool    *Pool
	pending map[terrain.ChunkPos]uint64
}

func newStreamer(store *Store, field *terrain.HeightField, radius int, observer Observer, log *slog.Logger) *Streamer {
	return &Streamer{
		store:    store,
		field:    field,
		radius:   radius,
		observer: observer,
		log:      log,
		pending:  make(map[terrain.ChunkPos]uint64),
	}
}

// ChunkOf returns the chunk containing world position (x, z).
func (s *Streamer) ChunkOf(x, z float64) terrain.ChunkPos {
	size := float64(s.field.Params().ChunkSize)
	return terrain.ChunkPos{
		X: int(math.Floor(x / size)),
		Z: int(math.Floor(z / size)),
	}
}

// InWindow reports whether pos lies within the render distance of center,
// measured in Chebyshev distance.
func (s *Streamer) InWindow(center, pos terrain.ChunkPos) bool {
	return abs(pos.X-center.X) <= s.radius && abs(pos.Z-center.Z) <= s.radius
}

// Window returns every position within the render distance of center.
func (s *Streamer) Window(center terrain.ChunkPos) []terrain.ChunkPos {
	side := 2*s.radius + 1
	out := make([]terrain.ChunkPos, 0, side*side)
	for dx := -s.radius; dx <= s.radius; dx++ {
		for dz := -s.radius; dz <= s.radius; dz++ {
			out = append(out, terrain.ChunkPos{X: center.X + dx, Z: center.Z + dz})
		}
	}
	return out
}

// Pending returns the number of chunks queued on the pool.
func (s *Streamer) Pending() int {
	return len(s.pending)
}

// Reconcile brings the Store in line with the window around world position
// (x, z). Evictions always happen immediately.
func (s *Streamer) Reconcile(x, z float64) Diff {
	center := s.ChunkOf(x, z)
	s.center = center
	diff := Diff{Center: center}

	for _, pos := range s.store.Keys() {
		if s.InWindow(center, pos) {
			continue
		}
		if _, ok := s.store.Remove(pos); !ok {
			panic(&InvariantViolation{Op: "evict", Pos: pos, Err: errNotResident})
		}
		s.observer.ChunkRemoved(s.id, pos)
		diff.Removed = append(diff.Removed, pos)
	}

	for _, pos := range s.Window(center) {
		if s.store.Has(pos) {
			continue
		}
		if s.pool != nil {
			s.request(pos)
			continue
		}
		s.install(pos, terrain.Build(s.field, pos))
		diff.Added = append(diff.Added, pos)
	}

	if !diff.Empty() {
		s.log.Debug("reconciled chunks",
			"center", center.String(),
			"added", len(diff.Added),
			"removed", len(diff.Removed),
			"resident", s.store.Len(),
			"pending", len(s.pending),
		)
	}
	return diff
}

// Flush publishes finished background chunks that still belong to the current
// world and window. It is a no-op without a pool.
func (s *Streamer) Flush() []terrain.ChunkPos {
	if s.pool == nil {
		return nil
	}
	var added []terrain.ChunkPos
	for _, r := range s.pool.collect() {
		if r.epoch != s.epoch {
			continue
		}
		delete(s.pending, r.pos)
		if !s.InWindow(s.center, r.pos) || s.store.Has(r.pos) {
			continue
		}
		s.install(r.pos, r.chunk)
		added = append(added, r.pos)
	}
	return added
}

func (s *Streamer) request(pos terrain.ChunkPos) {
	if epoch, ok := s.pending[pos]; ok && epoch == s.epoch {
		return
	}
	if s.pool.submit(genJob{pos: pos, epoch: s.epoch, field: s.field}) {
		s.pending[pos] = s.epoch
	}
}

func (s *Streamer) install(pos terrain.ChunkPos, c *terrain.Chunk) {
	if err := s.store.Put(pos, c); err != nil {
		panic(&InvariantViolation{Op: "generate", Pos: pos, Err: err})
	}
	s.observer.ChunkAdded(s.id, c)
}

// reseed switches generation to a new height field and world id. Work still
// in flight for the previous epoch is discarded by Flush.
func (s *Streamer) reseed(field *terrain.HeightField, id uuid.UUID) {
	s.field = field
	s.id = id
	s.epoch++
	clear(s.pending)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
