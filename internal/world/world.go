package world

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

// Settings are the fixed parameters of a World.
type Settings struct {
	Terrain        terrain.Params
	RenderDistance int
	Seed           int64
	Noise          terrain.NoiseFactory
}

// Option customizes a World.
type Option func(*World)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(w *World) { w.log = log }
}

// WithObserver registers the sink for chunk and reset events.
func WithObserver(obs Observer) Option {
	return func(w *World) { w.observer = obs }
}

// WithSeedFunc sets the seed source used by Reset.
func WithSeedFunc(fn func() int64) Option {
	return func(w *World) { w.nextSeed = fn }
}

// WithPool moves chunk generation onto a background worker pool. A nil ctx
// means context.Background.
func WithPool(ctx context.Context, workers, queue int) Option {
	return func(w *World) {
		w.poolCtx = ctx
		w.poolWorkers = workers
		w.poolQueue = queue
	}
}

// World owns the chunk store and the noise source of one terrain instance.
// All methods must be called from the simulation loop goroutine.
type World struct {
	settings Settings
	log      *slog.Logger
	observer Observer
	nextSeed func() int64

	seed     int64
	id       uuid.UUID
	field    *terrain.HeightField
	store    *Store
	streamer *Streamer

	poolCtx     context.Context
	poolWorkers int
	poolQueue   int
}

// New validates s and creates an empty World. Call Reconcile to populate it.
func New(s Settings, opts ...Option) (*World, error) {
	switch {
	case s.Terrain.ChunkSize <= 0:
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrConfiguration, s.Terrain.ChunkSize)
	case s.Terrain.ChunkHeight <= 0:
		return nil, fmt.Errorf("%w: chunk height %d must be positive", ErrConfiguration, s.Terrain.ChunkHeight)
	case s.Terrain.NoiseScale <= 0 || math.IsNaN(s.Terrain.NoiseScale) || math.IsInf(s.Terrain.NoiseScale, 0):
		return nil, fmt.Errorf("%w: noise scale %v must be a positive number", ErrConfiguration, s.Terrain.NoiseScale)
	case s.Terrain.DirtDepth < 0:
		return nil, fmt.Errorf("%w: dirt depth %d must not be negative", ErrConfiguration, s.Terrain.DirtDepth)
	case s.Terrain.Octaves < 0:
		return nil, fmt.Errorf("%w: octaves %d must not be negative", ErrConfiguration, s.Terrain.Octaves)
	case s.Terrain.Octaves > 1 && (s.Terrain.Persistence <= 0 || s.Terrain.Persistence > 1):
		return nil, fmt.Errorf("%w: persistence %v must be in (0, 1]", ErrConfiguration, s.Terrain.Persistence)
	case s.RenderDistance < 0:
		return nil, fmt.Errorf("%w: render distance %d must not be negative", ErrConfiguration, s.RenderDistance)
	case s.Noise == nil:
		return nil, fmt.Errorf("%w: no noise source", ErrConfiguration)
	}

	w := &World{
		settings: s,
		log:      slog.New(slog.DiscardHandler),
		observer: NopObserver{},
		nextSeed: rand.Int64,
		store:    NewStore(),
	}
	for _, opt := range opts {
		opt(w)
	}

	field, err := w.newField(s.Seed)
	if err != nil {
		return nil, err
	}
	w.streamer = newStreamer(w.store, field, s.RenderDistance, w.observer, w.log)
	w.install(s.Seed, field)

	if w.poolWorkers > 0 {
		if w.poolCtx == nil {
			w.poolCtx = context.Background()
		}
		w.streamer.pool = NewPool(w.poolCtx, w.poolWorkers, w.poolQueue, w.log)
	}
	return w, nil
}

func (w *World) newField(seed int64) (*terrain.HeightField, error) {
	noise := w.settings.Noise(seed)
	if noise == nil {
		return nil, fmt.Errorf("%w: noise source for seed %d is nil", ErrConfiguration, seed)
	}
	return terrain.NewHeightField(noise, w.settings.Terrain), nil
}

func (w *World) install(seed int64, field *terrain.HeightField) {
	w.seed = seed
	w.field = field
	w.id = uuid.New()
	w.streamer.reseed(field, w.id)
}

// ID identifies the current terrain instance. It changes on every Reset.
func (w *World) ID() uuid.UUID { return w.id }

// Seed returns the seed of the current noise source.
func (w *World) Seed() int64 { return w.seed }

// Settings returns the parameters the world was created with.
func (w *World) Settings() Settings { return w.settings }

// HeightField returns the current height field.
func (w *World) HeightField() *terrain.HeightField { return w.field }

// Store exposes the resident chunks for read-only inspection.
func (w *World) Store() *Store { return w.store }

// Streamer exposes the streaming controller.
func (w *World) Streamer() *Streamer { return w.streamer }

// Reconcile streams chunks around world position (x, z).
func (w *World) Reconcile(x, z float64) Diff {
	return w.streamer.Reconcile(x, z)
}

// Flush publishes chunks finished by the background pool.
func (w *World) Flush() []terrain.ChunkPos {
	return w.streamer.Flush()
}

// Reset discards every chunk, reseeds the noise source and repopulates the
// window around (x, z).
func (w *World) Reset(x, z float64) Diff {
	oldID := w.id
	var removed []terrain.ChunkPos
	for _, pos := range w.store.Keys() {
		w.store.Remove(pos)
		w.observer.ChunkRemoved(oldID, pos)
		removed = append(removed, pos)
	}

	seed := w.nextSeed()
	field, err := w.newField(seed)
	if err != nil {
		// The factory already produced a source at startup.
		panic(&InvariantViolation{Op: "reset", Err: err})
	}
	w.install(seed, field)

	status := fmt.Sprintf("World reset with seed %d", seed)
	w.log.Info("world reset", "world", w.id, "seed", seed, "evicted", len(removed))
	w.observer.WorldReset(w.id, status)

	diff := w.streamer.Reconcile(x, z)
	diff.Removed = append(removed, diff.Removed...)
	return diff
}

// BreakBlock clears the block at world (x, y, z) if its chunk is resident.
func (w *World) BreakBlock(x, y, z int) (terrain.Material, bool) {
	size := w.settings.Terrain.ChunkSize
	pos := terrain.ChunkAt(x, z, size)
	c, ok := w.store.Get(pos)
	if !ok {
		return terrain.Air, false
	}
	m, ok := c.Clear(x-pos.X*size, y, z-pos.Z*size)
	if !ok {
		return terrain.Air, false
	}
	w.observer.BlockRemoved(w.id, terrain.Block{X: x, Y: y, Z: z, Material: m})
	return m, true
}

// BlockAt returns the material at world (x, y, z). Cells of chunks that are
// not resident read as air.
func (w *World) BlockAt(x, y, z int) terrain.Material {
	size := w.settings.Terrain.ChunkSize
	pos := terrain.ChunkAt(x, z, size)
	c, ok := w.store.Get(pos)
	if !ok {
		return terrain.Air
	}
	return c.MaterialAt(x-pos.X*size, y, z-pos.Z*size)
}

// GroundHeight returns the y a body standing on column (x, z) rests at. It is
// answered from the resident chunk when there is one, so broken blocks count.
func (w *World) GroundHeight(x, z float64) float64 {
	bx, bz := int(math.Floor(x)), int(math.Floor(z))
	size := w.settings.Terrain.ChunkSize
	pos := terrain.ChunkAt(bx, bz, size)
	if c, ok := w.store.Get(pos); ok {
		return float64(c.Height(bx-pos.X*size, bz-pos.Z*size) + 1)
	}
	return float64(w.field.SurfaceAt(bx, bz) + 1)
}

// Close stops the background pool, if any.
func (w *World) Close() error {
	if w.streamer.pool == nil {
		return nil
	}
	return w.streamer.pool.Close()
}
