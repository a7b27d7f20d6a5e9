package world

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

// Observer receives world changes on the simulation goroutine. Implementations
// must not keep the chunk pointer past the call.
type Observer interface {
	ChunkAdded(world uuid.UUID, c *terrain.Chunk)
	ChunkRemoved(world uuid.UUID, pos terrain.ChunkPos)
	BlockRemoved(world uuid.UUID, b terrain.Block)
	WorldReset(world uuid.UUID, status string)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ChunkAdded(uuid.UUID, *terrain.Chunk) {}
func (NopObserver) ChunkRemoved(uuid.UUID, terrain.ChunkPos) {}
func (NopObserver) BlockRemoved(uuid.UUID, terrain.Block) {}
func (NopObserver) WorldReset(uuid.UUID, string) {}

// Observers fans events out in order.
type Observers []Observer

func (o Observers) ChunkAdded(id uuid.UUID, c *terrain.Chunk) {
	for _, obs := range o {
		obs.ChunkAdded(id, c)
	}
}

func (o Observers) ChunkRemoved(id uuid.UUID, pos terrain.ChunkPos) {
	for _, obs := range o {
		obs.ChunkRemoved(id, pos)
	}
}

func (o Observers) BlockRemoved(id uuid.UUID, b terrain.Block) {
	for _, obs := range o {
		obs.BlockRemoved(id, b)
	}
}

func (o Observers) WorldReset(id uuid.UUID, status string) {
	for _, obs := range o {
		obs.WorldReset(id, status)
	}
}

// LogObserver writes every event to Log at debug level.
type LogObserver struct {
	Log *slog.Logger
}

func (o LogObserver) ChunkAdded(id uuid.UUID, c *terrain.Chunk) {
	o.Log.Debug("chunk added", "world", id, "chunk", c.Pos.String(), "blocks", c.BlockCount())
}

func (o LogObserver) ChunkRemoved(id uuid.UUID, pos terrain.ChunkPos) {
	o.Log.Debug("chunk removed", "world", id, "chunk", pos.String())
}

func (o LogObserver) BlockRemoved(id uuid.UUID, b terrain.Block) {
	o.Log.Debug("block removed", "world", id, "x", b.X, "y", b.Y, "z", b.Z, "material", b.Material.String())
}

func (o LogObserver) WorldReset(id uuid.UUID, status string) {
	o.Log.Debug("world reset", "world", id, "status", status)
}
