package world

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

var (
	// ErrConfiguration reports world settings that cannot produce terrain.
	ErrConfiguration = errors.New("world configuration")
	// ErrDuplicateKey is returned by Store.Put for an already resident chunk.
	ErrDuplicateKey = errors.New("chunk already resident")

	errNotResident = errors.New("chunk not resident")
)

// InvariantViolation is panicked when the streamer finds the store in a state
// it could not have produced itself.
type InvariantViolation struct {
	Op  string
	Pos terrain.ChunkPos
	Err error
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s chunk %s: %v", e.Op, e.Pos, e.Err)
}

func (e *InvariantViolation) Unwrap() error {
	return e.Err
}
