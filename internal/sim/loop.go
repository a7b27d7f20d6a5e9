package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/OCharnyshevich/voxel-sandbox/internal/player"
	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
	"github.com/OCharnyshevich/voxel-sandbox/internal/world"
)

// Reach is how far along the view ray a break can land, in blocks.
const Reach = 3.0

// InputKind tags an Input.
type InputKind uint8

const (
	InputKeys InputKind = iota + 1
	InputLook
	InputReset
	InputBreak
)

func (k InputKind) String() string {
	switch k {
	case InputKeys:
		return "keys"
	case InputLook:
		return "look"
	case InputReset:
		return "reset"
	case InputBreak:
		return "break"
	default:
		return "unknown"
	}
}

// Input is one user action queued for the next frame.
type Input struct {
	Kind  InputKind
	Keys  []string // InputKeys: every key currently held
	Yaw   float64  // InputLook
	Pitch float64  // InputLook
}

// Loop owns the world and the player and advances both once per frame. Only
// the goroutine running Run touches them.
type Loop struct {
	world  *world.World
	player *player.Player
	input  <-chan Input
	frame  time.Duration
	log    *slog.Logger

	frames uint64
}

// New creates a Loop ticking frameRate times per second.
func New(w *world.World, p *player.Player, input <-chan Input, frameRate int, log *slog.Logger) *Loop {
	if frameRate <= 0 {
		frameRate = 60
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		world:  w,
		player: p,
		input:  input,
		frame:  time.Second / time.Duration(frameRate),
		log:    log.With("component", "sim"),
	}
}

// Spawn returns a standing position above the surface at world (x, z).
func Spawn(w *world.World, x, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, w.GroundHeight(x, z) + player.EyeHeight, z}
}

// Run streams the initial window and then ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	pos := l.player.Position
	diff := l.world.Reconcile(pos.X(), pos.Z())
	l.log.Info("simulation started",
		"world", l.world.ID(),
		"seed", l.world.Seed(),
		"center", diff.Center.String(),
		"chunks", l.world.Store().Len(),
	)

	ticker := time.NewTicker(l.frame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("simulation stopped", "frames", l.frames)
			return nil
		case <-ticker.C:
			l.Frame()
		}
	}
}

// Frame runs one simulation step: apply queued input, publish background
// chunks, move the player and reconcile the window around it.
func (l *Loop) Frame() {
	l.drain()
	l.world.Flush()
	l.player.Step(l.world)
	pos := l.player.Position
	l.world.Reconcile(pos.X(), pos.Z())
	l.frames++
}

// Frames returns the number of frames run so far.
func (l *Loop) Frames() uint64 {
	return l.frames
}

func (l *Loop) drain() {
	for {
		select {
		case in, ok := <-l.input:
			if !ok {
				return
			}
			l.apply(in)
		default:
			return
		}
	}
}

func (l *Loop) apply(in Input) {
	p := l.player
	switch in.Kind {
	case InputKeys:
		p.SetKeys(in.Keys)
	case InputLook:
		p.Look(in.Yaw, in.Pitch)
	case InputReset:
		l.world.Reset(p.Position.X(), p.Position.Z())
		p.Hotbar.Clear()
	case InputBreak:
		x, y, z, ok := p.Pick(Reach, func(x, y, z int) bool {
			return l.world.BlockAt(x, y, z) != terrain.Air
		})
		if !ok {
			return
		}
		m, ok := l.world.BreakBlock(x, y, z)
		if !ok {
			return
		}
		if !p.Hotbar.Add(m) {
			l.log.Debug("hotbar full", "material", m.String())
		}
	default:
		l.log.Warn("unknown input", "kind", in.Kind.String())
	}
}
