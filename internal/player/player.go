package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Key codes follow the browser KeyboardEvent.code names the viewer sends.
const (
	KeyForward = "KeyW"
	KeyBack    = "KeyS"
	KeyLeft    = "KeyA"
	KeyRight   = "KeyD"
	KeyJump    = "Space"
)

// Movement constants, in blocks per frame.
const (
	Speed     = 0.1
	JumpForce = 0.2
	Gravity   = 0.01
	EyeHeight = 1.5
	PickStep  = 0.1 // ray march increment used by Pick
)

// GroundQuerier answers the resting height of a column.
type GroundQuerier interface {
	GroundHeight(x, z float64) float64
}

var up = mgl64.Vec3{0, 1, 0}

// Player is the first-person body driven by the simulation loop.
type Player struct {
	Position mgl64.Vec3
	Yaw      float64 // radians, 0 looks toward -Z
	Pitch    float64 // radians, clamped to ±π/2

	Hotbar *Hotbar

	vy       float64
	onGround bool
	keys     map[string]bool
}

// New creates a Player standing at spawn.
func New(spawn mgl64.Vec3) *Player {
	return &Player{
		Position: spawn,
		Hotbar:   NewHotbar(),
		keys:     make(map[string]bool),
	}
}

// SetKeys replaces the set of pressed keys.
func (p *Player) SetKeys(codes []string) {
	clear(p.keys)
	for _, c := range codes {
		p.keys[c] = true
	}
}

// Pressed reports whether code is held down.
func (p *Player) Pressed(code string) bool {
	return p.keys[code]
}

// Look sets the view direction.
func (p *Player) Look(yaw, pitch float64) {
	p.Yaw = yaw
	p.Pitch = mgl64.Clamp(pitch, -math.Pi/2, math.Pi/2)
}

// OnGround reports whether the last step ended resting on terrain.
func (p *Player) OnGround() bool {
	return p.onGround
}

// Forward returns the horizontal unit vector the player faces.
func (p *Player) Forward() mgl64.Vec3 {
	return mgl64.Vec3{-math.Sin(p.Yaw), 0, -math.Cos(p.Yaw)}
}

// Right returns the horizontal unit vector to the player's right.
func (p *Player) Right() mgl64.Vec3 {
	return p.Forward().Cross(up)
}

// Step advances the player by one frame: walk from the pressed keys, jump,
// fall and snap to the ground.
func (p *Player) Step(ground GroundQuerier) {
	forward, right := p.Forward(), p.Right()

	var move mgl64.Vec3
	if p.Pressed(KeyForward) {
		move = move.Add(forward)
	}
	if p.Pressed(KeyBack) {
		move = move.Sub(forward)
	}
	if p.Pressed(KeyRight) {
		move = move.Add(right)
	}
	if p.Pressed(KeyLeft) {
		move = move.Sub(right)
	}
	if move.Len() > 0 {
		move = move.Normalize().Mul(Speed)
	}
	p.Position = p.Position.Add(move)

	if p.Pressed(KeyJump) && p.onGround {
		p.vy = JumpForce
		p.onGround = false
	}
	p.vy -= Gravity
	p.Position[1] += p.vy

	floor := ground.GroundHeight(p.Position.X(), p.Position.Z()) + EyeHeight
	if p.Position.Y() <= floor {
		p.Position[1] = floor
		p.vy = 0
		p.onGround = true
	}
}

// ViewDir returns the unit vector along the view ray.
func (p *Player) ViewDir() mgl64.Vec3 {
	cp := math.Cos(p.Pitch)
	return mgl64.Vec3{-math.Sin(p.Yaw) * cp, math.Sin(p.Pitch), -math.Cos(p.Yaw) * cp}
}

// Pick marches the view ray from the eye in PickStep increments up to reach
// and returns the first block solid accepts.
func (p *Player) Pick(reach float64, solid func(x, y, z int) bool) (x, y, z int, ok bool) {
	dir := p.ViewDir()
	steps := int(math.Floor(reach/PickStep + 1e-9))
	for i := 1; i <= steps; i++ {
		at := p.Position.Add(dir.Mul(float64(i) * PickStep))
		x, y, z = int(math.Floor(at.X())), int(math.Floor(at.Y())), int(math.Floor(at.Z()))
		if solid(x, y, z) {
			return x, y, z, true
		}
	}
	return 0, 0, 0, false
}
