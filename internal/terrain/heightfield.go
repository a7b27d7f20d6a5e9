package terrain

import "math"

// Material labels a terrain block.
type Material uint8

const (
	Air Material = iota
	Grass
	Dirt
	Stone
)

func (m Material) String() string {
	switch m {
	case Grass:
		return "grass"
	case Dirt:
		return "dirt"
	case Stone:
		return "stone"
	default:
		return "air"
	}
}

// Params are the fixed terrain constants of one world.
type Params struct {
	ChunkSize   int     // blocks per chunk edge
	ChunkHeight int     // vertical scale applied to the noise value
	NoiseScale  float64 // frequency of the noise lookup
	DirtDepth   int     // dirt layers under the grass before stone
	Octaves     int     // noise layers summed per lookup; 0 and 1 mean one
	Persistence float64 // amplitude falloff between octaves
}

// DefaultParams mirrors the browser demo constants.
func DefaultParams() Params {
	return Params{
		ChunkSize:   16,
		ChunkHeight: 16,
		NoiseScale:  0.1,
		DirtDepth:   3,
		Octaves:     1,
		Persistence: 0.5,
	}
}

// HeightField maps world columns to terrain heights and layer materials.
type HeightField struct {
	noise  NoiseSource
	params Params
}

// NewHeightField creates a HeightField reading from noise.
func NewHeightField(noise NoiseSource, params Params) *HeightField {
	return &HeightField{noise: noise, params: params}
}

// Params returns the constants the field was built with.
func (h *HeightField) Params() Params {
	return h.params
}

// HeightAt returns floor(noise(x*scale, z*scale) * chunkHeight), which lies
// in [-chunkHeight, chunkHeight]. With more than one octave the noise value is
// the normalized octave sum.
func (h *HeightField) HeightAt(x, z int) int {
	nx, nz := float64(x)*h.params.NoiseScale, float64(z)*h.params.NoiseScale
	var n float64
	if h.params.Octaves > 1 {
		n = Octaves(h.noise, nx, nz, h.params.Octaves, h.params.Persistence)
	} else {
		n = h.noise.Eval2(nx, nz)
	}
	return int(math.Floor(n * float64(h.params.ChunkHeight)))
}

// SurfaceAt returns the y of the topmost generated block in a column.
// Columns with a negative height still carry a surface block at y=0.
func (h *HeightField) SurfaceAt(x, z int) int {
	return max(h.HeightAt(x, z), 0)
}

// MaterialAt returns the material of layer y in a column whose surface is at
// height top.
func (h *HeightField) MaterialAt(y, top int) Material {
	switch {
	case y > top || y < 0:
		return Air
	case y == top:
		return Grass
	case y >= top-h.params.DirtDepth:
		return Dirt
	default:
		return Stone
	}
}
