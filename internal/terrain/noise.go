package terrain

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// NoiseSource produces deterministic 2D noise in the range [-1, 1].
type NoiseSource interface {
	Eval2(x, y float64) float64
}

// NoiseFactory builds a NoiseSource for a seed.
type NoiseFactory func(seed int64) NoiseSource

// Noise backends selectable by name.
const (
	NoiseSimplex     = "simplex"
	NoiseOpenSimplex = "opensimplex"
)

// FactoryFor returns the NoiseFactory registered under name.
func FactoryFor(name string) (NoiseFactory, error) {
	switch name {
	case "", NoiseSimplex:
		return func(seed int64) NoiseSource { return NewSimplex(seed) }, nil
	case NoiseOpenSimplex:
		return func(seed int64) NoiseSource { return NewOpenSimplex(seed) }, nil
	default:
		return nil, fmt.Errorf("unknown noise backend %q", name)
	}
}

// grad2 are the gradient directions used by 2D simplex noise.
var grad2 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// Simplex is a seeded 2D simplex noise generator.
type Simplex struct {
	perm [512]int
}

// NewSimplex creates a Simplex with a permutation table shuffled from seed.
func NewSimplex(seed int64) *Simplex {
	sn := &Simplex{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates driven by a 64-bit LCG.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		p[i], p[j] = p[j], p[i]
	}

	for i := range sn.perm {
		sn.perm[i] = p[i&255]
	}
	return sn
}

// Eval2 returns simplex noise at (x, y).
func (sn *Simplex) Eval2(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	s := (x + y) * f2
	i := fastFloor(x + s)
	j := fastFloor(y + s)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	corners := [3]struct {
		dx, dy float64
		g      int
	}{
		{x0, y0, sn.perm[ii+sn.perm[jj]] % 12},
		{x1, y1, sn.perm[ii+i1+sn.perm[jj+j1]] % 12},
		{x2, y2, sn.perm[ii+1+sn.perm[jj+1]] % 12},
	}

	var n float64
	for _, c := range corners {
		t := 0.5 - c.dx*c.dx - c.dy*c.dy
		if t < 0 {
			continue
		}
		t *= t
		n += t * t * (grad2[c.g][0]*c.dx + grad2[c.g][1]*c.dy)
	}

	return clampUnit(70.0 * n)
}

// Octaves layers several frequencies of src and renormalizes to [-1, 1].
func Octaves(src NoiseSource, x, y float64, octaves int, persistence float64) float64 {
	var total, maxVal float64
	frequency, amplitude := 1.0, 1.0
	for range octaves {
		total += src.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}

// OpenSimplex adapts github.com/ojrac/opensimplex-go to NoiseSource.
type OpenSimplex struct {
	noise opensimplex.Noise
}

// NewOpenSimplex creates an OpenSimplex source for seed.
func NewOpenSimplex(seed int64) *OpenSimplex {
	return &OpenSimplex{noise: opensimplex.New(seed)}
}

// Eval2 returns OpenSimplex noise at (x, y), clamped to [-1, 1].
func (o *OpenSimplex) Eval2(x, y float64) float64 {
	return clampUnit(o.noise.Eval2(x, y))
}

func clampUnit(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
