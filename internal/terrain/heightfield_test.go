package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constNoise returns the same value everywhere.
type constNoise float64

func (c constNoise) Eval2(_, _ float64) float64 { return float64(c) }

// recordingNoise captures the coordinates it was sampled at.
type recordingNoise struct {
	xs, ys []float64
}

func (r *recordingNoise) Eval2(x, y float64) float64 {
	r.xs = append(r.xs, x)
	r.ys = append(r.ys, y)
	return 0
}

func TestHeightAtFloorsScaledNoise(t *testing.T) {
	tests := []struct {
		noise float64
		want  int
	}{
		{0.5, 8},
		{0.99, 15},
		{1, 16},
		{0, 0},
		{-0.01, -1},
		{-1, -16},
	}
	for _, tt := range tests {
		hf := NewHeightField(constNoise(tt.noise), DefaultParams())
		assert.Equal(t, tt.want, hf.HeightAt(3, -7), "noise %v", tt.noise)
	}
}

func TestHeightAtScalesInput(t *testing.T) {
	rec := &recordingNoise{}
	params := DefaultParams()
	params.NoiseScale = 0.25
	hf := NewHeightField(rec, params)

	hf.HeightAt(8, -4)
	require.Len(t, rec.xs, 1)
	assert.InDelta(t, 2.0, rec.xs[0], 1e-12)
	assert.InDelta(t, -1.0, rec.ys[0], 1e-12)
}

func TestHeightAtOctaves(t *testing.T) {
	rec := &recordingNoise{}
	params := DefaultParams()
	params.NoiseScale = 0.5
	params.Octaves = 3
	NewHeightField(rec, params).HeightAt(2, 4)
	assert.Equal(t, []float64{1, 2, 4}, rec.xs, "each octave doubles the frequency")
	assert.Equal(t, []float64{2, 4, 8}, rec.ys)

	src := NewSimplex(11)
	params = DefaultParams()
	params.Octaves = 4
	hf := NewHeightField(src, params)
	single := NewHeightField(src, DefaultParams())
	differs := false
	for x := 0; x < 64; x++ {
		want := int(math.Floor(Octaves(src, float64(x)*0.1, float64(3)*0.1, 4, 0.5) * 16))
		assert.Equal(t, want, hf.HeightAt(x, 3), "x %d", x)
		if hf.HeightAt(x, 3) != single.HeightAt(x, 3) {
			differs = true
		}
	}
	assert.True(t, differs, "octaves should change the terrain")
}

func TestHeightAtDeterministicAcrossInstances(t *testing.T) {
	a := NewHeightField(NewSimplex(7), DefaultParams())
	b := NewHeightField(NewSimplex(7), DefaultParams())
	for x := -40; x < 40; x += 3 {
		for z := -40; z < 40; z += 5 {
			h := a.HeightAt(x, z)
			assert.Equal(t, h, a.HeightAt(x, z))
			assert.Equal(t, h, b.HeightAt(x, z))
			assert.GreaterOrEqual(t, h, -16)
			assert.LessOrEqual(t, h, 16)
		}
	}
}

func TestSurfaceAtClampsNegative(t *testing.T) {
	hf := NewHeightField(constNoise(-0.5), DefaultParams())
	assert.Equal(t, -8, hf.HeightAt(0, 0))
	assert.Equal(t, 0, hf.SurfaceAt(0, 0))
}

func TestMaterialAtStratification(t *testing.T) {
	hf := NewHeightField(constNoise(0), DefaultParams())
	top := 6
	want := map[int]Material{
		7:  Air,
		6:  Grass,
		5:  Dirt,
		4:  Dirt,
		3:  Dirt,
		2:  Stone,
		0:  Stone,
		-1: Air,
	}
	for y, m := range want {
		assert.Equal(t, m, hf.MaterialAt(y, top), "y=%d", y)
	}
}

func TestMaterialString(t *testing.T) {
	assert.Equal(t, "grass", Grass.String())
	assert.Equal(t, "dirt", Dirt.String())
	assert.Equal(t, "stone", Stone.String())
	assert.Equal(t, "air", Air.String())
}
