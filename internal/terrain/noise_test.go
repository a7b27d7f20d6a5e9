package terrain

import (
	"math"
	"testing"
)

func TestSimplexDeterministic(t *testing.T) {
	a := NewSimplex(12345)
	b := NewSimplex(12345)

	for i := 0; i < 100; i++ {
		x := float64(i) * 0.1
		y := float64(i) * 0.2
		if a.Eval2(x, y) != b.Eval2(x, y) {
			t.Fatalf("Eval2 not deterministic at (%f, %f)", x, y)
		}
	}
}

func TestNoiseRange(t *testing.T) {
	sources := map[string]NoiseSource{
		NoiseSimplex:     NewSimplex(42),
		NoiseOpenSimplex: NewOpenSimplex(42),
	}
	for name, src := range sources {
		for i := 0; i < 10000; i++ {
			x := float64(i)*0.37 - 500
			y := float64(i)*0.53 - 500
			if v := src.Eval2(x, y); v < -1.0 || v > 1.0 {
				t.Fatalf("%s Eval2(%f, %f) = %f, out of [-1,1]", name, x, y, v)
			}
		}
	}
}

func TestDifferentSeedsDifferentNoise(t *testing.T) {
	for _, name := range []string{NoiseSimplex, NoiseOpenSimplex} {
		factory, err := FactoryFor(name)
		if err != nil {
			t.Fatalf("FactoryFor(%q): %v", name, err)
		}
		a, b := factory(1), factory(2)

		different := false
		for i := 0; i < 100; i++ {
			x := float64(i)*0.1 + 0.05
			y := float64(i)*0.2 + 0.05
			if a.Eval2(x, y) != b.Eval2(x, y) {
				different = true
				break
			}
		}
		if !different {
			t.Errorf("%s: different seeds should produce different noise", name)
		}
	}
}

func TestFactoryForUnknown(t *testing.T) {
	if _, err := FactoryFor("perlin"); err == nil {
		t.Error("FactoryFor(perlin) should fail")
	}
}

func TestOctavesSmoothness(t *testing.T) {
	src := NewSimplex(456)

	prev := Octaves(src, 0, 0, 4, 0.5)
	step := 0.01
	for i := 1; i < 1000; i++ {
		x := float64(i) * step
		curr := Octaves(src, x, 0, 4, 0.5)
		if diff := math.Abs(curr - prev); diff > 0.1 {
			t.Fatalf("noise changed too rapidly at x=%f: diff=%f", x, diff)
		}
		if curr < -1 || curr > 1 {
			t.Fatalf("Octaves = %f, out of [-1,1]", curr)
		}
		prev = curr
	}
}
