package height

import (
	"math"
	"testing"

	"PlanetVision/shared/icosphere"
)

func TestNoiseDeterministic(t *testing.T) {
	a := NewNoiseProvider(42)
	b := NewNoiseProvider(42)
	dirs := []icosphere.Vec{
		{X: 1}, {Y: -1}, {X: 0.577, Y: 0.577, Z: 0.577}, {X: -0.2, Y: 0.9, Z: 0.38},
	}
	for _, d := range dirs {
		d = d.Normalize()
		for _, detail := range []int32{0, 2, 5} {
			if a.Sample(d, detail) != b.Sample(d, detail) {
				t.Errorf("mesma semente divergiu em %+v detail %d", d, detail)
			}
		}
	}
}

func TestNoiseSeedChangesTerrain(t *testing.T) {
	a := NewNoiseProvider(1)
	b := NewNoiseProvider(2)
	d := icosphere.Vec{X: 0.3, Y: 0.6, Z: 0.74}.Normalize()
	if a.Sample(d, 3) == b.Sample(d, 3) {
		t.Error("sementes diferentes produziram a mesma elevação")
	}
}

func TestNoiseBounded(t *testing.T) {
	p := NewNoiseProvider(7)
	steps := 50
	for i := 0; i < steps; i++ {
		theta := float64(i) / float64(steps) * 2 * math.Pi
		d := icosphere.Vec{X: math.Cos(theta), Y: math.Sin(theta), Z: math.Sin(theta * 3)}.Normalize()
		h := p.Sample(d, 4)
		if math.Abs(h) > p.Amplitude+1e-9 {
			t.Errorf("elevação %f fora da amplitude %f", h, p.Amplitude)
		}
	}
}

func TestNoiseDetailAddsOctaves(t *testing.T) {
	p := NewNoiseProvider(99)
	d := icosphere.Vec{X: 0.1, Y: -0.8, Z: 0.59}.Normalize()
	// Com detail acima do teto, o resultado estabiliza.
	atCap := p.Sample(d, p.MaxOctaves)
	beyond := p.Sample(d, p.MaxOctaves+5)
	if atCap != beyond {
		t.Error("detail acima de MaxOctaves deveria saturar")
	}
}

func TestFlatProvider(t *testing.T) {
	var f Flat
	if f.Sample(icosphere.Vec{X: 1}, 8) != 0 {
		t.Error("Flat deveria amostrar zero em toda parte")
	}
}
