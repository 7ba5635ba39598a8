package hsp

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistance_Formula(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"same point", Vector{17, 8, 7}, Vector{17, 8, 7}, 0},
		{"dispersion only", Vector{18, 0, 0}, Vector{17, 0, 0}, 2},
		{"polar only", Vector{0, 3, 0}, Vector{0, 0, 0}, 3},
		{"hydrogen only", Vector{0, 0, 4}, Vector{0, 0, 0}, 4},
		{"mixed", Vector{17, 8, 7}, Vector{15, 6, 8}, math.Sqrt(16 + 4 + 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := Vector{rng.Float64() * 25, rng.Float64() * 30, rng.Float64() * 30}
		b := Vector{rng.Float64() * 25, rng.Float64() * 30, rng.Float64() * 30}
		if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-12 {
			t.Fatalf("Distance(%v,%v)=%v but reversed=%v", a, b, d1, d2)
		}
	}
}

func TestRED_AtCenter(t *testing.T) {
	for _, tg := range []Target{
		{Center: Vector{17, 8, 7}, Radius: 5},
		{Center: Vector{0, 0, 0}, Radius: 0.1},
		{Center: Vector{22.5, 30, 1}, Radius: 12},
	} {
		if red := RED(tg.Center, tg); red != 0 {
			t.Errorf("RED(center) = %v for %+v", red, tg)
		}
	}
}

func TestRED_ScalingLaw(t *testing.T) {
	tg := Target{Center: Vector{17, 8, 7}, Radius: 5}
	// Along δP the distance is the plain difference.
	atR := Vector{17, 13, 7}
	at2R := Vector{17, 18, 7}
	// Along δD the same distance needs half the offset.
	atRD := Vector{19.5, 8, 7}
	if got := RED(atR, tg); math.Abs(got-1) > 1e-12 {
		t.Errorf("RED at R = %v, want 1", got)
	}
	if got := RED(at2R, tg); math.Abs(got-2) > 1e-12 {
		t.Errorf("RED at 2R = %v, want 2", got)
	}
	if got := RED(atRD, tg); math.Abs(got-1) > 1e-12 {
		t.Errorf("RED at R along δD = %v, want 1", got)
	}
}

func TestCompatible(t *testing.T) {
	tg := Target{Center: Vector{17, 8, 7}, Radius: 5}
	if !Compatible(Vector{17, 9, 7}, tg) {
		t.Error("inside point should be compatible")
	}
	if Compatible(Vector{17, 13, 7}, tg) {
		t.Error("boundary point (RED == 1) should not be compatible")
	}
}

func TestRED_NaNPropagates(t *testing.T) {
	tg := Target{Center: Vector{17, 8, 7}, Radius: 5}
	if got := RED(Vector{math.NaN(), 8, 7}, tg); !math.IsNaN(got) {
		t.Errorf("RED = %v, want NaN", got)
	}
}

func TestPointRED_Incomplete(t *testing.T) {
	tg := Target{Center: Vector{17, 8, 7}, Radius: 5}
	d := 17.0
	if _, ok := PointRED(SolventPoint{Name: "x", HSP: OptionalVector{D: &d}}, tg); ok {
		t.Error("incomplete point should not yield a RED")
	}
	red, ok := PointRED(SolventPoint{Name: "y", HSP: Known(Vector{17, 8, 7})}, tg)
	if !ok || red != 0 {
		t.Errorf("PointRED = %v, %v", red, ok)
	}
}
