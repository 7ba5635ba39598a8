package hsp

import (
	"errors"
	"math"
	"testing"
)

func TestEllipsoid_Shape(t *testing.T) {
	g, err := Ellipsoid(Vector{10, 8, 6}, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	for name, grid := range map[string][][]float64{"x": g.X, "y": g.Y, "z": g.Z} {
		if len(grid) != DefaultResolution {
			t.Fatalf("%s rows = %d, want %d", name, len(grid), DefaultResolution)
		}
		for i, row := range grid {
			if len(row) != DefaultResolution {
				t.Fatalf("%s row %d cols = %d", name, i, len(row))
			}
		}
	}
}

func TestEllipsoid_AxisAsymmetry(t *testing.T) {
	center := Vector{10, 8, 6}
	// 21 samples put u and v exactly on the quarter turns.
	g, err := Ellipsoid(center, 4, 21)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := g.Bounds()
	checks := []struct {
		axis         string
		lo, hi, want float64
	}{
		{"δD", center.D - lo.D, hi.D - center.D, 2},
		{"δP", center.P - lo.P, hi.P - center.P, 4},
		{"δH", center.H - lo.H, hi.H - center.H, 4},
	}
	for _, c := range checks {
		if math.Abs(c.lo-c.want) > 1e-9 || math.Abs(c.hi-c.want) > 1e-9 {
			t.Errorf("%s extent = -%v/+%v, want %v", c.axis, c.lo, c.hi, c.want)
		}
	}
}

func TestEllipsoid_DefaultResolutionWithinExtent(t *testing.T) {
	center := Vector{10, 8, 6}
	g, err := Ellipsoid(center, 4, DefaultResolution)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := g.Bounds()
	if hi.D-center.D > 2+1e-9 || center.D-lo.D > 2+1e-9 {
		t.Errorf("δD extent exceeds radius/2: [%v, %v]", lo.D, hi.D)
	}
	if hi.D-center.D < 1.9 {
		t.Errorf("δD extent too small: %v", hi.D-center.D)
	}
	// v includes both poles, so δH reaches the full radius.
	if math.Abs(hi.H-10) > 1e-9 || math.Abs(lo.H-2) > 1e-9 {
		t.Errorf("δH bounds = [%v, %v], want [2, 10]", lo.H, hi.H)
	}
}

func TestEllipsoid_OnREDBoundary(t *testing.T) {
	tg := Target{Center: Vector{17, 8, 7}, Radius: 5}
	g, err := Ellipsoid(tg.Center, tg.Radius, 15)
	if err != nil {
		t.Fatal(err)
	}
	for i := range g.X {
		for j := range g.X[i] {
			p := Vector{g.X[i][j], g.Y[i][j], g.Z[i][j]}
			if red := RED(p, tg); math.Abs(red-1) > 1e-9 {
				t.Fatalf("sample [%d][%d] %v has RED %v, want 1", i, j, p, red)
			}
		}
	}
}

func TestSurface_ClampsNearOrigin(t *testing.T) {
	g, err := Surface(Target{Name: "small", Center: Vector{1, 1, 1}, Radius: 6}, 0)
	if err != nil {
		t.Fatal(err)
	}
	lo, _ := g.Bounds()
	if lo.D < 0 || lo.P < 0 || lo.H < 0 {
		t.Errorf("negative coordinate after clamping: %v", lo)
	}
	raw, _ := Ellipsoid(Vector{1, 1, 1}, 6, 0)
	rawLo, _ := raw.Bounds()
	if rawLo.P >= 0 {
		t.Errorf("expected the unclamped surface to go negative, got %v", rawLo)
	}
}

func TestClamped_DoesNotMutate(t *testing.T) {
	raw, _ := Ellipsoid(Vector{1, 1, 1}, 6, 10)
	before := raw.Z[len(raw.Z)-1][0]
	_ = raw.Clamped()
	if raw.Z[len(raw.Z)-1][0] != before {
		t.Error("Clamped modified the receiver")
	}
}

func TestEllipsoid_Errors(t *testing.T) {
	tests := []struct {
		name       string
		radius     float64
		resolution int
		want       error
	}{
		{"zero radius", 0, 20, ErrNonPositiveRadius},
		{"negative radius", -3, 20, ErrNonPositiveRadius},
		{"NaN radius", math.NaN(), 20, ErrNonPositiveRadius},
		{"infinite radius", math.Inf(1), 20, ErrNonPositiveRadius},
		{"single sample", 4, 1, ErrInvalidResolution},
		{"above maximum", 4, MaxResolution + 1, ErrInvalidResolution},
		{"huge", 4, 50000, ErrInvalidResolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Ellipsoid(Vector{10, 8, 6}, tt.radius, tt.resolution); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEllipsoid_MaxResolution(t *testing.T) {
	g, err := Ellipsoid(Vector{10, 8, 6}, 4, MaxResolution)
	if err != nil {
		t.Fatalf("Ellipsoid() error = %v", err)
	}
	if len(g.X) != MaxResolution || len(g.X[0]) != MaxResolution {
		t.Errorf("grid shape = %dx%d, want %dx%d", len(g.X), len(g.X[0]), MaxResolution, MaxResolution)
	}
}

func TestSurface_RejectsInvalidTarget(t *testing.T) {
	_, err := Surface(Target{Name: "PS", Center: Vector{18, 6, 4}, Radius: 0}, 20)
	if !errors.Is(err, ErrNonPositiveRadius) {
		t.Fatalf("err = %v", err)
	}
	if got := err.Error(); got != "non-positive-radius: target PS radius=0" {
		t.Errorf("message = %q", got)
	}
}

func TestEllipsoid_Deterministic(t *testing.T) {
	a, _ := Ellipsoid(Vector{17, 8, 7}, 5, 12)
	b, _ := Ellipsoid(Vector{17, 8, 7}, 5, 12)
	for i := range a.X {
		for j := range a.X[i] {
			if a.X[i][j] != b.X[i][j] || a.Y[i][j] != b.Y[i][j] || a.Z[i][j] != b.Z[i][j] {
				t.Fatalf("sample [%d][%d] differs between runs", i, j)
			}
		}
	}
}
