package utils

import (
	"math"
	"testing"
)

func TestLinspace(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		n           int
		want        []float64
	}{
		{"zero samples", 0, 1, 0, nil},
		{"single sample", 2, 5, 1, []float64{2}},
		{"two samples", 0, 1, 2, []float64{0, 1}},
		{"five samples", 0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Linspace(tt.start, tt.stop, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLinspace_EndpointExact(t *testing.T) {
	got := Linspace(0, 2*math.Pi, 20)
	if got[len(got)-1] != 2*math.Pi {
		t.Errorf("last = %v, want exactly 2π", got[len(got)-1])
	}
}

func TestClamp(t *testing.T) {
	if ClampMin(-1, 0) != 0 || ClampMin(3, 0) != 3 {
		t.Error("ClampMin")
	}
	if ClampMax(31, 30) != 30 || ClampMax(12, 30) != 12 {
		t.Error("ClampMax")
	}
}
