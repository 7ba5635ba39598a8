package hsp

import (
	"math"

	"github.com/hyperjump/mixingcompass/pkg/utils"
)

// Sampling bounds along each surface parameter. Each grid holds
// resolution*resolution samples, so the upper bound keeps requests small.
const (
	DefaultResolution = 20
	MaxResolution     = 200
)

// Grid is a sampled parametric surface. All three coordinate grids have the
// same shape and are indexed [v][u].
type Grid struct {
	X [][]float64 `json:"x"`
	Y [][]float64 `json:"y"`
	Z [][]float64 `json:"z"`
}

// Ellipsoid samples the RED == 1 boundary around center without clamping.
// u spans [0, 2π] and v spans [0, π], each with resolution samples (both ends
// included). The δD semi-axis is radius/2 since δD is weighted by 4 inside the
// squared distance. resolution <= 0 selects DefaultResolution; values of 1 or
// above MaxResolution are rejected.
func Ellipsoid(center Vector, radius float64, resolution int) (Grid, error) {
	if !(radius > 0) || math.IsInf(radius, 1) {
		return Grid{}, &DomainError{Kind: KindNonPositiveRadius, Entity: "ellipsoid", Field: "radius", Value: radius}
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if resolution < 2 || resolution > MaxResolution {
		return Grid{}, &DomainError{Kind: KindInvalidResolution, Entity: "ellipsoid", Field: "resolution", Value: float64(resolution)}
	}

	us := utils.Linspace(0, 2*math.Pi, resolution)
	vs := utils.Linspace(0, math.Pi, resolution)
	g := newGrid(len(vs), len(us))
	for i, v := range vs {
		sinV, cosV := math.Sin(v), math.Cos(v)
		for j, u := range us {
			g.X[i][j] = center.D + (radius/2)*math.Cos(u)*sinV
			g.Y[i][j] = center.P + radius*math.Sin(u)*sinV
			g.Z[i][j] = center.H + radius*cosV
		}
	}
	return g, nil
}

// Surface returns the display surface of t: the ellipsoid with every
// coordinate clamped at zero.
func Surface(t Target, resolution int) (Grid, error) {
	if err := t.Validate(); err != nil {
		return Grid{}, err
	}
	g, err := Ellipsoid(t.Center, t.Radius, resolution)
	if err != nil {
		return Grid{}, err
	}
	return g.Clamped(), nil
}

// Clamped returns a copy of g with negative coordinates raised to zero.
func (g Grid) Clamped() Grid {
	out := newGrid(len(g.X), g.cols())
	for i := range g.X {
		for j := range g.X[i] {
			out.X[i][j] = utils.ClampMin(g.X[i][j], 0)
			out.Y[i][j] = utils.ClampMin(g.Y[i][j], 0)
			out.Z[i][j] = utils.ClampMin(g.Z[i][j], 0)
		}
	}
	return out
}

// Bounds returns the per-axis minimum and maximum over all samples.
func (g Grid) Bounds() (lo, hi Vector) {
	inf := math.Inf(1)
	lo = Vector{D: inf, P: inf, H: inf}
	hi = Vector{D: -inf, P: -inf, H: -inf}
	for i := range g.X {
		for j := range g.X[i] {
			lo.D, hi.D = math.Min(lo.D, g.X[i][j]), math.Max(hi.D, g.X[i][j])
			lo.P, hi.P = math.Min(lo.P, g.Y[i][j]), math.Max(hi.P, g.Y[i][j])
			lo.H, hi.H = math.Min(lo.H, g.Z[i][j]), math.Max(hi.H, g.Z[i][j])
		}
	}
	return lo, hi
}

func (g Grid) cols() int {
	if len(g.X) == 0 {
		return 0
	}
	return len(g.X[0])
}

func newGrid(rows, cols int) Grid {
	g := Grid{X: make([][]float64, rows), Y: make([][]float64, rows), Z: make([][]float64, rows)}
	for i := 0; i < rows; i++ {
		g.X[i] = make([]float64, cols)
		g.Y[i] = make([]float64, cols)
		g.Z[i] = make([]float64, cols)
	}
	return g
}
