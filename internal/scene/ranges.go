package scene

import (
	"math"

	"github.com/hyperjump/mixingcompass/internal/hsp"
	"github.com/hyperjump/mixingcompass/pkg/utils"
)

// RangeConfig tunes axis ranges. The values are visual tuning, not physics.
type RangeConfig struct {
	Margin float64 `json:"margin" yaml:"margin"`
	MaxD   float64 `json:"max_delta_d" yaml:"max_delta_d"`
	MaxP   float64 `json:"max_delta_p" yaml:"max_delta_p"`
	MaxH   float64 `json:"max_delta_h" yaml:"max_delta_h"`
}

// Default range tuning.
const (
	DefaultRangeMargin = 2.0
	DefaultMaxDeltaD   = 25.0
	DefaultMaxDeltaP   = 30.0
	DefaultMaxDeltaH   = 30.0
)

// DefaultRangeConfig returns the default margin and axis caps.
func DefaultRangeConfig() RangeConfig {
	return RangeConfig{
		Margin: DefaultRangeMargin,
		MaxD:   DefaultMaxDeltaD,
		MaxP:   DefaultMaxDeltaP,
		MaxH:   DefaultMaxDeltaH,
	}
}

// Ranges holds the [lo, hi] range of each axis.
type Ranges struct {
	D, P, H [2]float64
}

// AxisRanges computes the axis ranges for targets and plotted points.
//
// Every axis starts at zero. Each upper bound is the largest of the target
// centers, each center plus its radius and every point coordinate, pushed out
// by the margin and capped at the axis maximum.
func AxisRanges(targets []hsp.Target, points []hsp.Vector, cfg RangeConfig) Ranges {
	inf := math.Inf(1)
	hi := hsp.Vector{D: -inf, P: -inf, H: -inf}
	include := func(v hsp.Vector) {
		hi.D = math.Max(hi.D, v.D)
		hi.P = math.Max(hi.P, v.P)
		hi.H = math.Max(hi.H, v.H)
	}
	for _, t := range targets {
		c, r := t.Center, t.Radius
		include(c)
		include(hsp.Vector{D: c.D + r, P: c.P + r, H: c.H + r})
	}
	for _, p := range points {
		include(p)
	}
	if math.IsInf(hi.D, -1) {
		return Ranges{D: [2]float64{0, cfg.MaxD}, P: [2]float64{0, cfg.MaxP}, H: [2]float64{0, cfg.MaxH}}
	}

	upper := func(v, max float64) float64 {
		return utils.ClampMax(v+cfg.Margin, max)
	}
	return Ranges{
		D: [2]float64{0, upper(hi.D, cfg.MaxD)},
		P: [2]float64{0, upper(hi.P, cfg.MaxP)},
		H: [2]float64{0, upper(hi.H, cfg.MaxH)},
	}
}
