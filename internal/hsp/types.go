// Package hsp implements the Hansen solubility parameter geometry: volume-weighted
// mixtures, Hansen distance and RED, and the parametric surface of a Hansen sphere.
//
// Everything in this package is a pure function of its arguments.
package hsp

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Axis names as they appear in JSON payloads and error messages.
const (
	AxisD = "delta_d"
	AxisP = "delta_p"
	AxisH = "delta_h"
)

// Vector is an HSP triple (δD, δP, δH) in MPa^0.5.
type Vector struct {
	D float64 `json:"delta_d"`
	P float64 `json:"delta_p"`
	H float64 `json:"delta_h"`
}

// Total returns the total solubility parameter sqrt(δD² + δP² + δH²).
func (v Vector) Total() float64 {
	return math.Sqrt(v.D*v.D + v.P*v.P + v.H*v.H)
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector) IsFinite() bool {
	for _, c := range [3]float64{v.D, v.P, v.H} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.D, v.P, v.H)
}

// OptionalVector is an HSP triple whose components may be unknown (nil).
type OptionalVector struct {
	D *float64 `json:"delta_d"`
	P *float64 `json:"delta_p"`
	H *float64 `json:"delta_h"`
}

// Known wraps a complete vector.
func Known(v Vector) OptionalVector {
	d, p, h := v.D, v.P, v.H
	return OptionalVector{D: &d, P: &p, H: &h}
}

// Complete returns the vector when all three components are present.
func (o OptionalVector) Complete() (Vector, bool) {
	if o.D == nil || o.P == nil || o.H == nil {
		return Vector{}, false
	}
	return Vector{D: *o.D, P: *o.P, H: *o.H}, true
}

// Missing returns the axis names of the absent components, in δD, δP, δH order.
func (o OptionalVector) Missing() []string {
	var out []string
	if o.D == nil {
		out = append(out, AxisD)
	}
	if o.P == nil {
		out = append(out, AxisP)
	}
	if o.H == nil {
		out = append(out, AxisH)
	}
	return out
}

// Target is a Hansen sphere: a center and an interaction radius R0.
type Target struct {
	Name   string  `json:"name"`
	Center Vector  `json:"center"`
	Radius float64 `json:"radius"`
}

// Validate rejects a radius that is not a positive finite number.
func (t Target) Validate() error {
	if !(t.Radius > 0) || math.IsInf(t.Radius, 1) {
		return &DomainError{Kind: KindNonPositiveRadius, Entity: t.label(), Field: "radius", Value: t.Radius}
	}
	return nil
}

func (t Target) label() string {
	if t.Name != "" {
		return "target " + t.Name
	}
	return "target"
}

// SolventPoint is a named solvent positioned in HSP space. Points with an
// incomplete HSP take no part in distance computations.
type SolventPoint struct {
	Name       string         `json:"name"`
	HSP        OptionalVector `json:"hsp"`
	SourceURL  string         `json:"source_url,omitempty"`
	Solubility Solubility     `json:"solubility,omitempty"`
}

// MixtureComponent is one solvent of a mixture with its share of the total volume.
type MixtureComponent struct {
	SolventRef     string  `json:"solvent"`
	HSP            Vector  `json:"hsp"`
	VolumeFraction float64 `json:"volume_fraction"`
}

// Solubility is the observed behaviour of a solute in a solvent.
type Solubility string

const (
	SolubilityUnknown   Solubility = ""
	SolubilitySoluble   Solubility = "soluble"
	SolubilityPartial   Solubility = "partial"
	SolubilityInsoluble Solubility = "insoluble"
)

// ClassifySolubility maps a numeric solubility score in [0, 1] to a class:
// >= 0.7 soluble, >= 0.3 partial, otherwise insoluble.
func ClassifySolubility(score float64) Solubility {
	switch {
	case score >= 0.7:
		return SolubilitySoluble
	case score >= 0.3:
		return SolubilityPartial
	default:
		return SolubilityInsoluble
	}
}

// ParseSolubility accepts a class name in any case. Unrecognized names are an error.
func ParseSolubility(s string) (Solubility, error) {
	switch v := Solubility(strings.ToLower(strings.TrimSpace(s))); v {
	case SolubilityUnknown, SolubilitySoluble, SolubilityPartial, SolubilityInsoluble:
		return v, nil
	default:
		return SolubilityUnknown, fmt.Errorf("unknown solubility %q", s)
	}
}

// UnmarshalJSON accepts either a class name or a numeric score in [0, 1].
func (s *Solubility) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = SolubilityUnknown
		return nil
	}
	var score float64
	if err := json.Unmarshal(data, &score); err == nil {
		if score < 0 || score > 1 {
			return fmt.Errorf("numeric solubility must be between 0 and 1, got %g", score)
		}
		*s = ClassifySolubility(score)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("solubility must be a string or a number: %w", err)
	}
	v, err := ParseSolubility(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
