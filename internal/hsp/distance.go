package hsp

import "math"

// dispersionWeight scales the squared δD difference in Hansen space.
const dispersionWeight = 4.0

// Distance returns the Hansen distance
// sqrt(4(ΔδD)² + (ΔδP)² + (ΔδH)²). It is symmetric in a and b.
func Distance(a, b Vector) float64 {
	dd := a.D - b.D
	dp := a.P - b.P
	dh := a.H - b.H
	return math.Sqrt(dispersionWeight*dd*dd + dp*dp + dh*dh)
}

// RED returns the relative energy difference of p to t: Distance(p, t.Center) / t.Radius.
// t must be valid (see Target.Validate); NaN inputs propagate.
func RED(p Vector, t Target) float64 {
	return Distance(p, t.Center) / t.Radius
}

// Compatible reports whether p lies strictly inside t (RED < 1).
func Compatible(p Vector, t Target) bool {
	return RED(p, t) < 1
}

// PointRED is RED for a solvent point. ok is false when the point is incomplete.
func PointRED(p SolventPoint, t Target) (red float64, ok bool) {
	v, ok := p.HSP.Complete()
	if !ok {
		return 0, false
	}
	return RED(v, t), true
}
