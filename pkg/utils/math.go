package utils

// Linspace returns n evenly spaced values over [start, stop], both endpoints included.
// n == 1 yields []float64{start}; n <= 0 yields nil.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	// Avoid accumulated error on the last sample.
	out[n-1] = stop
	return out
}

// ClampMin returns v, or min when v is below it.
func ClampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

// ClampMax returns v, or max when v is above it.
func ClampMax(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}
