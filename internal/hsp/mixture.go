package hsp

import "fmt"

// Mix returns the volume-weighted HSP of components. Fractions need not sum to 1;
// they are normalized by their total. Every component must carry a complete
// HSP vector; callers drop or reject incomplete ones beforehand.
func Mix(components []MixtureComponent) (Vector, error) {
	var total float64
	for i, c := range components {
		if c.VolumeFraction < 0 {
			return Vector{}, &DomainError{
				Kind:   KindNegativeFraction,
				Entity: componentLabel(i, c),
				Field:  "volume_fraction",
				Value:  c.VolumeFraction,
			}
		}
		total += c.VolumeFraction
	}
	if total == 0 {
		return Vector{}, &DomainError{Kind: KindZeroTotalVolume, Entity: "mixture", Field: "total_volume", Value: total}
	}

	var mix Vector
	for _, c := range components {
		w := c.VolumeFraction / total
		mix.D += c.HSP.D * w
		mix.P += c.HSP.P * w
		mix.H += c.HSP.H * w
	}
	return mix, nil
}

func componentLabel(i int, c MixtureComponent) string {
	if c.SolventRef != "" {
		return fmt.Sprintf("component %q", c.SolventRef)
	}
	return fmt.Sprintf("component %d", i)
}
