package catalog

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"toluene", "toluene", 0},
		{"tolulene", "toluene", 1},
		{"kitten", "sitting", 3},
		{"éthanol", "ethanol", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := levenshtein(tt.b, tt.a); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestCorrect_PrefersFrequentTerms(t *testing.T) {
	dict := map[string]int{"acetate": 3, "acetone": 1}
	got, changed := correct([]string{"acetane"}, dict)
	if !changed || got != "acetate" {
		t.Errorf("correct = %q, %v; want acetate, true", got, changed)
	}
}
