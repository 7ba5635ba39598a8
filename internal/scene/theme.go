package scene

import (
	"fmt"
	"strings"

	"github.com/hyperjump/mixingcompass/internal/hsp"
)

// Theme is the color family of one target.
type Theme struct {
	Surface string  `json:"surface" yaml:"surface"`
	Marker  string  `json:"marker" yaml:"marker"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

// DefaultSurfaceOpacity is the opacity of a sphere surface.
const DefaultSurfaceOpacity = 0.35

var (
	// Target1Theme is the blue family.
	Target1Theme = Theme{Surface: "#1976d2", Marker: "#0d47a1", Opacity: DefaultSurfaceOpacity}
	// Target2Theme is the orange family.
	Target2Theme = Theme{Surface: "#ff9800", Marker: "#e65100", Opacity: DefaultSurfaceOpacity}
)

// Solubility colors.
const (
	ColorSoluble   = "#1976d2"
	ColorPartial   = "#ff9800"
	ColorInsoluble = "#d32f2f"
	ColorUnknown   = "#666666"
)

// SolubilityColor maps an observed solubility to its point color.
func SolubilityColor(s hsp.Solubility) string {
	switch s {
	case hsp.SolubilitySoluble:
		return ColorSoluble
	case hsp.SolubilityPartial:
		return ColorPartial
	case hsp.SolubilityInsoluble:
		return ColorInsoluble
	default:
		return ColorUnknown
	}
}

// HoverFormatter renders the hover text of one plotted solvent.
type HoverFormatter func(a Annotation) string

// DefaultHover shows the name in bold, the HSP to one decimal and each RED to two.
func DefaultHover(a Annotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b><br>δD: %.1f<br>δP: %.1f<br>δH: %.1f", a.Name, a.HSP.D, a.HSP.P, a.HSP.H)
	for _, r := range a.RED {
		fmt.Fprintf(&b, "<br>RED (%s): %.2f", r.Target, r.RED)
	}
	if a.Solubility != hsp.SolubilityUnknown {
		fmt.Fprintf(&b, "<br>Solubility: %s", a.Solubility)
	}
	return b.String()
}

func targetHover(t hsp.Target) string {
	return fmt.Sprintf("<b>%s</b><br>δD: %.1f<br>δP: %.1f<br>δH: %.1f<br>Ra: %.1f",
		t.Name, t.Center.D, t.Center.P, t.Center.H, t.Radius)
}
