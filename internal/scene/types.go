// Package scene composes one or two Hansen spheres and a solvent point cloud into a
// renderer-agnostic payload: a list of traces plus layout hints. It describes what
// to draw; turning it into pixels is left to whichever plotting library consumes it.
package scene

import "github.com/hyperjump/mixingcompass/internal/hsp"

// TraceKind is the geometric primitive of a trace.
type TraceKind string

const (
	KindSurface TraceKind = "surface"
	KindMarker  TraceKind = "marker"
	KindPoints  TraceKind = "points"
)

// Trace groups.
const (
	GroupTarget1  = "target1"
	GroupTarget2  = "target2"
	GroupSolvents = "solvents"
)

// Point3 is a plain 3D coordinate used for layout hints.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Style carries presentation hints. Colors, when set, holds one color per point
// and takes precedence over Color.
type Style struct {
	Color   string   `json:"color,omitempty"`
	Colors  []string `json:"colors,omitempty"`
	Opacity float64  `json:"opacity"`
	Size    float64  `json:"size,omitempty"`
}

// Trace is one drawable element. Surface traces fill Surface; marker and point
// traces fill X, Y, Z with one entry per point.
type Trace struct {
	Kind       TraceKind `json:"kind"`
	Name       string    `json:"name"`
	Group      string    `json:"group"`
	Surface    *hsp.Grid `json:"surface,omitempty"`
	X          []float64 `json:"x,omitempty"`
	Y          []float64 `json:"y,omitempty"`
	Z          []float64 `json:"z,omitempty"`
	Labels     []string  `json:"labels,omitempty"`
	HoverText  []string  `json:"hover_text,omitempty"`
	Style      Style     `json:"style"`
	ShowLegend bool      `json:"show_legend"`
}

// Axis is a titled axis with a fixed [lo, hi] range.
type Axis struct {
	Title string     `json:"title"`
	Range [2]float64 `json:"range"`
}

// Camera positions the default viewpoint.
type Camera struct {
	Eye Point3 `json:"eye"`
}

// Legend anchors the legend in paper coordinates (0..1).
type Legend struct {
	Show bool    `json:"show"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Layout describes the 3D scene around the traces.
type Layout struct {
	Title       string `json:"title"`
	XAxis       Axis   `json:"x_axis"`
	YAxis       Axis   `json:"y_axis"`
	ZAxis       Axis   `json:"z_axis"`
	Camera      Camera `json:"camera"`
	AspectRatio Point3 `json:"aspect_ratio"`
	Legend      Legend `json:"legend"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// REDValue is the RED of a solvent against one target.
type REDValue struct {
	Target     string  `json:"target"`
	RED        float64 `json:"red"`
	Compatible bool    `json:"compatible"`
}

// Annotation is the computed data behind one plotted solvent.
type Annotation struct {
	Name       string         `json:"name"`
	HSP        hsp.Vector     `json:"hsp"`
	SourceURL  string         `json:"source_url,omitempty"`
	Solubility hsp.Solubility `json:"solubility,omitempty"`
	RED        []REDValue     `json:"red"`
}

// Scene is the complete payload handed to a renderer.
type Scene struct {
	Traces   []Trace       `json:"traces"`
	Layout   Layout        `json:"layout"`
	Solvents []Annotation  `json:"solvents"`
	Warnings []hsp.Warning `json:"warnings,omitempty"`
}

// Input is what a scene is built from. Target2 and Solvents are optional.
type Input struct {
	Target1  hsp.Target         `json:"target1"`
	Target2  *hsp.Target        `json:"target2,omitempty"`
	Solvents []hsp.SolventPoint `json:"solvents,omitempty"`
}

// CountKind returns how many traces of kind s holds.
func (s *Scene) CountKind(kind TraceKind) int {
	n := 0
	for _, t := range s.Traces {
		if t.Kind == kind {
			n++
		}
	}
	return n
}
