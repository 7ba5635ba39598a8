package scene

import (
	"fmt"

	"github.com/hyperjump/mixingcompass/internal/hsp"
)

// Axis titles.
const (
	TitleDeltaD = "δD (Dispersion) [MPa^0.5]"
	TitleDeltaP = "δP (Polarity) [MPa^0.5]"
	TitleDeltaH = "δH (Hydrogen bonding) [MPa^0.5]"
)

const (
	defaultTarget1Name = "Target 1"
	defaultTarget2Name = "Target 2"
	defaultPointColor  = "#666666"
	defaultPointSize   = 6
	defaultMarkerSize  = 10
)

// Options controls how a scene is assembled.
type Options struct {
	Resolution int
	Themes     [2]Theme
	Range      RangeConfig
	PointColor string
	PointSize  float64
	MarkerSize float64
	Camera     Camera
	Legend     Legend
	Width      int
	Height     int
	// ColorBySolubility colors each point by its observed solubility.
	ColorBySolubility bool
	// Hover overrides the solvent hover text. Nil uses DefaultHover.
	Hover HoverFormatter
}

// DefaultOptions returns the stock scene options.
func DefaultOptions() Options {
	return Options{
		Resolution: hsp.DefaultResolution,
		Themes:     [2]Theme{Target1Theme, Target2Theme},
		Range:      DefaultRangeConfig(),
		PointColor: defaultPointColor,
		PointSize:  defaultPointSize,
		MarkerSize: defaultMarkerSize,
		Camera:     Camera{Eye: Point3{X: 1.25, Y: 1.25, Z: 1.25}},
		Legend:     Legend{Show: true, X: 0.02, Y: 0.98},
	}
}

// withDefaults fills zero-valued fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	for i := range o.Themes {
		if o.Themes[i].Surface == "" {
			o.Themes[i].Surface = d.Themes[i].Surface
		}
		if o.Themes[i].Marker == "" {
			o.Themes[i].Marker = d.Themes[i].Marker
		}
		if o.Themes[i].Opacity <= 0 {
			o.Themes[i].Opacity = d.Themes[i].Opacity
		}
	}
	if o.Range == (RangeConfig{}) {
		o.Range = d.Range
	}
	if o.PointColor == "" {
		o.PointColor = d.PointColor
	}
	if o.PointSize <= 0 {
		o.PointSize = d.PointSize
	}
	if o.MarkerSize <= 0 {
		o.MarkerSize = d.MarkerSize
	}
	if o.Camera == (Camera{}) {
		o.Camera = d.Camera
	}
	if o.Legend == (Legend{}) {
		o.Legend = d.Legend
	}
	return o
}

// Build assembles the scene for one or two targets and an optional solvent cloud.
//
// Each target contributes a surface trace and a center marker. Solvents with a
// complete HSP vector are gathered into a single point trace annotated with their
// RED against every target; incomplete solvents are skipped and reported as
// warnings. An invalid target radius fails the whole build.
func Build(in Input, opts Options) (*Scene, error) {
	opts = opts.withDefaults()
	targets := []hsp.Target{withName(in.Target1, defaultTarget1Name)}
	if in.Target2 != nil {
		targets = append(targets, withName(*in.Target2, defaultTarget2Name))
	}

	s := &Scene{Solvents: []Annotation{}}
	groups := [2]string{GroupTarget1, GroupTarget2}
	for i, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		grid, err := hsp.Surface(t, opts.Resolution)
		if err != nil {
			return nil, fmt.Errorf("failed to build surface for %s: %w", t.Name, err)
		}
		theme := opts.Themes[i]
		s.Traces = append(s.Traces, Trace{
			Kind:       KindSurface,
			Name:       t.Name,
			Group:      groups[i],
			Surface:    &grid,
			Style:      Style{Color: theme.Surface, Opacity: theme.Opacity},
			ShowLegend: true,
		}, Trace{
			Kind:      KindMarker,
			Name:      t.Name + " center",
			Group:     groups[i],
			X:         []float64{t.Center.D},
			Y:         []float64{t.Center.P},
			Z:         []float64{t.Center.H},
			Labels:    []string{t.Name},
			HoverText: []string{targetHover(t)},
			Style:     Style{Color: theme.Marker, Opacity: 1, Size: opts.MarkerSize},
		})
	}

	points := s.addSolvents(in.Solvents, targets, opts)
	r := AxisRanges(targets, points, opts.Range)
	s.Layout = Layout{
		Title:       title(targets),
		XAxis:       Axis{Title: TitleDeltaD, Range: r.D},
		YAxis:       Axis{Title: TitleDeltaP, Range: r.P},
		ZAxis:       Axis{Title: TitleDeltaH, Range: r.H},
		Camera:      opts.Camera,
		AspectRatio: Point3{X: 1, Y: 1, Z: 1},
		Legend:      opts.Legend,
		Width:       opts.Width,
		Height:      opts.Height,
	}
	return s, nil
}

// addSolvents appends the point trace and returns the plotted coordinates.
func (s *Scene) addSolvents(solvents []hsp.SolventPoint, targets []hsp.Target, opts Options) []hsp.Vector {
	hover := opts.Hover
	if hover == nil {
		hover = DefaultHover
	}

	trace := Trace{
		Kind:       KindPoints,
		Name:       "Solvents",
		Group:      GroupSolvents,
		Style:      Style{Color: opts.PointColor, Opacity: 1, Size: opts.PointSize},
		ShowLegend: true,
	}
	var points []hsp.Vector
	for _, p := range solvents {
		v, ok := p.HSP.Complete()
		if !ok {
			s.Warnings = append(s.Warnings, hsp.IncompletePoint(p))
			continue
		}
		a := Annotation{Name: p.Name, HSP: v, SourceURL: p.SourceURL, Solubility: p.Solubility}
		for _, t := range targets {
			red := hsp.RED(v, t)
			a.RED = append(a.RED, REDValue{Target: t.Name, RED: red, Compatible: red < 1})
		}
		s.Solvents = append(s.Solvents, a)
		points = append(points, v)

		trace.X = append(trace.X, v.D)
		trace.Y = append(trace.Y, v.P)
		trace.Z = append(trace.Z, v.H)
		trace.Labels = append(trace.Labels, p.Name)
		trace.HoverText = append(trace.HoverText, hover(a))
		if opts.ColorBySolubility {
			trace.Style.Colors = append(trace.Style.Colors, SolubilityColor(p.Solubility))
		}
	}
	if len(points) > 0 {
		s.Traces = append(s.Traces, trace)
	}
	return points
}

func withName(t hsp.Target, fallback string) hsp.Target {
	if t.Name == "" {
		t.Name = fallback
	}
	return t
}

func title(targets []hsp.Target) string {
	if len(targets) == 2 {
		return fmt.Sprintf("%s vs %s", targets[0].Name, targets[1].Name)
	}
	t := targets[0]
	return fmt.Sprintf("%s (δD: %.1f, δP: %.1f, δH: %.1f, Ra: %.1f)",
		t.Name, t.Center.D, t.Center.P, t.Center.H, t.Radius)
}
