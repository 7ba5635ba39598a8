package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/mixingcompass/internal/hsp"
	"github.com/hyperjump/mixingcompass/internal/models"
)

// componentSeparator joins blend components inside a single --mix value.
const componentSeparator = "+"

// parseVector reads "δD,δP,δH".
func parseVector(s string) (hsp.Vector, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return hsp.Vector{}, fmt.Errorf("want δD,δP,δH, got %q", s)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return hsp.Vector{}, fmt.Errorf("invalid number %q in %q", p, s)
		}
		vals[i] = v
	}
	return hsp.Vector{D: vals[0], P: vals[1], H: vals[2]}, nil
}

// parseComponent reads "name[:volume]" or "δD,δP,δH[:volume]". Volume defaults to 1.
func parseComponent(s string) (models.ComponentInput, error) {
	s = strings.TrimSpace(s)
	c := models.ComponentInput{VolumeFraction: 1}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		v, err := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if err != nil {
			return c, fmt.Errorf("invalid volume in %q", s)
		}
		c.VolumeFraction = v
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return c, fmt.Errorf("empty component")
	}
	if strings.Count(s, ",") == 2 {
		v, err := parseVector(s)
		if err != nil {
			return c, err
		}
		c.HSP = &v
		return c, nil
	}
	c.Solvent = s
	return c, nil
}

// parseComponents reads components from args; each arg may itself hold several
// components joined by "+".
func parseComponents(args []string) ([]models.ComponentInput, error) {
	var out []models.ComponentInput
	for _, arg := range args {
		for _, part := range strings.Split(arg, componentSeparator) {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, err := parseComponent(part)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// parseSolventRef reads "name[=solubility]"; solubility is a class name or a score in [0, 1].
func parseSolventRef(s string) (models.SolventRef, error) {
	name, sol, found := strings.Cut(s, "=")
	ref := models.SolventRef{Name: strings.TrimSpace(name)}
	if ref.Name == "" {
		return ref, fmt.Errorf("empty solvent name in %q", s)
	}
	if !found {
		return ref, nil
	}
	if score, err := strconv.ParseFloat(strings.TrimSpace(sol), 64); err == nil {
		if score < 0 || score > 1 {
			return ref, fmt.Errorf("solubility score %g outside [0, 1]", score)
		}
		ref.Solubility = hsp.ClassifySolubility(score)
		return ref, nil
	}
	parsed, err := hsp.ParseSolubility(sol)
	if err != nil {
		return ref, err
	}
	ref.Solubility = parsed
	return ref, nil
}

func parseSolventRefs(args []string) ([]models.SolventRef, error) {
	refs := make([]models.SolventRef, 0, len(args))
	for _, a := range args {
		ref, err := parseSolventRef(a)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// targetFlags registers --hsp, --mix, --radius and --name (with an optional
// suffix, e.g. --hsp1) on a flag set.
type targetFlags struct {
	hsp    *string
	mix    *string
	radius *string
	name   *string
}

func newTargetFlags(fs *flag.FlagSet, suffix string) *targetFlags {
	return &targetFlags{
		hsp:    fs.String("hsp"+suffix, "", "target center as δD,δP,δH"),
		mix:    fs.String("mix"+suffix, "", `target center as a blend, e.g. "water:1+ethanol:3"`),
		radius: fs.String("radius"+suffix, "", "interaction radius R0 (default from config)"),
		name:   fs.String("name"+suffix, "", "target name"),
	}
}

// input returns nil when neither a center nor a blend was given.
func (f *targetFlags) input() (*models.TargetInput, error) {
	if *f.hsp == "" && *f.mix == "" {
		return nil, nil
	}
	in := &models.TargetInput{Name: *f.name}
	if *f.hsp != "" {
		v, err := parseVector(*f.hsp)
		if err != nil {
			return nil, err
		}
		in.HSP = &v
	}
	if *f.mix != "" {
		components, err := parseComponents([]string{*f.mix})
		if err != nil {
			return nil, err
		}
		in.Mixture = components
	}
	if *f.radius != "" {
		r, err := strconv.ParseFloat(*f.radius, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid radius %q", *f.radius)
		}
		in.Radius = &r
	}
	return in, nil
}

// reorderArgs moves any flags (and their values) that appear after positional
// arguments to the front so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' && !isNumber(a) {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// isNumber keeps negative numbers and vectors like -1,2,3 positional.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.SplitN(s, ",", 2)[0], 64)
	return err == nil
}

// buildQuery joins positional args so multi-word queries work with or without quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
