package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/mixingcompass/internal/hsp"
	"github.com/hyperjump/mixingcompass/internal/models"
	"github.com/hyperjump/mixingcompass/internal/solventid"
)

const listPage = 500

// resolveComponents turns mixture inputs into core components. An inline HSP
// wins over the database; a component without a complete HSP is rejected.
func (e *Engine) resolveComponents(ctx context.Context, inputs []models.ComponentInput) ([]hsp.MixtureComponent, error) {
	out := make([]hsp.MixtureComponent, len(inputs))
	for i, in := range inputs {
		c := hsp.MixtureComponent{SolventRef: in.Solvent, VolumeFraction: in.VolumeFraction}
		if in.HSP != nil {
			c.HSP = *in.HSP
			if c.SolventRef == "" {
				c.SolventRef = fmt.Sprintf("component %d", i+1)
			}
			out[i] = c
			continue
		}
		s, err := e.storage.FindSolvent(ctx, in.Solvent)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i+1, err)
		}
		v, ok := s.HSP.Complete()
		if !ok {
			return nil, fmt.Errorf("%w: component %d (%s) has no %s value",
				models.ErrInvalidRequest, i+1, s.Name, strings.Join(s.HSP.Missing(), ", "))
		}
		c.SolventRef, c.HSP = s.Name, v
		out[i] = c
	}
	return out, nil
}

// resolveTarget locates a sphere center from an inline HSP or a mixture and
// applies the default radius when none is given.
func (e *Engine) resolveTarget(ctx context.Context, in *models.TargetInput, label string) (hsp.Target, error) {
	t := hsp.Target{Name: in.Name, Radius: e.config.Analysis.DefaultRadius}
	if in.Radius != nil {
		t.Radius = *in.Radius
	}
	if in.HSP != nil {
		t.Center = *in.HSP
	} else {
		components, err := e.resolveComponents(ctx, in.Mixture)
		if err != nil {
			return hsp.Target{}, fmt.Errorf("%s: %w", label, err)
		}
		if t.Center, err = hsp.Mix(components); err != nil {
			return hsp.Target{}, err
		}
		if t.Name == "" {
			t.Name = mixtureName(components)
		}
	}
	if err := t.Validate(); err != nil {
		return hsp.Target{}, err
	}
	return t, nil
}

// resolveSolvents collects the solvent points named by refs, followed by the
// rest of the database when all is set. Each solvent appears once.
func (e *Engine) resolveSolvents(ctx context.Context, refs []models.SolventRef, all bool) ([]hsp.SolventPoint, error) {
	seen := make(map[string]struct{})
	var points []hsp.SolventPoint
	add := func(p hsp.SolventPoint) {
		key := solventid.Normalize(p.Name)
		if _, dup := seen[key]; dup && key != "" {
			return
		}
		seen[key] = struct{}{}
		points = append(points, p)
	}
	for _, ref := range refs {
		if ref.HSP != nil {
			add(hsp.SolventPoint{Name: ref.Name, HSP: *ref.HSP, Solubility: ref.Solubility})
			continue
		}
		s, err := e.storage.FindSolvent(ctx, ref.Name)
		if err != nil {
			return nil, err
		}
		p := s.Point()
		p.Solubility = ref.Solubility
		add(p)
	}
	if !all {
		return points, nil
	}
	for offset := 0; ; offset += listPage {
		batch, err := e.storage.ListSolvents(ctx, offset, listPage)
		if err != nil {
			return nil, fmt.Errorf("failed to list solvents: %w", err)
		}
		for _, s := range batch {
			add(s.Point())
		}
		if len(batch) < listPage {
			return points, nil
		}
	}
}
