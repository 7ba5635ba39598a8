package models

import (
	"github.com/hyperjump/mixingcompass/internal/hsp"
)

// ComponentInput names one mixture component. An inline HSP wins over a
// database lookup by Solvent.
type ComponentInput struct {
	Solvent        string      `json:"solvent"`
	HSP            *hsp.Vector `json:"hsp,omitempty"`
	VolumeFraction float64     `json:"volume_fraction"`
}

// MixtureRequest asks for the HSP of a volume-weighted blend.
type MixtureRequest struct {
	Name       string           `json:"name,omitempty"`
	Components []ComponentInput `json:"components"`
}

// Validate checks that every component can be resolved.
func (r *MixtureRequest) Validate() error {
	if len(r.Components) == 0 {
		return invalid("mixture needs at least one component")
	}
	for i, c := range r.Components {
		if c.Solvent == "" && c.HSP == nil {
			return invalid("component %d: either solvent or hsp is required", i)
		}
	}
	return nil
}

// TargetInput describes a Hansen sphere. The center is either given as HSP or
// computed from a mixture. A nil radius takes the configured default.
type TargetInput struct {
	Name    string           `json:"name,omitempty"`
	HSP     *hsp.Vector      `json:"hsp,omitempty"`
	Mixture []ComponentInput `json:"mixture,omitempty"`
	Radius  *float64         `json:"radius,omitempty"`
}

// Validate requires exactly one way of locating the center.
func (t *TargetInput) Validate(label string) error {
	switch {
	case t.HSP == nil && len(t.Mixture) == 0:
		return invalid("%s: either hsp or mixture is required", label)
	case t.HSP != nil && len(t.Mixture) > 0:
		return invalid("%s: hsp and mixture are mutually exclusive", label)
	}
	if len(t.Mixture) > 0 {
		m := MixtureRequest{Components: t.Mixture}
		if err := m.Validate(); err != nil {
			return invalid("%s: %v", label, err)
		}
	}
	return nil
}

// SolventRef selects a solvent for evaluation: inline HSP, or by name from
// the database.
type SolventRef struct {
	Name       string              `json:"name"`
	HSP        *hsp.OptionalVector `json:"hsp,omitempty"`
	Solubility hsp.Solubility      `json:"solubility,omitempty"`
}

// REDRequest evaluates solvents against one target. All adds every solvent
// in the database.
type REDRequest struct {
	Target   TargetInput  `json:"target"`
	Solvents []SolventRef `json:"solvents,omitempty"`
	All      bool         `json:"all,omitempty"`
}

// Validate checks the target and solvent references.
func (r *REDRequest) Validate() error {
	if err := r.Target.Validate("target"); err != nil {
		return err
	}
	if len(r.Solvents) == 0 && !r.All {
		return invalid("no solvents given and all is false")
	}
	return validateRefs(r.Solvents)
}

// SceneRequest builds a 3D scene for one or two targets.
type SceneRequest struct {
	Target1           TargetInput  `json:"target1"`
	Target2           *TargetInput `json:"target2,omitempty"`
	Solvents          []SolventRef `json:"solvents,omitempty"`
	AllSolvents       bool         `json:"all_solvents,omitempty"`
	Resolution        int          `json:"resolution,omitempty"`
	ColorBySolubility bool         `json:"color_by_solubility,omitempty"`
}

// Validate checks both targets and the solvent references.
func (r *SceneRequest) Validate() error {
	if err := r.Target1.Validate("target1"); err != nil {
		return err
	}
	if r.Target2 != nil {
		if err := r.Target2.Validate("target2"); err != nil {
			return err
		}
	}
	if r.Resolution < 0 {
		return invalid("resolution cannot be negative")
	}
	if r.Resolution > hsp.MaxResolution {
		return invalid("resolution %d exceeds the maximum of %d", r.Resolution, hsp.MaxResolution)
	}
	return validateRefs(r.Solvents)
}

func validateRefs(refs []SolventRef) error {
	for i, s := range refs {
		if s.Name == "" && s.HSP == nil {
			return invalid("solvent %d: either name or hsp is required", i)
		}
	}
	return nil
}
