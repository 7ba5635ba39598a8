// Package models defines the persisted solvent record and the request and
// response types of the service layer.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/mixingcompass/internal/hsp"
)

// ErrInvalidRequest marks a request rejected before any computation ran.
var ErrInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Solvent is a solvent record from the database. Any HSP component may be
// unknown.
type Solvent struct {
	ID          string             `json:"id" db:"id"`
	Name        string             `json:"name" db:"name"`
	CAS         string             `json:"cas,omitempty" db:"cas"`
	SMILES      string             `json:"smiles,omitempty" db:"smiles"`
	MolarVolume *float64           `json:"molar_volume,omitempty" db:"molar_volume"`
	HSP         hsp.OptionalVector `json:"hsp"`
	SourceURL   string             `json:"source_url,omitempty" db:"source_url"`
	SourceFile  string             `json:"source_file,omitempty" db:"source_file"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// Validate trims the name and rejects records without one or with negative
// HSP components.
func (s *Solvent) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.CAS = strings.TrimSpace(s.CAS)
	if s.Name == "" {
		return invalid("solvent name cannot be empty")
	}
	axes := []string{hsp.AxisD, hsp.AxisP, hsp.AxisH}
	for i, v := range []*float64{s.HSP.D, s.HSP.P, s.HSP.H} {
		if v != nil && *v < 0 {
			return invalid("solvent %q: %s cannot be negative", s.Name, axes[i])
		}
	}
	if s.MolarVolume != nil && *s.MolarVolume <= 0 {
		return invalid("solvent %q: molar volume must be positive", s.Name)
	}
	return nil
}

// Point converts the record to a plottable solvent point.
func (s *Solvent) Point() hsp.SolventPoint {
	return hsp.SolventPoint{Name: s.Name, HSP: s.HSP, SourceURL: s.SourceURL}
}

// SolventQuery is a catalog search or listing request.
type SolventQuery struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Fuzzy  bool   `json:"fuzzy,omitempty"`
}

// Query limits.
const (
	DefaultQueryLimit = 20
	MaxQueryLimit     = 500
)

// Validate normalizes limit and offset. An empty query lists solvents by name.
func (q *SolventQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Offset < 0 {
		return invalid("offset cannot be negative")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultQueryLimit
	}
	if q.Limit > MaxQueryLimit {
		q.Limit = MaxQueryLimit
	}
	return nil
}
