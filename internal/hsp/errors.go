package hsp

import (
	"fmt"
	"strings"
)

// ErrorKind identifies a class of domain failure.
type ErrorKind string

const (
	KindZeroTotalVolume   ErrorKind = "zero-total-volume"
	KindNonPositiveRadius ErrorKind = "non-positive-radius"
	KindNegativeFraction  ErrorKind = "negative-volume-fraction"
	KindInvalidResolution ErrorKind = "invalid-resolution"
)

// Sentinels for errors.Is; any DomainError of the same kind matches.
var (
	ErrZeroTotalVolume   = &DomainError{Kind: KindZeroTotalVolume}
	ErrNonPositiveRadius = &DomainError{Kind: KindNonPositiveRadius}
	ErrNegativeFraction  = &DomainError{Kind: KindNegativeFraction}
	ErrInvalidResolution = &DomainError{Kind: KindInvalidResolution}
)

// DomainError is a fatal input error for a single computation. Entity and Field
// name what the caller has to fix.
type DomainError struct {
	Kind   ErrorKind
	Entity string
	Field  string
	Value  float64
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Entity != "" || e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
		if e.Field != "" {
			if e.Entity != "" {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%g", e.Field, e.Value)
		}
	}
	return b.String()
}

// Is matches any DomainError of the same kind.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Kind == e.Kind
}

// WarningKind identifies a non-fatal condition.
type WarningKind string

// WarningIncompletePoint marks a solvent skipped for lacking HSP components.
const WarningIncompletePoint WarningKind = "incomplete-point"

// Warning reports an input that was skipped without failing the computation.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Entity  string      `json:"entity"`
	Missing []string    `json:"missing,omitempty"`
}

func (w Warning) String() string {
	if len(w.Missing) == 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Entity)
	}
	return fmt.Sprintf("%s: %s (missing %s)", w.Kind, w.Entity, strings.Join(w.Missing, ", "))
}

// IncompletePoint builds the warning for a point with missing components.
func IncompletePoint(p SolventPoint) Warning {
	return Warning{Kind: WarningIncompletePoint, Entity: p.Name, Missing: p.HSP.Missing()}
}
