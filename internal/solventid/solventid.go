// Package solventid provides deterministic solvent IDs derived from solvent names.
package solventid

import (
	"strings"

	"github.com/google/uuid"
)

// namespace scopes name-based solvent IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://mixingcompass/solvents"))

// Normalize folds a solvent name to the key used for identity: trimmed,
// inner whitespace collapsed, lower case.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// FromName returns a stable ID for a solvent. Names that differ only in case
// or spacing yield the same ID.
func FromName(name string) string {
	return uuid.NewSHA1(namespace, []byte(Normalize(name))).String()
}

// IsValid reports whether id has the shape of a solvent ID.
func IsValid(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.Version() == 5
}
