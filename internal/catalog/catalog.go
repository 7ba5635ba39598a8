// Package catalog provides full-text search over solvent names, CAS numbers and SMILES.
package catalog

import "context"

// Entry is the searchable part of a solvent record.
type Entry struct {
	Name   string `json:"name"`
	CAS    string `json:"cas,omitempty"`
	SMILES string `json:"smiles,omitempty"`
}

// SearchOptions tunes a catalog search. Nil means exact matching.
type SearchOptions struct {
	// Fuzzy enables typo-tolerant name matching.
	Fuzzy bool
	// Fuzziness is the maximum edit distance per term when Fuzzy is set (1 or 2).
	Fuzziness int
}

// Hit is a single catalog match.
type Hit struct {
	ID    string
	Score float64
}

// Catalog defines solvent search operations.
type Catalog interface {
	Index(ctx context.Context, id string, e Entry) error
	IndexBatch(ctx context.Context, entries map[string]Entry) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error)
	// Suggest returns a corrected query when some of its terms match no solvent name.
	Suggest(query string) (string, bool, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}
