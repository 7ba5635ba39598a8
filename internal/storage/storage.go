// Package storage defines the persistence interface for solvent records.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/mixingcompass/internal/models"
)

// ErrNotFound is returned, wrapped with the key, when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Storage defines solvent persistence operations.
type Storage interface {
	UpsertSolvent(ctx context.Context, s *models.Solvent) error
	BatchUpsertSolvents(ctx context.Context, solvents []*models.Solvent) error
	GetSolvent(ctx context.Context, id string) (*models.Solvent, error)
	// FindSolvent matches a name or CAS number, ignoring case.
	FindSolvent(ctx context.Context, nameOrCAS string) (*models.Solvent, error)
	ListSolvents(ctx context.Context, offset, limit int) ([]*models.Solvent, error)
	DeleteSolvent(ctx context.Context, id string) error
	// DeleteBySource removes every solvent imported from sourceFile and returns their IDs.
	DeleteBySource(ctx context.Context, sourceFile string) ([]string, error)

	CountSolvents(ctx context.Context) (int64, error)
	CountComplete(ctx context.Context) (int64, error)

	Close() error
}
