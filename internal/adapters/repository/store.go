// Package repository persists athlete records.
package repository

import (
	"context"

	"github.com/okian/prospect/internal/domain/model"
)

// Store provides read/write access to athlete records.
//
// Implementations return ErrNotFound for unknown ids and ErrDuplicate when a
// create would reuse an id or give an owner a second profile.
type Store interface {
	FindByID(ctx context.Context, id string) (model.Athlete, error)
	FindByOwner(ctx context.Context, userID string) (model.Athlete, error)

	// Create inserts a new record.
	Create(ctx context.Context, a model.Athlete) error
	// Save overwrites an existing record.
	Save(ctx context.Context, a model.Athlete) error
	Delete(ctx context.Context, id string) error

	// List returns one page of records matching f, ordered by star rating
	// DESC, createdAt DESC, id ASC, and the total number of matches.
	List(ctx context.Context, f model.ListFilter) ([]model.Athlete, int, error)

	// IDs returns up to limit ids greater than after, ascending. It is the
	// keyset cursor used by bulk recomputation.
	IDs(ctx context.Context, after string, limit int) ([]string, error)

	Count(ctx context.Context) (int, error)
	Close() error
}
