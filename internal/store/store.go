// Package store defines the per-user storage contract shared by every
// backend: CRUD over one entity collection, a last-modified token per
// collection, and the precondition hook used for optimistic concurrency.
//
// Backends live in subpackages (memory, file, sqlite). All of them honor the
// same integrity rules: a quick or occurrence always references a live skull,
// skull names, colors and icons are unique, quick (skull, amount) pairs are
// unique, and a collection's last-modified token strictly increases on every
// mutation that changes its content.
package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/models"
)

// Crud is the operation set for one (user, entity) collection. Every
// mutating call returns the collection's last-modified token observed right
// after the call.
type Crud[D any] interface {
	// List returns entries in collection order. A non-nil limit keeps only
	// the last *limit entries (skulls, quicks) or the first *limit entries
	// (occurrences, which are ordered newest first).
	List(ctx context.Context, limit *uint32) ([]models.WithID[D], time.Time, error)

	Create(ctx context.Context, data D) (models.ID, time.Time, error)

	Read(ctx context.Context, id models.ID) (models.WithID[D], time.Time, error)

	// Update replaces the entry and returns its new value. Identical data is
	// a no-op that leaves the token untouched.
	Update(ctx context.Context, id models.ID, data D, pre Precondition) (models.WithID[D], time.Time, error)

	// Delete removes the entry and returns its last value.
	Delete(ctx context.Context, id models.ID, pre Precondition) (models.WithID[D], time.Time, error)

	LastModified(ctx context.Context) (time.Time, error)
}

// OccurrenceCrud adds filtered queries to the occurrence collection.
type OccurrenceCrud interface {
	Crud[models.Occurrence]

	Search(ctx context.Context, q Search) ([]models.WithID[models.Occurrence], time.Time, error)
}

// Store resolves per-user collections. Unknown users fail with
// common.ErrNoSuchUser.
type Store interface {
	Skulls(user string) (Crud[models.Skull], error)
	Quicks(user string) (Crud[models.Quick], error)
	Occurrences(user string) (OccurrenceCrud, error)

	// Users lists every user this store serves, sorted.
	Users() []string

	Close() error
}

// Select returns the collection of kind D for user.
func Select[D models.Entity[D]](s Store, user string) (Crud[D], error) {
	var c any
	var err error

	switch models.KindOf[D]() {
	case models.KindSkull:
		c, err = s.Skulls(user)
	case models.KindQuick:
		c, err = s.Quicks(user)
	default:
		c, err = s.Occurrences(user)
	}
	if err != nil {
		return nil, err
	}
	return c.(Crud[D]), nil
}
