// Package tabular implements the store contract once over ordered,
// whole-collection tables. The memory and file backends provide the tables;
// this package owns locking, integrity checks and last-modified bookkeeping.
package tabular

import (
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/models"
)

// Table is one persisted (user, entity) collection, kept in id order.
// Callers serialize access; implementations need no locking of their own.
type Table[D any] interface {
	// Load returns a copy of every entry in id order.
	Load() ([]models.WithID[D], error)
	// Append persists one entry with an id above every existing id.
	Append(e models.WithID[D], modified time.Time) error
	// Replace persists the full collection.
	Replace(entries []models.WithID[D], modified time.Time) error
	LastModified() (time.Time, error)
	// NextID reserves a fresh id. It fails with common.ErrStoreFull once
	// the id space is exhausted.
	NextID() (models.ID, error)
}

// Tables groups one user's three collections.
type Tables struct {
	Skulls      Table[models.Skull]
	Quicks      Table[models.Quick]
	Occurrences Table[models.Occurrence]
}
