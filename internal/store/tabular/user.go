package tabular

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
)

type lockMode int

const (
	unlocked lockMode = iota
	shared
	exclusive
)

// plan lists the lock each collection needs, indexed by models.Kind.
type plan [3]lockMode

// User holds one user's tables and the locks guarding them. Locks are always
// taken in skull, quick, occurrence order.
type User struct {
	tables Tables
	locks  [3]sync.RWMutex
}

// NewUser wraps tables.
func NewUser(t Tables) *User {
	return &User{tables: t}
}

func (u *User) acquire(p plan) func() {
	for k, m := range p {
		switch m {
		case shared:
			u.locks[k].RLock()
		case exclusive:
			u.locks[k].Lock()
		}
	}
	return func() {
		for k := len(p) - 1; k >= 0; k-- {
			switch p[k] {
			case shared:
				u.locks[k].RUnlock()
			case exclusive:
				u.locks[k].Unlock()
			}
		}
	}
}

// Skulls returns the skull collection.
func (u *User) Skulls() store.Crud[models.Skull] {
	return &crud[models.Skull]{user: u, table: u.tables.Skulls}
}

// Quicks returns the quick collection.
func (u *User) Quicks() store.Crud[models.Quick] {
	return &crud[models.Quick]{user: u, table: u.tables.Quicks}
}

// Occurrences returns the occurrence collection.
func (u *User) Occurrences() store.OccurrenceCrud {
	return &occurrences{crud[models.Occurrence]{user: u, table: u.tables.Occurrences}}
}

type occurrences struct {
	crud[models.Occurrence]
}

func (o *occurrences) Search(ctx context.Context, q store.Search) ([]models.WithID[models.Occurrence], time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, err
	}

	var p plan
	p[models.KindOccurrence] = shared
	defer o.user.acquire(p)()

	entries, err := o.table.Load()
	if err != nil {
		return nil, time.Time{}, err
	}
	lm, err := o.table.LastModified()
	if err != nil {
		return nil, time.Time{}, err
	}
	return store.FilterOccurrences(entries, q), lm, nil
}
