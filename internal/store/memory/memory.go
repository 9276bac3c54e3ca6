// Package memory is the in-process store backend. Nothing is persisted;
// every collection is an ordered slice.
package memory

import (
	"math"
	"sort"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/dmitrijs2005/skullkeeper/internal/store/tabular"
)

// table keeps its own copies: entries never share memory with callers.
type table[D models.Entity[D]] struct {
	entries  []models.WithID[D]
	lastID   models.ID
	modified time.Time
}

func newTable[D models.Entity[D]]() *table[D] {
	return &table[D]{modified: store.Truncate(store.Now())}
}

func clone[D models.Entity[D]](entries []models.WithID[D]) []models.WithID[D] {
	out := make([]models.WithID[D], len(entries))
	for i, e := range entries {
		out[i] = models.WithID[D]{ID: e.ID, Data: e.Data.Clone()}
	}
	return out
}

func (t *table[D]) Load() ([]models.WithID[D], error) {
	return clone(t.entries), nil
}

func (t *table[D]) Append(e models.WithID[D], modified time.Time) error {
	t.entries = append(t.entries, models.WithID[D]{ID: e.ID, Data: e.Data.Clone()})
	t.modified = modified
	return nil
}

func (t *table[D]) Replace(entries []models.WithID[D], modified time.Time) error {
	t.entries = clone(entries)
	t.modified = modified
	return nil
}

func (t *table[D]) LastModified() (time.Time, error) {
	return t.modified, nil
}

func (t *table[D]) NextID() (models.ID, error) {
	if t.lastID == math.MaxUint32 {
		return 0, common.ErrStoreFull
	}
	t.lastID++
	return t.lastID, nil
}

// Store keeps every user's data in memory.
type Store struct {
	users map[string]*tabular.User
}

// New creates empty collections for each user.
func New(users []string) *Store {
	s := &Store{users: make(map[string]*tabular.User, len(users))}
	for _, name := range users {
		if _, ok := s.users[name]; ok {
			continue
		}
		s.users[name] = tabular.NewUser(tabular.Tables{
			Skulls:      newTable[models.Skull](),
			Quicks:      newTable[models.Quick](),
			Occurrences: newTable[models.Occurrence](),
		})
	}
	return s
}

func (s *Store) user(name string) (*tabular.User, error) {
	u, ok := s.users[name]
	if !ok {
		return nil, &common.NoSuchUserError{User: name}
	}
	return u, nil
}

func (s *Store) Skulls(user string) (store.Crud[models.Skull], error) {
	u, err := s.user(user)
	if err != nil {
		return nil, err
	}
	return u.Skulls(), nil
}

func (s *Store) Quicks(user string) (store.Crud[models.Quick], error) {
	u, err := s.user(user)
	if err != nil {
		return nil, err
	}
	return u.Quicks(), nil
}

func (s *Store) Occurrences(user string) (store.OccurrenceCrud, error) {
	u, err := s.user(user)
	if err != nil {
		return nil, err
	}
	return u.Occurrences(), nil
}

func (s *Store) Users() []string {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Close() error {
	return nil
}
