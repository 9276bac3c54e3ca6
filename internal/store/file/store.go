package file

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/filex"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/dmitrijs2005/skullkeeper/internal/store/tabular"
	"github.com/spf13/afero"
)

// Store serves users from per-user directories below dir.
type Store struct {
	users map[string]*tabular.User
	names []string
}

// New opens dir on fsys, creating it when missing. Users are the configured
// names plus every subdirectory already present.
func New(fsys afero.Fs, dir string, users []string) (*Store, error) {
	if err := filex.EnsureDir(fsys, dir); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var found []string
	for _, fi := range infos {
		if fi.IsDir() && store.ValidateUser(fi.Name()) == nil {
			found = append(found, fi.Name())
		}
	}

	names, err := store.MergeUsers(users, found)
	if err != nil {
		return nil, err
	}

	s := &Store{users: make(map[string]*tabular.User, len(names)), names: names}
	for _, name := range names {
		u, err := openUser(fsys, dir, name)
		if err != nil {
			return nil, fmt.Errorf("open user %s: %w", name, err)
		}
		s.users[name] = u
	}
	return s, nil
}

func openUser(fsys afero.Fs, dir, name string) (*tabular.User, error) {
	if err := filex.EnsureDir(fsys, tablePath(dir, name, "")); err != nil {
		return nil, err
	}
	skulls, err := openTable(fsys, tablePath(dir, name, models.KindSkull.String()), skullCodec)
	if err != nil {
		return nil, err
	}
	quicks, err := openTable(fsys, tablePath(dir, name, models.KindQuick.String()), quickCodec)
	if err != nil {
		return nil, err
	}
	occurrences, err := openTable(fsys, tablePath(dir, name, models.KindOccurrence.String()), occurrenceCodec)
	if err != nil {
		return nil, err
	}
	return tabular.NewUser(tabular.Tables{Skulls: skulls, Quicks: quicks, Occurrences: occurrences}), nil
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
	return slices.Clone(s.names)
}

func (s *Store) Close() error {
	return nil
}
