// Package sqlite is the relational store backend. Each user owns one SQLite
// database file, <dir>/<user>.db, holding the skulls, quicks and occurrences
// tables plus a last_modified table that triggers keep current.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/dbx"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"golang.org/x/sync/errgroup"
)

const fileExt = ".db"

// Store serves users from per-user database files below dir.
type Store struct {
	mu    sync.Mutex
	users map[string]*dbx.Pools
	names []string
}

// Open opens (creating and migrating when needed) one database per user.
// Users are the configured names plus every *.db file already in dir.
func Open(ctx context.Context, dir string, users []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	found, err := discover(dir)
	if err != nil {
		return nil, err
	}
	names, err := store.MergeUsers(users, found)
	if err != nil {
		return nil, err
	}

	s := &Store{users: make(map[string]*dbx.Pools, len(names)), names: names}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range names {
		g.Go(func() error {
			pools, err := openDatabase(gctx, filepath.Join(dir, name+fileExt))
			if err != nil {
				return fmt.Errorf("open user %s: %w", name, err)
			}
			s.mu.Lock()
			s.users[name] = pools
			s.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileExt)
		if !ok || e.IsDir() || store.ValidateUser(name) != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func openDatabase(ctx context.Context, path string) (*dbx.Pools, error) {
	if err := runMigrations(ctx, path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return dbx.OpenSQLite(path, runtime.GOMAXPROCS(0))
}

func (s *Store) pools(user string) (*dbx.Pools, error) {
	p, ok := s.users[user]
	if !ok {
		return nil, &common.NoSuchUserError{User: user}
	}
	return p, nil
}

func (s *Store) Skulls(user string) (store.Crud[models.Skull], error) {
	p, err := s.pools(user)
	if err != nil {
		return nil, err
	}
	return &crud[models.Skull]{pools: p, m: skullMapper}, nil
}

func (s *Store) Quicks(user string) (store.Crud[models.Quick], error) {
	p, err := s.pools(user)
	if err != nil {
		return nil, err
	}
	return &crud[models.Quick]{pools: p, m: quickMapper}, nil
}

func (s *Store) Occurrences(user string) (store.OccurrenceCrud, error) {
	p, err := s.pools(user)
	if err != nil {
		return nil, err
	}
	return &occurrences{crud[models.Occurrence]{pools: p, m: occurrenceMapper}}, nil
}

func (s *Store) Users() []string {
	return slices.Clone(s.names)
}

// Close closes every user's pools.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, p := range s.users {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
