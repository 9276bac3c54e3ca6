// Package db opens the store backend selected by the server configuration.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skullkeeper/internal/logging"
	"github.com/dmitrijs2005/skullkeeper/internal/server/config"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// opener builds one backend from the configuration.
type opener func(ctx context.Context, cfg *config.Config) (store.Store, error)

var openers = map[string]opener{
	config.BackendMemory: openMemory,
	config.BackendFile:   openFile,
	config.BackendSQLite: openSQLite,
}

// Open builds the configured store and logs every user it serves.
func Open(ctx context.Context, cfg *config.Config, l logging.Logger) (store.Store, error) {
	open, ok := openers[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	s, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	logger := l.With("module", "store", "backend", cfg.Backend)
	for _, user := range s.Users() {
		logger.Info(ctx, "serving user", "user", user)
	}
	if len(s.Users()) == 0 {
		logger.Warn(ctx, "store has no users")
	}

	return s, nil
}

func requirePath(cfg *config.Config) error {
	if cfg.StorePath == "" {
		return fmt.Errorf("%s backend requires a store path", cfg.Backend)
	}
	return nil
}
