package db

import (
	"context"

	"github.com/dmitrijs2005/skullkeeper/internal/server/config"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/dmitrijs2005/skullkeeper/internal/store/memory"
)

// openMemory serves only the configured users; nothing is persisted.
func openMemory(_ context.Context, cfg *config.Config) (store.Store, error) {
	users, err := store.MergeUsers(cfg.Users, nil)
	if err != nil {
		return nil, err
	}
	return memory.New(users), nil
}
