package db

import (
	"context"

	"github.com/dmitrijs2005/skullkeeper/internal/server/config"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/dmitrijs2005/skullkeeper/internal/store/sqlite"
)

func openSQLite(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if err := requirePath(cfg); err != nil {
		return nil, err
	}
	return sqlite.Open(ctx, cfg.StorePath, cfg.Users)
}
