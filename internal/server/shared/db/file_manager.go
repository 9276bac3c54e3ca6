package db

import (
	"context"

	"github.com/dmitrijs2005/skullkeeper/internal/server/config"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/dmitrijs2005/skullkeeper/internal/store/file"
	"github.com/spf13/afero"
)

// fileFs is the filesystem the file backend runs on.
var fileFs = afero.NewOsFs

func openFile(_ context.Context, cfg *config.Config) (store.Store, error) {
	if err := requirePath(cfg); err != nil {
		return nil, err
	}
	return file.New(fileFs(), cfg.StorePath, cfg.Users)
}
