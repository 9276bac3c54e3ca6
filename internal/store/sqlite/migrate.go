package sqlite

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/skullkeeper/internal/dbx"
	"github.com/dmitrijs2005/skullkeeper/internal/store/sqlite/migrations"
	"github.com/pressly/goose/v3"
)

// runMigrations brings the database at path to the latest schema. It is a
// variable so tests can simulate failures.
var runMigrations = func(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", dbx.SQLiteDSN(path, false))
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}
