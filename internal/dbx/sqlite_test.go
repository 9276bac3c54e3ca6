package dbx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	w := SQLiteDSN("/tmp/a.db", false)
	r := SQLiteDSN("/tmp/a.db", true)

	assert.Contains(t, w, "file:/tmp/a.db?")
	assert.Contains(t, w, "_txlock=immediate")
	assert.NotContains(t, w, "query_only")
	assert.Contains(t, r, "_pragma=query_only(1)")
	assert.Contains(t, r, "_pragma=foreign_keys(1)")
}

func TestOpenSQLite_ReaderRejectsWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pools.db")

	pools, err := OpenSQLite(path, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pools.Close() })

	_, err = pools.Writer.ExecContext(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)

	err = WithTx(ctx, pools.Writer, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('w')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, pools.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 1, n)

	_, err = pools.Reader.ExecContext(ctx, `INSERT INTO t(v) VALUES ('r')`)
	assert.Error(t, err)

	var fk int
	require.NoError(t, pools.Writer.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}
