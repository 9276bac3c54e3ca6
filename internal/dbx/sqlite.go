package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Pools pairs a single-connection writer with a read-only reader pool over
// the same SQLite file. All writes go through Writer, so they are serialized
// without relying on SQLite's busy handling.
type Pools struct {
	Writer *sql.DB
	Reader *sql.DB
}

// SQLiteDSN builds a modernc.org/sqlite DSN for path. Writer connections
// start transactions with BEGIN IMMEDIATE; reader connections refuse writes.
func SQLiteDSN(path string, readOnly bool) string {
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
	if readOnly {
		return dsn + "&_pragma=query_only(1)"
	}
	return dsn + "&_txlock=immediate"
}

// OpenSQLite opens the writer and reader pools for path. Connections are
// established lazily on first use.
func OpenSQLite(path string, readers int) (*Pools, error) {
	writer, err := sql.Open("sqlite", SQLiteDSN(path, false))
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", SQLiteDSN(path, true))
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(readers)
	reader.SetMaxIdleConns(readers)

	return &Pools{Writer: writer, Reader: reader}, nil
}

// Close closes both pools.
func (p *Pools) Close() error {
	return errors.Join(p.Reader.Close(), p.Writer.Close())
}
