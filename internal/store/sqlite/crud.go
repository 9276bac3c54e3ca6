package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/dbx"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
)

type crud[D models.Entity[D]] struct {
	pools *dbx.Pools
	m     mapper[D]
}

func (c *crud[D]) read(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return classify(c.m.table, dbx.WithTx(ctx, c.pools.Reader, nil, fn))
}

func (c *crud[D]) write(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return classify(c.m.table, dbx.WithTx(ctx, c.pools.Writer, nil, fn))
}

// classify wraps transaction failures that carry no store error kind.
func classify(table string, err error) error {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrConstraint),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrStoreFull),
		errors.Is(err, common.ErrOutOfSync),
		errors.Is(err, common.ErrInternal):
		return err
	}
	return common.Internal("transaction on "+table, err)
}

func lastModified(ctx context.Context, tx dbx.DBTX, k models.Kind) (time.Time, error) {
	var millis int64
	err := tx.QueryRowContext(ctx, `SELECT millis FROM last_modified WHERE "table" = ?`, int(k)).Scan(&millis)
	if err != nil {
		return time.Time{}, common.Internal("read last_modified", err)
	}
	return time.UnixMilli(millis), nil
}

func queryAll[D any](ctx context.Context, tx dbx.DBTX, m mapper[D], query string, args ...any) ([]models.WithID[D], error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.Internal("query "+m.table, err)
	}
	defer rows.Close()

	var out []models.WithID[D]
	for rows.Next() {
		e, err := m.scan(rows)
		if err != nil {
			return nil, common.Internal("scan "+m.table, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("iterate "+m.table, err)
	}
	return out, nil
}

func (c *crud[D]) find(ctx context.Context, tx dbx.DBTX, id models.ID) (models.WithID[D], error) {
	e, err := c.m.scan(tx.QueryRowContext(ctx, c.m.selectAll()+" WHERE id = ?", int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return e, &common.NotFoundError{ID: uint32(id)}
	}
	if err != nil {
		return e, common.Internal("read "+c.m.table, err)
	}
	return e, nil
}

func (c *crud[D]) checkSkullRef(ctx context.Context, tx dbx.DBTX, data D) error {
	ref, ok := data.SkullRef()
	if !ok {
		return nil
	}
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM skulls WHERE id = ?)`, int64(ref)).Scan(&exists); err != nil {
		return common.Internal("check skull", err)
	}
	if !exists {
		return common.ErrConstraint
	}
	return nil
}

func (c *crud[D]) checkConflict(ctx context.Context, tx dbx.DBTX, self models.ID, data D) error {
	if c.m.conflict == "" {
		return nil
	}
	query := c.m.selectAll() + " WHERE (" + c.m.conflict + ") AND id <> ?"
	candidates, err := queryAll(ctx, tx, c.m, query, append(c.m.conflictArgs(data), int64(self))...)
	if err != nil {
		return err
	}
	for _, e := range candidates {
		if e.Data.ConflictsWith(data) {
			return common.ErrConflict
		}
	}
	return nil
}

func (c *crud[D]) List(ctx context.Context, limit *uint32) ([]models.WithID[D], time.Time, error) {
	var (
		out []models.WithID[D]
		lm  time.Time
	)
	err := c.read(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if lm, err = lastModified(ctx, tx, c.m.kind); err != nil {
			return err
		}
		if limit == nil {
			out, err = queryAll(ctx, tx, c.m, c.m.list(false))
		} else {
			out, err = queryAll(ctx, tx, c.m, c.m.list(true), int64(*limit))
		}
		return err
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return out, lm, nil
}

func (c *crud[D]) Create(ctx context.Context, data D) (models.ID, time.Time, error) {
	if err := data.Validate(); err != nil {
		return 0, time.Time{}, err
	}
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}

	var (
		id models.ID
		lm time.Time
	)
	err := c.write(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := c.checkSkullRef(ctx, tx, data); err != nil {
			return err
		}
		if err := c.checkConflict(ctx, tx, 0, data); err != nil {
			return err
		}

		var seq int64
		err := tx.QueryRowContext(ctx, `SELECT seq FROM sqlite_sequence WHERE name = ?`, c.m.table).Scan(&seq)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return common.Internal("read sequence", err)
		}
		if seq >= math.MaxUint32 {
			return common.ErrStoreFull
		}

		res, err := tx.ExecContext(ctx, c.m.insert(), c.m.values(data)...)
		if err != nil {
			return common.Internal("insert "+c.m.table, err)
		}
		last, err := res.LastInsertId()
		if err != nil {
			return common.Internal("insert "+c.m.table, err)
		}
		id = models.ID(last)

		lm, err = lastModified(ctx, tx, c.m.kind)
		return err
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	return id, lm, nil
}

func (c *crud[D]) Read(ctx context.Context, id models.ID) (models.WithID[D], time.Time, error) {
	var (
		e  models.WithID[D]
		lm time.Time
	)
	err := c.read(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if lm, err = lastModified(ctx, tx, c.m.kind); err != nil {
			return err
		}
		e, err = c.find(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.WithID[D]{}, time.Time{}, err
	}
	return e, lm, nil
}

func (c *crud[D]) Update(ctx context.Context, id models.ID, data D, pre store.Precondition) (models.WithID[D], time.Time, error) {
	if err := data.Validate(); err != nil {
		return models.WithID[D]{}, time.Time{}, err
	}

	var (
		e  models.WithID[D]
		lm time.Time
	)
	err := c.write(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if lm, err = lastModified(ctx, tx, c.m.kind); err != nil {
			return err
		}
		if err := pre.Check(lm); err != nil {
			return err
		}
		if e, err = c.find(ctx, tx, id); err != nil {
			return err
		}
		if err := c.checkSkullRef(ctx, tx, data); err != nil {
			return err
		}
		if err := c.checkConflict(ctx, tx, id, data); err != nil {
			return err
		}
		if e.Data.Equal(data) {
			return nil
		}

		args := append(c.m.values(data), int64(id))
		if _, err := tx.ExecContext(ctx, c.m.update(), args...); err != nil {
			return common.Internal("update "+c.m.table, err)
		}
		e.Data = data
		lm, err = lastModified(ctx, tx, c.m.kind)
		return err
	})
	if err != nil {
		return models.WithID[D]{}, time.Time{}, err
	}
	return e, lm, nil
}

func (c *crud[D]) Delete(ctx context.Context, id models.ID, pre store.Precondition) (models.WithID[D], time.Time, error) {
	var (
		e  models.WithID[D]
		lm time.Time
	)
	err := c.write(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if lm, err = lastModified(ctx, tx, c.m.kind); err != nil {
			return err
		}
		if err := pre.Check(lm); err != nil {
			return err
		}
		if e, err = c.find(ctx, tx, id); err != nil {
			return err
		}

		if c.m.kind == models.KindSkull {
			if err := cascadeSkull(ctx, tx, id); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM "+c.m.table+" WHERE id = ?", int64(id)); err != nil {
			return common.Internal("delete "+c.m.table, err)
		}
		lm, err = lastModified(ctx, tx, c.m.kind)
		return err
	})
	if err != nil {
		return models.WithID[D]{}, time.Time{}, err
	}
	return e, lm, nil
}

func (c *crud[D]) LastModified(ctx context.Context) (time.Time, error) {
	var lm time.Time
	err := c.read(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		lm, err = lastModified(ctx, tx, c.m.kind)
		return err
	})
	return lm, err
}

// cascadeSkull refuses skulls still referenced by occurrences and removes
// the quicks that reference it.
func cascadeSkull(ctx context.Context, tx dbx.DBTX, id models.ID) error {
	var referenced bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM occurrences WHERE skull = ?)`, int64(id)).Scan(&referenced)
	if err != nil {
		return common.Internal("check occurrences", err)
	}
	if referenced {
		return common.ErrConstraint
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quicks WHERE skull = ?`, int64(id)); err != nil {
		return common.Internal("delete quicks", err)
	}
	return nil
}

type occurrences struct {
	crud[models.Occurrence]
}

func (o *occurrences) Search(ctx context.Context, q store.Search) ([]models.WithID[models.Occurrence], time.Time, error) {
	var (
		where []string
		args  []any
	)
	if len(q.Skulls) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(q.Skulls)), ", ")
		where = append(where, "skull IN ("+marks+")")
		for _, s := range q.Skulls {
			args = append(args, int64(s))
		}
	}
	if q.Start != nil {
		where = append(where, "millis >= ?")
		args = append(args, *q.Start)
	}
	if q.End != nil {
		where = append(where, "millis <= ?")
		args = append(args, *q.End)
	}

	query := o.m.selectAll()
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY millis DESC, id DESC"
	if q.Limit != nil {
		query += " LIMIT ?"
		args = append(args, int64(*q.Limit))
	}

	var (
		out []models.WithID[models.Occurrence]
		lm  time.Time
	)
	err := o.read(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if lm, err = lastModified(ctx, tx, models.KindOccurrence); err != nil {
			return err
		}
		out, err = queryAll(ctx, tx, o.m, query, args...)
		return err
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return out, lm, nil
}
