package tabular

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
)

type crud[D models.Entity[D]] struct {
	user  *User
	table Table[D]
}

func (c *crud[D]) kind() models.Kind {
	return models.KindOf[D]()
}

func (c *crud[D]) readPlan() plan {
	var p plan
	p[c.kind()] = shared
	return p
}

// writePlan covers create and update: the collection itself plus a shared
// skull lock for kinds that reference a skull.
func (c *crud[D]) writePlan() plan {
	var p plan
	if c.kind() != models.KindSkull {
		p[models.KindSkull] = shared
	}
	p[c.kind()] = exclusive
	return p
}

// deletePlan adds the cascade targets for skulls.
func (c *crud[D]) deletePlan() plan {
	var p plan
	p[c.kind()] = exclusive
	if c.kind() == models.KindSkull {
		p[models.KindQuick] = exclusive
		p[models.KindOccurrence] = shared
	}
	return p
}

func (c *crud[D]) List(ctx context.Context, limit *uint32) ([]models.WithID[D], time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, err
	}
	defer c.user.acquire(c.readPlan())()

	entries, err := c.table.Load()
	if err != nil {
		return nil, time.Time{}, err
	}
	lm, err := c.table.LastModified()
	if err != nil {
		return nil, time.Time{}, err
	}

	if occ, ok := any(entries).([]models.WithID[models.Occurrence]); ok {
		store.SortOccurrences(occ)
		return store.Head(entries, limit), lm, nil
	}
	return store.Tail(entries, limit), lm, nil
}

func (c *crud[D]) Create(ctx context.Context, data D) (models.ID, time.Time, error) {
	if err := data.Validate(); err != nil {
		return 0, time.Time{}, err
	}
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}
	defer c.user.acquire(c.writePlan())()

	if err := c.checkSkullRef(data); err != nil {
		return 0, time.Time{}, err
	}

	entries, err := c.table.Load()
	if err != nil {
		return 0, time.Time{}, err
	}
	if conflicts(entries, 0, data) {
		return 0, time.Time{}, common.ErrConflict
	}

	lm, err := c.table.LastModified()
	if err != nil {
		return 0, time.Time{}, err
	}
	id, err := c.table.NextID()
	if err != nil {
		return 0, time.Time{}, err
	}

	next := store.Advance(lm)
	if err := c.table.Append(models.WithID[D]{ID: id, Data: data}, next); err != nil {
		return 0, time.Time{}, err
	}
	return id, next, nil
}

func (c *crud[D]) Read(ctx context.Context, id models.ID) (models.WithID[D], time.Time, error) {
	var zero models.WithID[D]
	if err := ctx.Err(); err != nil {
		return zero, time.Time{}, err
	}
	defer c.user.acquire(c.readPlan())()

	entries, err := c.table.Load()
	if err != nil {
		return zero, time.Time{}, err
	}
	lm, err := c.table.LastModified()
	if err != nil {
		return zero, time.Time{}, err
	}

	i := indexOf(entries, id)
	if i < 0 {
		return zero, time.Time{}, &common.NotFoundError{ID: uint32(id)}
	}
	return entries[i], lm, nil
}

func (c *crud[D]) Update(ctx context.Context, id models.ID, data D, pre store.Precondition) (models.WithID[D], time.Time, error) {
	var zero models.WithID[D]
	if err := data.Validate(); err != nil {
		return zero, time.Time{}, err
	}
	if err := ctx.Err(); err != nil {
		return zero, time.Time{}, err
	}
	defer c.user.acquire(c.writePlan())()

	lm, err := c.table.LastModified()
	if err != nil {
		return zero, time.Time{}, err
	}
	if err := pre.Check(lm); err != nil {
		return zero, time.Time{}, err
	}

	entries, err := c.table.Load()
	if err != nil {
		return zero, time.Time{}, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return zero, time.Time{}, &common.NotFoundError{ID: uint32(id)}
	}

	if err := c.checkSkullRef(data); err != nil {
		return zero, time.Time{}, err
	}
	if conflicts(entries, id, data) {
		return zero, time.Time{}, common.ErrConflict
	}
	if entries[i].Data.Equal(data) {
		return entries[i], lm, nil
	}

	entries[i].Data = data
	next := store.Advance(lm)
	if err := c.table.Replace(entries, next); err != nil {
		return zero, time.Time{}, err
	}
	return entries[i], next, nil
}

func (c *crud[D]) Delete(ctx context.Context, id models.ID, pre store.Precondition) (models.WithID[D], time.Time, error) {
	var zero models.WithID[D]
	if err := ctx.Err(); err != nil {
		return zero, time.Time{}, err
	}
	defer c.user.acquire(c.deletePlan())()

	lm, err := c.table.LastModified()
	if err != nil {
		return zero, time.Time{}, err
	}
	if err := pre.Check(lm); err != nil {
		return zero, time.Time{}, err
	}

	entries, err := c.table.Load()
	if err != nil {
		return zero, time.Time{}, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return zero, time.Time{}, &common.NotFoundError{ID: uint32(id)}
	}
	removed := entries[i]

	undo := func() error { return nil }
	if c.kind() == models.KindSkull {
		if undo, err = c.user.cascadeSkull(id); err != nil {
			return zero, time.Time{}, err
		}
	}

	next := store.Advance(lm)
	if err := c.table.Replace(slices.Delete(entries, i, i+1), next); err != nil {
		return zero, time.Time{}, errors.Join(err, undo())
	}
	return removed, next, nil
}

func (c *crud[D]) LastModified(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	defer c.user.acquire(c.readPlan())()

	return c.table.LastModified()
}

// checkSkullRef requires the referenced skull to be live. The caller holds
// at least a shared skull lock.
func (c *crud[D]) checkSkullRef(data D) error {
	ref, ok := data.SkullRef()
	if !ok {
		return nil
	}
	skulls, err := c.user.tables.Skulls.Load()
	if err != nil {
		return err
	}
	if indexOf(skulls, ref) < 0 {
		return common.ErrConstraint
	}
	return nil
}

// cascadeSkull refuses to drop a skull that occurrences still reference and
// otherwise removes the quicks pointing at it. The returned undo restores
// the quicks and their token if the skull itself cannot be removed. The
// caller holds the quick lock exclusively and the occurrence lock shared.
func (u *User) cascadeSkull(id models.ID) (undo func() error, err error) {
	undo = func() error { return nil }

	occs, err := u.tables.Occurrences.Load()
	if err != nil {
		return undo, err
	}
	if slices.ContainsFunc(occs, func(o models.WithID[models.Occurrence]) bool { return o.Data.Skull == id }) {
		return undo, common.ErrConstraint
	}

	quicks, err := u.tables.Quicks.Load()
	if err != nil {
		return undo, err
	}
	kept := slices.DeleteFunc(slices.Clone(quicks), func(q models.WithID[models.Quick]) bool { return q.Data.Skull == id })
	if len(kept) == len(quicks) {
		return undo, nil
	}

	lm, err := u.tables.Quicks.LastModified()
	if err != nil {
		return undo, err
	}
	if err := u.tables.Quicks.Replace(kept, store.Advance(lm)); err != nil {
		return undo, err
	}
	return func() error { return u.tables.Quicks.Replace(quicks, lm) }, nil
}

func indexOf[D any](entries []models.WithID[D], id models.ID) int {
	return slices.IndexFunc(entries, func(e models.WithID[D]) bool { return e.ID == id })
}

// conflicts checks data against every entry other than self.
func conflicts[D models.Entity[D]](entries []models.WithID[D], self models.ID, data D) bool {
	return slices.ContainsFunc(entries, func(e models.WithID[D]) bool {
		return e.ID != self && e.Data.ConflictsWith(data)
	})
}
