package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/logging"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/dmitrijs2005/skullkeeper/internal/store/memory"
	"github.com/dmitrijs2005/skullkeeper/internal/store/storetest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*Services, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logging.New(&buf, "debug")
	require.NoError(t, err)

	s := memory.New([]string{"alice"})
	t.Cleanup(func() { _ = s.Close() })
	return New(s, l), &buf
}

func u64(v uint64) *uint64 { return &v }

func TestCrudService_RoundTrip(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	id, lm, err := svc.Skulls.Create(ctx, "alice", storetest.Skull(1))
	require.NoError(t, err)
	assert.Equal(t, models.ID(1), id)

	got, _, err := svc.Skulls.Read(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, storetest.Skull(1), got.Data)

	updated := storetest.Skull(2)
	e, lm2, err := svc.Skulls.Update(ctx, "alice", id, updated, u64(store.Millis(lm)))
	require.NoError(t, err)
	assert.Equal(t, updated, e.Data)
	assert.True(t, lm2.After(lm))

	list, _, err := svc.Skulls.List(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, _, err = svc.Skulls.Delete(ctx, "alice", id, u64(store.Millis(lm2)))
	require.NoError(t, err)

	_, _, err = svc.Skulls.Read(ctx, "alice", id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCrudService_MissingTokenIsOutOfSync(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	id, _, err := svc.Skulls.Create(ctx, "alice", storetest.Skull(1))
	require.NoError(t, err)

	_, _, err = svc.Skulls.Update(ctx, "alice", id, storetest.Skull(2), nil)
	assert.ErrorIs(t, err, common.ErrOutOfSync)

	_, _, err = svc.Skulls.Delete(ctx, "alice", id, u64(0))
	assert.ErrorIs(t, err, common.ErrOutOfSync)
}

func TestCrudService_UnknownUser(t *testing.T) {
	svc, buf := newServices(t)

	_, err := svc.Quicks.LastModified(context.Background(), "mallory")
	assert.ErrorIs(t, err, common.ErrNoSuchUser)
	assert.Contains(t, buf.String(), `"result":"no_such_user"`)
}

func TestOccurrenceService_Search(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	a, _, err := svc.Skulls.Create(ctx, "alice", storetest.Skull(1))
	require.NoError(t, err)
	b, _, err := svc.Skulls.Create(ctx, "alice", storetest.Skull(2))
	require.NoError(t, err)

	for i, ref := range []models.ID{a, b, a} {
		_, _, err := svc.Occurrences.Create(ctx, "alice", models.Occurrence{Skull: ref, Amount: 1, Millis: int64(100 * (i + 1))})
		require.NoError(t, err)
	}

	got, _, err := svc.Occurrences.Search(ctx, "alice", store.Search{Skulls: []models.ID{a}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(300), got[0].Data.Millis)
	assert.Equal(t, int64(100), got[1].Data.Millis)
}

func TestCrudService_RecordsMetrics(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	ok := storeOperationsTotal.WithLabelValues("skull", "create", "ok")
	conflict := storeOperationsTotal.WithLabelValues("skull", "create", "conflict")
	okBefore, conflictBefore := testutil.ToFloat64(ok), testutil.ToFloat64(conflict)

	_, _, err := svc.Skulls.Create(ctx, "alice", storetest.Skull(1))
	require.NoError(t, err)
	_, _, err = svc.Skulls.Create(ctx, "alice", storetest.Skull(1))
	require.ErrorIs(t, err, common.ErrConflict)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, conflictBefore+1, testutil.ToFloat64(conflict))
}

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&common.NoSuchUserError{User: "x"}, "no_such_user"},
		{&common.NotFoundError{ID: 3}, "not_found"},
		{&common.InvalidFieldError{Field: "name", Reason: "blank"}, "constraint"},
		{common.ErrConflict, "conflict"},
		{common.ErrOutOfSync, "out_of_sync"},
		{common.ErrStoreFull, "store_full"},
		{context.Canceled, "canceled"},
		{common.Internal("load", assert.AnError), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result(tt.err))
	}
}
