// Package storetest holds the behavioral test-suite every store backend must
// pass, plus a scripted workload for comparing backends with each other.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	Alice = "alice"
	Bob   = "bob"
)

// Factory opens a fresh, empty store serving users.
type Factory func(t *testing.T, users []string) store.Store

// Run executes every contract test against stores built by open.
func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"unknown user", testUnknownUser},
		{"ids start at one", testIDsStartAtOne},
		{"list limited", testListLimited},
		{"occurrence order", testOccurrenceOrder},
		{"create conflict", testCreateConflict},
		{"create constraint", testCreateConstraint},
		{"create invalid", testCreateInvalid},
		{"quick uniqueness", testQuickUniqueness},
		{"create monotonic", testCreateMonotonic},
		{"last modified strictly increases", testLastModifiedIncreases},
		{"read sparse", testReadSparse},
		{"update", testUpdate},
		{"update no changes", testUpdateNoChanges},
		{"update conflict", testUpdateConflict},
		{"update constraint", testUpdateConstraint},
		{"update not found", testUpdateNotFound},
		{"precondition", testPrecondition},
		{"delete", testDelete},
		{"delete cascade", testDeleteCascade},
		{"delete reject", testDeleteReject},
		{"last modified does not leak", testNoLeak},
		{"multiple handles", testMultipleHandles},
		{"search", testSearch},
		{"concurrent creates", testConcurrentCreates},
		{"canceled context", testCanceledContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t, []string{Alice, Bob})
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

// Skull returns a skull whose name, color and icon are unique per i.
func Skull(i int) models.Skull {
	return models.Skull{
		Name:      fmt.Sprintf("skull-%d", i),
		Color:     uint32(0x100000 + i),
		Icon:      fmt.Sprintf("icon-%d", i),
		UnitPrice: float64(i) / 2,
	}
}

func skulls(t *testing.T, s store.Store, user string) store.Crud[models.Skull] {
	t.Helper()
	c, err := s.Skulls(user)
	require.NoError(t, err)
	return c
}

func quicks(t *testing.T, s store.Store, user string) store.Crud[models.Quick] {
	t.Helper()
	c, err := s.Quicks(user)
	require.NoError(t, err)
	return c
}

func occurrences(t *testing.T, s store.Store, user string) store.OccurrenceCrud {
	t.Helper()
	c, err := s.Occurrences(user)
	require.NoError(t, err)
	return c
}

func create[D any](t *testing.T, c store.Crud[D], data D) models.ID {
	t.Helper()
	id, _, err := c.Create(context.Background(), data)
	require.NoError(t, err)
	return id
}

func lastModified[D any](t *testing.T, c store.Crud[D]) time.Time {
	t.Helper()
	lm, err := c.LastModified(context.Background())
	require.NoError(t, err)
	return lm
}

func ids[D any](entries []models.WithID[D]) []models.ID {
	out := make([]models.ID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func token(lm time.Time) *uint64 {
	v := store.Millis(lm)
	return &v
}

func u32(v uint32) *uint32 { return &v }
func i64(v int64) *int64    { return &v }

func testUnknownUser(t *testing.T, s store.Store) {
	_, err := s.Skulls("mallory")
	assert.ErrorIs(t, err, common.ErrNoSuchUser)
	_, err = s.Quicks("mallory")
	assert.ErrorIs(t, err, common.ErrNoSuchUser)
	_, err = s.Occurrences("mallory")
	assert.ErrorIs(t, err, common.ErrNoSuchUser)

	_, err = store.Select[models.Quick](s, "mallory")
	assert.ErrorIs(t, err, common.ErrNoSuchUser)

	assert.Subset(t, s.Users(), []string{Alice, Bob})
}

func testIDsStartAtOne(t *testing.T, s store.Store) {
	sk := skulls(t, s, Alice)
	assert.Equal(t, models.ID(1), create(t, sk, Skull(1)))
	assert.Equal(t, models.ID(2), create(t, sk, Skull(2)))

	assert.Equal(t, models.ID(1), create(t, quicks(t, s, Alice), models.Quick{Skull: 1, Amount: 1}))
	assert.Equal(t, models.ID(1), create[models.Occurrence](t, occurrences(t, s, Alice), models.Occurrence{Skull: 2, Amount: 1, Millis: 5}))

	// ids are per user
	assert.Equal(t, models.ID(1), create(t, skulls(t, s, Bob), Skull(1)))
}

func testListLimited(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	for i := 1; i <= 3; i++ {
		create(t, sk, Skull(i))
	}
	lm := lastModified(t, sk)

	tests := []struct {
		limit *uint32
		want  []models.ID
	}{
		{nil, []models.ID{1, 2, 3}},
		{u32(0), []models.ID{}},
		{u32(1), []models.ID{3}},
		{u32(2), []models.ID{2, 3}},
		{u32(4), []models.ID{1, 2, 3}},
	}
	for _, tt := range tests {
		got, gotLM, err := sk.List(ctx, tt.limit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ids(got))
		assert.Equal(t, store.Millis(lm), store.Millis(gotLM))
	}

	got, _, err := sk.List(ctx, nil)
	require.NoError(t, err)
	if diff := cmp.Diff(Skull(2), got[1].Data); diff != "" {
		t.Fatalf("stored skull mismatch (-want +got):\n%s", diff)
	}
}

func testOccurrenceOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	create(t, skulls(t, s, Alice), Skull(1))
	oc := occurrences(t, s, Alice)
	for _, ms := range []int64{100, 300, 200, 300} {
		create[models.Occurrence](t, oc, models.Occurrence{Skull: 1, Amount: 1, Millis: ms})
	}

	got, _, err := oc.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{4, 2, 3, 1}, ids(got))

	got, _, err = oc.List(ctx, u32(2))
	require.NoError(t, err)
	assert.Equal(t, []models.ID{4, 2}, ids(got))

	got, _, err = oc.List(ctx, u32(0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testCreateConflict(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	create(t, sk, Skull(1))
	before := lastModified(t, sk)

	clashes := []models.Skull{
		{Name: Skull(1).Name, Color: 7, Icon: "x"},
		{Name: "other", Color: Skull(1).Color, Icon: "x"},
		{Name: "other", Color: 7, Icon: Skull(1).Icon},
	}
	for _, c := range clashes {
		_, _, err := sk.Create(ctx, c)
		assert.ErrorIs(t, err, common.ErrConflict)
	}
	assert.Equal(t, store.Millis(before), store.Millis(lastModified(t, sk)))

	// Another user may reuse the same values.
	create(t, skulls(t, s, Bob), Skull(1))

	list, _, err := sk.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testCreateConstraint(t *testing.T, s store.Store) {
	ctx := context.Background()
	qc := quicks(t, s, Alice)
	oc := occurrences(t, s, Alice)

	_, _, err := qc.Create(ctx, models.Quick{Skull: 1, Amount: 1})
	assert.ErrorIs(t, err, common.ErrConstraint)
	_, _, err = oc.Create(ctx, models.Occurrence{Skull: 1, Amount: 1, Millis: 1})
	assert.ErrorIs(t, err, common.ErrConstraint)

	// A skull owned by another user does not count.
	create(t, skulls(t, s, Bob), Skull(1))
	_, _, err = qc.Create(ctx, models.Quick{Skull: 1, Amount: 1})
	assert.ErrorIs(t, err, common.ErrConstraint)

	create(t, skulls(t, s, Alice), Skull(1))
	create(t, qc, models.Quick{Skull: 1, Amount: 1})
}

func testCreateInvalid(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)

	bad := Skull(1)
	bad.Name = " "
	_, _, err := sk.Create(ctx, bad)
	assert.ErrorIs(t, err, common.ErrConstraint)

	bad = Skull(1)
	bad.UnitPrice = -1
	_, _, err = sk.Create(ctx, bad)
	assert.ErrorIs(t, err, common.ErrConstraint)

	list, _, err := sk.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testQuickUniqueness(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	create(t, sk, Skull(1))
	create(t, sk, Skull(2))
	qc := quicks(t, s, Alice)

	create(t, qc, models.Quick{Skull: 1, Amount: 1})
	_, _, err := qc.Create(ctx, models.Quick{Skull: 1, Amount: 1 + 1e-9})
	assert.ErrorIs(t, err, common.ErrConflict)

	create(t, qc, models.Quick{Skull: 2, Amount: 1})
	second := create(t, qc, models.Quick{Skull: 1, Amount: 2})

	_, _, err = qc.Update(ctx, second, models.Quick{Skull: 1, Amount: 1}, nil)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func testCreateMonotonic(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	for i := 1; i <= 20; i++ {
		create(t, sk, Skull(i))
	}
	for _, id := range []models.ID{20, 5, 19} {
		_, _, err := sk.Delete(ctx, id, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, models.ID(21), create(t, sk, Skull(20)))
}

func testLastModifiedIncreases(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)

	prev := store.Millis(lastModified(t, sk))
	step := func(lm time.Time) {
		t.Helper()
		cur := store.Millis(lm)
		assert.Greater(t, cur, prev)
		assert.Equal(t, cur, store.Millis(lastModified(t, sk)))
		prev = cur
	}

	for i := 1; i <= 5; i++ {
		_, lm, err := sk.Create(ctx, Skull(i))
		require.NoError(t, err)
		step(lm)
	}
	for i := 1; i <= 5; i++ {
		changed := Skull(i)
		changed.UnitPrice += 10
		_, lm, err := sk.Update(ctx, models.ID(i), changed, nil)
		require.NoError(t, err)
		step(lm)
	}
	for i := 1; i <= 5; i++ {
		_, lm, err := sk.Delete(ctx, models.ID(i), nil)
		require.NoError(t, err)
		step(lm)
	}
}

func testReadSparse(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	for i := 1; i <= 3; i++ {
		create(t, sk, Skull(i))
	}
	_, _, err := sk.Delete(ctx, 2, nil)
	require.NoError(t, err)
	before := lastModified(t, sk)

	got, lm, err := sk.Read(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.WithID[models.Skull]{ID: 3, Data: Skull(3)}, got)
	assert.Equal(t, store.Millis(before), store.Millis(lm))

	_, _, err = sk.Read(ctx, 2)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, _, err = sk.Read(ctx, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.Equal(t, store.Millis(before), store.Millis(lastModified(t, sk)))
}

func testUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	id := create(t, sk, Skull(1))
	before := lastModified(t, sk)

	changed := Skull(1)
	changed.Name = "renamed"
	limit := 4.5
	changed.Limit = &limit

	got, lm, err := sk.Update(ctx, id, changed, store.UnmodifiedSince(token(before)))
	require.NoError(t, err)
	assert.Equal(t, models.WithID[models.Skull]{ID: id, Data: changed}, got)
	assert.Greater(t, store.Millis(lm), store.Millis(before))

	read, _, err := sk.Read(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(changed, read.Data); diff != "" {
		t.Fatalf("read after update (-want +got):\n%s", diff)
	}
}

func testUpdateNoChanges(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	id := create(t, sk, Skull(1))
	before := lastModified(t, sk)

	got, lm, err := sk.Update(ctx, id, Skull(1), store.UnmodifiedSince(token(before)))
	require.NoError(t, err)
	assert.Equal(t, models.WithID[models.Skull]{ID: id, Data: Skull(1)}, got)
	assert.Equal(t, store.Millis(before), store.Millis(lm))
	assert.Equal(t, store.Millis(before), store.Millis(lastModified(t, sk)))
}

func testUpdateConflict(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	create(t, sk, Skull(1))
	second := create(t, sk, Skull(2))

	clash := Skull(2)
	clash.Icon = Skull(1).Icon
	_, _, err := sk.Update(ctx, second, clash, nil)
	assert.ErrorIs(t, err, common.ErrConflict)

	// Keeping its own name, color and icon is not a conflict.
	own := Skull(2)
	own.UnitPrice = 99
	_, _, err = sk.Update(ctx, second, own, nil)
	assert.NoError(t, err)
}

func testUpdateConstraint(t *testing.T, s store.Store) {
	ctx := context.Background()
	create(t, skulls(t, s, Alice), Skull(1))
	qc := quicks(t, s, Alice)
	id := create(t, qc, models.Quick{Skull: 1, Amount: 1})

	_, _, err := qc.Update(ctx, id, models.Quick{Skull: 9, Amount: 1}, nil)
	assert.ErrorIs(t, err, common.ErrConstraint)

	bad := Skull(1)
	bad.Icon = ""
	_, _, err = skulls(t, s, Alice).Update(ctx, 1, bad, nil)
	assert.ErrorIs(t, err, common.ErrConstraint)
}

func testUpdateNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	create(t, sk, Skull(1))

	_, _, err := sk.Update(ctx, 42, Skull(2), nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, _, err = sk.Delete(ctx, 42, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// A stale client learns about staleness before anything else.
	_, _, err = sk.Update(ctx, 42, Skull(2), store.UnmodifiedSince(nil))
	assert.ErrorIs(t, err, common.ErrOutOfSync)
}

func testPrecondition(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	id := create(t, sk, Skull(1))
	seen := lastModified(t, sk)

	create(t, sk, Skull(2))
	current := lastModified(t, sk)

	changed := Skull(1)
	changed.UnitPrice = 100

	_, _, err := sk.Update(ctx, id, changed, store.UnmodifiedSince(token(seen)))
	assert.ErrorIs(t, err, common.ErrOutOfSync)
	_, _, err = sk.Update(ctx, id, changed, store.UnmodifiedSince(nil))
	assert.ErrorIs(t, err, common.ErrOutOfSync)
	_, _, err = sk.Delete(ctx, id, store.UnmodifiedSince(token(seen)))
	assert.ErrorIs(t, err, common.ErrOutOfSync)

	assert.Equal(t, store.Millis(current), store.Millis(lastModified(t, sk)))
	read, _, err := sk.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Skull(1), read.Data)

	_, lm, err := sk.Update(ctx, id, changed, store.UnmodifiedSince(token(current)))
	require.NoError(t, err)
	_, _, err = sk.Delete(ctx, id, store.UnmodifiedSince(token(lm)))
	require.NoError(t, err)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	create(t, sk, Skull(1))
	oc := occurrences(t, s, Alice)
	id := create[models.Occurrence](t, oc, models.Occurrence{Skull: 1, Amount: 2, Millis: 10})
	before := lastModified[models.Occurrence](t, oc)

	got, lm, err := oc.Delete(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, models.WithID[models.Occurrence]{ID: id, Data: models.Occurrence{Skull: 1, Amount: 2, Millis: 10}}, got)
	assert.Greater(t, store.Millis(lm), store.Millis(before))

	_, _, err = oc.Read(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, _, err = oc.Delete(ctx, id, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func testDeleteCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	qc := quicks(t, s, Alice)
	for i := 1; i <= 3; i++ {
		create(t, sk, Skull(i))
	}
	create(t, qc, models.Quick{Skull: 1, Amount: 1})
	create(t, qc, models.Quick{Skull: 2, Amount: 1})
	create(t, qc, models.Quick{Skull: 1, Amount: 2})
	quicksBefore := lastModified(t, qc)

	got, _, err := sk.Delete(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, Skull(1), got.Data)

	list, _, err := qc.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{2}, ids(list))
	afterCascade := lastModified(t, qc)
	assert.Greater(t, store.Millis(afterCascade), store.Millis(quicksBefore))

	// Nothing references skull 3, so quicks stay untouched.
	_, _, err = sk.Delete(ctx, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, store.Millis(afterCascade), store.Millis(lastModified(t, qc)))
}

func testDeleteReject(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	qc := quicks(t, s, Alice)
	create(t, sk, Skull(1))
	create(t, qc, models.Quick{Skull: 1, Amount: 1})
	create[models.Occurrence](t, occurrences(t, s, Alice), models.Occurrence{Skull: 1, Amount: 1, Millis: 1})

	skullsBefore := lastModified(t, sk)
	quicksBefore := lastModified(t, qc)

	_, _, err := sk.Delete(ctx, 1, nil)
	assert.ErrorIs(t, err, common.ErrConstraint)

	_, _, err = sk.Read(ctx, 1)
	assert.NoError(t, err)
	list, _, err := qc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, store.Millis(skullsBefore), store.Millis(lastModified(t, sk)))
	assert.Equal(t, store.Millis(quicksBefore), store.Millis(lastModified(t, qc)))
}

func testNoLeak(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	qc := quicks(t, s, Alice)
	oc := occurrences(t, s, Alice)
	bob := skulls(t, s, Bob)

	quicksBefore := lastModified(t, qc)
	occBefore := lastModified[models.Occurrence](t, oc)
	bobBefore := lastModified(t, bob)

	id := create(t, sk, Skull(1))
	changed := Skull(1)
	changed.UnitPrice = 3
	_, _, err := sk.Update(ctx, id, changed, nil)
	require.NoError(t, err)
	_, _, err = sk.Delete(ctx, id, nil)
	require.NoError(t, err)

	assert.Equal(t, store.Millis(quicksBefore), store.Millis(lastModified(t, qc)))
	assert.Equal(t, store.Millis(occBefore), store.Millis(lastModified[models.Occurrence](t, oc)))
	assert.Equal(t, store.Millis(bobBefore), store.Millis(lastModified(t, bob)))
}

func testMultipleHandles(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := skulls(t, s, Alice)
	second := skulls(t, s, Alice)

	id := create(t, first, Skull(1))
	got, _, err := second.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Skull(1), got.Data)

	_, _, err = second.Create(ctx, Skull(1))
	assert.ErrorIs(t, err, common.ErrConflict)

	generic, err := store.Select[models.Skull](s, Alice)
	require.NoError(t, err)
	assert.Equal(t, store.Millis(lastModified(t, first)), store.Millis(lastModified(t, generic)))
}

func testSearch(t *testing.T, s store.Store) {
	ctx := context.Background()
	sk := skulls(t, s, Alice)
	for i := 1; i <= 3; i++ {
		create(t, sk, Skull(i))
	}
	oc := occurrences(t, s, Alice)
	for _, o := range []models.Occurrence{
		{Skull: 1, Amount: 1, Millis: 100},
		{Skull: 2, Amount: 1, Millis: 200},
		{Skull: 1, Amount: 1, Millis: 300},
		{Skull: 3, Amount: 1, Millis: 300},
		{Skull: 2, Amount: 1, Millis: 400},
	} {
		create[models.Occurrence](t, oc, o)
	}
	lm := lastModified[models.Occurrence](t, oc)

	tests := []struct {
		name string
		q    store.Search
		want []models.ID
	}{
		{"all", store.Search{}, []models.ID{5, 4, 3, 2, 1}},
		{"by skulls", store.Search{Skulls: []models.ID{1, 3}}, []models.ID{4, 3, 1}},
		{"range inclusive", store.Search{Start: i64(200), End: i64(300)}, []models.ID{4, 3, 2}},
		{"start only", store.Search{Start: i64(300)}, []models.ID{5, 4, 3}},
		{"end only", store.Search{End: i64(100)}, []models.ID{1}},
		{"everything with limit", store.Search{Skulls: []models.ID{2, 1}, Start: i64(100), Limit: u32(2)}, []models.ID{5, 3}},
		{"no match", store.Search{Skulls: []models.ID{9}}, []models.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotLM, err := oc.Search(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, store.Millis(lm), store.Millis(gotLM))
		})
	}
}

func testConcurrentCreates(t *testing.T, s store.Store) {
	ctx := context.Background()
	create(t, skulls(t, s, Alice), Skull(1))
	create(t, skulls(t, s, Bob), Skull(1))

	const workers, perWorker = 4, 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers*perWorker)

	for _, user := range []string{Alice, Bob} {
		oc := occurrences(t, s, user)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					_, _, err := oc.Create(ctx, models.Occurrence{Skull: 1, Amount: 1, Millis: int64(w*perWorker + i)})
					errs <- err
				}
			}(w)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, user := range []string{Alice, Bob} {
		list, _, err := occurrences(t, s, user).List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, list, workers*perWorker)

		seen := make(map[models.ID]bool, len(list))
		for _, e := range list {
			assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
			seen[e.ID] = true
		}
	}
}

func testCanceledContext(t *testing.T, s store.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sk := skulls(t, s, Alice)
	_, _, err := sk.List(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = sk.Create(ctx, Skull(1))
	assert.ErrorIs(t, err, context.Canceled)

	list, _, err := sk.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
