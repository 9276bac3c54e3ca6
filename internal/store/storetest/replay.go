package storetest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/stretchr/testify/require"
)

// Outcome is the backend-independent record of one replayed step: what the
// call returned and which collections' last-modified tokens moved.
type Outcome struct {
	Step     string
	Err      string
	Result   any
	Advanced [3]bool
}

// ErrKind names the sentinel err matches.
func ErrKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrNoSuchUser):
		return "no_such_user"
	case errors.Is(err, common.ErrNotFound):
		return "not_found"
	case errors.Is(err, common.ErrConstraint):
		return "constraint"
	case errors.Is(err, common.ErrConflict):
		return "conflict"
	case errors.Is(err, common.ErrStoreFull):
		return "store_full"
	case errors.Is(err, common.ErrOutOfSync):
		return "out_of_sync"
	}
	return "other: " + err.Error()
}

type replayer struct {
	t   *testing.T
	ctx context.Context
	sk  store.Crud[models.Skull]
	qc  store.Crud[models.Quick]
	oc  store.OccurrenceCrud
	rnd *rand.Rand
}

func (r *replayer) tokens() [3]uint64 {
	r.t.Helper()
	sk, err := r.sk.LastModified(r.ctx)
	require.NoError(r.t, err)
	qc, err := r.qc.LastModified(r.ctx)
	require.NoError(r.t, err)
	oc, err := r.oc.LastModified(r.ctx)
	require.NoError(r.t, err)

	var out [3]uint64
	out[models.KindSkull] = store.Millis(sk)
	out[models.KindQuick] = store.Millis(qc)
	out[models.KindOccurrence] = store.Millis(oc)
	return out
}

func (r *replayer) id() models.ID {
	return models.ID(1 + r.rnd.IntN(8))
}

// skull draws from a small pool so that name, color and icon clash often.
func (r *replayer) skull() models.Skull {
	s := Skull(1 + r.rnd.IntN(5))
	if r.rnd.IntN(4) == 0 {
		s.Color = uint32(r.rnd.IntN(3))
	}
	if r.rnd.IntN(4) == 0 {
		s.UnitPrice = float64(r.rnd.IntN(3))
	}
	if r.rnd.IntN(5) == 0 {
		s.Name = ""
	}
	return s
}

func (r *replayer) quick() models.Quick {
	return models.Quick{Skull: models.ID(1 + r.rnd.IntN(6)), Amount: float64(r.rnd.IntN(3))}
}

func (r *replayer) occurrence() models.Occurrence {
	return models.Occurrence{Skull: models.ID(1 + r.rnd.IntN(6)), Amount: 1 + float64(r.rnd.IntN(2)), Millis: int64(r.rnd.IntN(5) * 100)}
}

func (r *replayer) limit() *uint32 {
	if r.rnd.IntN(3) == 0 {
		return nil
	}
	v := uint32(r.rnd.IntN(5))
	return &v
}

// step performs one random call and returns its name, result and error.
func (r *replayer) step() (string, any, error) {
	ctx := r.ctx
	switch op := r.rnd.IntN(15); op {
	case 0, 1:
		id, _, err := r.sk.Create(ctx, r.skull())
		return "create skull", id, err
	case 2:
		id := r.id()
		e, _, err := r.sk.Update(ctx, id, r.skull(), nil)
		return fmt.Sprintf("update skull %d", id), e, err
	case 3:
		id := r.id()
		e, _, err := r.sk.Delete(ctx, id, nil)
		return fmt.Sprintf("delete skull %d", id), e, err
	case 4, 5:
		id, _, err := r.qc.Create(ctx, r.quick())
		return "create quick", id, err
	case 6:
		id := r.id()
		e, _, err := r.qc.Update(ctx, id, r.quick(), nil)
		return fmt.Sprintf("update quick %d", id), e, err
	case 7:
		id := r.id()
		e, _, err := r.qc.Delete(ctx, id, nil)
		return fmt.Sprintf("delete quick %d", id), e, err
	case 8, 9:
		id, _, err := r.oc.Create(ctx, r.occurrence())
		return "create occurrence", id, err
	case 10:
		id := r.id()
		e, _, err := r.oc.Update(ctx, id, r.occurrence(), nil)
		return fmt.Sprintf("update occurrence %d", id), e, err
	case 11:
		id := r.id()
		e, _, err := r.oc.Delete(ctx, id, nil)
		return fmt.Sprintf("delete occurrence %d", id), e, err
	case 12:
		limit := r.limit()
		l, _, err := r.sk.List(ctx, limit)
		return "list skulls", l, err
	case 13:
		limit := r.limit()
		l, _, err := r.oc.List(ctx, limit)
		return "list occurrences", l, err
	default:
		q := store.Search{Skulls: []models.ID{models.ID(1 + r.rnd.IntN(6))}, Limit: r.limit()}
		if r.rnd.IntN(2) == 0 {
			start := int64(100)
			q.Start = &start
		}
		l, _, err := r.oc.Search(ctx, q)
		return "search occurrences", l, err
	}
}

// Replay runs a deterministic pseudo-random workload of n steps against
// user's collections and records every outcome.
func Replay(t *testing.T, s store.Store, user string, seed uint64, n int) []Outcome {
	t.Helper()

	r := &replayer{
		t:   t,
		ctx: context.Background(),
		sk:  skulls(t, s, user),
		qc:  quicks(t, s, user),
		oc:  occurrences(t, s, user),
		rnd: rand.New(rand.NewPCG(seed, seed^0x5eed)),
	}

	out := make([]Outcome, 0, n)
	for i := 0; i < n; i++ {
		before := r.tokens()
		name, result, err := r.step()
		after := r.tokens()

		o := Outcome{Step: name, Err: ErrKind(err)}
		if err == nil {
			o.Result = result
		}
		for k := range before {
			o.Advanced[k] = after[k] > before[k]
			require.GreaterOrEqual(t, after[k], before[k], "token moved backwards at step %d (%s)", i, name)
		}
		out = append(out, o)
	}
	return out
}
