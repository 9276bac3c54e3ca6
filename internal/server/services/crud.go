package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/logging"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
)

// CrudService serves one entity kind for every user of a store.
type CrudService[D models.Entity[D]] struct {
	store  store.Store
	kind   string
	logger logging.Logger
}

// NewCrudService builds a CrudService over s.
func NewCrudService[D models.Entity[D]](s store.Store, l logging.Logger) *CrudService[D] {
	kind := models.KindOf[D]().String()
	return &CrudService[D]{
		store:  s,
		kind:   kind,
		logger: l.With("module", "services", "kind", kind),
	}
}

// Result labels an operation outcome for metrics.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrNoSuchUser):
		return "no_such_user"
	case errors.Is(err, common.ErrNotFound):
		return "not_found"
	case errors.Is(err, common.ErrConstraint):
		return "constraint"
	case errors.Is(err, common.ErrConflict):
		return "conflict"
	case errors.Is(err, common.ErrOutOfSync):
		return "out_of_sync"
	case errors.Is(err, common.ErrStoreFull):
		return "store_full"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}

// observe records metrics for one operation and logs anything unexpected.
func (s *CrudService[D]) observe(ctx context.Context, op, user string, started time.Time, err error) {
	result := Result(err)
	storeOperationsTotal.WithLabelValues(s.kind, op, result).Inc()
	storeOperationSeconds.WithLabelValues(s.kind, op).Observe(time.Since(started).Seconds())

	switch result {
	case "ok":
	case "internal":
		s.logger.Error(ctx, "store operation failed", "op", op, "user", user, "error", err)
	default:
		s.logger.Info(ctx, "store operation rejected", "op", op, "user", user, "result", result, "error", err)
	}
}

func (s *CrudService[D]) collection(user string) (store.Crud[D], error) {
	return store.Select[D](s.store, user)
}

func (s *CrudService[D]) List(ctx context.Context, user string, limit *uint32) (out []models.WithID[D], lm time.Time, err error) {
	defer func(started time.Time) { s.observe(ctx, "list", user, started, err) }(time.Now())

	c, err := s.collection(user)
	if err != nil {
		return nil, time.Time{}, err
	}
	return c.List(ctx, limit)
}

func (s *CrudService[D]) Create(ctx context.Context, user string, data D) (id models.ID, lm time.Time, err error) {
	defer func(started time.Time) { s.observe(ctx, "create", user, started, err) }(time.Now())

	c, err := s.collection(user)
	if err != nil {
		return 0, time.Time{}, err
	}
	return c.Create(ctx, data)
}

func (s *CrudService[D]) Read(ctx context.Context, user string, id models.ID) (e models.WithID[D], lm time.Time, err error) {
	defer func(started time.Time) { s.observe(ctx, "read", user, started, err) }(time.Now())

	c, err := s.collection(user)
	if err != nil {
		return e, time.Time{}, err
	}
	return c.Read(ctx, id)
}

// Update applies data only while the collection is not newer than the
// client's token. A nil token is always out of sync.
func (s *CrudService[D]) Update(ctx context.Context, user string, id models.ID, data D, unmodifiedSince *uint64) (e models.WithID[D], lm time.Time, err error) {
	defer func(started time.Time) { s.observe(ctx, "update", user, started, err) }(time.Now())

	c, err := s.collection(user)
	if err != nil {
		return e, time.Time{}, err
	}
	return c.Update(ctx, id, data, store.UnmodifiedSince(unmodifiedSince))
}

// Delete follows the same token rule as Update.
func (s *CrudService[D]) Delete(ctx context.Context, user string, id models.ID, unmodifiedSince *uint64) (e models.WithID[D], lm time.Time, err error) {
	defer func(started time.Time) { s.observe(ctx, "delete", user, started, err) }(time.Now())

	c, err := s.collection(user)
	if err != nil {
		return e, time.Time{}, err
	}
	return c.Delete(ctx, id, store.UnmodifiedSince(unmodifiedSince))
}

func (s *CrudService[D]) LastModified(ctx context.Context, user string) (lm time.Time, err error) {
	defer func(started time.Time) { s.observe(ctx, "last_modified", user, started, err) }(time.Now())

	c, err := s.collection(user)
	if err != nil {
		return time.Time{}, err
	}
	return c.LastModified(ctx)
}

// OccurrenceService adds search on top of the occurrence CrudService.
type OccurrenceService struct {
	*CrudService[models.Occurrence]
}

func NewOccurrenceService(s store.Store, l logging.Logger) *OccurrenceService {
	return &OccurrenceService{NewCrudService[models.Occurrence](s, l)}
}

func (s *OccurrenceService) Search(ctx context.Context, user string, q store.Search) (out []models.WithID[models.Occurrence], lm time.Time, err error) {
	defer func(started time.Time) { s.observe(ctx, "search", user, started, err) }(time.Now())

	c, err := s.store.Occurrences(user)
	if err != nil {
		return nil, time.Time{}, err
	}
	return c.Search(ctx, q)
}

// Services bundles one service per entity kind.
type Services struct {
	Skulls      *CrudService[models.Skull]
	Quicks      *CrudService[models.Quick]
	Occurrences *OccurrenceService
}

// New builds every service over s.
func New(s store.Store, l logging.Logger) *Services {
	return &Services{
		Skulls:      NewCrudService[models.Skull](s, l),
		Quicks:      NewCrudService[models.Quick](s, l),
		Occurrences: NewOccurrenceService(s, l),
	}
}
