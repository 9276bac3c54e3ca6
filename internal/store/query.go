package store

import (
	"cmp"
	"slices"

	"github.com/dmitrijs2005/skullkeeper/internal/models"
)

// Search filters occurrences. All set criteria must hold.
type Search struct {
	// Skulls restricts results to these skulls; empty means all.
	Skulls []models.ID `json:"skull"`
	// Start and End are inclusive bounds on Millis.
	Start *int64  `json:"start"`
	End   *int64  `json:"end"`
	Limit *uint32 `json:"limit"`
}

// Match reports whether o satisfies every criterion of q.
func (q Search) Match(o models.Occurrence) bool {
	if len(q.Skulls) > 0 && !slices.Contains(q.Skulls, o.Skull) {
		return false
	}
	if q.Start != nil && o.Millis < *q.Start {
		return false
	}
	if q.End != nil && o.Millis > *q.End {
		return false
	}
	return true
}

// SortOccurrences orders newest first, ties broken by descending id.
func SortOccurrences(entries []models.WithID[models.Occurrence]) {
	slices.SortFunc(entries, func(a, b models.WithID[models.Occurrence]) int {
		if c := cmp.Compare(b.Data.Millis, a.Data.Millis); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

// Tail keeps the last *limit entries.
func Tail[T any](entries []T, limit *uint32) []T {
	if limit == nil || uint64(*limit) >= uint64(len(entries)) {
		return entries
	}
	return entries[len(entries)-int(*limit):]
}

// Head keeps the first *limit entries.
func Head[T any](entries []T, limit *uint32) []T {
	if limit == nil || uint64(*limit) >= uint64(len(entries)) {
		return entries
	}
	return entries[:*limit]
}

// FilterOccurrences applies q to entries, then orders and limits the result.
func FilterOccurrences(entries []models.WithID[models.Occurrence], q Search) []models.WithID[models.Occurrence] {
	out := make([]models.WithID[models.Occurrence], 0, len(entries))
	for _, e := range entries {
		if q.Match(e.Data) {
			out = append(out, e)
		}
	}
	SortOccurrences(out)
	return Head(out, q.Limit)
}
