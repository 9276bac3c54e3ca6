package store

import (
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
)

// Precondition is evaluated by a backend against the collection's current
// last-modified token, inside the same critical section as the mutation it
// guards. A nil Precondition always passes.
type Precondition func(lastModified time.Time) error

// UnmodifiedSince passes only when the client token (epoch millis) is
// present and not older than the collection's last-modified token.
func UnmodifiedSince(token *uint64) Precondition {
	return func(lastModified time.Time) error {
		if token == nil || *token < Millis(lastModified) {
			return common.ErrOutOfSync
		}
		return nil
	}
}

// Check runs pre when set.
func (pre Precondition) Check(lastModified time.Time) error {
	if pre == nil {
		return nil
	}
	return pre(lastModified)
}
