// Package models defines the entities tracked per user: skulls (countable
// categories), quicks (one-tap shortcuts) and occurrences (timestamped
// amounts), plus the generic hooks every storage backend is written against.
package models

import (
	"math"
	"strings"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
)

// ID identifies an entry within one (user, entity kind) collection.
type ID uint32

// Kind enumerates the entity collections. The numeric values are persisted
// as the key of the relational last_modified table.
type Kind int

const (
	KindSkull Kind = iota
	KindQuick
	KindOccurrence
)

func (k Kind) String() string {
	switch k {
	case KindSkull:
		return "skull"
	case KindQuick:
		return "quick"
	case KindOccurrence:
		return "occurrence"
	}
	return "unknown"
}

// Entity is the constraint the storage algorithms are instantiated with.
type Entity[D any] interface {
	Skull | Quick | Occurrence

	// Validate checks field-level rules that need no other entries.
	Validate() error
	// SkullRef returns the referenced skull for kinds that carry one.
	SkullRef() (ID, bool)
	// ConflictsWith reports a uniqueness clash with another live entry.
	ConflictsWith(other D) bool
	// Equal compares every data field exactly.
	Equal(other D) bool
	// Clone returns a copy that shares no memory with the receiver.
	Clone() D
}

// KindOf returns the collection kind for D.
func KindOf[D Entity[D]]() Kind {
	var zero D
	switch any(zero).(type) {
	case Skull:
		return KindSkull
	case Quick:
		return KindQuick
	default:
		return KindOccurrence
	}
}

func checkLabel(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &common.InvalidFieldError{Field: field, Reason: "must not be blank"}
	}
	if strings.ContainsAny(v, "\r\n") {
		return &common.InvalidFieldError{Field: field, Reason: "must not contain line breaks"}
	}
	return nil
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &common.InvalidFieldError{Field: field, Reason: "must be a finite number"}
	}
	return nil
}
