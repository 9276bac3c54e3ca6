package models

import "github.com/dmitrijs2005/skullkeeper/internal/common"

// Occurrence records an amount of a skull at a point in time.
type Occurrence struct {
	Skull  ID      `json:"skull"`
	Amount float64 `json:"amount"`
	Millis int64   `json:"millis"`
}

func (o Occurrence) Validate() error {
	if err := checkFinite("amount", o.Amount); err != nil {
		return err
	}
	if o.Amount <= 0 {
		return &common.InvalidFieldError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

func (o Occurrence) SkullRef() (ID, bool) {
	return o.Skull, true
}

// ConflictsWith is always false: occurrences carry no uniqueness rule.
func (o Occurrence) ConflictsWith(Occurrence) bool {
	return false
}

func (o Occurrence) Equal(other Occurrence) bool {
	return o == other
}

func (o Occurrence) Clone() Occurrence { return o }
