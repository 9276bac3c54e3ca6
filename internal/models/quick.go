package models

import (
	"math"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
)

// AmountTolerance is the relative tolerance used when comparing quick
// amounts for uniqueness.
const AmountTolerance = 1e-6

// Quick is a preset amount for a skull.
type Quick struct {
	Skull  ID      `json:"skull"`
	Amount float64 `json:"amount"`
}

func (q Quick) Validate() error {
	if err := checkFinite("amount", q.Amount); err != nil {
		return err
	}
	if q.Amount < 0 {
		return &common.InvalidFieldError{Field: "amount", Reason: "must not be negative"}
	}
	return nil
}

func (q Quick) SkullRef() (ID, bool) {
	return q.Skull, true
}

// ConflictsWith reports the same skull with an approximately equal amount.
func (q Quick) ConflictsWith(other Quick) bool {
	return q.Skull == other.Skull && AmountsEqual(q.Amount, other.Amount)
}

func (q Quick) Equal(other Quick) bool {
	return q.Skull == other.Skull && q.Amount == other.Amount
}

// AmountsEqual compares a and b within AmountTolerance, scaled by the larger
// magnitude once it exceeds one.
func AmountsEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= AmountTolerance*scale
}

func (q Quick) Clone() Quick { return q }
