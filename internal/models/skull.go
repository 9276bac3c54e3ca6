package models

import "github.com/dmitrijs2005/skullkeeper/internal/common"

// Skull is a countable category, e.g. "coffee".
type Skull struct {
	Name      string   `json:"name"`
	Color     uint32   `json:"color"`
	Icon      string   `json:"icon"`
	UnitPrice float64  `json:"unitPrice"`
	Limit     *float64 `json:"limit,omitempty"`
}

func (s Skull) Validate() error {
	if err := checkLabel("name", s.Name); err != nil {
		return err
	}
	if err := checkLabel("icon", s.Icon); err != nil {
		return err
	}
	if err := checkFinite("unitPrice", s.UnitPrice); err != nil {
		return err
	}
	if s.UnitPrice < 0 {
		return &common.InvalidFieldError{Field: "unitPrice", Reason: "must not be negative"}
	}
	if s.Limit != nil {
		return checkFinite("limit", *s.Limit)
	}
	return nil
}

func (s Skull) SkullRef() (ID, bool) {
	return 0, false
}

// ConflictsWith reports a shared name, color or icon.
func (s Skull) ConflictsWith(other Skull) bool {
	return s.Name == other.Name || s.Color == other.Color || s.Icon == other.Icon
}

func (s Skull) Equal(other Skull) bool {
	if s.Name != other.Name || s.Color != other.Color || s.Icon != other.Icon || s.UnitPrice != other.UnitPrice {
		return false
	}
	if s.Limit == nil || other.Limit == nil {
		return s.Limit == nil && other.Limit == nil
	}
	return *s.Limit == *other.Limit
}

func (s Skull) Clone() Skull {
	if s.Limit != nil {
		limit := *s.Limit
		s.Limit = &limit
	}
	return s
}
