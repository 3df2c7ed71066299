package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TypeLocation RecordType = "location"
	TypeBranch   RecordType = "branch"
)

type (
	// RecordType discriminates the two kinds of record held by the store.
	RecordType string

	// Metric is a composite value shown as an amount with its share.
	Metric struct {
		Value      float64 `json:"value"`
		Percentage float64 `json:"percentage"`
	}

	// Record is a location or branch revenue row.
	// ParentLocation names the owning location by its display name; nothing
	// enforces that such a location exists.
	Record struct {
		ID                         string     `json:"id"`
		Location                   string     `json:"location"`
		PotentialRevenue           Metric     `json:"potentialRevenue"`
		CompetitorProcessingVolume Metric     `json:"competitorProcessingVolume"`
		CompetitorMerchant         float64    `json:"competitorMerchant"`
		RevenuePerAccount          float64    `json:"revenuePerAccount"`
		MarketShareByRevenue       float64    `json:"marketShareByRevenue"`
		CommercialDDAs             float64    `json:"commercialDDAs"`
		Type                       RecordType `json:"type"`
		ParentLocation             string     `json:"parentLocation,omitempty"`
	}

	// Query selects records by kind and, optionally, by parent location.
	Query struct {
		View           RecordType
		ParentLocation string
	}
)

var (
	ErrInvalidRecordType = errors.New("invalid record type")
	ErrEmptyID           = errors.New("empty record id")
	ErrEmptyLocation     = errors.New("empty location name")
)

// String implements fmt.Stringer
func (t RecordType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the two record kinds.
func (t RecordType) IsValid() bool {
	switch t {
	case TypeLocation, TypeBranch:
		return true
	default:
		return false
	}
}

// ParseView maps a raw view selector to a record type. Only the literal
// "branch" selects branches; anything else, including "", selects locations.
func ParseView(raw string) RecordType {
	if raw == string(TypeBranch) {
		return TypeBranch
	}
	return TypeLocation
}

// NewQuery builds a query from raw request selectors.
func NewQuery(view, location string) Query {
	return Query{
		View:           ParseView(view),
		ParentLocation: location,
	}
}

// Validate checks the query before it reaches a store.
func (q Query) Validate() error {
	if !q.View.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecordType, q.View)
	}
	return nil
}

// HasParent reports whether the query filters on parentLocation.
func (q Query) HasParent() bool {
	return q.ParentLocation != ""
}

// Matches reports whether r satisfies the query's equality filters.
func (q Query) Matches(r Record) bool {
	if r.Type != q.View {
		return false
	}
	if q.HasParent() && r.ParentLocation != q.ParentLocation {
		return false
	}
	return true
}

// Validate checks the fields a record needs before it is stored.
func (r Record) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecordType, r.Type)
	}
	if strings.TrimSpace(r.Location) == "" {
		return ErrEmptyLocation
	}
	return nil
}

// IsBranch reports whether r is a branch row.
func (r Record) IsBranch() bool {
	return r.Type == TypeBranch
}
