package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// SearchKey is the canonical identity of a search request. Roles and
// Seniority are always trimmed, lower-cased, deduplicated and sorted.
type SearchKey struct {
	Query          string         `json:"query"`
	Location       string         `json:"location"`
	Page           int            `json:"page"`
	EmploymentType EmploymentType `json:"employment_type"`
	Roles          []string       `json:"roles"`
	Seniority      []string       `json:"seniority"`
}

// Equal compares keys field by field. Nil and empty filter sets are equal.
func (k SearchKey) Equal(o SearchKey) bool {
	return k.Query == o.Query &&
		k.Location == o.Location &&
		k.Page == o.Page &&
		k.EmploymentType == o.EmploymentType &&
		slices.Equal(k.Roles, o.Roles) &&
		slices.Equal(k.Seniority, o.Seniority)
}

// Hash returns a stable hex digest of the key for key/value stores
func (k SearchKey) Hash() string {
	canonical := struct {
		Query          string   `json:"q"`
		Location       string   `json:"l"`
		Page           int      `json:"p"`
		EmploymentType string   `json:"e"`
		Roles          []string `json:"r"`
		Seniority      []string `json:"s"`
	}{
		Query:          k.Query,
		Location:       k.Location,
		Page:           k.Page,
		EmploymentType: string(k.EmploymentType),
		Roles:          nonNil(k.Roles),
		Seniority:      nonNil(k.Seniority),
	}

	// struct fields marshal in declaration order, so the encoding is deterministic
	b, _ := json.Marshal(canonical)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:16])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
