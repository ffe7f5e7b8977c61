package job

import (
	"fmt"
	"slices"
	"strings"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

var remoteAliases = map[string]struct{}{
	"remote":       {},
	"remote (us)":  {},
	"remote (usa)": {},
}

var seniorityKeywords = map[string]string{
	domain.SeniorityEntry:  "entry level",
	domain.SeniorityMid:    "mid level",
	domain.SenioritySenior: "senior level",
	domain.SeniorityLead:   "lead engineer",
}

var employmentCodes = map[domain.EmploymentType]string{
	domain.EmploymentFullTime:   "FULLTIME",
	domain.EmploymentInternship: "INTERN",
}

// Normalize canonicalizes raw search filters into a SearchKey.
// It has no side effects and is idempotent.
func Normalize(f domain.SearchFilters) (domain.SearchKey, error) {
	if strings.TrimSpace(f.Query) == "" {
		return domain.SearchKey{}, fmt.Errorf("%w: query must be provided to search jobs", domain.ErrInvalidInput)
	}
	if f.Page < 1 {
		return domain.SearchKey{}, fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidInput, f.Page)
	}

	employment, err := parseEmploymentType(f.EmploymentType)
	if err != nil {
		return domain.SearchKey{}, err
	}

	seniority := NormalizeList(f.Seniority)
	for _, s := range seniority {
		if _, ok := seniorityKeywords[s]; !ok {
			return domain.SearchKey{}, fmt.Errorf("%w: unknown seniority %q", domain.ErrInvalidInput, s)
		}
	}

	return domain.SearchKey{
		Query:          f.Query,
		Location:       NormalizeLocation(f.Location),
		Page:           f.Page,
		EmploymentType: employment,
		Roles:          NormalizeList(f.Roles),
		Seniority:      seniority,
	}, nil
}

// NormalizeLocation trims the location and substitutes the default location
// for blank and remote-style values
func NormalizeLocation(location string) string {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return domain.DefaultLocation
	}
	if _, ok := remoteAliases[strings.ToLower(trimmed)]; ok {
		return domain.DefaultLocation
	}
	return trimmed
}

// NormalizeList trims and lower-cases values, drops blanks, dedups and sorts.
// The result is never nil.
func NormalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SeniorityKeywords maps normalized seniority levels to the free-text terms
// folded into the upstream query
func SeniorityKeywords(levels []string) []string {
	out := make([]string, 0, len(levels))
	for _, l := range levels {
		if kw, ok := seniorityKeywords[l]; ok {
			out = append(out, kw)
		}
	}
	return out
}

// EmploymentCode returns the upstream structured code for t, or "" for none
func EmploymentCode(t domain.EmploymentType) string {
	return employmentCodes[t]
}

func parseEmploymentType(raw string) (domain.EmploymentType, error) {
	v := domain.EmploymentType(strings.ToLower(strings.TrimSpace(raw)))
	if v == domain.EmploymentAny {
		return v, nil
	}
	if _, ok := employmentCodes[v]; !ok {
		return "", fmt.Errorf("%w: unknown employment type %q", domain.ErrInvalidInput, raw)
	}
	return v, nil
}
