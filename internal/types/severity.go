package types

import "strings"

type Severity string

const (
	SeverityWishlist  Severity = "wishlist"
	SeverityMinor     Severity = "minor"
	SeverityNormal    Severity = "normal"
	SeverityImportant Severity = "important"
	SeveritySerious   Severity = "serious"
	SeverityGrave     Severity = "grave"
	SeverityCritical  Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityWishlist:  1,
	SeverityMinor:     2,
	SeverityNormal:    3,
	SeverityImportant: 4,
	SeveritySerious:   5,
	SeverityGrave:     6,
	SeverityCritical:  7,
}

// Rank orders severities from wishlist (1) to critical (7). Unknown
// severities rank 0.
func (s Severity) Rank() int {
	return severityRanks[Severity(strings.ToLower(strings.TrimSpace(string(s))))]
}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}
