package policies

import (
	"cmp"
	"slices"

	"debianbts/internal/types"
)

const (
	archivedScore = 0
	doneScore     = 10
	openScore     = 20
)

// UrgencyScore orders bugs so that openness always beats severity:
// outstanding > resolved > archived, then critical down to wishlist.
func UrgencyScore(bug types.BugReport) int {
	score := openScore
	switch {
	case bug.Archived:
		score = archivedScore
	case bug.Done:
		score = doneScore
	}
	return score + bug.Severity.Rank()
}

// Compare returns -1, 0 or +1 as a is less, equally or more urgent than b.
func Compare(a types.BugReport, b types.BugReport) int {
	return cmp.Compare(UrgencyScore(a), UrgencyScore(b))
}

// SortByUrgency sorts the most urgent bugs first. Equally urgent bugs
// keep their relative order.
func SortByUrgency(bugs []types.BugReport) {
	slices.SortStableFunc(bugs, func(a, b types.BugReport) int {
		return Compare(b, a)
	})
}
