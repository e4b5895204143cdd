package app

import "debianbts/internal/types"

type BugsRequest struct {
	Filters []types.BugFilter
}

type BugsResult struct {
	IDs []int
}

// StatusRequest fetches full reports. SortByUrgency orders the result
// most urgent first; AffectsVersion keeps only bugs present in that
// Debian version.
type StatusRequest struct {
	IDs            []int
	SortByUrgency  bool
	AffectsVersion string
}

type StatusResult struct {
	Reports []types.BugReport
}

type UsertagsRequest struct {
	Email string
	Tags  []string
}

type UsertagsResult struct {
	Usertags map[string][]int
}

type BugLogRequest struct {
	ID int
}

type BugLogResult struct {
	Entries []types.BugLogEntry
}

type NewestRequest struct {
	Count int
}

type NewestResult struct {
	IDs []int
}
