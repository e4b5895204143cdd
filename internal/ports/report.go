package ports

import "debianbts/internal/types"

type ReportWriterPort interface {
	WriteBugs(ids []int) error
	WriteStatus(reports []types.BugReport) error
	WriteUsertags(mapping map[string][]int) error
	WriteBugLog(entries []types.BugLogEntry) error
}
