package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
)

// BugReport is the full known state of one bug as returned by get_status.
// List fields are never nil.
type BugReport struct {
	BugNum        int       `json:"bug_num" yaml:"bug_num"`
	Package       string    `json:"package" yaml:"package"`
	Source        string    `json:"source" yaml:"source"`
	Severity      Severity  `json:"severity" yaml:"severity"`
	Tags          []string  `json:"tags" yaml:"tags"`
	Done          bool      `json:"done" yaml:"done"`
	DoneBy        string    `json:"done_by,omitempty" yaml:"done_by,omitempty"`
	Forwarded     string    `json:"forwarded" yaml:"forwarded"`
	Owner         string    `json:"owner" yaml:"owner"`
	Originator    string    `json:"originator" yaml:"originator"`
	Subject       string    `json:"subject" yaml:"subject"`
	Summary       string    `json:"summary" yaml:"summary"`
	MsgID         string    `json:"msgid" yaml:"msgid"`
	Date          time.Time `json:"date" yaml:"date"`
	LogModified   time.Time `json:"log_modified" yaml:"log_modified"`
	Location      string    `json:"location" yaml:"location"`
	Archived      bool      `json:"archived" yaml:"archived"`
	Unarchived    bool      `json:"unarchived" yaml:"unarchived"`
	Pending       string    `json:"pending" yaml:"pending"`
	MergedWith    []int     `json:"mergedwith" yaml:"mergedwith"`
	Blocks        []int     `json:"blocks" yaml:"blocks"`
	BlockedBy     []int     `json:"blockedby" yaml:"blockedby"`
	FoundVersions []string  `json:"found_versions" yaml:"found_versions"`
	FixedVersions []string  `json:"fixed_versions" yaml:"fixed_versions"`
	Affects       []string  `json:"affects" yaml:"affects"`
}

// NewBugReport returns a report for bugNum with every list field
// initialised to an empty slice.
func NewBugReport(bugNum int) BugReport {
	return BugReport{
		BugNum:        bugNum,
		Tags:          []string{},
		MergedWith:    []int{},
		Blocks:        []int{},
		BlockedBy:     []int{},
		FoundVersions: []string{},
		FixedVersions: []string{},
		Affects:       []string{},
	}
}

// bugReportFields drops BugReport's methods so cmp does not call Equal
// recursively.
type bugReportFields BugReport

// Equal compares two reports field by field.
func (b BugReport) Equal(other BugReport) bool {
	return cmp.Equal(bugReportFields(b), bugReportFields(other))
}

// Packages splits the comma-joined package field.
func (b BugReport) Packages() []string {
	var names []string
	for _, name := range strings.Split(b.Package, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

func (b BugReport) String() string {
	var sb strings.Builder
	line := func(key string, value any) {
		fmt.Fprintf(&sb, "%s: %v\n", key, value)
	}
	line("bug_num", b.BugNum)
	line("package", b.Package)
	line("source", b.Source)
	line("severity", b.Severity)
	line("tags", b.Tags)
	line("done", b.Done)
	line("done_by", b.DoneBy)
	line("forwarded", b.Forwarded)
	line("owner", b.Owner)
	line("originator", b.Originator)
	line("subject", b.Subject)
	line("summary", b.Summary)
	line("msgid", b.MsgID)
	line("date", b.Date.Format(time.RFC3339))
	line("log_modified", b.LogModified.Format(time.RFC3339))
	line("location", b.Location)
	line("archived", b.Archived)
	line("unarchived", b.Unarchived)
	line("pending", b.Pending)
	line("mergedwith", b.MergedWith)
	line("blocks", b.Blocks)
	line("blockedby", b.BlockedBy)
	line("found_versions", b.FoundVersions)
	line("fixed_versions", b.FixedVersions)
	line("affects", b.Affects)
	return sb.String()
}
