package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"debianbts/internal/soap"
	"debianbts/internal/types"
)

type fieldKind int

const (
	fieldString fieldKind = iota
	fieldBool
	fieldDone
	fieldDoneBy
	fieldTimestamp
	fieldIntList
	fieldStringList
)

// fieldSpec describes how one reply member of a get_status struct maps
// onto BugReport. Exactly one setter matches kind.
type fieldSpec struct {
	name   string
	kind   fieldKind
	base64 bool
	split  soap.ListSplit

	setString  func(*types.BugReport, string)
	setBool    func(*types.BugReport, bool)
	setTime    func(*types.BugReport, time.Time)
	setInts    func(*types.BugReport, []int)
	setStrings func(*types.BugReport, []string)
}

// statusFields is the full set of get_status members decoded into a
// BugReport; bug_num is handled by the builder before the table runs.
var statusFields = []string{
	"bug_num", "package", "source", "severity", "tags", "done", "done_by",
	"forwarded", "owner", "originator", "subject", "summary", "msgid",
	"date", "log_modified", "location", "archived", "unarchived", "pending",
	"mergedwith", "blocks", "blockedby", "found_versions", "fixed_versions",
	"affects",
}

var fieldTable = mustFieldTable([]fieldSpec{
	stringField("package", func(b *types.BugReport, v string) { b.Package = v }),
	stringField("source", func(b *types.BugReport, v string) { b.Source = v }),
	stringField("severity", func(b *types.BugReport, v string) {
		b.Severity = types.Severity(strings.ToLower(strings.TrimSpace(v)))
	}),
	{name: "tags", kind: fieldStringList, split: soap.SplitWhitespace,
		setStrings: func(b *types.BugReport, v []string) { b.Tags = v }},
	{name: "done", kind: fieldDone},
	{name: "done_by", kind: fieldDoneBy},
	stringField("forwarded", func(b *types.BugReport, v string) { b.Forwarded = v }),
	stringField("owner", func(b *types.BugReport, v string) { b.Owner = v }),
	stringField("originator", func(b *types.BugReport, v string) { b.Originator = v }),
	stringField("subject", func(b *types.BugReport, v string) { b.Subject = v }),
	stringField("summary", func(b *types.BugReport, v string) { b.Summary = v }),
	stringField("msgid", func(b *types.BugReport, v string) { b.MsgID = v }),
	{name: "date", kind: fieldTimestamp,
		setTime: func(b *types.BugReport, v time.Time) { b.Date = v }},
	{name: "log_modified", kind: fieldTimestamp,
		setTime: func(b *types.BugReport, v time.Time) { b.LogModified = v }},
	stringField("location", func(b *types.BugReport, v string) { b.Location = v }),
	{name: "archived", kind: fieldBool,
		setBool: func(b *types.BugReport, v bool) { b.Archived = v }},
	{name: "unarchived", kind: fieldBool,
		setBool: func(b *types.BugReport, v bool) { b.Unarchived = v }},
	stringField("pending", func(b *types.BugReport, v string) { b.Pending = v }),
	{name: "mergedwith", kind: fieldIntList, split: soap.SplitWhitespace,
		setInts: func(b *types.BugReport, v []int) { b.MergedWith = v }},
	{name: "blocks", kind: fieldIntList, split: soap.SplitWhitespace,
		setInts: func(b *types.BugReport, v []int) { b.Blocks = v }},
	{name: "blockedby", kind: fieldIntList, split: soap.SplitWhitespace,
		setInts: func(b *types.BugReport, v []int) { b.BlockedBy = v }},
	{name: "found_versions", kind: fieldStringList, split: soap.SplitNone,
		setStrings: func(b *types.BugReport, v []string) { b.FoundVersions = v }},
	{name: "fixed_versions", kind: fieldStringList, split: soap.SplitNone,
		setStrings: func(b *types.BugReport, v []string) { b.FixedVersions = v }},
	{name: "affects", kind: fieldStringList, split: soap.SplitComma,
		setStrings: func(b *types.BugReport, v []string) { b.Affects = v }},
})

func stringField(name string, set func(*types.BugReport, string)) fieldSpec {
	return fieldSpec{name: name, kind: fieldString, base64: true, setString: set}
}

// mustFieldTable panics unless the table covers every status field except
// bug_num exactly once and every entry has the setter its kind needs.
func mustFieldTable(specs []fieldSpec) []fieldSpec {
	if err := checkFieldTable(specs); err != nil {
		panic(err)
	}
	return specs
}

func checkFieldTable(specs []fieldSpec) error {
	seen := map[string]struct{}{}
	for _, spec := range specs {
		if _, dup := seen[spec.name]; dup {
			return fmt.Errorf("field table: duplicate field %s", spec.name)
		}
		seen[spec.name] = struct{}{}
		if !spec.hasSetter() {
			return fmt.Errorf("field table: %s has no setter for its kind", spec.name)
		}
	}
	var missing []string
	for _, name := range statusFields {
		if name == "bug_num" {
			continue
		}
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
		delete(seen, name)
	}
	if len(missing) > 0 {
		return fmt.Errorf("field table: missing %s", strings.Join(missing, ", "))
	}
	if len(seen) > 0 {
		extra := make([]string, 0, len(seen))
		for name := range seen {
			extra = append(extra, name)
		}
		sort.Strings(extra)
		return fmt.Errorf("field table: unknown %s", strings.Join(extra, ", "))
	}
	return nil
}

func (f fieldSpec) hasSetter() bool {
	switch f.kind {
	case fieldString:
		return f.setString != nil
	case fieldBool:
		return f.setBool != nil
	case fieldTimestamp:
		return f.setTime != nil
	case fieldIntList:
		return f.setInts != nil
	case fieldStringList:
		return f.setStrings != nil
	case fieldDone, fieldDoneBy:
		return true
	default:
		return false
	}
}

// apply decodes node into report. Field-local problems are returned as
// the first result; only a fatal problem is returned as the error.
func (f fieldSpec) apply(report *types.BugReport, node *soap.Value) ([]error, error) {
	switch f.kind {
	case fieldString:
		text, err := soap.DecodeOptionalBase64String(node, f.base64)
		f.setString(report, text)
		if err != nil {
			return []error{err}, nil
		}
	case fieldBool:
		value, err := soap.DecodeBool(node)
		f.setBool(report, value)
		if err != nil {
			return []error{err}, nil
		}
	case fieldDone:
		applyDone(report, node)
	case fieldDoneBy:
		if doneBy := soap.DecodeDoneBy(node); doneBy != "" {
			report.DoneBy = doneBy
		}
	case fieldTimestamp:
		value, err := soap.DecodeTimestamp(node)
		if err != nil {
			return nil, err
		}
		f.setTime(report, value)
	case fieldIntList:
		values, errs := soap.DecodeIntList(node, f.split)
		f.setInts(report, values)
		return errs, nil
	case fieldStringList:
		values, errs := soap.DecodeStringList(node, f.split)
		f.setStrings(report, values)
		return errs, nil
	}
	return nil, nil
}

// applyDone handles the service's habit of putting the closer's address
// into done instead of a boolean.
func applyDone(report *types.BugReport, node *soap.Value) {
	if node == nil {
		return
	}
	if value, err := soap.DecodeBool(node); err == nil {
		report.Done = value
		return
	}
	report.Done = true
	if report.DoneBy == "" {
		report.DoneBy = soap.DecodeDoneBy(node)
	}
}
