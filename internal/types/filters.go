package types

import (
	"fmt"
	"strings"
)

// FilterKey names one get_bugs search criterion.
type FilterKey string

const (
	FilterPackage       FilterKey = "package"
	FilterSubmitter     FilterKey = "submitter"
	FilterMaint         FilterKey = "maint"
	FilterSrc           FilterKey = "src"
	FilterSeverity      FilterKey = "severity"
	FilterStatus        FilterKey = "status"
	FilterTag           FilterKey = "tag"
	FilterOwner         FilterKey = "owner"
	FilterBugs          FilterKey = "bugs"
	FilterCorrespondent FilterKey = "correspondent"
	FilterAffects       FilterKey = "affects"
	FilterArchive       FilterKey = "archive"
)

var knownFilterKeys = map[FilterKey]struct{}{
	FilterPackage:       {},
	FilterSubmitter:     {},
	FilterMaint:         {},
	FilterSrc:           {},
	FilterSeverity:      {},
	FilterStatus:        {},
	FilterTag:           {},
	FilterOwner:         {},
	FilterBugs:          {},
	FilterCorrespondent: {},
	FilterAffects:       {},
	FilterArchive:       {},
}

var validStatuses = map[string]struct{}{
	"done":      {},
	"forwarded": {},
	"open":      {},
}

var validArchiveValues = map[string]struct{}{
	"0":    {},
	"1":    {},
	"both": {},
}

// BugFilter is one get_bugs criterion. Bugs is used only by FilterBugs,
// Value by every other key.
type BugFilter struct {
	Key   FilterKey
	Value string
	Bugs  []int
}

// ParseFilterKey maps a user supplied name onto a known key.
func ParseFilterKey(name string) (FilterKey, error) {
	key := FilterKey(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := knownFilterKeys[key]; !ok {
		return "", ConfigurationError(fmt.Sprintf("unknown filter: %s", name))
	}
	return key, nil
}

// Validate rejects unknown keys and values outside the service's accepted
// vocabulary for the enumerated keys.
func (f BugFilter) Validate() error {
	if _, ok := knownFilterKeys[f.Key]; !ok {
		return ConfigurationError(fmt.Sprintf("unknown filter: %s", f.Key))
	}
	if f.Key == FilterBugs {
		if len(f.Bugs) == 0 {
			return ConfigurationError("bugs filter requires at least one bug number")
		}
		return nil
	}
	value := strings.TrimSpace(f.Value)
	if value == "" {
		return ConfigurationError(fmt.Sprintf("filter %s has an empty value", f.Key))
	}
	switch f.Key {
	case FilterSeverity:
		if !Severity(value).Valid() {
			return ConfigurationError(fmt.Sprintf("unknown severity: %s", value))
		}
	case FilterStatus:
		if _, ok := validStatuses[value]; !ok {
			return ConfigurationError(fmt.Sprintf("status must be done, forwarded or open: %s", value))
		}
	case FilterArchive:
		if _, ok := validArchiveValues[value]; !ok {
			return ConfigurationError(fmt.Sprintf("archive must be 0, 1 or both: %s", value))
		}
	}
	return nil
}
