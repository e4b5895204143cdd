package policies

import (
	"fmt"
	"strings"

	debversion "github.com/knqyf263/go-deb-version"

	"debianbts/internal/types"
)

// AffectsVersion reports whether bug is present in version: some found
// version is at or below it and no fixed version lies after that found
// version and at or below the queried one. BTS versions may carry a
// "source/" prefix, which is ignored.
func AffectsVersion(bug types.BugReport, version string) (bool, error) {
	target, err := debversion.NewVersion(stripSource(version))
	if err != nil {
		return false, types.ConfigurationError(fmt.Sprintf("invalid Debian version %q: %v", version, err))
	}
	found, err := parseVersions(bug.FoundVersions)
	if err != nil {
		return false, err
	}
	fixed, err := parseVersions(bug.FixedVersions)
	if err != nil {
		return false, err
	}

	for _, f := range found {
		if f.GreaterThan(target) {
			continue
		}
		fixedInRange := false
		for _, x := range fixed {
			if x.GreaterThan(f) && !x.GreaterThan(target) {
				fixedInRange = true
				break
			}
		}
		if !fixedInRange {
			return true, nil
		}
	}
	return false, nil
}

// FilterAffecting keeps the bugs that affect version, in order.
func FilterAffecting(bugs []types.BugReport, version string) ([]types.BugReport, error) {
	kept := make([]types.BugReport, 0, len(bugs))
	for _, bug := range bugs {
		ok, err := AffectsVersion(bug, version)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, bug)
		}
	}
	return kept, nil
}

func parseVersions(values []string) ([]debversion.Version, error) {
	parsed := make([]debversion.Version, 0, len(values))
	for _, value := range values {
		v, err := debversion.NewVersion(stripSource(value))
		if err != nil {
			return nil, types.DecodeError("version", fmt.Sprintf("invalid Debian version %q", value), err)
		}
		parsed = append(parsed, v)
	}
	return parsed, nil
}

func stripSource(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.LastIndex(value, "/"); idx >= 0 {
		return value[idx+1:]
	}
	return value
}
