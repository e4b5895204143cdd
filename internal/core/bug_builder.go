package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"debianbts/internal/soap"
	"debianbts/internal/types"
)

// BuildBugReport maps one get_status struct onto a BugReport. Unknown
// members are ignored. Field-level decode problems are logged and leave
// that field at its zero value; a missing bug_num or timestamp fails the
// whole record.
func BuildBugReport(ctx context.Context, node *soap.Value) (types.BugReport, error) {
	report, fieldErrs, err := buildBugReport(node)
	if err != nil {
		return types.BugReport{}, err
	}
	for _, fieldErr := range fieldErrs {
		log.Ctx(ctx).Warn().
			Err(fieldErr).
			Int("bug_num", report.BugNum).
			Msg("bug field decode failed")
	}
	return report, nil
}

func buildBugReport(node *soap.Value) (types.BugReport, []error, error) {
	if node == nil {
		return types.BugReport{}, nil, types.MalformedReplyError("bug status is absent", nil)
	}
	numNode := node.Child("bug_num")
	if numNode == nil {
		return types.BugReport{}, nil, types.MalformedReplyError("bug status has no bug_num", nil)
	}
	bugNum, err := soap.DecodeInt(numNode)
	if err != nil {
		return types.BugReport{}, nil, types.MalformedReplyError("bug_num is not an integer", err)
	}
	if bugNum <= 0 {
		return types.BugReport{}, nil, types.MalformedReplyError(fmt.Sprintf("bug_num must be positive: %d", bugNum), nil)
	}

	report := types.NewBugReport(bugNum)
	var fieldErrs []error
	for _, spec := range fieldTable {
		errs, err := spec.apply(&report, node.Child(spec.name))
		if err != nil {
			return types.BugReport{}, nil, err
		}
		fieldErrs = append(fieldErrs, errs...)
	}
	return report, fieldErrs, nil
}
