package core

import (
	"context"
	"fmt"

	"debianbts/internal/ports"
	"debianbts/internal/types"
)

// BugTracker implements ports.BugTrackerPort on top of one Caller. The
// operations are thin: build arguments, call, decode the reply.
type BugTracker struct {
	caller  Caller
	batcher Batcher
}

func NewBugTracker(transport ports.TransportPort, cfg types.ClientConfig) BugTracker {
	caller := NewCaller(transport, cfg.Namespace)
	return BugTracker{
		caller:  caller,
		batcher: NewBatcher(caller, cfg.ChunkSize, cfg.Parallel),
	}
}

var _ ports.BugTrackerPort = BugTracker{}

// GetBugs flattens the filters into key/value argument pairs in the
// order given. The bugs filter travels as an int array.
func (t BugTracker) GetBugs(ctx context.Context, filters []types.BugFilter) ([]int, error) {
	args, err := filterArgs(filters)
	if err != nil {
		return nil, err
	}
	reply, err := t.caller.Call(ctx, OpGetBugs, args...)
	if err != nil {
		return nil, err
	}
	return decodeIDList(reply)
}

func filterArgs(filters []types.BugFilter) ([]any, error) {
	args := make([]any, 0, len(filters)*2)
	seen := map[types.FilterKey]struct{}{}
	for _, filter := range filters {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[filter.Key]; ok {
			return nil, types.ConfigurationError(fmt.Sprintf("filter %s given more than once", filter.Key))
		}
		seen[filter.Key] = struct{}{}
		if filter.Key == types.FilterBugs {
			args = append(args, string(filter.Key), filter.Bugs)
			continue
		}
		args = append(args, string(filter.Key), filter.Value)
	}
	return args, nil
}

func (t BugTracker) GetStatus(ctx context.Context, ids []int) ([]types.BugReport, error) {
	return t.batcher.FetchByIDs(ctx, ids)
}

// GetUsertags returns every usertag of email, or only the named tags.
// Each tag is sent as its own argument after the address.
func (t BugTracker) GetUsertags(ctx context.Context, email string, tags []string) (map[string][]int, error) {
	if email == "" {
		return nil, types.ConfigurationError("usertags require an email address")
	}
	args := make([]any, 0, len(tags)+1)
	args = append(args, email)
	for _, tag := range tags {
		args = append(args, tag)
	}
	reply, err := t.caller.Call(ctx, OpGetUsertag, args...)
	if err != nil {
		return nil, err
	}
	return decodeUsertags(reply)
}

func (t BugTracker) GetBugLog(ctx context.Context, id int) ([]types.BugLogEntry, error) {
	if id <= 0 {
		return nil, types.ConfigurationError(fmt.Sprintf("bug number must be positive: %d", id))
	}
	reply, err := t.caller.Call(ctx, OpGetBugLog, id)
	if err != nil {
		return nil, err
	}
	return decodeBugLogReply(ctx, reply)
}

func (t BugTracker) NewestBugs(ctx context.Context, count int) ([]int, error) {
	if count < 0 {
		return nil, types.ConfigurationError(fmt.Sprintf("count must not be negative: %d", count))
	}
	if count == 0 {
		return []int{}, nil
	}
	reply, err := t.caller.Call(ctx, OpNewestBugs, count)
	if err != nil {
		return nil, err
	}
	return decodeIDList(reply)
}
