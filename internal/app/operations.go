package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"debianbts/internal/policies"
)

func (s Service) GetBugs(ctx context.Context, req BugsRequest) (BugsResult, error) {
	ids, err := s.BugTracker.GetBugs(ctx, req.Filters)
	if err != nil {
		return BugsResult{}, err
	}
	log.Ctx(ctx).Info().Int("filters", len(req.Filters)).Int("bugs", len(ids)).Msg("get_bugs done")
	return BugsResult{IDs: ids}, nil
}

func (s Service) GetStatus(ctx context.Context, req StatusRequest) (StatusResult, error) {
	start := s.now()
	reports, err := s.BugTracker.GetStatus(ctx, req.IDs)
	if err != nil {
		return StatusResult{}, err
	}
	if req.AffectsVersion != "" {
		reports, err = policies.FilterAffecting(reports, req.AffectsVersion)
		if err != nil {
			return StatusResult{}, err
		}
	}
	if req.SortByUrgency {
		policies.SortByUrgency(reports)
	}
	log.Ctx(ctx).Info().
		Int("requested", len(req.IDs)).
		Int("reports", len(reports)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("get_status done")
	return StatusResult{Reports: reports}, nil
}

func (s Service) GetUsertags(ctx context.Context, req UsertagsRequest) (UsertagsResult, error) {
	mapping, err := s.BugTracker.GetUsertags(ctx, req.Email, req.Tags)
	if err != nil {
		return UsertagsResult{}, err
	}
	return UsertagsResult{Usertags: mapping}, nil
}

func (s Service) GetBugLog(ctx context.Context, req BugLogRequest) (BugLogResult, error) {
	entries, err := s.BugTracker.GetBugLog(ctx, req.ID)
	if err != nil {
		return BugLogResult{}, err
	}
	log.Ctx(ctx).Info().Int("bug", req.ID).Int("messages", len(entries)).Msg("get_bug_log done")
	return BugLogResult{Entries: entries}, nil
}

func (s Service) NewestBugs(ctx context.Context, req NewestRequest) (NewestResult, error) {
	ids, err := s.BugTracker.NewestBugs(ctx, req.Count)
	if err != nil {
		return NewestResult{}, err
	}
	return NewestResult{IDs: ids}, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
