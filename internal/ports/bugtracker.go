package ports

import (
	"context"

	"debianbts/internal/types"
)

// BugTrackerPort is the remote operation surface the app layer composes.
type BugTrackerPort interface {
	GetBugs(ctx context.Context, filters []types.BugFilter) ([]int, error)
	GetStatus(ctx context.Context, ids []int) ([]types.BugReport, error)
	GetUsertags(ctx context.Context, email string, tags []string) (map[string][]int, error)
	GetBugLog(ctx context.Context, id int) ([]types.BugLogEntry, error)
	NewestBugs(ctx context.Context, count int) ([]int, error)
}
