package core

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"debianbts/internal/soap"
	"debianbts/internal/types"
)

// Batcher fetches bug statuses for any number of ids, one get_status
// round trip per chunk of at most ChunkSize ids.
type Batcher struct {
	Caller    Caller
	ChunkSize int
	Parallel  int
}

func NewBatcher(caller Caller, chunkSize int, parallel int) Batcher {
	return Batcher{Caller: caller, ChunkSize: chunkSize, Parallel: parallel}
}

// FetchByIDs deduplicates ids, splits them into chunks and concatenates
// the per-chunk results in chunk submission order. Any chunk failure
// fails the whole call. Empty input makes no round trips.
func (b Batcher) FetchByIDs(ctx context.Context, ids []int) ([]types.BugReport, error) {
	if b.ChunkSize <= 0 {
		return nil, types.ConfigurationError("chunk size must be positive")
	}
	chunks := chunkIDs(dedupeIDs(ids), b.ChunkSize)
	if len(chunks) == 0 {
		return []types.BugReport{}, nil
	}
	log.Ctx(ctx).Debug().
		Int("ids", len(ids)).
		Int("chunks", len(chunks)).
		Msg("fetching bug statuses")

	results := make([][]types.BugReport, len(chunks))
	if b.Parallel > 1 && len(chunks) > 1 {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(b.Parallel)
		for i, chunk := range chunks {
			g.Go(func() error {
				reports, err := b.fetchChunk(gCtx, chunk)
				if err != nil {
					return err
				}
				results[i] = reports
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, chunk := range chunks {
			reports, err := b.fetchChunk(ctx, chunk)
			if err != nil {
				return nil, err
			}
			results[i] = reports
		}
	}

	total := 0
	for _, reports := range results {
		total += len(reports)
	}
	merged := make([]types.BugReport, 0, total)
	for _, reports := range results {
		merged = append(merged, reports...)
	}
	return merged, nil
}

func (b Batcher) fetchChunk(ctx context.Context, chunk []int) ([]types.BugReport, error) {
	reply, err := b.Caller.Call(ctx, OpGetStatus, chunk)
	if err != nil {
		return nil, err
	}
	return decodeStatusReply(ctx, reply)
}

// decodeStatusReply walks the get_status map of item{key, value}.
func decodeStatusReply(ctx context.Context, reply soap.Reply) ([]types.BugReport, error) {
	result := reply.Result()
	reports := []types.BugReport{}
	if result == nil {
		return reports, nil
	}
	for i := range result.Children {
		item := &result.Children[i]
		value := item.Child("value")
		if value == nil {
			value = item.Index(1)
		}
		if value == nil {
			return nil, types.MalformedReplyError("get_status item has no value", nil)
		}
		report, err := BuildBugReport(ctx, value)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// dedupeIDs keeps the first occurrence of every id.
func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func chunkIDs(ids []int, size int) [][]int {
	var chunks [][]int
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
