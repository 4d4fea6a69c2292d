// Package schedule computes the per-item scheduled-block aggregate:
// block count, total planned minutes, and earliest-start/latest-end span.
package schedule

import (
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// Summary is the scheduled-block rollup for one item (its own blocks
// only; the rollup engine aggregates this further up the tree).
type Summary struct {
	BlockCount      int
	TotalMinutes    int
	EarliestStartAt *int64
	LatestEndAt     *int64
}

// Build aggregates a flat scheduled_blocks set into one Summary per item.
func Build(blocks []*types.ScheduledBlock) map[string]Summary {
	out := make(map[string]Summary)
	for _, b := range blocks {
		s := out[b.ItemID]
		s.BlockCount++
		s.TotalMinutes += b.DurationMinutes
		start := b.StartAt
		end := b.EndAt()
		if s.EarliestStartAt == nil || start < *s.EarliestStartAt {
			s.EarliestStartAt = &start
		}
		if s.LatestEndAt == nil || end > *s.LatestEndAt {
			s.LatestEndAt = &end
		}
		out[b.ItemID] = s
	}
	return out
}

// StartEndMaps splits a Summary map into the two pointer maps the rollup
// engine's Inputs expects.
func StartEndMaps(summaries map[string]Summary) (start, end map[string]*int64) {
	start = make(map[string]*int64, len(summaries))
	end = make(map[string]*int64, len(summaries))
	for id, s := range summaries {
		start[id] = s.EarliestStartAt
		end[id] = s.LatestEndAt
	}
	return start, end
}
