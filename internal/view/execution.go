package view

import (
	"context"
	"fmt"
	"sort"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

const (
	defaultScheduledMax  = 12
	maxScheduledMax      = 50
	defaultActionableMax = 8
	defaultNextUpHours   = 2
)

// ScheduledEntry is one row of execution_window's "scheduled" list.
type ScheduledEntry struct {
	Block  *types.ScheduledBlock `json:"block"`
	Item   *types.Item           `json:"item"`
	Bucket string                `json:"bucket"`
}

// ActionableEntry is one row of execution_window's actionable/unscheduled
// lists.
type ActionableEntry struct {
	Item        *types.Item `json:"item"`
	SlackMinutes *int64     `json:"slack_minutes"`
}

// ExecutionWindowMeta carries totals and truncation flags per list.
type ExecutionWindowMeta struct {
	ScheduledTotal        int  `json:"scheduled_total"`
	ScheduledTruncated    bool `json:"scheduled_truncated"`
	ActionableTotal       int  `json:"actionable_total"`
	ActionableTruncated   bool `json:"actionable_truncated"`
	UnscheduledTotal      int  `json:"unscheduled_total"`
	UnscheduledTruncated  bool `json:"unscheduled_truncated"`
}

// ExecutionWindowResult is the result of execution_window.
type ExecutionWindowResult struct {
	Scheduled       []ScheduledEntry  `json:"scheduled"`
	ActionableNow   []ActionableEntry `json:"actionable_now"`
	UnscheduledReady []ActionableEntry `json:"unscheduled_ready"`
	Meta            ExecutionWindowMeta `json:"meta"`
}

func clampInt(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// ExecutionWindow implements execution_window's triage.
func (e *Engine) ExecutionWindow(ctx context.Context, raw map[string]any) (*ExecutionWindowResult, error) {
	timeMin := argInt64(raw, "time_min", 0)
	timeMax := argInt64(raw, "time_max", 0)
	if timeMax <= timeMin {
		return nil, fmt.Errorf("time_max must be greater than time_min")
	}
	nowAt := argInt64(raw, "now_at", e.nowMillis())
	scheduledMax := clampInt(argInt(raw, "scheduled_max", defaultScheduledMax), defaultScheduledMax, maxScheduledMax)
	actionableMax := clampInt(argInt(raw, "actionable_max", defaultActionableMax), defaultActionableMax, 1<<30)
	unscheduledMax := clampInt(argInt(raw, "unscheduled_max", 0), maxInt(16, 2*actionableMax), 1<<30)
	nextUpHours := argInt(raw, "next_up_hours", defaultNextUpHours)
	nextUpMs := int64(nextUpHours) * 3600000

	d, err := loadDataset(ctx, e.Store, nowAt)
	if err != nil {
		return nil, err
	}
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	items := d.filterArchive(inScope, types.ArchiveActive)
	itemSet := make(map[string]*types.Item, len(items))
	for _, it := range items {
		itemSet[it.ID] = it
	}

	var scheduled []ScheduledEntry
	scheduledItemIDs := make(map[string]bool)
	for _, b := range d.blocks {
		it, inScope := itemSet[b.ItemID]
		if !inScope {
			continue
		}
		start := b.StartAt
		end := b.EndAt()
		if end <= timeMin || start >= timeMax {
			continue
		}
		var bucket string
		switch {
		case start <= nowAt && nowAt < end:
			bucket = "active"
		case start >= nowAt && start < nowAt+nextUpMs:
			bucket = "upcoming"
		default:
			bucket = "later"
		}
		scheduled = append(scheduled, ScheduledEntry{Block: b, Item: it, Bucket: bucket})
		scheduledItemIDs[b.ItemID] = true
	}
	bucketRank := map[string]int{"active": 0, "upcoming": 1, "later": 2}
	sort.SliceStable(scheduled, func(i, j int) bool {
		bi, bj := bucketRank[scheduled[i].Bucket], bucketRank[scheduled[j].Bucket]
		if bi != bj {
			return bi < bj
		}
		if scheduled[i].Block.StartAt != scheduled[j].Block.StartAt {
			return scheduled[i].Block.StartAt < scheduled[j].Block.StartAt
		}
		return scheduled[i].Item.Title < scheduled[j].Item.Title
	})
	scheduledTotal := len(scheduled)
	scheduledTruncated := scheduledTotal > scheduledMax
	if scheduledTruncated {
		scheduled = scheduled[:scheduledMax]
	}

	isActionableCandidate := func(it *types.Item) bool {
		switch it.Status {
		case types.StatusReady, types.StatusInProgress, types.StatusReview:
		default:
			return false
		}
		if d.blockedState[it.ID].IsBlocked() {
			return false
		}
		return !scheduledItemIDs[it.ID]
	}

	var candidates []*types.Item
	for _, it := range items {
		if isActionableCandidate(it) {
			candidates = append(candidates, it)
		}
	}

	actionableLess := func(a, b *types.Item) bool {
		sa, sb := slackMinutes(a, d), slackMinutes(b, d)
		if (sa == nil) != (sb == nil) {
			return sa != nil
		}
		if sa != nil && sb != nil && *sa != *sb {
			return *sa < *sb
		}
		if !dueAtEqual(a.DueAt, b.DueAt) {
			return dueAtLess(a.DueAt, b.DueAt)
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		as, bs := d.schedules[a.ID], d.schedules[b.ID]
		if !startAtEqual(as.EarliestStartAt, bs.EarliestStartAt) {
			return dueAtLess(as.EarliestStartAt, bs.EarliestStartAt)
		}
		return a.Title < b.Title
	}
	sort.SliceStable(candidates, func(i, j int) bool { return actionableLess(candidates[i], candidates[j]) })

	actionableTotal := len(candidates)
	actionableCount := actionableTotal
	if actionableCount > actionableMax {
		actionableCount = actionableMax
	}
	actionableItems := candidates[:actionableCount]
	actionableSet := make(map[string]bool, len(actionableItems))
	var actionableNow []ActionableEntry
	for _, it := range actionableItems {
		actionableSet[it.ID] = true
		actionableNow = append(actionableNow, ActionableEntry{Item: it, SlackMinutes: slackMinutes(it, d)})
	}

	var unscheduledCandidates []*types.Item
	for _, it := range candidates {
		if !actionableSet[it.ID] {
			unscheduledCandidates = append(unscheduledCandidates, it)
		}
	}
	sort.SliceStable(unscheduledCandidates, func(i, j int) bool {
		a, b := unscheduledCandidates[i], unscheduledCandidates[j]
		ra := SequenceRank(a, DueMetrics(a, nowAt, 0), false, d.dependentsOf[a.ID])
		rb := SequenceRank(b, DueMetrics(b, nowAt, 0), false, d.dependentsOf[b.ID])
		if ra != rb {
			return ra < rb
		}
		return actionableLess(a, b)
	})
	unscheduledTotal := len(unscheduledCandidates)
	unscheduledTruncated := unscheduledTotal > unscheduledMax
	if unscheduledTruncated {
		unscheduledCandidates = unscheduledCandidates[:unscheduledMax]
	}
	var unscheduledReady []ActionableEntry
	for _, it := range unscheduledCandidates {
		unscheduledReady = append(unscheduledReady, ActionableEntry{Item: it, SlackMinutes: slackMinutes(it, d)})
	}

	return &ExecutionWindowResult{
		Scheduled:        scheduled,
		ActionableNow:    actionableNow,
		UnscheduledReady: unscheduledReady,
		Meta: ExecutionWindowMeta{
			ScheduledTotal: scheduledTotal, ScheduledTruncated: scheduledTruncated,
			ActionableTotal: actionableTotal, ActionableTruncated: actionableTotal > actionableMax,
			UnscheduledTotal: unscheduledTotal, UnscheduledTruncated: unscheduledTruncated,
		},
	}, nil
}

// slackMinutes is due_at - planned_end_at in minutes; nil if either is
// unknown (glossary: Slack).
func slackMinutes(it *types.Item, d *dataset) *int64 {
	if it.DueAt == nil {
		return nil
	}
	s := d.schedules[it.ID]
	if s.LatestEndAt == nil {
		return nil
	}
	slack := (*it.DueAt - *s.LatestEndAt) / 60000
	return &slack
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// BlockedViewResult groups blocked items by cause.
type BlockedViewResult struct {
	BlockedByDependencies []*types.Item `json:"blocked_by_dependencies"`
	BlockedByBlockers     []*types.Item `json:"blocked_by_blockers"`
	ScheduledButBlocked   []*types.Item `json:"scheduled_but_blocked"`
}

// BlockedView implements blocked_view.
func (e *Engine) BlockedView(ctx context.Context, raw map[string]any) (*BlockedViewResult, error) {
	now := e.nowMillis()
	d, err := loadDataset(ctx, e.Store, now)
	if err != nil {
		return nil, err
	}
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	archiveFilter := parseArchiveFilter(raw)
	items := d.filterArchive(inScope, archiveFilter)

	timeMin := argInt64(raw, "time_min", 0)
	timeMax := argInt64(raw, "time_max", 0)
	hasWindow := timeMax > timeMin

	res := &BlockedViewResult{}
	for _, it := range items {
		st, ok := d.blockedState[it.ID]
		if !ok || !st.IsBlocked() {
			continue
		}
		if st.HasUnmetDep {
			res.BlockedByDependencies = append(res.BlockedByDependencies, it)
		}
		if st.HasActiveBlocker {
			res.BlockedByBlockers = append(res.BlockedByBlockers, it)
		}
		if s, hasBlock := d.schedules[it.ID]; hasBlock && s.BlockCount > 0 {
			if !hasWindow || (s.EarliestStartAt != nil && *s.EarliestStartAt < timeMax && s.LatestEndAt != nil && *s.LatestEndAt > timeMin) {
				res.ScheduledButBlocked = append(res.ScheduledButBlocked, it)
			}
		}
	}
	return res, nil
}

// DueOverdueResult groups items by due status.
type DueOverdueResult struct {
	DueSoon  []*types.Item `json:"due_soon"`
	Overdue  []*types.Item `json:"overdue"`
	Projects []*types.Item `json:"projects"`
}

// DueOverdue implements due_overdue(now_at, due_soon_days).
func (e *Engine) DueOverdue(ctx context.Context, raw map[string]any) (*DueOverdueResult, error) {
	nowAt := argInt64(raw, "now_at", e.nowMillis())
	dueSoonDays := argInt(raw, "due_soon_days", 7)
	d, err := loadDataset(ctx, e.Store, nowAt)
	if err != nil {
		return nil, err
	}
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	items := d.filterArchive(inScope, types.ArchiveActive)

	res := &DueOverdueResult{}
	windowEnd := nowAt + int64(dueSoonDays)*dayMillis
	for _, it := range items {
		if it.DueAt == nil {
			continue
		}
		due := DueMetrics(it, nowAt, dueSoonDays)
		if due.IsOverdue {
			res.Overdue = append(res.Overdue, it)
		} else if *it.DueAt >= nowAt && *it.DueAt < windowEnd && dueSoonDays > 0 {
			res.DueSoon = append(res.DueSoon, it)
		}
		if it.Type == types.ItemProject {
			res.Projects = append(res.Projects, it)
		}
	}
	return res, nil
}

// ContributionsResult is one local-day bucket of contributions_range.
type ContributionsResult struct {
	DayStart  int64 `json:"day_start"`
	Completed int   `json:"completed"`
}

// ContributionsRange counts completed_at per local day across the scope.
func (e *Engine) ContributionsRange(ctx context.Context, raw map[string]any) ([]ContributionsResult, error) {
	dayStart := argInt64(raw, "day_start_local", 0)
	dayCount := argInt(raw, "day_count", 0)
	if dayCount <= 0 {
		return nil, fmt.Errorf("day_count must be positive")
	}
	includeSubtasks := argBool(raw, "includeSubtasks")
	includeMilestones := argBool(raw, "includeMilestones")
	includeProjects := argBool(raw, "includeProjects")

	d, err := loadDataset(ctx, e.Store, e.nowMillis())
	if err != nil {
		return nil, err
	}
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	items := d.filterArchive(inScope, types.ArchiveAll)

	buckets := make([]ContributionsResult, dayCount)
	for i := range buckets {
		buckets[i].DayStart = dayStart + int64(i)*dayMillis
	}
	for _, it := range items {
		if it.CompletedAt == nil {
			continue
		}
		switch it.Type {
		case types.ItemTask:
			if !includeSubtasks {
				continue
			}
		case types.ItemMilestone:
			if !includeMilestones {
				continue
			}
		case types.ItemProject:
			if !includeProjects {
				continue
			}
		}
		idx := int(floorDivInt64(*it.CompletedAt-dayStart, dayMillis))
		if idx >= 0 && idx < dayCount {
			buckets[idx].Completed++
		}
	}
	return buckets, nil
}
