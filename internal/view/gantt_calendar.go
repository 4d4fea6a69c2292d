package view

import (
	"context"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// GanttRow is one item bar in listGantt/gantt_range.
type GanttRow struct {
	Item       *types.Item          `json:"item"`
	BarStartAt *int64               `json:"bar_start_at"`
	BarEndAt   *int64               `json:"bar_end_at"`
	Edges      []DependencyEdgeView `json:"edges"`
}

// ListGantt implements listGantt/gantt_range: items within an optional
// time window, with bar_start_at/bar_end_at being a task's own schedule
// envelope or a non-task's rollup envelope.
func (e *Engine) ListGantt(ctx context.Context, raw map[string]any) ([]GanttRow, error) {
	d, err := loadDataset(ctx, e.Store, e.nowMillis())
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

	var rows []GanttRow
	for _, it := range items {
		start, end := d.endpoints(it.ID)
		if hasWindow {
			if end != nil && *end <= timeMin {
				continue
			}
			if start != nil && *start >= timeMax {
				continue
			}
		}
		var edges []DependencyEdgeView
		for _, dep := range d.depsBySucc[it.ID] {
			edges = append(edges, d.edgeView(dep))
		}
		rows = append(rows, GanttRow{Item: it, BarStartAt: start, BarEndAt: end, Edges: edges})
	}
	return rows, nil
}

// CalendarBlocksResult is the result of listCalendarBlocks/calendar_range.
type CalendarBlocksResult struct {
	Blocks []*types.ScheduledBlock `json:"blocks"`
	Items  []*types.Item           `json:"due_items"`
}

// ListCalendarBlocks implements listCalendarBlocks / calendar_range /
// calendar_range_user(s): blocks overlapping [time_min, time_max) plus
// items due in the same window, within scope. A userId arg
// (singular or as a userIds list) narrows via the assignee scope rule.
func (e *Engine) ListCalendarBlocks(ctx context.Context, raw map[string]any) (*CalendarBlocksResult, error) {
	d, err := loadDataset(ctx, e.Store, e.nowMillis())
	if err != nil {
		return nil, err
	}
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	userIDs := map[string]bool{argString(raw, "userId"): true}
	if list, ok := raw["userIds"].([]any); ok {
		for _, u := range list {
			if s, ok := u.(string); ok {
				userIDs[s] = true
			}
		}
	}
	delete(userIDs, "")
	if len(userIDs) > 0 {
		for id := range inScope {
			if !userIDs[d.assigneeOf[id]] {
				delete(inScope, id)
			}
		}
	}
	archiveFilter := parseArchiveFilter(raw)
	items := d.filterArchive(inScope, archiveFilter)
	itemSet := make(map[string]bool, len(items))
	for _, it := range items {
		itemSet[it.ID] = true
	}

	timeMin := argInt64(raw, "time_min", 0)
	timeMax := argInt64(raw, "time_max", 0)

	res := &CalendarBlocksResult{}
	for _, b := range d.blocks {
		if !itemSet[b.ItemID] {
			continue
		}
		if b.StartAt < timeMax && b.EndAt() > timeMin {
			res.Blocks = append(res.Blocks, b)
		}
	}
	for _, it := range items {
		if it.DueAt != nil && *it.DueAt >= timeMin && *it.DueAt < timeMax {
			res.Items = append(res.Items, it)
		}
	}
	return res, nil
}
