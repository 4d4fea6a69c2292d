package view

import (
	"context"
	"sort"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

var kanbanColumns = []types.Status{
	types.StatusBacklog, types.StatusReady, types.StatusInProgress,
	types.StatusBlocked, types.StatusReview, types.StatusDone, types.StatusCanceled,
}

// KanbanLane is one swimlane of listKanban/kanban_view.
type KanbanLane struct {
	Key     string                        `json:"key"`
	Columns map[types.Status][]*types.Item `json:"columns"`
}

// ListKanban groups items by status within optional swimlanes
// (none|assignee|project|health), column order fixed, within-column sort
// by priority desc, due_at asc (nulls last), planned_start_at asc, title
// asc.
func (e *Engine) ListKanban(ctx context.Context, raw map[string]any) ([]KanbanLane, error) {
	now := e.nowMillis()
	d, err := loadDataset(ctx, e.Store, now)
	if err != nil {
		return nil, err
	}
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	archiveFilter := parseArchiveFilter(raw)
	items := d.filterArchive(inScope, archiveFilter)

	swimlane := argString(raw, "swimlane")
	laneOf := func(it *types.Item) string {
		switch swimlane {
		case "assignee":
			if a, ok := d.assigneeOf[it.ID]; ok {
				return a
			}
			return "unassigned"
		case "project":
			return d.idx.ProjectOf(it.ID)
		case "health":
			return string(it.Health)
		default:
			return ""
		}
	}

	laneItems := make(map[string][]*types.Item)
	var laneKeys []string
	for _, it := range items {
		key := laneOf(it)
		if _, seen := laneItems[key]; !seen {
			laneKeys = append(laneKeys, key)
		}
		laneItems[key] = append(laneItems[key], it)
	}
	sort.Strings(laneKeys)

	lanes := make([]KanbanLane, 0, len(laneKeys))
	for _, key := range laneKeys {
		columns := make(map[types.Status][]*types.Item, len(kanbanColumns))
		for _, col := range kanbanColumns {
			columns[col] = nil
		}
		for _, it := range laneItems[key] {
			columns[it.Status] = append(columns[it.Status], it)
		}
		for _, col := range kanbanColumns {
			rows := columns[col]
			sort.SliceStable(rows, func(i, j int) bool {
				return kanbanColumnLess(rows[i], rows[j], d)
			})
			columns[col] = rows
		}
		lanes = append(lanes, KanbanLane{Key: key, Columns: columns})
	}
	return lanes, nil
}

func kanbanColumnLess(a, b *types.Item, d *dataset) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !dueAtEqual(a.DueAt, b.DueAt) {
		return dueAtLess(a.DueAt, b.DueAt)
	}
	as, bs := d.schedules[a.ID], d.schedules[b.ID]
	if !startAtEqual(as.EarliestStartAt, bs.EarliestStartAt) {
		return dueAtLess(as.EarliestStartAt, bs.EarliestStartAt)
	}
	return a.Title < b.Title
}

func dueAtEqual(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func startAtEqual(a, b *int64) bool { return dueAtEqual(a, b) }
