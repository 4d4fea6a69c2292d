package view

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Taj-Howe/planner-kernel/internal/depengine"
	"github.com/Taj-Howe/planner-kernel/internal/hierarchy"
	"github.com/Taj-Howe/planner-kernel/internal/rollup"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func (d *dataset) capacityPerDay() *int {
	raw, ok := d.settings[types.SettingCapacityMinutesPerDay]
	if !ok {
		return nil
	}
	var n int
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil
	}
	return &n
}

// endpoints returns the schedule envelope (start, end) used as an edge's
// pred/succ instants: a task's own scheduled block, or a
// project/milestone's rollup envelope.
func (d *dataset) endpoints(itemID string) (*int64, *int64) {
	if s, ok := d.schedules[itemID]; ok && s.BlockCount > 0 {
		return s.EarliestStartAt, s.LatestEndAt
	}
	r := d.rollupEng.Compute(itemID)
	return r.Start, r.End
}

// DependencyEdgeView is one dependency edge as rendered to a view caller:
// the raw edge plus the predecessor's title and the edge's current
// satisfaction status.
type DependencyEdgeView struct {
	EdgeID        string                `json:"edge_id"`
	SuccessorID   string                `json:"successor_id"`
	PredecessorID string                `json:"predecessor_id"`
	PredecessorTitle string             `json:"predecessor_title"`
	Type          types.DependencyType  `json:"type"`
	LagMinutes    int                   `json:"lag_minutes"`
	Status        depengine.Status      `json:"status"`
}

func (d *dataset) edgeView(dep *types.Dependency) DependencyEdgeView {
	predStart, predEnd := d.endpoints(dep.PredecessorID)
	succStart, succEnd := d.endpoints(dep.SuccessorID)
	title := ""
	if it, ok := d.itemsByID[dep.PredecessorID]; ok {
		title = it.Title
	}
	status := depengine.Evaluate(dep.Type, dep.LagMinutes, depengine.Endpoints{
		PredStart: predStart, PredEnd: predEnd, SuccStart: succStart, SuccEnd: succEnd,
	})
	return DependencyEdgeView{
		EdgeID:           types.EdgeID(dep.SuccessorID, dep.PredecessorID),
		SuccessorID:      dep.SuccessorID,
		PredecessorID:    dep.PredecessorID,
		PredecessorTitle: title,
		Type:             dep.Type,
		LagMinutes:       dep.LagMinutes,
		Status:           status,
	}
}

// ItemDetails is the result of getItemDetails.
type ItemDetails struct {
	Item          *types.Item           `json:"item"`
	ProjectID     string                 `json:"project_id"`
	Depth         int                   `json:"depth"`
	DependsOn     []DependencyEdgeView  `json:"depends_on"`
	AssigneeID    *string                `json:"assignee_id"`
	Tags          []string               `json:"tags"`
	ActiveBlockers []*types.Blocker      `json:"active_blockers"`
	RecentTimeEntries []*types.TimeEntry `json:"recent_time_entries"`
	RunningTimer  *types.RunningTimer    `json:"running_timer"`
	Rollup        rollup.Result          `json:"rollup"`
	Health        types.Health           `json:"computed_health"`
	Due           DueMetricsResult       `json:"due"`
	IsBlocked     bool                   `json:"is_blocked"`
}

// GetItemDetails implements the getItemDetails query.
func (e *Engine) GetItemDetails(ctx context.Context, itemID string) (*ItemDetails, error) {
	now := e.nowMillis()
	d, err := loadDataset(ctx, e.Store, now)
	if err != nil {
		return nil, err
	}
	it, ok := d.itemsByID[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}

	var edges []DependencyEdgeView
	for _, dep := range d.depsBySucc[itemID] {
		edges = append(edges, d.edgeView(dep))
	}

	var activeBlockers []*types.Blocker
	for _, b := range d.blockers {
		if b.ItemID == itemID && b.Active() {
			activeBlockers = append(activeBlockers, b)
		}
	}

	var entries []*types.TimeEntry
	for _, en := range d.entries {
		if en.ItemID == itemID {
			entries = append(entries, en)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StartAt > entries[j].StartAt })
	if len(entries) > 10 {
		entries = entries[:10]
	}

	var runningTimer *types.RunningTimer
	for _, t := range d.timers {
		if t.ItemID == itemID {
			runningTimer = t
			break
		}
	}

	var assigneeID *string
	if a, ok := d.assigneeOf[itemID]; ok {
		assigneeID = &a
	}

	rr := d.rollupEng.Compute(itemID)
	due := DueMetrics(it, now, 0)
	health := it.Health
	if it.HealthMode == types.HealthAuto {
		health = AutoHealth(due, rr.Remaining(), d.capacityPerDay())
	}

	return &ItemDetails{
		Item:              it,
		ProjectID:         d.idx.ProjectOf(itemID),
		Depth:             d.idx.Depth(itemID),
		DependsOn:         edges,
		AssigneeID:        assigneeID,
		Tags:              d.tagsOf[itemID],
		ActiveBlockers:    activeBlockers,
		RecentTimeEntries: entries,
		RunningTimer:      runningTimer,
		Rollup:            rr,
		Health:            health,
		Due:               due,
		IsBlocked:         d.blockedState[itemID].IsBlocked(),
	}, nil
}

// ProjectTreeRow is one row of getProjectTree.
type ProjectTreeRow struct {
	Item      *types.Item     `json:"item"`
	Depth     int             `json:"depth"`
	Rollup    rollup.Result   `json:"rollup"`
	Due       DueMetricsResult `json:"due"`
	Health    types.Health    `json:"computed_health"`
}

// GetProjectTree implements getProjectTree: the subtree of
// projectID in sort order, each row carrying rollups, due-metrics, and
// auto-health.
func (e *Engine) GetProjectTree(ctx context.Context, projectID string) ([]ProjectTreeRow, error) {
	now := e.nowMillis()
	d, err := loadDataset(ctx, e.Store, now)
	if err != nil {
		return nil, err
	}
	ids := d.idx.SubtreeOf([]string{projectID})
	rows := make([]ProjectTreeRow, 0, len(ids))
	capacity := d.capacityPerDay()
	for _, id := range ids {
		it, ok := d.itemsByID[id]
		if !ok {
			continue
		}
		due := DueMetrics(it, now, 0)
		rr := d.rollupEng.Compute(id)
		health := it.Health
		if it.HealthMode == types.HealthAuto {
			health = AutoHealth(due, rr.Remaining(), capacity)
		}
		rows = append(rows, ProjectTreeRow{Item: it, Depth: d.idx.Depth(id), Rollup: rr, Due: due, Health: health})
	}
	sort.SliceStable(rows, func(i, j int) bool { return defaultLess(rows[i].Item, rows[j].Item) })
	return rows, nil
}

func defaultLess(a, b *types.Item) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	if (a.DueAt == nil) != (b.DueAt == nil) {
		return a.DueAt != nil
	}
	if a.DueAt != nil && b.DueAt != nil && *a.DueAt != *b.DueAt {
		return *a.DueAt < *b.DueAt
	}
	return a.Title < b.Title
}

// ListItemsRow is one row of listItems.
type ListItemsRow struct {
	Item         *types.Item           `json:"item"`
	ProjectID    string                 `json:"project_id"`
	Depth        int                    `json:"depth"`
	Rollup       rollup.Result          `json:"rollup"`
	Schedule     interface{}            `json:"schedule"`
	IsBlocked    bool                   `json:"is_blocked"`
	AssigneeID   *string                `json:"assignee_id"`
	Tags         []string               `json:"tags"`
	DependsOn    []DependencyEdgeView  `json:"depends_on"`
	SequenceRank float64                `json:"sequence_rank"`
}

// ListItemsArgs is the filter/sort/paginate input of listItems.
type ListItemsArgs struct {
	Scope          map[string]any
	ArchiveFilter  string
	Status         []string
	Health         string
	AssigneeID     string
	TagID          string
	SearchText     string
	IncludeDone    bool
	IncludeCanceled bool
	IncludeUngrouped bool
	SortKey        string
	SortDesc       bool
	Offset         int
	Limit          int
}

func parseListItemsArgs(args map[string]any) ListItemsArgs {
	var statuses []string
	switch v := args["status"].(type) {
	case string:
		if v != "" {
			statuses = []string{v}
		}
	case []any:
		for _, s := range v {
			if str, ok := s.(string); ok {
				statuses = append(statuses, str)
			}
		}
	}
	scope, _ := args["scope"].(map[string]any)
	return ListItemsArgs{
		Scope:            scope,
		ArchiveFilter:    argString(args, "archiveFilter"),
		Status:           statuses,
		Health:           argString(args, "health"),
		AssigneeID:       argString(args, "assigneeId"),
		TagID:            argString(args, "tagId"),
		SearchText:       argString(args, "searchText"),
		IncludeDone:      argBool(args, "includeDone"),
		IncludeCanceled:  argBool(args, "includeCanceled"),
		IncludeUngrouped: argBool(args, "includeUngrouped"),
		SortKey:          orDefaultStr(argString(args, "sortKey"), "sort_order"),
		SortDesc:         argString(args, "sortDir") == "desc",
		Offset:           argInt(args, "offset", 0),
		Limit:            argInt(args, "limit", 0),
	}
}

func orDefaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ListItems implements listItems: scope+filter+sort+paginate.
//
// Open question (a): includeUngrouped combined with a non-ungrouped
// project scope merges the ungrouped subtree into the scoped result —
// preserved as observed rather than treated as a bug.
func (e *Engine) ListItems(ctx context.Context, raw map[string]any) ([]ListItemsRow, int, error) {
	now := e.nowMillis()
	d, err := loadDataset(ctx, e.Store, now)
	if err != nil {
		return nil, 0, err
	}
	args := parseListItemsArgs(raw)
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	if args.IncludeUngrouped && scope.Kind == hierarchy.ScopeProject && scope.ProjectID != hierarchy.UngroupedSentinel() {
		ungrouped := hierarchy.Scope{Kind: hierarchy.ScopeProject, ProjectID: hierarchy.UngroupedSentinel()}
		for id := range d.resolveScope(ungrouped) {
			inScope[id] = true
		}
	}
	archiveFilter, ok := types.NormalizeArchiveFilter(args.ArchiveFilter)
	if !ok {
		archiveFilter = types.ArchiveActive
	}
	items := d.filterArchive(inScope, archiveFilter)

	statusSet := make(map[string]bool, len(args.Status))
	for _, s := range args.Status {
		statusSet[strings.ToLower(s)] = true
	}

	var filtered []*types.Item
	for _, it := range items {
		if len(statusSet) > 0 && !statusSet[string(it.Status)] {
			continue
		}
		if !args.IncludeDone && it.Status == types.StatusDone && len(statusSet) == 0 {
			continue
		}
		if !args.IncludeCanceled && it.Status == types.StatusCanceled && len(statusSet) == 0 {
			continue
		}
		if args.Health != "" && string(it.Health) != args.Health {
			continue
		}
		if args.AssigneeID != "" {
			a, has := d.assigneeOf[it.ID]
			if args.AssigneeID == "unassigned" {
				if has {
					continue
				}
			} else if !has || a != args.AssigneeID {
				continue
			}
		}
		if args.TagID != "" {
			found := false
			for _, t := range d.tagsOf[it.ID] {
				if t == args.TagID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if args.SearchText != "" {
			q := strings.ToLower(args.SearchText)
			title := strings.ToLower(it.Title)
			notes := ""
			if it.Notes != nil {
				notes = strings.ToLower(*it.Notes)
			}
			if !strings.Contains(title, q) && !strings.Contains(notes, q) {
				continue
			}
		}
		filtered = append(filtered, it)
	}

	rows := make([]ListItemsRow, 0, len(filtered))
	for _, it := range filtered {
		due := DueMetrics(it, now, 0)
		isBlocked := d.blockedState[it.ID].IsBlocked()
		rank := SequenceRank(it, due, isBlocked, d.dependentsOf[it.ID])
		var edges []DependencyEdgeView
		for _, dep := range d.depsBySucc[it.ID] {
			edges = append(edges, d.edgeView(dep))
		}
		var assigneeID *string
		if a, ok := d.assigneeOf[it.ID]; ok {
			assigneeID = &a
		}
		rows = append(rows, ListItemsRow{
			Item:         it,
			ProjectID:    d.idx.ProjectOf(it.ID),
			Depth:        d.idx.Depth(it.ID),
			Rollup:       d.rollupEng.Compute(it.ID),
			Schedule:     d.schedules[it.ID],
			IsBlocked:    isBlocked,
			AssigneeID:   assigneeID,
			Tags:         d.tagsOf[it.ID],
			DependsOn:    edges,
			SequenceRank: rank,
		})
	}

	sortRows(rows, args.SortKey, args.SortDesc)

	total := len(rows)
	if args.Offset > 0 && args.Offset < len(rows) {
		rows = rows[args.Offset:]
	} else if args.Offset >= len(rows) {
		rows = nil
	}
	if args.Limit > 0 && args.Limit < len(rows) {
		rows = rows[:args.Limit]
	}
	return rows, total, nil
}

// primaryLess reports whether row i sorts strictly before row j on key
// alone (ascending sense), independent of direction or tiebreakers.
func primaryLess(i, j ListItemsRow, key string) bool {
	switch key {
	case "sequence_rank":
		return i.SequenceRank < j.SequenceRank
	case "title":
		return i.Item.Title < j.Item.Title
	case "updated_at":
		return i.Item.UpdatedAt < j.Item.UpdatedAt
	case "due_at":
		return dueAtLess(i.Item.DueAt, j.Item.DueAt)
	default:
		return i.Item.SortOrder < j.Item.SortOrder
	}
}

func primaryEqual(i, j ListItemsRow, key string) bool {
	return !primaryLess(i, j, key) && !primaryLess(j, i, key)
}

// sortRows orders by key (asc or desc per desc), with sort_order then
// title as the final tiebreakers.
func sortRows(rows []ListItemsRow, key string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !primaryEqual(rows[i], rows[j], key) {
			if desc {
				return primaryLess(rows[j], rows[i], key)
			}
			return primaryLess(rows[i], rows[j], key)
		}
		if rows[i].Item.SortOrder != rows[j].Item.SortOrder {
			return rows[i].Item.SortOrder < rows[j].Item.SortOrder
		}
		return rows[i].Item.Title < rows[j].Item.Title
	})
}

func dueAtLess(a, b *int64) bool {
	if (a == nil) != (b == nil) {
		return a != nil
	}
	if a == nil {
		return false
	}
	return *a < *b
}
