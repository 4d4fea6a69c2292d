// Package view implements the fixed catalog of read-only queries: pure
// functions of the store that never mutate, each a composition of the
// hierarchy/rollup/depengine/blocked/schedule engines.
package view

import (
	"context"
	"time"

	"github.com/Taj-Howe/planner-kernel/internal/blocked"
	"github.com/Taj-Howe/planner-kernel/internal/hierarchy"
	"github.com/Taj-Howe/planner-kernel/internal/rollup"
	"github.com/Taj-Howe/planner-kernel/internal/schedule"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// Engine answers every named query against one store, loading a fresh
// dataset snapshot per call: reads observe either the pre- or post-commit
// state of a given write, never a partial one — a snapshot read outside
// WithTx satisfies this against the sqlite WAL reader.
type Engine struct {
	Store store.Store
	Now   func() time.Time
}

// New builds a view Engine with the real wall clock.
func New(s store.Store) *Engine {
	return &Engine{Store: s, Now: time.Now}
}

func (e *Engine) nowMillis() int64 { return e.Now().UnixMilli() }

// dataset bundles one consistent read of every table plus the derived
// engines built from it.
type dataset struct {
	items        []*types.Item
	itemsByID    map[string]*types.Item
	deps         []*types.Dependency
	blockers     []*types.Blocker
	blocks       []*types.ScheduledBlock
	entries      []*types.TimeEntry
	timers       []*types.RunningTimer
	assignees    []*types.ItemAssignee
	assigneeOf   map[string]string
	tags         []*types.ItemTag
	tagsOf       map[string][]string
	settings     map[string]string

	idx          *hierarchy.Index
	blockedState map[string]blocked.State
	schedules    map[string]schedule.Summary
	rollupEng    *rollup.Engine
	actualByItem map[string]int
	dependentsOf map[string]int
	depsBySucc   map[string][]*types.Dependency
	depsByPred   map[string][]*types.Dependency
}

func loadDataset(ctx context.Context, r store.Reader, nowMillis int64) (*dataset, error) {
	var err error
	d := &dataset{}
	if d.items, err = r.AllItems(ctx); err != nil {
		return nil, err
	}
	if d.deps, err = r.AllDependencies(ctx); err != nil {
		return nil, err
	}
	if d.blockers, err = r.AllBlockers(ctx); err != nil {
		return nil, err
	}
	if d.blocks, err = r.AllScheduledBlocks(ctx); err != nil {
		return nil, err
	}
	if d.entries, err = r.AllTimeEntries(ctx); err != nil {
		return nil, err
	}
	if d.timers, err = r.AllRunningTimers(ctx); err != nil {
		return nil, err
	}
	if d.assignees, err = r.AllAssignees(ctx); err != nil {
		return nil, err
	}
	if d.tags, err = r.AllTags(ctx); err != nil {
		return nil, err
	}
	settingsRows, err := r.AllSettings(ctx)
	if err != nil {
		return nil, err
	}

	d.itemsByID = make(map[string]*types.Item, len(d.items))
	for _, it := range d.items {
		d.itemsByID[it.ID] = it
	}
	d.assigneeOf = make(map[string]string, len(d.assignees))
	for _, a := range d.assignees {
		d.assigneeOf[a.ItemID] = a.AssigneeID
	}
	d.tagsOf = make(map[string][]string)
	for _, t := range d.tags {
		d.tagsOf[t.ItemID] = append(d.tagsOf[t.ItemID], t.Tag)
	}
	d.settings = make(map[string]string, len(settingsRows))
	for _, s := range settingsRows {
		d.settings[s.Key] = s.ValueJSON
	}

	d.depsBySucc = make(map[string][]*types.Dependency)
	d.depsByPred = make(map[string][]*types.Dependency)
	d.dependentsOf = make(map[string]int)
	for _, dep := range d.deps {
		d.depsBySucc[dep.SuccessorID] = append(d.depsBySucc[dep.SuccessorID], dep)
		d.depsByPred[dep.PredecessorID] = append(d.depsByPred[dep.PredecessorID], dep)
		d.dependentsOf[dep.PredecessorID]++
	}

	d.idx = hierarchy.Build(d.items)
	d.blockedState = blocked.New(d.items, d.blockers, d.deps).DeriveAll()

	scheduleSummaries := schedule.Build(d.blocks)
	d.schedules = scheduleSummaries
	start, end := schedule.StartEndMaps(scheduleSummaries)

	d.actualByItem = make(map[string]int)
	for _, e := range d.entries {
		d.actualByItem[e.ItemID] += e.DurationMinutes
	}

	overdue := make(map[string]bool, len(d.items))
	for _, it := range d.items {
		overdue[it.ID] = DueMetrics(it, nowMillis, 0).IsOverdue
	}
	isBlocked := make(map[string]bool, len(d.items))
	for id, st := range d.blockedState {
		isBlocked[id] = st.IsBlocked()
	}

	d.rollupEng = rollup.New(rollup.Inputs{
		Index:         d.idx,
		Items:         d.itemsByID,
		ActualMinutes: d.actualByItem,
		ScheduleStart: start,
		ScheduleEnd:   end,
		IsBlocked:     isBlocked,
		IsOverdue:     overdue,
	})
	return d, nil
}

func (d *dataset) resolveScope(scope hierarchy.Scope) map[string]bool {
	ids := hierarchy.Resolve(d.idx, d.items, d.assigneeOf, scope)
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func (d *dataset) filterArchive(in map[string]bool, filter types.ArchiveFilter) []*types.Item {
	var out []*types.Item
	for _, it := range d.items {
		if !in[it.ID] {
			continue
		}
		switch filter {
		case types.ArchiveActive:
			if it.ArchivedAt != nil {
				continue
			}
		case types.ArchiveArchived:
			if it.ArchivedAt == nil {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}
