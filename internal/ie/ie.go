// Package ie implements the snapshot export/import round-trip and the
// debug.verify_integrity consistency scan.
package ie

import (
	"context"
	"sort"

	"github.com/Taj-Howe/planner-kernel/internal/depengine"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// Snapshot is the full-store export shape.
type Snapshot struct {
	ExportedAt      int64                   `json:"exported_at"`
	Items           []*types.Item           `json:"items"`
	Dependencies    []*types.Dependency     `json:"dependencies"`
	Blockers        []*types.Blocker        `json:"blockers"`
	ScheduledBlocks []*types.ScheduledBlock `json:"scheduled_blocks"`
	TimeEntries     []*types.TimeEntry      `json:"time_entries"`
	RunningTimers   []*types.RunningTimer   `json:"running_timers"`
	ItemTags        []*types.ItemTag        `json:"item_tags"`
	ItemAssignees   []*types.ItemAssignee   `json:"item_assignees"`
	Settings        []*types.Setting        `json:"settings"`
}

// Export snapshots every table from reader.
func Export(ctx context.Context, r store.Reader, nowMillis int64) (*Snapshot, error) {
	var err error
	s := &Snapshot{ExportedAt: nowMillis}
	if s.Items, err = r.AllItems(ctx); err != nil {
		return nil, err
	}
	if s.Dependencies, err = r.AllDependencies(ctx); err != nil {
		return nil, err
	}
	if s.Blockers, err = r.AllBlockers(ctx); err != nil {
		return nil, err
	}
	if s.ScheduledBlocks, err = r.AllScheduledBlocks(ctx); err != nil {
		return nil, err
	}
	if s.TimeEntries, err = r.AllTimeEntries(ctx); err != nil {
		return nil, err
	}
	if s.RunningTimers, err = r.AllRunningTimers(ctx); err != nil {
		return nil, err
	}
	if s.ItemTags, err = r.AllTags(ctx); err != nil {
		return nil, err
	}
	if s.ItemAssignees, err = r.AllAssignees(ctx); err != nil {
		return nil, err
	}
	if s.Settings, err = r.AllSettings(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Import truncates every domain table and replays the snapshot in
// dependency order: items, then dependencies/blockers/blocks/entries/
// timers/tags/assignees, then settings.
//
// Dependencies default to type=FS, lag=0 when absent. Blockers with an
// empty Kind get Kind "general" here. A legacy blocker "reason" field is
// not read: types.Blocker has no such field, so its text is not carried
// into Text.
func Import(ctx context.Context, tx store.Tx, s *Snapshot) error {
	if err := tx.TruncateAll(ctx); err != nil {
		return err
	}
	for _, it := range s.Items {
		if err := tx.InsertItem(ctx, it); err != nil {
			return err
		}
	}
	for _, d := range s.Dependencies {
		if d.Type == "" {
			d.Type = types.DepFS
		}
		if _, err := tx.UpsertDependency(ctx, d); err != nil {
			return err
		}
	}
	for _, b := range s.Blockers {
		if b.Kind == "" {
			b.Kind = "general"
		}
		if err := tx.InsertBlocker(ctx, b); err != nil {
			return err
		}
	}
	for _, b := range s.ScheduledBlocks {
		if err := tx.InsertScheduledBlock(ctx, b); err != nil {
			return err
		}
	}
	for _, e := range s.TimeEntries {
		if err := tx.InsertTimeEntry(ctx, e); err != nil {
			return err
		}
	}
	for _, t := range s.RunningTimers {
		if err := tx.UpsertRunningTimer(ctx, t); err != nil {
			return err
		}
	}
	tagsByItem := make(map[string][]string)
	for _, t := range s.ItemTags {
		tagsByItem[t.ItemID] = append(tagsByItem[t.ItemID], t.Tag)
	}
	for itemID, tags := range tagsByItem {
		if err := tx.SetTags(ctx, itemID, tags); err != nil {
			return err
		}
	}
	for _, a := range s.ItemAssignees {
		if err := tx.SetAssignee(ctx, a.ItemID, a.AssigneeID); err != nil {
			return err
		}
	}
	for _, st := range s.Settings {
		if err := tx.SetSetting(ctx, st.Key, st.ValueJSON); err != nil {
			return err
		}
	}
	return nil
}

// Finding is one integrity problem surfaced by VerifyIntegrity.
type Finding struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Count   int      `json:"count,omitempty"`
	Sample  []string `json:"sample,omitempty"`
}

const maxSample = 5

func appendSample(sample []string, id string) []string {
	if len(sample) >= maxSample {
		return sample
	}
	return append(sample, id)
}

// VerifyIntegrity scans the full store for structural inconsistencies.
// An empty result means the store is healthy.
func VerifyIntegrity(ctx context.Context, r store.Reader) ([]Finding, error) {
	items, err := r.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	itemIDs := make(map[string]bool, len(items))
	for _, it := range items {
		itemIDs[it.ID] = true
	}

	deps, err := r.AllDependencies(ctx)
	if err != nil {
		return nil, err
	}
	blockers, err := r.AllBlockers(ctx)
	if err != nil {
		return nil, err
	}
	blocks, err := r.AllScheduledBlocks(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := r.AllTimeEntries(ctx)
	if err != nil {
		return nil, err
	}
	timers, err := r.AllRunningTimers(ctx)
	if err != nil {
		return nil, err
	}

	var findings []Finding

	// negative/zero scheduled-block durations
	{
		var count int
		var sample []string
		for _, b := range blocks {
			if b.DurationMinutes <= 0 {
				count++
				sample = appendSample(sample, b.BlockID)
			}
		}
		if count > 0 {
			findings = append(findings, Finding{Code: "blocks_nonpositive_duration", Message: "scheduled blocks with duration_minutes <= 0", Count: count, Sample: sample})
		}
	}

	// dangling references
	{
		var count int
		var sample []string
		for _, b := range blocks {
			if !itemIDs[b.ItemID] {
				count++
				sample = appendSample(sample, b.BlockID)
			}
		}
		if count > 0 {
			findings = append(findings, Finding{Code: "blocks_missing_items", Message: "scheduled blocks referencing a missing item", Count: count, Sample: sample})
		}
	}
	{
		var count int
		var sample []string
		for _, d := range deps {
			if !itemIDs[d.SuccessorID] || !itemIDs[d.PredecessorID] {
				count++
				sample = appendSample(sample, types.EdgeID(d.SuccessorID, d.PredecessorID))
			}
		}
		if count > 0 {
			findings = append(findings, Finding{Code: "dependencies_missing_items", Message: "dependencies referencing a missing item", Count: count, Sample: sample})
		}
	}
	{
		var count int
		var sample []string
		for _, b := range blockers {
			if !itemIDs[b.ItemID] {
				count++
				sample = appendSample(sample, b.BlockerID)
			}
		}
		if count > 0 {
			findings = append(findings, Finding{Code: "blockers_missing_items", Message: "blockers referencing a missing item", Count: count, Sample: sample})
		}
	}
	{
		var count int
		var sample []string
		for _, e := range entries {
			if !itemIDs[e.ItemID] {
				count++
				sample = appendSample(sample, e.EntryID)
			}
		}
		if count > 0 {
			findings = append(findings, Finding{Code: "time_entries_missing_items", Message: "time entries referencing a missing item", Count: count, Sample: sample})
		}
	}

	// dependency cycles
	{
		cycles := depengine.Build(deps).FindCycles(5)
		if len(cycles) > 0 {
			var sample []string
			for _, c := range cycles {
				sample = append(sample, edgeIDPath(c))
			}
			findings = append(findings, Finding{Code: "dependency_cycles", Message: "dependency graph contains cycles", Count: len(cycles), Sample: sample})
		}
	}

	// overlapping time entries per item
	{
		byItem := make(map[string][]*types.TimeEntry)
		for _, e := range entries {
			byItem[e.ItemID] = append(byItem[e.ItemID], e)
		}
		var count int
		var sample []string
		for itemID, es := range byItem {
			sorted := append([]*types.TimeEntry{}, es...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartAt < sorted[j].StartAt })
			for i := 1; i < len(sorted); i++ {
				if sorted[i].StartAt < sorted[i-1].EndAt {
					count++
					sample = appendSample(sample, itemID)
					break
				}
			}
		}
		if count > 0 {
			findings = append(findings, Finding{Code: "time_entries_overlap", Message: "items with overlapping time entries", Count: count, Sample: sample})
		}
	}

	// more than one running timer
	if len(timers) > 1 {
		var sample []string
		for _, t := range timers {
			sample = appendSample(sample, t.ItemID)
		}
		findings = append(findings, Finding{Code: "running_timers_multiple", Message: "more than one running timer", Count: len(timers), Sample: sample})
	}

	// completion consistency
	{
		var count int
		var sample []string
		for _, it := range items {
			done := it.Status == types.StatusDone
			hasCompletedAt := it.CompletedAt != nil
			if done != hasCompletedAt {
				count++
				sample = appendSample(sample, it.ID)
			}
		}
		if count > 0 {
			findings = append(findings, Finding{Code: "completion_inconsistent", Message: "done items without completed_at, or non-done items with one", Count: count, Sample: sample})
		}
	}

	return findings, nil
}

func edgeIDPath(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += "->"
		}
		out += id
	}
	return out
}
