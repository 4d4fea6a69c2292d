package ie

import (
	"context"
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

type fakeReader struct {
	items     []*types.Item
	deps      []*types.Dependency
	blockers  []*types.Blocker
	blocks    []*types.ScheduledBlock
	entries   []*types.TimeEntry
	timers    []*types.RunningTimer
	assignees []*types.ItemAssignee
	tags      []*types.ItemTag
	settings  []*types.Setting
}

func (f *fakeReader) AllItems(ctx context.Context) ([]*types.Item, error) { return f.items, nil }
func (f *fakeReader) GetItem(ctx context.Context, id string) (*types.Item, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, nil
}
func (f *fakeReader) AllDependencies(ctx context.Context) ([]*types.Dependency, error) {
	return f.deps, nil
}
func (f *fakeReader) AllBlockers(ctx context.Context) ([]*types.Blocker, error) {
	return f.blockers, nil
}
func (f *fakeReader) AllScheduledBlocks(ctx context.Context) ([]*types.ScheduledBlock, error) {
	return f.blocks, nil
}
func (f *fakeReader) AllTimeEntries(ctx context.Context) ([]*types.TimeEntry, error) {
	return f.entries, nil
}
func (f *fakeReader) AllRunningTimers(ctx context.Context) ([]*types.RunningTimer, error) {
	return f.timers, nil
}
func (f *fakeReader) AllAssignees(ctx context.Context) ([]*types.ItemAssignee, error) {
	return f.assignees, nil
}
func (f *fakeReader) AllTags(ctx context.Context) ([]*types.ItemTag, error) { return f.tags, nil }
func (f *fakeReader) AllSettings(ctx context.Context) ([]*types.Setting, error) {
	return f.settings, nil
}
func (f *fakeReader) GetSetting(ctx context.Context, key string) (*types.Setting, error) {
	for _, s := range f.settings {
		if s.Key == key {
			return s, nil
		}
	}
	return nil, nil
}
func (f *fakeReader) ListAuditLog(ctx context.Context, limit int, opName string) ([]*types.AuditLogEntry, error) {
	return nil, nil
}

func TestVerifyIntegrityHealthy(t *testing.T) {
	r := &fakeReader{items: []*types.Item{{ID: "t1", Status: types.StatusReady}}}
	findings, err := VerifyIntegrity(context.Background(), r)
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("VerifyIntegrity on a clean store = %v, want none", findings)
	}
}

func TestVerifyIntegrityDetectsDanglingDependency(t *testing.T) {
	r := &fakeReader{
		items: []*types.Item{{ID: "t1", Status: types.StatusReady}},
		deps:  []*types.Dependency{{SuccessorID: "t1", PredecessorID: "missing"}},
	}
	findings, err := VerifyIntegrity(context.Background(), r)
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if !hasCode(findings, "dependencies_missing_items") {
		t.Errorf("expected dependencies_missing_items finding, got %v", findings)
	}
}

func TestVerifyIntegrityDetectsNonpositiveBlockDuration(t *testing.T) {
	r := &fakeReader{
		items:  []*types.Item{{ID: "t1", Status: types.StatusReady}},
		blocks: []*types.ScheduledBlock{{BlockID: "b1", ItemID: "t1", DurationMinutes: 0}},
	}
	findings, err := VerifyIntegrity(context.Background(), r)
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if !hasCode(findings, "blocks_nonpositive_duration") {
		t.Errorf("expected blocks_nonpositive_duration finding, got %v", findings)
	}
}

func TestVerifyIntegrityDetectsMultipleRunningTimers(t *testing.T) {
	r := &fakeReader{
		items:  []*types.Item{{ID: "t1", Status: types.StatusReady}, {ID: "t2", Status: types.StatusReady}},
		timers: []*types.RunningTimer{{ItemID: "t1"}, {ItemID: "t2"}},
	}
	findings, err := VerifyIntegrity(context.Background(), r)
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if !hasCode(findings, "running_timers_multiple") {
		t.Errorf("expected running_timers_multiple finding, got %v", findings)
	}
}

func TestVerifyIntegrityDetectsCompletionInconsistency(t *testing.T) {
	r := &fakeReader{
		items: []*types.Item{{ID: "t1", Status: types.StatusDone, CompletedAt: nil}},
	}
	findings, err := VerifyIntegrity(context.Background(), r)
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if !hasCode(findings, "completion_inconsistent") {
		t.Errorf("expected completion_inconsistent finding, got %v", findings)
	}
}

func TestVerifyIntegrityDetectsDependencyCycle(t *testing.T) {
	r := &fakeReader{
		items: []*types.Item{{ID: "a", Status: types.StatusReady}, {ID: "b", Status: types.StatusReady}},
		deps: []*types.Dependency{
			{SuccessorID: "a", PredecessorID: "b"},
			{SuccessorID: "b", PredecessorID: "a"},
		},
	}
	findings, err := VerifyIntegrity(context.Background(), r)
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if !hasCode(findings, "dependency_cycles") {
		t.Errorf("expected dependency_cycles finding, got %v", findings)
	}
}

func TestExportRoundTripsSnapshotShape(t *testing.T) {
	r := &fakeReader{
		items:    []*types.Item{{ID: "t1", Status: types.StatusReady}},
		settings: []*types.Setting{{Key: "k", ValueJSON: `"v"`}},
	}
	snap, err := Export(context.Background(), r, 123)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snap.ExportedAt != 123 {
		t.Errorf("ExportedAt = %d, want 123", snap.ExportedAt)
	}
	if len(snap.Items) != 1 || len(snap.Settings) != 1 {
		t.Errorf("Export snapshot missing rows: %+v", snap)
	}
}

func hasCode(findings []Finding, code string) bool {
	for _, f := range findings {
		if f.Code == code {
			return true
		}
	}
	return false
}
