package rollup

import (
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/hierarchy"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func ptr64(v int64) *int64 { return &v }

func buildTree() (*hierarchy.Index, map[string]*types.Item) {
	parent := "ms1"
	items := []*types.Item{
		{ID: "ms1", Type: types.ItemMilestone, EstimateMode: types.EstimateRollup, EstimateMinutes: 0},
		{ID: "task1", Type: types.ItemTask, ParentID: &parent, EstimateMode: types.EstimateManual, EstimateMinutes: 60},
		{ID: "task2", Type: types.ItemTask, ParentID: &parent, EstimateMode: types.EstimateManual, EstimateMinutes: 120},
	}
	byID := make(map[string]*types.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return hierarchy.Build(items), byID
}

func TestComputeRollsUpEstimateWhenRollupMode(t *testing.T) {
	idx, byID := buildTree()
	e := New(Inputs{
		Index:         idx,
		Items:         byID,
		ActualMinutes: map[string]int{"task1": 10, "task2": 20},
		ScheduleStart: map[string]*int64{"task1": ptr64(100), "task2": ptr64(50)},
		ScheduleEnd:   map[string]*int64{"task1": ptr64(200), "task2": ptr64(300)},
		IsBlocked:     map[string]bool{"task1": true},
		IsOverdue:     map[string]bool{"task2": true},
	})

	r := e.Compute("ms1")
	if r.TotalEstimate != 180 {
		t.Errorf("TotalEstimate = %d, want 180 (60+120 rolled up)", r.TotalEstimate)
	}
	if r.TotalActual != 30 {
		t.Errorf("TotalActual = %d, want 30", r.TotalActual)
	}
	if r.Start == nil || *r.Start != 50 {
		t.Errorf("Start = %v, want 50", r.Start)
	}
	if r.End == nil || *r.End != 300 {
		t.Errorf("End = %v, want 300", r.End)
	}
	if r.BlockedCount != 1 {
		t.Errorf("BlockedCount = %d, want 1", r.BlockedCount)
	}
	if r.OverdueCount != 1 {
		t.Errorf("OverdueCount = %d, want 1", r.OverdueCount)
	}
	if got := r.Remaining(); got != 150 {
		t.Errorf("Remaining() = %d, want 150", got)
	}
}

func TestComputeDoesNotRollUpEstimateWhenManual(t *testing.T) {
	parent := "ms1"
	items := []*types.Item{
		{ID: "ms1", Type: types.ItemMilestone, EstimateMode: types.EstimateManual, EstimateMinutes: 45},
		{ID: "task1", Type: types.ItemTask, ParentID: &parent, EstimateMode: types.EstimateManual, EstimateMinutes: 60},
	}
	byID := map[string]*types.Item{"ms1": items[0], "task1": items[1]}
	idx := hierarchy.Build(items)
	e := New(Inputs{Index: idx, Items: byID})
	r := e.Compute("ms1")
	if r.TotalEstimate != 45 {
		t.Errorf("TotalEstimate = %d, want 45 (manual, no rollup)", r.TotalEstimate)
	}
}

func TestComputeMemoizes(t *testing.T) {
	idx, byID := buildTree()
	e := New(Inputs{Index: idx, Items: byID})
	first := e.Compute("task1")
	second := e.Compute("task1")
	if first != second {
		t.Errorf("Compute should be memoized and return identical results, got %+v vs %+v", first, second)
	}
}

func TestComputeCycleSafety(t *testing.T) {
	a, b := "b", "a"
	items := []*types.Item{
		{ID: "a", Type: types.ItemTask, ParentID: &a, EstimateMinutes: 10},
		{ID: "b", Type: types.ItemTask, ParentID: &b, EstimateMinutes: 20},
	}
	byID := map[string]*types.Item{"a": items[0], "b": items[1]}
	idx := hierarchy.Build(items)
	e := New(Inputs{Index: idx, Items: byID})

	r := e.Compute("a")
	if r.TotalEstimate < 10 {
		t.Errorf("Compute on a cyclic graph should still include the visited item's own estimate, got %d", r.TotalEstimate)
	}
}
