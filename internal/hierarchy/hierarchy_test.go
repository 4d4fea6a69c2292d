package hierarchy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Taj-Howe/planner-kernel/internal/hierarchy"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func ptr(s string) *string { return &s }

func sampleItems() []*types.Item {
	return []*types.Item{
		{ID: "proj1", Type: types.ItemProject},
		{ID: "ms1", Type: types.ItemMilestone, ParentID: ptr("proj1")},
		{ID: "task1", Type: types.ItemTask, ParentID: ptr("ms1")},
		{ID: "task2", Type: types.ItemTask, ParentID: ptr("ms1")},
		{ID: "orphanTask", Type: types.ItemTask},
	}
}

func TestBuildDepthAndProjectOf(t *testing.T) {
	idx := hierarchy.Build(sampleItems())

	assert.Equal(t, 0, idx.Depth("proj1"))
	assert.Equal(t, 2, idx.Depth("task1"))
	assert.Equal(t, "proj1", idx.ProjectOf("task1"))
	assert.Equal(t, "orphanTask", idx.ProjectOf("orphanTask"), "an item with no project ancestor is its own project")
}

func TestBuildToleratesCycle(t *testing.T) {
	items := []*types.Item{
		{ID: "a", Type: types.ItemTask, ParentID: ptr("b")},
		{ID: "b", Type: types.ItemTask, ParentID: ptr("a")},
	}
	idx := hierarchy.Build(items)
	assert.GreaterOrEqual(t, idx.Depth("a"), 0, "depth computation must terminate on a corrupted parent cycle")
}

func TestSubtreeOf(t *testing.T) {
	idx := hierarchy.Build(sampleItems())
	got := idx.SubtreeOf([]string{"ms1"})
	assert.ElementsMatch(t, []string{"ms1", "task1", "task2"}, got)
}

func TestResolveProjectScope(t *testing.T) {
	items := sampleItems()
	idx := hierarchy.Build(items)
	ids := hierarchy.Resolve(idx, items, nil, hierarchy.Scope{Kind: hierarchy.ScopeProject, ProjectID: "ms1"})
	assert.Len(t, ids, 3)
}

func TestResolveUngrouped(t *testing.T) {
	items := sampleItems()
	idx := hierarchy.Build(items)
	ids := hierarchy.Resolve(idx, items, nil, hierarchy.Scope{Kind: hierarchy.ScopeProject, ProjectID: hierarchy.UngroupedSentinel()})
	assert.Equal(t, []string{"orphanTask"}, ids)
}

func TestResolveUserScope(t *testing.T) {
	items := sampleItems()
	idx := hierarchy.Build(items)
	assignees := map[string]string{"task1": "u1"}
	ids := hierarchy.Resolve(idx, items, assignees, hierarchy.Scope{Kind: hierarchy.ScopeUser, UserID: "u1"})
	assert.Equal(t, []string{"task1"}, ids)
}

func TestResolveAllScope(t *testing.T) {
	items := sampleItems()
	idx := hierarchy.Build(items)
	ids := hierarchy.Resolve(idx, items, nil, hierarchy.Scope{Kind: hierarchy.ScopeAll})
	assert.Len(t, ids, len(items))
}
