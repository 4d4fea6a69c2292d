package blocked

import (
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func TestDeriveStatusBlocked(t *testing.T) {
	items := []*types.Item{{ID: "t1", Status: types.StatusBlocked}}
	d := New(items, nil, nil)
	s := d.Derive("t1")
	if !s.StatusBlocked || !s.IsBlocked() {
		t.Errorf("item with status=blocked should derive StatusBlocked and IsBlocked, got %+v", s)
	}
}

func TestDeriveActiveBlocker(t *testing.T) {
	items := []*types.Item{{ID: "t1", Status: types.StatusReady}}
	blockers := []*types.Blocker{{ItemID: "t1", ClearedAt: nil}}
	d := New(items, blockers, nil)
	s := d.Derive("t1")
	if !s.HasActiveBlocker || !s.IsBlocked() {
		t.Errorf("item with an uncleared blocker should derive HasActiveBlocker, got %+v", s)
	}
}

func TestDeriveClearedBlockerDoesNotBlock(t *testing.T) {
	cleared := int64(42)
	items := []*types.Item{{ID: "t1", Status: types.StatusReady}}
	blockers := []*types.Blocker{{ItemID: "t1", ClearedAt: &cleared}}
	d := New(items, blockers, nil)
	s := d.Derive("t1")
	if s.HasActiveBlocker || s.IsBlocked() {
		t.Errorf("item with only a cleared blocker should not be blocked, got %+v", s)
	}
}

func TestDeriveUnmetDependency(t *testing.T) {
	items := []*types.Item{
		{ID: "pred", Status: types.StatusInProgress},
		{ID: "succ", Status: types.StatusReady},
	}
	deps := []*types.Dependency{{SuccessorID: "succ", PredecessorID: "pred"}}
	d := New(items, nil, deps)
	s := d.Derive("succ")
	if !s.HasUnmetDep || !s.IsBlocked() {
		t.Errorf("successor of a non-done predecessor should have HasUnmetDep, got %+v", s)
	}
}

func TestDeriveMetDependency(t *testing.T) {
	items := []*types.Item{
		{ID: "pred", Status: types.StatusDone},
		{ID: "succ", Status: types.StatusReady},
	}
	deps := []*types.Dependency{{SuccessorID: "succ", PredecessorID: "pred"}}
	d := New(items, nil, deps)
	s := d.Derive("succ")
	if s.HasUnmetDep {
		t.Errorf("successor of a done predecessor should not have HasUnmetDep, got %+v", s)
	}
	if s.IsBlocked() {
		t.Errorf("item with no blockers and met deps should not be blocked, got %+v", s)
	}
}

func TestDeriveAll(t *testing.T) {
	items := []*types.Item{
		{ID: "a", Status: types.StatusReady},
		{ID: "b", Status: types.StatusBlocked},
	}
	d := New(items, nil, nil)
	all := d.DeriveAll()
	if len(all) != 2 {
		t.Fatalf("DeriveAll returned %d entries, want 2", len(all))
	}
	if all["b"].StatusBlocked != true {
		t.Errorf("DeriveAll()[b].StatusBlocked = %v, want true", all["b"].StatusBlocked)
	}
}
