package router

import (
	"context"
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/kernel"
	"github.com/Taj-Howe/planner-kernel/internal/store/sqlite"
	"github.com/Taj-Howe/planner-kernel/internal/types"
	"github.com/Taj-Howe/planner-kernel/internal/view"
)

func newTestRouter(t *testing.T) (*Router, func()) {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	rt := New(kernel.New(st), view.New(st))
	return rt, func() { st.Close() }
}

func TestRouterExecuteOp(t *testing.T) {
	rt, closeFn := newTestRouter(t)
	defer closeFn()

	res := rt.ExecuteOp(context.Background(), kernel.Envelope{
		Name: "create_item",
		Args: map[string]any{"type": "task", "title": "routed task"},
	})
	if !res.OK {
		t.Fatalf("ExecuteOp(create_item) failed: %+v", res.Error)
	}
}

func TestRouterQueryUnknownName(t *testing.T) {
	rt, closeFn := newTestRouter(t)
	defer closeFn()

	res := rt.Query(context.Background(), "not_a_real_query", nil)
	if res.OK {
		t.Fatal("expected unknown query name to fail")
	}
}

func TestRouterQueryGetItemDetails(t *testing.T) {
	rt, closeFn := newTestRouter(t)
	defer closeFn()
	ctx := context.Background()

	created := rt.ExecuteOp(ctx, kernel.Envelope{
		Name: "create_item",
		Args: map[string]any{"type": "task", "title": "query me"},
	})
	it := created.Result.(*types.Item)

	res := rt.Query(ctx, "getItemDetails", map[string]any{"itemId": it.ID})
	if !res.OK {
		t.Fatalf("Query(getItemDetails) failed: %+v", res.Error)
	}
	details, ok := res.Result.(*view.ItemDetails)
	if !ok {
		t.Fatalf("result type = %T, want *view.ItemDetails", res.Result)
	}
	if details.Item.ID != it.ID {
		t.Errorf("details.Item.ID = %q, want %q", details.Item.ID, it.ID)
	}
}

func TestRouterQueryGetRunningTimerEmpty(t *testing.T) {
	rt, closeFn := newTestRouter(t)
	defer closeFn()

	res := rt.Query(context.Background(), "get_running_timer", nil)
	if !res.OK {
		t.Fatalf("Query(get_running_timer) failed: %+v", res.Error)
	}
	if res.Result != nil {
		t.Errorf("expected nil result with no running timer, got %v", res.Result)
	}
}

func TestRouterQueryGetSettings(t *testing.T) {
	rt, closeFn := newTestRouter(t)
	defer closeFn()
	ctx := context.Background()

	set := rt.ExecuteOp(ctx, kernel.Envelope{
		Name: "set_setting",
		Args: map[string]any{"key": "capacity_minutes_per_day", "value": 480},
	})
	if !set.OK {
		t.Fatalf("set_setting failed: %+v", set.Error)
	}

	res := rt.Query(ctx, "getSettings", nil)
	if !res.OK {
		t.Fatalf("Query(getSettings) failed: %+v", res.Error)
	}
	dump, ok := res.Result.(settingsDump)
	if !ok {
		t.Fatalf("result type = %T, want settingsDump", res.Result)
	}
	if _, present := dump["capacity_minutes_per_day"]; !present {
		t.Errorf("getSettings result = %v, want capacity_minutes_per_day present", dump)
	}
}
