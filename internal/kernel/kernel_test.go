package kernel

import (
	"context"
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/store/sqlite"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func newTestKernel(t *testing.T) (*Kernel, func()) {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	return New(st), func() { st.Close() }
}

func TestExecuteCreateItem(t *testing.T) {
	k, closeFn := newTestKernel(t)
	defer closeFn()

	res := k.Execute(context.Background(), Envelope{
		Name:    "create_item",
		Args:    map[string]any{"type": "task", "title": "write tests"},
		ActorID: "tester",
	})
	if !res.OK {
		t.Fatalf("create_item failed: %+v", res.Error)
	}
	it, ok := res.Result.(*types.Item)
	if !ok {
		t.Fatalf("create_item result type = %T, want *types.Item", res.Result)
	}
	if it.Title != "write tests" || it.Type != types.ItemTask {
		t.Errorf("created item = %+v, want title=write tests type=task", it)
	}
}

func TestExecuteUnknownOperation(t *testing.T) {
	k, closeFn := newTestKernel(t)
	defer closeFn()

	res := k.Execute(context.Background(), Envelope{Name: "no_such_op"})
	if res.OK {
		t.Fatal("expected unknown operation to fail")
	}
}

func TestExecuteCreateItemRejectsEmptyTitle(t *testing.T) {
	k, closeFn := newTestKernel(t)
	defer closeFn()

	res := k.Execute(context.Background(), Envelope{
		Name: "create_item",
		Args: map[string]any{"type": "task", "title": ""},
	})
	if res.OK {
		t.Fatal("expected create_item with empty title to fail validation")
	}
}

func TestExecuteSetStatusBlocksOnActiveBlocker(t *testing.T) {
	k, closeFn := newTestKernel(t)
	defer closeFn()
	ctx := context.Background()

	created := k.Execute(ctx, Envelope{
		Name: "create_item",
		Args: map[string]any{"type": "task", "title": "blocked task"},
	})
	if !created.OK {
		t.Fatalf("create_item failed: %+v", created.Error)
	}
	it := created.Result.(*types.Item)

	blocked := k.Execute(ctx, Envelope{
		Name: "add_blocker",
		Args: map[string]any{"item_id": it.ID, "kind": "general", "text": "waiting on design"},
	})
	if !blocked.OK {
		t.Fatalf("add_blocker failed: %+v", blocked.Error)
	}

	setStatus := k.Execute(ctx, Envelope{
		Name: "set_status",
		Args: map[string]any{"id": it.ID, "status": "in_progress"},
	})
	if setStatus.OK {
		t.Fatal("expected set_status to in_progress to fail while an active blocker exists")
	}
	if de, ok := setStatus.Error.(map[string]string); !ok || de["code"] != CodeBlocked {
		t.Errorf("expected BLOCKED domain error, got %+v", setStatus.Error)
	}
}

func TestExecuteSetStatusOverrideBypassesBlocker(t *testing.T) {
	k, closeFn := newTestKernel(t)
	defer closeFn()
	ctx := context.Background()

	created := k.Execute(ctx, Envelope{
		Name: "create_item",
		Args: map[string]any{"type": "task", "title": "overridable task"},
	})
	it := created.Result.(*types.Item)

	k.Execute(ctx, Envelope{
		Name: "add_blocker",
		Args: map[string]any{"item_id": it.ID, "kind": "general", "text": "waiting"},
	})

	setStatus := k.Execute(ctx, Envelope{
		Name: "set_status",
		Args: map[string]any{"id": it.ID, "status": "in_progress", "override": true},
	})
	if !setStatus.OK {
		t.Fatalf("expected override=true to bypass the blocker, got %+v", setStatus.Error)
	}
}

func TestExecuteSetStatusClearsCompletedAtOnReopen(t *testing.T) {
	k, closeFn := newTestKernel(t)
	defer closeFn()
	ctx := context.Background()

	created := k.Execute(ctx, Envelope{
		Name: "create_item",
		Args: map[string]any{"type": "task", "title": "reopenable task"},
	})
	if !created.OK {
		t.Fatalf("create_item failed: %+v", created.Error)
	}
	it := created.Result.(*types.Item)

	done := k.Execute(ctx, Envelope{
		Name: "set_status",
		Args: map[string]any{"id": it.ID, "status": "done"},
	})
	if !done.OK {
		t.Fatalf("set_status done failed: %+v", done.Error)
	}
	doneItem := done.Result.(*types.Item)
	if doneItem.CompletedAt == nil {
		t.Fatal("expected completed_at to be set after set_status done")
	}

	reopened := k.Execute(ctx, Envelope{
		Name: "set_status",
		Args: map[string]any{"id": it.ID, "status": "in_progress"},
	})
	if !reopened.OK {
		t.Fatalf("set_status in_progress failed: %+v", reopened.Error)
	}
	reopenedItem := reopened.Result.(*types.Item)
	if reopenedItem.CompletedAt != nil {
		t.Errorf("expected completed_at to be cleared after reopening, got %v", *reopenedItem.CompletedAt)
	}
}

func TestExecuteStartAndStopTimer(t *testing.T) {
	k, closeFn := newTestKernel(t)
	defer closeFn()
	ctx := context.Background()

	created := k.Execute(ctx, Envelope{
		Name: "create_item",
		Args: map[string]any{"type": "task", "title": "timed task"},
	})
	it := created.Result.(*types.Item)

	start := k.Execute(ctx, Envelope{Name: "start_timer", Args: map[string]any{"item_id": it.ID}})
	if !start.OK {
		t.Fatalf("start_timer failed: %+v", start.Error)
	}

	secondStart := k.Execute(ctx, Envelope{Name: "start_timer", Args: map[string]any{"item_id": it.ID}})
	if secondStart.OK {
		t.Fatal("expected a second concurrent start_timer to fail: only one running timer is allowed")
	}

	stop := k.Execute(ctx, Envelope{Name: "stop_timer", Args: map[string]any{}})
	if !stop.OK {
		t.Fatalf("stop_timer failed: %+v", stop.Error)
	}

	stopAgain := k.Execute(ctx, Envelope{Name: "stop_timer", Args: map[string]any{}})
	if stopAgain.OK {
		t.Fatal("expected stop_timer with no running timer to fail")
	}
}
