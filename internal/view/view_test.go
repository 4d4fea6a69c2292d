package view

import (
	"context"
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/kernel"
	"github.com/Taj-Howe/planner-kernel/internal/store/sqlite"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func newTestEngine(t *testing.T) (*kernel.Kernel, *Engine, func()) {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	return kernel.New(st), New(st), func() { st.Close() }
}

func createItem(t *testing.T, k *kernel.Kernel, itemType, title string, parentID string) *types.Item {
	t.Helper()
	args := map[string]any{"type": itemType, "title": title}
	if parentID != "" {
		args["parent_id"] = parentID
	}
	res := k.Execute(context.Background(), kernel.Envelope{Name: "create_item", Args: args})
	if !res.OK {
		t.Fatalf("create_item(%q) failed: %+v", title, res.Error)
	}
	return res.Result.(*types.Item)
}

func TestGetItemDetails(t *testing.T) {
	k, e, closeFn := newTestEngine(t)
	defer closeFn()
	ctx := context.Background()

	it := createItem(t, k, "task", "write docs", "")

	details, err := e.GetItemDetails(ctx, it.ID)
	if err != nil {
		t.Fatalf("GetItemDetails: %v", err)
	}
	if details.Item.ID != it.ID {
		t.Errorf("details.Item.ID = %q, want %q", details.Item.ID, it.ID)
	}
	if details.IsBlocked {
		t.Error("freshly created item should not be blocked")
	}
}

func TestGetItemDetailsNotFound(t *testing.T) {
	_, e, closeFn := newTestEngine(t)
	defer closeFn()

	if _, err := e.GetItemDetails(context.Background(), "missing"); err == nil {
		t.Error("expected an error for a missing item id")
	}
}

func TestGetProjectTree(t *testing.T) {
	k, e, closeFn := newTestEngine(t)
	defer closeFn()
	ctx := context.Background()

	proj := createItem(t, k, "project", "Q3 plan", "")
	createItem(t, k, "milestone", "phase 1", proj.ID)

	rows, err := e.GetProjectTree(ctx, proj.ID)
	if err != nil {
		t.Fatalf("GetProjectTree: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("GetProjectTree rows = %d, want 2 (project + milestone)", len(rows))
	}
}

func TestListItemsFiltersArchivedByDefault(t *testing.T) {
	k, e, closeFn := newTestEngine(t)
	defer closeFn()
	ctx := context.Background()

	it := createItem(t, k, "task", "archive me", "")
	archived := k.Execute(ctx, kernel.Envelope{Name: "item.archive", Args: map[string]any{"id": it.ID}})
	if !archived.OK {
		t.Fatalf("item.archive failed: %+v", archived.Error)
	}

	rows, _, err := e.ListItems(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, r := range rows {
		if r.Item.ID == it.ID {
			t.Error("default ListItems should exclude archived items")
		}
	}

	allRows, total, err := e.ListItems(ctx, map[string]any{"archiveFilter": "all"})
	if err != nil {
		t.Fatalf("ListItems(archiveFilter=all): %v", err)
	}
	if total != len(allRows) {
		t.Errorf("total = %d, want len(rows) = %d", total, len(allRows))
	}
	found := false
	for _, r := range allRows {
		if r.Item.ID == it.ID {
			found = true
		}
	}
	if !found {
		t.Error("archiveFilter=all should include the archived item")
	}
}

func TestVerifyIntegrityDelegatesCleanStore(t *testing.T) {
	k, e, closeFn := newTestEngine(t)
	defer closeFn()
	ctx := context.Background()
	createItem(t, k, "task", "clean task", "")

	findings, err := e.VerifyIntegrity(ctx)
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("VerifyIntegrity on a freshly created store = %v, want none", findings)
	}
}
