package sqlite

import (
	"context"
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func openTestStore(t *testing.T) (*SQLiteStore, context.Context) {
	t.Helper()
	ctx := context.Background()
	st, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, ctx
}

func TestWithTxInsertAndReadItem(t *testing.T) {
	st, ctx := openTestStore(t)

	it := &types.Item{
		ID: "t1", Type: types.ItemTask, Title: "first task",
		Status: types.StatusBacklog, EstimateMode: types.EstimateManual,
		CreatedAt: 1000, UpdatedAt: 1000,
	}
	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.InsertItem(ctx, it)
	})
	if err != nil {
		t.Fatalf("WithTx insert: %v", err)
	}

	got, err := st.GetItem(ctx, "t1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Title != "first task" {
		t.Errorf("Title = %q, want %q", got.Title, "first task")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st, ctx := openTestStore(t)

	sentinel := context.Canceled
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if ierr := tx.InsertItem(ctx, &types.Item{
			ID: "rollback1", Type: types.ItemTask, Title: "rollback me",
			Status: types.StatusBacklog, CreatedAt: 1, UpdatedAt: 1,
		}); ierr != nil {
			return ierr
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("WithTx err = %v, want sentinel", err)
	}

	if _, gerr := st.GetItem(ctx, "rollback1"); !store.IsNotFound(gerr) {
		t.Errorf("expected rolled-back item to be absent, GetItem err = %v", gerr)
	}
}

func TestGetItemNotFound(t *testing.T) {
	st, ctx := openTestStore(t)
	if _, err := st.GetItem(ctx, "missing"); !store.IsNotFound(err) {
		t.Errorf("GetItem(missing) err = %v, want ErrNotFound", err)
	}
}

func TestTruncateAllClearsItems(t *testing.T) {
	st, ctx := openTestStore(t)

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if ierr := tx.InsertItem(ctx, &types.Item{
			ID: "t1", Type: types.ItemTask, Title: "to be truncated",
			Status: types.StatusBacklog, CreatedAt: 1, UpdatedAt: 1,
		}); ierr != nil {
			return ierr
		}
		return tx.TruncateAll(ctx)
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	items, err := st.AllItems(ctx)
	if err != nil {
		t.Fatalf("AllItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("AllItems after TruncateAll = %v, want empty", items)
	}
}

func TestSetAndGetSetting(t *testing.T) {
	st, ctx := openTestStore(t)
	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.SetSetting(ctx, "capacity_minutes_per_day", "480")
	})
	if err != nil {
		t.Fatalf("WithTx SetSetting: %v", err)
	}
	s, err := st.GetSetting(ctx, "capacity_minutes_per_day")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if s.ValueJSON != "480" {
		t.Errorf("ValueJSON = %q, want 480", s.ValueJSON)
	}
}
