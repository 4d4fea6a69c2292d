package kernel

import (
	"context"

	"github.com/Taj-Howe/planner-kernel/internal/idgen"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
	"github.com/Taj-Howe/planner-kernel/internal/validation"
)

// ceilDivMillisToMinutes converts a millisecond span to whole minutes,
// rounding up so a span that is not minute-aligned is never under-counted.
func ceilDivMillisToMinutes(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 59999) / 60000)
}

func resolveBlockDuration(args map[string]any, startAt int64) (int, error) {
	if _, present := args["duration_minutes"]; present {
		return validation.PositiveInt("duration_minutes", argInt(args, "duration_minutes"))
	}
	if endAt := argInt64Ptr(args, "end_at"); endAt != nil {
		return validation.PositiveInt("duration_minutes", ceilDivMillisToMinutes(*endAt-startAt))
	}
	return 0, &validation.Error{Field: "duration_minutes", Message: "or end_at must be provided"}
}

// handleCreateBlock enforces single-block-per-task by deleting any other
// block already scheduled for the same item.
func handleCreateBlock(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	itemID, err := validation.NonEmptyString("item_id", argString(args, "item_id"))
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.GetItem(ctx, itemID); err != nil {
		return nil, nil, err
	}
	startAt, err := validation.FiniteInt("start_at", argInt64Ptr(args, "start_at"))
	if err != nil {
		return nil, nil, err
	}
	duration, err := resolveBlockDuration(args, startAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.DeleteScheduledBlocksForItem(ctx, itemID); err != nil {
		return nil, nil, err
	}

	b := &types.ScheduledBlock{
		BlockID:         idgen.New(),
		ItemID:          itemID,
		StartAt:         startAt,
		DurationMinutes: duration,
		Locked:          argBool(args, "locked"),
		Source:          orDefault(argString(args, "source"), "user"),
	}
	if err := tx.InsertScheduledBlock(ctx, b); err != nil {
		return nil, nil, err
	}
	return b, []string{"blocks", "item:" + itemID}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func handleUpdateBlock(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	blockID, err := validation.NonEmptyString("block_id", argString(args, "block_id"))
	if err != nil {
		return nil, nil, err
	}
	blocks, err := tx.AllScheduledBlocks(ctx)
	if err != nil {
		return nil, nil, err
	}
	var found *types.ScheduledBlock
	for _, b := range blocks {
		if b.BlockID == blockID {
			found = b
			break
		}
	}
	if found == nil {
		return nil, nil, store.ErrNotFound
	}
	if v, present := args["start_at"]; present {
		_ = v
		startAt, verr := validation.FiniteInt("start_at", argInt64Ptr(args, "start_at"))
		if verr != nil {
			return nil, nil, verr
		}
		found.StartAt = startAt
	}
	if _, present := args["duration_minutes"]; present {
		duration, verr := validation.PositiveInt("duration_minutes", argInt(args, "duration_minutes"))
		if verr != nil {
			return nil, nil, verr
		}
		found.DurationMinutes = duration
	} else if endAt := argInt64Ptr(args, "end_at"); endAt != nil {
		duration, verr := validation.PositiveInt("duration_minutes", ceilDivMillisToMinutes(*endAt-found.StartAt))
		if verr != nil {
			return nil, nil, verr
		}
		found.DurationMinutes = duration
	}
	if _, present := args["locked"]; present {
		found.Locked = argBool(args, "locked")
	}
	if err := tx.UpdateScheduledBlock(ctx, found); err != nil {
		return nil, nil, err
	}
	return found, []string{"blocks", "item:" + found.ItemID}, nil
}

func handleDeleteBlock(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	blockID, err := validation.NonEmptyString("block_id", argString(env.Args, "block_id"))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.DeleteScheduledBlock(ctx, blockID); err != nil {
		return nil, nil, err
	}
	return map[string]any{"block_id": blockID}, []string{"blocks"}, nil
}

func handleAddTimeEntry(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	itemID, err := validation.NonEmptyString("item_id", argString(args, "item_id"))
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.GetItem(ctx, itemID); err != nil {
		return nil, nil, err
	}
	startAt, err := validation.FiniteInt("start_at", argInt64Ptr(args, "start_at"))
	if err != nil {
		return nil, nil, err
	}
	endAt, err := validation.FiniteInt("end_at", argInt64Ptr(args, "end_at"))
	if err != nil {
		return nil, nil, err
	}
	if endAt <= startAt {
		return nil, nil, &validation.Error{Field: "end_at", Message: "must be after start_at"}
	}
	e := &types.TimeEntry{
		EntryID:         idgen.New(),
		ItemID:          itemID,
		StartAt:         startAt,
		EndAt:           endAt,
		DurationMinutes: ceilDivMillisToMinutes(endAt - startAt),
		Note:            argStringPtr(args, "note"),
		Source:          orDefault(argString(args, "source"), "manual"),
	}
	if err := tx.InsertTimeEntry(ctx, e); err != nil {
		return nil, nil, err
	}
	return e, []string{"time_entries", "item:" + itemID}, nil
}

func handleStartTimer(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	itemID, err := validation.NonEmptyString("item_id", argString(env.Args, "item_id"))
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.GetItem(ctx, itemID); err != nil {
		return nil, nil, err
	}
	running, err := tx.AllRunningTimers(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(running) > 0 {
		return nil, nil, &DomainError{Code: CodeTimerAlreadyRunning, Message: "a timer is already running"}
	}
	t := &types.RunningTimer{
		ItemID:  itemID,
		StartAt: k.nowMillis(),
		Note:    argStringPtr(env.Args, "note"),
	}
	if err := tx.UpsertRunningTimer(ctx, t); err != nil {
		return nil, nil, err
	}
	return t, []string{"running_timers"}, nil
}

func handleStopTimer(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	running, err := tx.AllRunningTimers(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(running) == 0 {
		return nil, nil, &DomainError{Code: CodeNoRunningTimer, Message: "no timer is running"}
	}
	t := running[0]
	now := k.nowMillis()
	e := &types.TimeEntry{
		EntryID:         idgen.New(),
		ItemID:          t.ItemID,
		StartAt:         t.StartAt,
		EndAt:           now,
		DurationMinutes: ceilDivMillisToMinutes(now - t.StartAt),
		Note:            t.Note,
		Source:          "timer",
	}
	if err := tx.InsertTimeEntry(ctx, e); err != nil {
		return nil, nil, err
	}
	if err := tx.DeleteRunningTimer(ctx, t.ItemID); err != nil {
		return nil, nil, err
	}
	return e, []string{"running_timers", "time_entries", "item:" + t.ItemID}, nil
}
