package kernel

import (
	"context"

	"github.com/Taj-Howe/planner-kernel/internal/depengine"
	"github.com/Taj-Howe/planner-kernel/internal/idgen"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
	"github.com/Taj-Howe/planner-kernel/internal/validation"
)

func argStringAny(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := argString(args, k); s != "" {
			return s
		}
	}
	return ""
}

func handleDependencyCreate(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	successorID, err := validation.NonEmptyString("successor_id", argStringAny(args, "successor_id", "succ"))
	if err != nil {
		return nil, nil, err
	}
	predecessorID, err := validation.NonEmptyString("predecessor_id", argStringAny(args, "predecessor_id", "pred"))
	if err != nil {
		return nil, nil, err
	}
	if successorID == predecessorID {
		return nil, nil, &validation.Error{Field: "predecessor_id", Message: "cannot depend on itself"}
	}
	if _, err := tx.GetItem(ctx, successorID); err != nil {
		return nil, nil, err
	}
	if _, err := tx.GetItem(ctx, predecessorID); err != nil {
		return nil, nil, err
	}
	depType, err := validation.DependencyType(argString(args, "type"))
	if err != nil {
		return nil, nil, err
	}
	var lag *int
	if v, present := args["lag_minutes"]; present {
		n := toInt(v)
		lag = &n
	}
	lagMinutes, err := validation.LagMinutes(lag)
	if err != nil {
		return nil, nil, err
	}

	existing, err := tx.AllDependencies(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range existing {
		if e.SuccessorID == successorID && e.PredecessorID == predecessorID {
			// add_dependency(a,b) then add_dependency(a,b) is a no-op.
			return e, nil, nil
		}
	}
	if depengine.Build(existing).WouldCycle(successorID, predecessorID) {
		return nil, nil, store.ErrCycle
	}

	d := &types.Dependency{SuccessorID: successorID, PredecessorID: predecessorID, Type: depType, LagMinutes: lagMinutes}
	if _, err := tx.UpsertDependency(ctx, d); err != nil {
		return nil, nil, err
	}
	return d, []string{"items", "item:" + successorID}, nil
}

func handleDependencyUpdate(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	successorID, err := validation.NonEmptyString("successor_id", argStringAny(args, "successor_id", "succ"))
	if err != nil {
		return nil, nil, err
	}
	predecessorID, err := validation.NonEmptyString("predecessor_id", argStringAny(args, "predecessor_id", "pred"))
	if err != nil {
		return nil, nil, err
	}
	existing, err := tx.AllDependencies(ctx)
	if err != nil {
		return nil, nil, err
	}
	var found *types.Dependency
	for _, e := range existing {
		if e.SuccessorID == successorID && e.PredecessorID == predecessorID {
			found = e
			break
		}
	}
	if found == nil {
		return nil, nil, store.ErrNotFound
	}
	if v := argString(args, "type"); v != "" {
		depType, verr := validation.DependencyType(v)
		if verr != nil {
			return nil, nil, verr
		}
		found.Type = depType
	}
	if v, present := args["lag_minutes"]; present {
		n := toInt(v)
		lagMinutes, verr := validation.LagMinutes(&n)
		if verr != nil {
			return nil, nil, verr
		}
		found.LagMinutes = lagMinutes
	}
	if _, err := tx.UpsertDependency(ctx, found); err != nil {
		return nil, nil, err
	}
	return found, []string{"items", "item:" + successorID}, nil
}

func handleDependencyDelete(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	successorID, err := validation.NonEmptyString("successor_id", argStringAny(args, "successor_id", "succ"))
	if err != nil {
		return nil, nil, err
	}
	predecessorID, err := validation.NonEmptyString("predecessor_id", argStringAny(args, "predecessor_id", "pred"))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.DeleteDependency(ctx, successorID, predecessorID); err != nil {
		return nil, nil, err
	}
	return map[string]any{"successor_id": successorID, "predecessor_id": predecessorID}, []string{"items", "item:" + successorID}, nil
}

func handleAddBlocker(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	itemID, err := validation.NonEmptyString("item_id", argString(args, "item_id"))
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.GetItem(ctx, itemID); err != nil {
		return nil, nil, err
	}
	kind := orDefault(argString(args, "kind"), "general")
	text := argStringAny(args, "text", "reason")
	if _, err := validation.NonEmptyString("text", text); err != nil {
		return nil, nil, err
	}
	b := &types.Blocker{
		BlockerID: idgen.New(),
		ItemID:    itemID,
		Kind:      kind,
		Text:      text,
		CreatedAt: k.nowMillis(),
	}
	if err := tx.InsertBlocker(ctx, b); err != nil {
		return nil, nil, err
	}
	return b, []string{"items", "item:" + itemID}, nil
}

func handleClearBlocker(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	blockerID, err := validation.NonEmptyString("blocker_id", argString(env.Args, "blocker_id"))
	if err != nil {
		return nil, nil, err
	}
	now := k.nowMillis()
	if err := tx.ClearBlocker(ctx, blockerID, now); err != nil {
		return nil, nil, err
	}
	return map[string]any{"blocker_id": blockerID, "cleared_at": now}, []string{"items"}, nil
}

// handleSetItemTags replaces the full tag set for an item, trimming and
// de-duplicating case-sensitively.
func handleSetItemTags(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	itemID, err := validation.NonEmptyString("item_id", argString(env.Args, "item_id"))
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.GetItem(ctx, itemID); err != nil {
		return nil, nil, err
	}
	raw := stringSlice(env.Args["tags"])
	seen := make(map[string]bool, len(raw))
	var tags []string
	for _, t := range raw {
		trimmed := validation.OptionalString(t)
		if trimmed == nil || seen[*trimmed] {
			continue
		}
		seen[*trimmed] = true
		tags = append(tags, *trimmed)
	}
	if err := tx.SetTags(ctx, itemID, tags); err != nil {
		return nil, nil, err
	}
	return map[string]any{"item_id": itemID, "tags": tags}, []string{"item:" + itemID}, nil
}

// handleSetAssignee backs both item.set_assignee and set_item_assignees:
// multi-assignee inputs are collapsed to the first id, since at most one
// assignee is ever stored.
func handleSetAssignee(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	itemID, err := validation.NonEmptyString("item_id", argString(env.Args, "item_id"))
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.GetItem(ctx, itemID); err != nil {
		return nil, nil, err
	}
	assigneeID := argString(env.Args, "assignee_id")
	if assigneeID == "" {
		if ids := stringSlice(env.Args["assignee_ids"]); len(ids) > 0 {
			assigneeID = ids[0]
		}
	}
	if assigneeID == "" {
		if err := tx.ClearAssignee(ctx, itemID); err != nil {
			return nil, nil, err
		}
		return map[string]any{"item_id": itemID, "assignee_id": nil}, []string{"item:" + itemID}, nil
	}
	if err := tx.SetAssignee(ctx, itemID, assigneeID); err != nil {
		return nil, nil, err
	}
	return map[string]any{"item_id": itemID, "assignee_id": assigneeID}, []string{"item:" + itemID}, nil
}
