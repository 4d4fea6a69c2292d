package kernel

import (
	"context"
	"fmt"
	"sort"

	"github.com/Taj-Howe/planner-kernel/internal/blocked"
	"github.com/Taj-Howe/planner-kernel/internal/hierarchy"
	"github.com/Taj-Howe/planner-kernel/internal/idgen"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
	"github.com/Taj-Howe/planner-kernel/internal/validation"
)

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func argInt64Ptr(args map[string]any, key string) *int64 {
	v, present := args[key]
	if !present || v == nil {
		return nil
	}
	switch n := v.(type) {
	case int64:
		return &n
	case int:
		i := int64(n)
		return &i
	case float64:
		i := int64(n)
		return &i
	}
	return nil
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argStringPtr(args map[string]any, key string) *string {
	v, present := args[key]
	if !present || v == nil {
		return nil
	}
	s, _ := v.(string)
	return &s
}

func handleCreateItem(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	itemType, err := validation.ItemType(argString(args, "type"))
	if err != nil {
		return nil, nil, err
	}
	title, err := validation.NonEmptyString("title", argString(args, "title"))
	if err != nil {
		return nil, nil, err
	}
	estimateMinutes, err := validation.NonNegativeInt("estimate_minutes", argInt(args, "estimate_minutes"))
	if err != nil {
		return nil, nil, err
	}
	estimateMode, err := validation.EstimateMode(argString(args, "estimate_mode"))
	if err != nil {
		return nil, nil, err
	}
	status := types.StatusBacklog
	if raw := argString(args, "status"); raw != "" {
		status, err = validation.ItemStatus(raw)
		if err != nil {
			return nil, nil, err
		}
	}
	priority := 0
	if _, present := args["priority"]; present {
		priority, err = validation.Priority(argInt(args, "priority"))
		if err != nil {
			return nil, nil, err
		}
	}
	health, err := validation.HealthValue(argString(args, "health"))
	if err != nil {
		return nil, nil, err
	}
	healthMode, err := validation.HealthModeValue(argString(args, "health_mode"))
	if err != nil {
		return nil, nil, err
	}

	var parentID *string
	if p := argStringPtr(args, "parent_id"); p != nil {
		if _, perr := tx.GetItem(ctx, *p); perr != nil {
			return nil, nil, fmt.Errorf("parent item not found")
		}
		parentID = p
	}

	siblings, err := tx.AllItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	sortOrder := 0
	for _, it := range siblings {
		if samePointer(it.ParentID, parentID) && it.SortOrder >= sortOrder {
			sortOrder = it.SortOrder + 1
		}
	}

	now := k.nowMillis()
	it := &types.Item{
		ID:              idgen.New(),
		Type:            itemType,
		Title:           title,
		ParentID:        parentID,
		Status:          status,
		Priority:        priority,
		DueAt:           argInt64Ptr(args, "due_at"),
		EstimateMode:    estimateMode,
		EstimateMinutes: estimateMinutes,
		Health:          health,
		HealthMode:      healthMode,
		Notes:           argStringPtr(args, "notes"),
		SortOrder:       sortOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if status == types.StatusDone {
		it.CompletedAt = &now
	}
	if err := tx.InsertItem(ctx, it); err != nil {
		return nil, nil, err
	}
	return it, []string{"items", "item:" + it.ID}, nil
}

func samePointer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

var mutableFields = map[string]bool{
	"title": true, "due_at": true, "estimate_minutes": true, "estimate_mode": true,
	"priority": true, "health": true, "health_mode": true, "notes": true,
}

func handleUpdateItemFields(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	id, err := validation.NonEmptyString("id", argString(args, "id"))
	if err != nil {
		return nil, nil, err
	}
	it, err := tx.GetItem(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	fields, _ := args["fields"].(map[string]any)
	for field := range fields {
		if !mutableFields[field] {
			return nil, nil, &validation.Error{Field: field, Message: "is not a mutable field"}
		}
	}
	if v, present := fields["title"]; present {
		title, verr := validation.NonEmptyString("title", fmt.Sprint(v))
		if verr != nil {
			return nil, nil, verr
		}
		it.Title = title
	}
	if _, present := fields["due_at"]; present {
		it.DueAt = argInt64Ptr(fields, "due_at")
	}
	if v, present := fields["estimate_minutes"]; present {
		n, verr := validation.NonNegativeInt("estimate_minutes", toInt(v))
		if verr != nil {
			return nil, nil, verr
		}
		it.EstimateMinutes = n
	}
	if _, present := fields["estimate_mode"]; present {
		m, verr := validation.EstimateMode(argString(fields, "estimate_mode"))
		if verr != nil {
			return nil, nil, verr
		}
		it.EstimateMode = m
	}
	if _, present := fields["priority"]; present {
		p, verr := validation.Priority(toInt(fields["priority"]))
		if verr != nil {
			return nil, nil, verr
		}
		it.Priority = p
	}
	if _, present := fields["health"]; present {
		h, verr := validation.HealthValue(argString(fields, "health"))
		if verr != nil {
			return nil, nil, verr
		}
		it.Health = h
	}
	if _, present := fields["health_mode"]; present {
		hm, verr := validation.HealthModeValue(argString(fields, "health_mode"))
		if verr != nil {
			return nil, nil, verr
		}
		it.HealthMode = hm
	}
	if _, present := fields["notes"]; present {
		it.Notes = argStringPtr(fields, "notes")
	}
	it.UpdatedAt = k.nowMillis()
	if err := tx.UpdateItem(ctx, it); err != nil {
		return nil, nil, err
	}
	return it, []string{"items", "item:" + it.ID}, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func handleSetStatus(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	args := env.Args
	id, err := validation.NonEmptyString("id", argString(args, "id"))
	if err != nil {
		return nil, nil, err
	}
	status, err := validation.ItemStatus(argString(args, "status"))
	if err != nil {
		return nil, nil, err
	}
	override := argBool(args, "override")

	it, err := tx.GetItem(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if status == types.StatusInProgress && !override {
		items, blockers, deps, derr := loadBlockedInputs(ctx, tx)
		if derr != nil {
			return nil, nil, derr
		}
		st := blocked.New(items, blockers, deps).Derive(id)
		if st.IsBlocked() {
			return nil, nil, &DomainError{Code: CodeBlocked, Message: "item has an active blocker or unmet dependency"}
		}
	}

	it.Status = status
	now := k.nowMillis()
	if status == types.StatusDone {
		if it.CompletedAt == nil {
			it.CompletedAt = &now
		}
	} else {
		it.CompletedAt = nil
	}
	it.UpdatedAt = now
	if err := tx.UpdateItem(ctx, it); err != nil {
		return nil, nil, err
	}

	invalidate := []string{"items", "item:" + it.ID}
	if status == types.StatusDone {
		if shouldAutoArchive(ctx, tx) {
			ids, aerr := archiveSubtree(ctx, tx, []string{it.ID}, now)
			if aerr != nil {
				return nil, nil, aerr
			}
			_ = ids
			invalidate = append(invalidate, "items")
		}
	}
	return it, invalidate, nil
}

func shouldAutoArchive(ctx context.Context, tx store.Tx) bool {
	s, err := tx.GetSetting(ctx, types.SettingAutoArchiveOnComplete)
	if err != nil {
		return false
	}
	return s.ValueJSON == "true"
}

func loadBlockedInputs(ctx context.Context, tx store.Tx) ([]*types.Item, []*types.Blocker, []*types.Dependency, error) {
	items, err := tx.AllItems(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	blockers, err := tx.AllBlockers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	deps, err := tx.AllDependencies(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return items, blockers, deps, nil
}

// archiveSubtree sets archived_at=now on the seed ids' full subtrees,
// preserving any earlier archived_at.
func archiveSubtree(ctx context.Context, tx store.Tx, seeds []string, now int64) ([]string, error) {
	items, err := tx.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	idx := hierarchy.Build(items)
	ids := idx.SubtreeOf(seeds)
	byID := make(map[string]*types.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			continue
		}
		if it.ArchivedAt == nil {
			it.ArchivedAt = &now
			it.UpdatedAt = now
			if err := tx.UpdateItem(ctx, it); err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}

func restoreSubtree(ctx context.Context, tx store.Tx, seeds []string, now int64) ([]string, error) {
	items, err := tx.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	idx := hierarchy.Build(items)
	ids := idx.SubtreeOf(seeds)
	byID := make(map[string]*types.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			continue
		}
		it.ArchivedAt = nil
		it.UpdatedAt = now
		if err := tx.UpdateItem(ctx, it); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func handleArchiveOne(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	id, err := validation.NonEmptyString("id", argString(env.Args, "id"))
	if err != nil {
		return nil, nil, err
	}
	ids, err := archiveSubtree(ctx, tx, []string{id}, k.nowMillis())
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"archived_ids": ids}, []string{"items"}, nil
}

func handleArchiveMany(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	ids := stringSlice(env.Args["ids"])
	if len(ids) == 0 {
		return nil, nil, &validation.Error{Field: "ids", Message: "must not be empty"}
	}
	all, err := archiveSubtree(ctx, tx, ids, k.nowMillis())
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"archived_ids": all}, []string{"items"}, nil
}

func handleRestoreOne(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	id, err := validation.NonEmptyString("id", argString(env.Args, "id"))
	if err != nil {
		return nil, nil, err
	}
	ids, err := restoreSubtree(ctx, tx, []string{id}, k.nowMillis())
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"restored_ids": ids}, []string{"items"}, nil
}

func handleRestoreMany(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	ids := stringSlice(env.Args["ids"])
	if len(ids) == 0 {
		return nil, nil, &validation.Error{Field: "ids", Message: "must not be empty"}
	}
	all, err := restoreSubtree(ctx, tx, ids, k.nowMillis())
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"restored_ids": all}, []string{"items"}, nil
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// deleteSubtree cascade-deletes dependencies, blockers, scheduled blocks,
// time entries, running timers, tags, and assignees for every id in the
// seeds' subtrees, then the items themselves.
func deleteSubtree(ctx context.Context, tx store.Tx, seeds []string) ([]string, error) {
	items, err := tx.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	idx := hierarchy.Build(items)
	ids := idx.SubtreeOf(seeds)
	if len(ids) == 0 {
		return nil, nil
	}
	if err := tx.DeleteDependenciesForItems(ctx, ids); err != nil {
		return nil, err
	}
	if err := tx.DeleteBlockersForItems(ctx, ids); err != nil {
		return nil, err
	}
	if err := tx.DeleteScheduledBlocksForItems(ctx, ids); err != nil {
		return nil, err
	}
	if err := tx.DeleteTimeEntriesForItems(ctx, ids); err != nil {
		return nil, err
	}
	if err := tx.DeleteRunningTimersForItems(ctx, ids); err != nil {
		return nil, err
	}
	if err := tx.DeleteTagsForItems(ctx, ids); err != nil {
		return nil, err
	}
	if err := tx.DeleteAssigneesForItems(ctx, ids); err != nil {
		return nil, err
	}
	if err := tx.DeleteItems(ctx, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func handleDeleteOne(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	id, err := validation.NonEmptyString("id", argString(env.Args, "id"))
	if err != nil {
		return nil, nil, err
	}
	ids, err := deleteSubtree(ctx, tx, []string{id})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"deleted_ids": ids}, []string{"items"}, nil
}

func handleDeleteMany(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	ids := stringSlice(env.Args["ids"])
	if len(ids) == 0 {
		return nil, nil, &validation.Error{Field: "ids", Message: "must not be empty"}
	}
	all, err := deleteSubtree(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"deleted_ids": all}, []string{"items"}, nil
}

// handleReorderItem swaps sort_order with the visually-adjacent sibling
// using the list view's default ordering (sort_order asc, due_at asc with
// nulls last, title asc).
func handleReorderItem(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	id, err := validation.NonEmptyString("id", argString(env.Args, "id"))
	if err != nil {
		return nil, nil, err
	}
	direction := argString(env.Args, "direction")
	if direction != "up" && direction != "down" {
		return nil, nil, &validation.Error{Field: "direction", Message: "must be up or down"}
	}
	it, err := tx.GetItem(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := tx.AllItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	var siblings []*types.Item
	for _, o := range items {
		if samePointer(o.ParentID, it.ParentID) {
			siblings = append(siblings, o)
		}
	}
	sort.Slice(siblings, func(i, j int) bool {
		return defaultItemLess(siblings[i], siblings[j])
	})
	pos := -1
	for i, s := range siblings {
		if s.ID == it.ID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, nil, fmt.Errorf("item not found among siblings")
	}
	var swapWith int
	if direction == "up" {
		swapWith = pos - 1
	} else {
		swapWith = pos + 1
	}
	if swapWith < 0 || swapWith >= len(siblings) {
		return it, nil, nil
	}
	now := k.nowMillis()
	a, b := siblings[pos], siblings[swapWith]
	a.SortOrder, b.SortOrder = b.SortOrder, a.SortOrder
	a.UpdatedAt, b.UpdatedAt = now, now
	if err := tx.UpdateItem(ctx, a); err != nil {
		return nil, nil, err
	}
	if err := tx.UpdateItem(ctx, b); err != nil {
		return nil, nil, err
	}
	return a, []string{"items"}, nil
}

func defaultItemLess(a, b *types.Item) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	if (a.DueAt == nil) != (b.DueAt == nil) {
		return a.DueAt != nil
	}
	if a.DueAt != nil && b.DueAt != nil && *a.DueAt != *b.DueAt {
		return *a.DueAt < *b.DueAt
	}
	return a.Title < b.Title
}

// handleMoveItem reorders id among its current siblings relative to
// before_id/after_id, re-spacing sort_order at increments of 10.
// Reparenting is out of scope: parent_id must match the item's current
// parent.
func handleMoveItem(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	id, err := validation.NonEmptyString("id", argString(env.Args, "id"))
	if err != nil {
		return nil, nil, err
	}
	it, err := tx.GetItem(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	parentID := argStringPtr(env.Args, "parent_id")
	if !samePointer(parentID, it.ParentID) {
		return nil, nil, fmt.Errorf("move_item does not support reparenting; parent_id must match the current parent")
	}

	items, err := tx.AllItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	var siblings []*types.Item
	for _, o := range items {
		if samePointer(o.ParentID, it.ParentID) && o.ID != it.ID {
			siblings = append(siblings, o)
		}
	}
	sort.Slice(siblings, func(i, j int) bool { return defaultItemLess(siblings[i], siblings[j]) })

	beforeID := argString(env.Args, "before_id")
	afterID := argString(env.Args, "after_id")
	insertAt := len(siblings)
	if beforeID != "" {
		for i, s := range siblings {
			if s.ID == beforeID {
				insertAt = i
				break
			}
		}
	} else if afterID != "" {
		for i, s := range siblings {
			if s.ID == afterID {
				insertAt = i + 1
				break
			}
		}
	}
	ordered := make([]*types.Item, 0, len(siblings)+1)
	ordered = append(ordered, siblings[:insertAt]...)
	ordered = append(ordered, it)
	ordered = append(ordered, siblings[insertAt:]...)

	now := k.nowMillis()
	for i, o := range ordered {
		sortOrder := (i + 1) * 10
		if o.SortOrder != sortOrder {
			o.SortOrder = sortOrder
			o.UpdatedAt = now
			if err := tx.UpdateItem(ctx, o); err != nil {
				return nil, nil, err
			}
		}
	}
	return it, []string{"items"}, nil
}
