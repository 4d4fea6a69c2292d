package sqlite

import (
	"context"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allAssignees(ctx context.Context, db execer) ([]*types.ItemAssignee, error) {
	rows, err := db.QueryContext(ctx, `SELECT item_id, assignee_id FROM item_assignees`)
	if err != nil {
		return nil, store.WrapDBError("list assignees", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.ItemAssignee
	for rows.Next() {
		var a types.ItemAssignee
		if err := rows.Scan(&a.ItemID, &a.AssigneeID); err != nil {
			return nil, store.WrapDBError("scan assignee", err)
		}
		out = append(out, &a)
	}
	return out, store.WrapDBError("iterate assignees", rows.Err())
}

// setAssignee enforces "at most one assignee per item" by replacing any
// existing row.
func setAssignee(ctx context.Context, db execer, itemID, assigneeID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO item_assignees (item_id, assignee_id) VALUES (?, ?)
		ON CONFLICT (item_id) DO UPDATE SET assignee_id = excluded.assignee_id
	`, itemID, assigneeID)
	return store.WrapDBError("set assignee", err)
}

func clearAssignee(ctx context.Context, db execer, itemID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM item_assignees WHERE item_id = ?`, itemID)
	return store.WrapDBError("clear assignee", err)
}

func deleteAssigneesForItems(ctx context.Context, db execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM item_assignees WHERE item_id IN (%s)`, ph), args...)
	return store.WrapDBError("delete assignees for items", err)
}

func (s *SQLiteStore) AllAssignees(ctx context.Context) ([]*types.ItemAssignee, error) {
	return allAssignees(ctx, s.db)
}
func (t *sqlTx) AllAssignees(ctx context.Context) ([]*types.ItemAssignee, error) {
	return allAssignees(ctx, t.conn)
}
func (t *sqlTx) SetAssignee(ctx context.Context, itemID, assigneeID string) error {
	return setAssignee(ctx, t.conn, itemID, assigneeID)
}
func (t *sqlTx) ClearAssignee(ctx context.Context, itemID string) error {
	return clearAssignee(ctx, t.conn, itemID)
}
func (t *sqlTx) DeleteAssigneesForItems(ctx context.Context, ids []string) error {
	return deleteAssigneesForItems(ctx, t.conn, ids)
}
