package sqlite

import (
	"context"
	"database/sql"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

const itemColumns = `id, type, title, parent_id, status, priority, due_at, estimate_mode,
	estimate_minutes, health, health_mode, notes, sort_order, completed_at, archived_at,
	created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*types.Item, error) {
	var it types.Item
	var parentID, notes sql.NullString
	var dueAt, completedAt, archivedAt sql.NullInt64
	err := row.Scan(&it.ID, &it.Type, &it.Title, &parentID, &it.Status, &it.Priority, &dueAt,
		&it.EstimateMode, &it.EstimateMinutes, &it.Health, &it.HealthMode, &notes, &it.SortOrder,
		&completedAt, &archivedAt, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		it.ParentID = &parentID.String
	}
	if notes.Valid {
		it.Notes = &notes.String
	}
	if dueAt.Valid {
		it.DueAt = &dueAt.Int64
	}
	if completedAt.Valid {
		it.CompletedAt = &completedAt.Int64
	}
	if archivedAt.Valid {
		it.ArchivedAt = &archivedAt.Int64
	}
	return &it, nil
}

func allItems(ctx context.Context, db execer) ([]*types.Item, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items`)
	if err != nil {
		return nil, store.WrapDBError("list items", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, store.WrapDBError("scan item", err)
		}
		out = append(out, it)
	}
	return out, store.WrapDBError("iterate items", rows.Err())
}

func getItem(ctx context.Context, db execer, id string) (*types.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err != nil {
		return nil, store.WrapDBError("get item", err)
	}
	return it, nil
}

func insertItem(ctx context.Context, db execer, it *types.Item) error {
	_, err := db.ExecContext(ctx, `INSERT INTO items (`+itemColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		it.ID, it.Type, it.Title, it.ParentID, it.Status, it.Priority, it.DueAt, it.EstimateMode,
		it.EstimateMinutes, it.Health, it.HealthMode, it.Notes, it.SortOrder, it.CompletedAt,
		it.ArchivedAt, it.CreatedAt, it.UpdatedAt)
	return store.WrapDBError("insert item", err)
}

func updateItem(ctx context.Context, db execer, it *types.Item) error {
	_, err := db.ExecContext(ctx, `UPDATE items SET type=?, title=?, parent_id=?, status=?, priority=?,
		due_at=?, estimate_mode=?, estimate_minutes=?, health=?, health_mode=?, notes=?, sort_order=?,
		completed_at=?, archived_at=?, updated_at=? WHERE id=?`,
		it.Type, it.Title, it.ParentID, it.Status, it.Priority, it.DueAt, it.EstimateMode,
		it.EstimateMinutes, it.Health, it.HealthMode, it.Notes, it.SortOrder, it.CompletedAt,
		it.ArchivedAt, it.UpdatedAt, it.ID)
	return store.WrapDBError("update item", err)
}

func deleteItems(ctx context.Context, db execer, ids []string) error {
	for _, id := range ids {
		if _, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return store.WrapDBError("delete item", err)
		}
	}
	return nil
}

func (s *SQLiteStore) AllItems(ctx context.Context) ([]*types.Item, error) { return allItems(ctx, s.db) }
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*types.Item, error) {
	return getItem(ctx, s.db, id)
}

func (t *sqlTx) AllItems(ctx context.Context) ([]*types.Item, error) { return allItems(ctx, t.conn) }
func (t *sqlTx) GetItem(ctx context.Context, id string) (*types.Item, error) {
	return getItem(ctx, t.conn, id)
}
func (t *sqlTx) InsertItem(ctx context.Context, it *types.Item) error { return insertItem(ctx, t.conn, it) }
func (t *sqlTx) UpdateItem(ctx context.Context, it *types.Item) error { return updateItem(ctx, t.conn, it) }
func (t *sqlTx) DeleteItems(ctx context.Context, ids []string) error  { return deleteItems(ctx, t.conn, ids) }
