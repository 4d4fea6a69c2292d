package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allBlockers(ctx context.Context, db execer) ([]*types.Blocker, error) {
	rows, err := db.QueryContext(ctx, `SELECT blocker_id, item_id, kind, text, created_at, cleared_at FROM blockers`)
	if err != nil {
		return nil, store.WrapDBError("list blockers", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Blocker
	for rows.Next() {
		var b types.Blocker
		var cleared sql.NullInt64
		if err := rows.Scan(&b.BlockerID, &b.ItemID, &b.Kind, &b.Text, &b.CreatedAt, &cleared); err != nil {
			return nil, store.WrapDBError("scan blocker", err)
		}
		if cleared.Valid {
			b.ClearedAt = &cleared.Int64
		}
		out = append(out, &b)
	}
	return out, store.WrapDBError("iterate blockers", rows.Err())
}

func insertBlocker(ctx context.Context, db execer, b *types.Blocker) error {
	_, err := db.ExecContext(ctx, `INSERT INTO blockers (blocker_id, item_id, kind, text, created_at, cleared_at)
		VALUES (?,?,?,?,?,?)`, b.BlockerID, b.ItemID, b.Kind, b.Text, b.CreatedAt, b.ClearedAt)
	return store.WrapDBError("insert blocker", err)
}

func clearBlocker(ctx context.Context, db execer, blockerID string, clearedAt int64) error {
	res, err := db.ExecContext(ctx, `UPDATE blockers SET cleared_at = ? WHERE blocker_id = ? AND cleared_at IS NULL`,
		clearedAt, blockerID)
	if err != nil {
		return store.WrapDBError("clear blocker", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.WrapDBError("clear blocker", sql.ErrNoRows)
	}
	return nil
}

func deleteBlockersForItems(ctx context.Context, db execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM blockers WHERE item_id IN (%s)`, ph), args...)
	return store.WrapDBError("delete blockers for items", err)
}

func (s *SQLiteStore) AllBlockers(ctx context.Context) ([]*types.Blocker, error) {
	return allBlockers(ctx, s.db)
}
func (t *sqlTx) AllBlockers(ctx context.Context) ([]*types.Blocker, error) {
	return allBlockers(ctx, t.conn)
}
func (t *sqlTx) InsertBlocker(ctx context.Context, b *types.Blocker) error {
	return insertBlocker(ctx, t.conn, b)
}
func (t *sqlTx) ClearBlocker(ctx context.Context, blockerID string, clearedAt int64) error {
	return clearBlocker(ctx, t.conn, blockerID, clearedAt)
}
func (t *sqlTx) DeleteBlockersForItems(ctx context.Context, ids []string) error {
	return deleteBlockersForItems(ctx, t.conn, ids)
}
