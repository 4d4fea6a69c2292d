package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allRunningTimers(ctx context.Context, db execer) ([]*types.RunningTimer, error) {
	rows, err := db.QueryContext(ctx, `SELECT item_id, start_at, note FROM running_timers`)
	if err != nil {
		return nil, store.WrapDBError("list running timers", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.RunningTimer
	for rows.Next() {
		var t types.RunningTimer
		var note sql.NullString
		if err := rows.Scan(&t.ItemID, &t.StartAt, &note); err != nil {
			return nil, store.WrapDBError("scan running timer", err)
		}
		if note.Valid {
			t.Note = &note.String
		}
		out = append(out, &t)
	}
	return out, store.WrapDBError("iterate running timers", rows.Err())
}

func upsertRunningTimer(ctx context.Context, db execer, t *types.RunningTimer) error {
	_, err := db.ExecContext(ctx, `INSERT INTO running_timers (item_id, start_at, note) VALUES (?,?,?)`,
		t.ItemID, t.StartAt, t.Note)
	return store.WrapDBError("insert running timer", err)
}

func deleteRunningTimer(ctx context.Context, db execer, itemID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM running_timers WHERE item_id = ?`, itemID)
	if err != nil {
		return store.WrapDBError("delete running timer", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.WrapDBError("delete running timer", sql.ErrNoRows)
	}
	return nil
}

func deleteRunningTimersForItems(ctx context.Context, db execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM running_timers WHERE item_id IN (%s)`, ph), args...)
	return store.WrapDBError("delete running timers for items", err)
}

func (s *SQLiteStore) AllRunningTimers(ctx context.Context) ([]*types.RunningTimer, error) {
	return allRunningTimers(ctx, s.db)
}
func (t *sqlTx) AllRunningTimers(ctx context.Context) ([]*types.RunningTimer, error) {
	return allRunningTimers(ctx, t.conn)
}
func (t *sqlTx) UpsertRunningTimer(ctx context.Context, rt *types.RunningTimer) error {
	return upsertRunningTimer(ctx, t.conn, rt)
}
func (t *sqlTx) DeleteRunningTimer(ctx context.Context, itemID string) error {
	return deleteRunningTimer(ctx, t.conn, itemID)
}
func (t *sqlTx) DeleteRunningTimersForItems(ctx context.Context, ids []string) error {
	return deleteRunningTimersForItems(ctx, t.conn, ids)
}
