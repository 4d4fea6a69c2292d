package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allTimeEntries(ctx context.Context, db execer) ([]*types.TimeEntry, error) {
	rows, err := db.QueryContext(ctx, `SELECT entry_id, item_id, start_at, end_at, duration_minutes, note, source FROM time_entries`)
	if err != nil {
		return nil, store.WrapDBError("list time entries", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.TimeEntry
	for rows.Next() {
		var e types.TimeEntry
		var note sql.NullString
		if err := rows.Scan(&e.EntryID, &e.ItemID, &e.StartAt, &e.EndAt, &e.DurationMinutes, &note, &e.Source); err != nil {
			return nil, store.WrapDBError("scan time entry", err)
		}
		if note.Valid {
			e.Note = &note.String
		}
		out = append(out, &e)
	}
	return out, store.WrapDBError("iterate time entries", rows.Err())
}

func insertTimeEntry(ctx context.Context, db execer, e *types.TimeEntry) error {
	_, err := db.ExecContext(ctx, `INSERT INTO time_entries (entry_id, item_id, start_at, end_at, duration_minutes, note, source)
		VALUES (?,?,?,?,?,?,?)`, e.EntryID, e.ItemID, e.StartAt, e.EndAt, e.DurationMinutes, e.Note, e.Source)
	return store.WrapDBError("insert time entry", err)
}

func deleteTimeEntriesForItems(ctx context.Context, db execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM time_entries WHERE item_id IN (%s)`, ph), args...)
	return store.WrapDBError("delete time entries for items", err)
}

func (s *SQLiteStore) AllTimeEntries(ctx context.Context) ([]*types.TimeEntry, error) {
	return allTimeEntries(ctx, s.db)
}
func (t *sqlTx) AllTimeEntries(ctx context.Context) ([]*types.TimeEntry, error) {
	return allTimeEntries(ctx, t.conn)
}
func (t *sqlTx) InsertTimeEntry(ctx context.Context, e *types.TimeEntry) error {
	return insertTimeEntry(ctx, t.conn, e)
}
func (t *sqlTx) DeleteTimeEntriesForItems(ctx context.Context, ids []string) error {
	return deleteTimeEntriesForItems(ctx, t.conn, ids)
}
