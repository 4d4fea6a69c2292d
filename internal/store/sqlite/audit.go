package sqlite

import (
	"context"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func appendAuditLog(ctx context.Context, db execer, e *types.AuditLogEntry) error {
	_, err := db.ExecContext(ctx, `INSERT INTO audit_log (log_id, op_id, op_name, actor, ts, args_json, result_json)
		VALUES (?,?,?,?,?,?,?)`, e.LogID, e.OpID, e.OpName, e.Actor, e.TS, e.ArgsJSON, e.ResultJSON)
	return store.WrapDBError("append audit log", err)
}

func listAuditLog(ctx context.Context, db execer, limit int, opName string) ([]*types.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT log_id, op_id, op_name, actor, ts, args_json, result_json FROM audit_log`
	var args []any
	if opName != "" {
		q += ` WHERE op_name = ?`
		args = append(args, opName)
	}
	q += ` ORDER BY ts DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, store.WrapDBError("list audit log", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.AuditLogEntry
	for rows.Next() {
		var e types.AuditLogEntry
		if err := rows.Scan(&e.LogID, &e.OpID, &e.OpName, &e.Actor, &e.TS, &e.ArgsJSON, &e.ResultJSON); err != nil {
			return nil, store.WrapDBError("scan audit log entry", err)
		}
		out = append(out, &e)
	}
	return out, store.WrapDBError("iterate audit log", rows.Err())
}

func (s *SQLiteStore) ListAuditLog(ctx context.Context, limit int, opName string) ([]*types.AuditLogEntry, error) {
	return listAuditLog(ctx, s.db, limit, opName)
}
func (t *sqlTx) ListAuditLog(ctx context.Context, limit int, opName string) ([]*types.AuditLogEntry, error) {
	return listAuditLog(ctx, t.conn, limit, opName)
}
func (t *sqlTx) AppendAuditLog(ctx context.Context, e *types.AuditLogEntry) error {
	return appendAuditLog(ctx, t.conn, e)
}

// TruncateAll removes every row from every domain table, for import_data's
// snapshot-replace semantics.
func (t *sqlTx) TruncateAll(ctx context.Context) error {
	tables := []string{
		"dependencies", "blockers", "scheduled_blocks", "time_entries",
		"running_timers", "item_tags", "item_assignees", "settings", "items",
	}
	for _, tbl := range tables {
		if _, err := t.conn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, tbl)); err != nil {
			return store.WrapDBError("truncate "+tbl, err)
		}
	}
	return nil
}
