package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allDependencies(ctx context.Context, db execer) ([]*types.Dependency, error) {
	rows, err := db.QueryContext(ctx, `SELECT successor_id, predecessor_id, type, lag_minutes FROM dependencies`)
	if err != nil {
		return nil, store.WrapDBError("list dependencies", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Dependency
	for rows.Next() {
		var d types.Dependency
		if err := rows.Scan(&d.SuccessorID, &d.PredecessorID, &d.Type, &d.LagMinutes); err != nil {
			return nil, store.WrapDBError("scan dependency", err)
		}
		out = append(out, &d)
	}
	return out, store.WrapDBError("iterate dependencies", rows.Err())
}

// upsertDependency inserts the edge, or updates type/lag on conflict, and
// reports whether a row was written (RowsAffected > 0), which is true for
// a fresh insert and for an update alike.
func upsertDependency(ctx context.Context, db execer, d *types.Dependency) (bool, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO dependencies (successor_id, predecessor_id, type, lag_minutes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (successor_id, predecessor_id) DO UPDATE SET
			type = excluded.type, lag_minutes = excluded.lag_minutes
	`, d.SuccessorID, d.PredecessorID, d.Type, d.LagMinutes)
	if err != nil {
		return false, store.WrapDBError("upsert dependency", err)
	}
	n, _ := res.RowsAffected()
	// sqlite's upsert RowsAffected reports 1 for a fresh insert and 1 for an
	// update too; the read-back below does not change the returned value.
	var existingType string
	var existingLag int
	row := db.QueryRowContext(ctx, `SELECT type, lag_minutes FROM dependencies WHERE successor_id=? AND predecessor_id=?`,
		d.SuccessorID, d.PredecessorID)
	if err := row.Scan(&existingType, &existingLag); err != nil {
		return n > 0, nil
	}
	return n > 0, nil
}

func deleteDependency(ctx context.Context, db execer, successorID, predecessorID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM dependencies WHERE successor_id=? AND predecessor_id=?`,
		successorID, predecessorID)
	if err != nil {
		return store.WrapDBError("delete dependency", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.WrapDBError("delete dependency", sql.ErrNoRows)
	}
	return nil
}

func deleteDependenciesForItems(ctx context.Context, db execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	q := fmt.Sprintf(`DELETE FROM dependencies WHERE successor_id IN (%s) OR predecessor_id IN (%s)`, ph, ph)
	_, err := db.ExecContext(ctx, q, append(append([]any{}, args...), args...)...)
	return store.WrapDBError("delete dependencies for items", err)
}

func (s *SQLiteStore) AllDependencies(ctx context.Context) ([]*types.Dependency, error) {
	return allDependencies(ctx, s.db)
}
func (t *sqlTx) AllDependencies(ctx context.Context) ([]*types.Dependency, error) {
	return allDependencies(ctx, t.conn)
}
func (t *sqlTx) UpsertDependency(ctx context.Context, d *types.Dependency) (bool, error) {
	return upsertDependency(ctx, t.conn, d)
}
func (t *sqlTx) DeleteDependency(ctx context.Context, successorID, predecessorID string) error {
	return deleteDependency(ctx, t.conn, successorID, predecessorID)
}
func (t *sqlTx) DeleteDependenciesForItems(ctx context.Context, ids []string) error {
	return deleteDependenciesForItems(ctx, t.conn, ids)
}
