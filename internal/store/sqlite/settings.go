package sqlite

import (
	"context"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allSettings(ctx context.Context, db execer) ([]*types.Setting, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value_json FROM settings`)
	if err != nil {
		return nil, store.WrapDBError("list settings", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Setting
	for rows.Next() {
		var s types.Setting
		if err := rows.Scan(&s.Key, &s.ValueJSON); err != nil {
			return nil, store.WrapDBError("scan setting", err)
		}
		out = append(out, &s)
	}
	return out, store.WrapDBError("iterate settings", rows.Err())
}

func getSetting(ctx context.Context, db execer, key string) (*types.Setting, error) {
	row := db.QueryRowContext(ctx, `SELECT key, value_json FROM settings WHERE key = ?`, key)
	var s types.Setting
	if err := row.Scan(&s.Key, &s.ValueJSON); err != nil {
		return nil, store.WrapDBError("get setting", err)
	}
	return &s, nil
}

func setSetting(ctx context.Context, db execer, key, valueJSON string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value_json = excluded.value_json
	`, key, valueJSON)
	return store.WrapDBError("set setting", err)
}

func (s *SQLiteStore) AllSettings(ctx context.Context) ([]*types.Setting, error) {
	return allSettings(ctx, s.db)
}
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (*types.Setting, error) {
	return getSetting(ctx, s.db, key)
}
func (t *sqlTx) AllSettings(ctx context.Context) ([]*types.Setting, error) {
	return allSettings(ctx, t.conn)
}
func (t *sqlTx) GetSetting(ctx context.Context, key string) (*types.Setting, error) {
	return getSetting(ctx, t.conn, key)
}
func (t *sqlTx) SetSetting(ctx context.Context, key, valueJSON string) error {
	return setSetting(ctx, t.conn, key, valueJSON)
}
