package sqlite

import (
	"context"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allScheduledBlocks(ctx context.Context, db execer) ([]*types.ScheduledBlock, error) {
	rows, err := db.QueryContext(ctx, `SELECT block_id, item_id, start_at, duration_minutes, locked, source FROM scheduled_blocks`)
	if err != nil {
		return nil, store.WrapDBError("list scheduled blocks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.ScheduledBlock
	for rows.Next() {
		var b types.ScheduledBlock
		var locked int
		if err := rows.Scan(&b.BlockID, &b.ItemID, &b.StartAt, &b.DurationMinutes, &locked, &b.Source); err != nil {
			return nil, store.WrapDBError("scan scheduled block", err)
		}
		b.Locked = locked != 0
		out = append(out, &b)
	}
	return out, store.WrapDBError("iterate scheduled blocks", rows.Err())
}

func insertScheduledBlock(ctx context.Context, db execer, b *types.ScheduledBlock) error {
	locked := 0
	if b.Locked {
		locked = 1
	}
	_, err := db.ExecContext(ctx, `INSERT INTO scheduled_blocks (block_id, item_id, start_at, duration_minutes, locked, source)
		VALUES (?,?,?,?,?,?)`, b.BlockID, b.ItemID, b.StartAt, b.DurationMinutes, locked, b.Source)
	return store.WrapDBError("insert scheduled block", err)
}

func updateScheduledBlock(ctx context.Context, db execer, b *types.ScheduledBlock) error {
	locked := 0
	if b.Locked {
		locked = 1
	}
	_, err := db.ExecContext(ctx, `UPDATE scheduled_blocks SET start_at=?, duration_minutes=?, locked=?, source=? WHERE block_id=?`,
		b.StartAt, b.DurationMinutes, locked, b.Source, b.BlockID)
	return store.WrapDBError("update scheduled block", err)
}

func deleteScheduledBlock(ctx context.Context, db execer, blockID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM scheduled_blocks WHERE block_id = ?`, blockID)
	return store.WrapDBError("delete scheduled block", err)
}

func deleteScheduledBlocksForItem(ctx context.Context, db execer, itemID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM scheduled_blocks WHERE item_id = ?`, itemID)
	return store.WrapDBError("delete scheduled blocks for item", err)
}

func deleteScheduledBlocksForItems(ctx context.Context, db execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM scheduled_blocks WHERE item_id IN (%s)`, ph), args...)
	return store.WrapDBError("delete scheduled blocks for items", err)
}

func (s *SQLiteStore) AllScheduledBlocks(ctx context.Context) ([]*types.ScheduledBlock, error) {
	return allScheduledBlocks(ctx, s.db)
}
func (t *sqlTx) AllScheduledBlocks(ctx context.Context) ([]*types.ScheduledBlock, error) {
	return allScheduledBlocks(ctx, t.conn)
}
func (t *sqlTx) InsertScheduledBlock(ctx context.Context, b *types.ScheduledBlock) error {
	return insertScheduledBlock(ctx, t.conn, b)
}
func (t *sqlTx) UpdateScheduledBlock(ctx context.Context, b *types.ScheduledBlock) error {
	return updateScheduledBlock(ctx, t.conn, b)
}
func (t *sqlTx) DeleteScheduledBlock(ctx context.Context, blockID string) error {
	return deleteScheduledBlock(ctx, t.conn, blockID)
}
func (t *sqlTx) DeleteScheduledBlocksForItem(ctx context.Context, itemID string) error {
	return deleteScheduledBlocksForItem(ctx, t.conn, itemID)
}
func (t *sqlTx) DeleteScheduledBlocksForItems(ctx context.Context, ids []string) error {
	return deleteScheduledBlocksForItems(ctx, t.conn, ids)
}
