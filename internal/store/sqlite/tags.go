package sqlite

import (
	"context"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func allTags(ctx context.Context, db execer) ([]*types.ItemTag, error) {
	rows, err := db.QueryContext(ctx, `SELECT item_id, tag FROM item_tags`)
	if err != nil {
		return nil, store.WrapDBError("list tags", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.ItemTag
	for rows.Next() {
		var tg types.ItemTag
		if err := rows.Scan(&tg.ItemID, &tg.Tag); err != nil {
			return nil, store.WrapDBError("scan tag", err)
		}
		out = append(out, &tg)
	}
	return out, store.WrapDBError("iterate tags", rows.Err())
}

// setTags replaces the full tag set for itemID set_item_tags
// ("replace set after trimming/dedup" — trimming/dedup happens in the
// kernel handler before this call).
func setTags(ctx context.Context, db execer, itemID string, tags []string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID); err != nil {
		return store.WrapDBError("clear tags", err)
	}
	for _, tag := range tags {
		if _, err := db.ExecContext(ctx, `INSERT INTO item_tags (item_id, tag) VALUES (?, ?)`, itemID, tag); err != nil {
			return store.WrapDBError("insert tag", err)
		}
	}
	return nil
}

func deleteTagsForItems(ctx context.Context, db execer, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph, args := placeholders(ids)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM item_tags WHERE item_id IN (%s)`, ph), args...)
	return store.WrapDBError("delete tags for items", err)
}

func (s *SQLiteStore) AllTags(ctx context.Context) ([]*types.ItemTag, error) { return allTags(ctx, s.db) }
func (t *sqlTx) AllTags(ctx context.Context) ([]*types.ItemTag, error)       { return allTags(ctx, t.conn) }
func (t *sqlTx) SetTags(ctx context.Context, itemID string, tags []string) error {
	return setTags(ctx, t.conn, itemID, tags)
}
func (t *sqlTx) DeleteTagsForItems(ctx context.Context, ids []string) error {
	return deleteTagsForItems(ctx, t.conn, ids)
}
