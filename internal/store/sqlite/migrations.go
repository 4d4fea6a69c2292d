package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one forward-only schema step. Migrations are
// numbered starting at 1 and applied strictly in order; reopening a store
// always brings it to the latest version before serving requests.
type migration struct {
	version int
	apply   func(ctx context.Context, db *sql.DB) error
}

// migrations lists every step in order: one small Go function per schema
// change (version 1 creates the base schema, version 2 backfills data with
// UPDATE statements), rather than embedded .sql files.
var migrations = []migration{
	{version: 1, apply: func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, baseSchema)
		return err
	}},
	{version: 2, apply: migrateSourceDefault},
}

// migrateSourceDefault backfills scheduled_blocks.source and
// time_entries.source for rows written before those columns carried a
// NOT NULL DEFAULT '' (schema version 1 already declares the default for
// fresh databases; this migration exists for stores created by an older
// build of this schema that predates the default).
func migrateSourceDefault(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `UPDATE scheduled_blocks SET source = '' WHERE source IS NULL`); err != nil {
		return fmt.Errorf("backfill scheduled_blocks.source: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE time_entries SET source = '' WHERE source IS NULL`); err != nil {
		return fmt.Errorf("backfill time_entries.source: %w", err)
	}
	return nil
}

func currentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	err = db.QueryRowContext(ctx, `SELECT max(version) FROM schema_version`).Scan(&v)
	if err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// applyMigrations brings db from its current persisted version to the
// latest, in order, never downgrading.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	cur, err := currentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= cur {
			continue
		}
		if err := m.apply(ctx, db); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}
