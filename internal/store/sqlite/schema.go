package sqlite

// baseSchema creates every domain table if absent. It is migration 1;
// later migrations only ever ADD, never DROP or rename.
const baseSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id               TEXT PRIMARY KEY,
	type             TEXT NOT NULL,
	title            TEXT NOT NULL,
	parent_id        TEXT,
	status           TEXT NOT NULL,
	priority         INTEGER NOT NULL DEFAULT 0,
	due_at           INTEGER,
	estimate_mode    TEXT NOT NULL DEFAULT 'manual',
	estimate_minutes INTEGER NOT NULL DEFAULT 0,
	health           TEXT NOT NULL DEFAULT 'unknown',
	health_mode      TEXT NOT NULL DEFAULT 'auto',
	notes            TEXT,
	sort_order       INTEGER NOT NULL DEFAULT 0,
	completed_at     INTEGER,
	archived_at      INTEGER,
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_id);
CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_due_at ON items(due_at);

CREATE TABLE IF NOT EXISTS dependencies (
	successor_id   TEXT NOT NULL,
	predecessor_id TEXT NOT NULL,
	type           TEXT NOT NULL DEFAULT 'FS',
	lag_minutes    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (successor_id, predecessor_id)
);
CREATE INDEX IF NOT EXISTS idx_deps_predecessor ON dependencies(predecessor_id);

CREATE TABLE IF NOT EXISTS blockers (
	blocker_id TEXT PRIMARY KEY,
	item_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	text       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	cleared_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_blockers_item ON blockers(item_id);

CREATE TABLE IF NOT EXISTS scheduled_blocks (
	block_id         TEXT PRIMARY KEY,
	item_id          TEXT NOT NULL,
	start_at         INTEGER NOT NULL,
	duration_minutes INTEGER NOT NULL,
	locked           INTEGER NOT NULL DEFAULT 0,
	source           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_blocks_item ON scheduled_blocks(item_id);
CREATE INDEX IF NOT EXISTS idx_blocks_start ON scheduled_blocks(start_at);

CREATE TABLE IF NOT EXISTS time_entries (
	entry_id         TEXT PRIMARY KEY,
	item_id          TEXT NOT NULL,
	start_at         INTEGER NOT NULL,
	end_at           INTEGER NOT NULL,
	duration_minutes INTEGER NOT NULL,
	note             TEXT,
	source           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_entries_item ON time_entries(item_id);

CREATE TABLE IF NOT EXISTS running_timers (
	item_id  TEXT PRIMARY KEY,
	start_at INTEGER NOT NULL,
	note     TEXT
);

CREATE TABLE IF NOT EXISTS item_assignees (
	item_id     TEXT PRIMARY KEY,
	assignee_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assignees_assignee ON item_assignees(assignee_id);

CREATE TABLE IF NOT EXISTS item_tags (
	item_id TEXT NOT NULL,
	tag     TEXT NOT NULL,
	PRIMARY KEY (item_id, tag)
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	log_id      TEXT PRIMARY KEY,
	op_id       TEXT NOT NULL,
	op_name     TEXT NOT NULL,
	actor       TEXT NOT NULL,
	ts          INTEGER NOT NULL,
	args_json   TEXT NOT NULL,
	result_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_log(ts);
`
