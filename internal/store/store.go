package store

import (
	"context"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// Store is the persistence-substrate interface the kernel transacts
// against. Implementations must provide single-writer/multi-reader
// semantics: WithTx encloses a short exclusive transaction in which no
// suspension beyond the enclosed calls is permitted, and reads taken
// outside WithTx observe either the pre- or post-commit state of any
// given transaction, never a partial one.
//
// Bulk loaders return the full table: the planning kernel's scale target
// is a single team's work graph, not a multi-tenant corpus, so the
// recursive algorithms in the rollup/hierarchy/dependency engines operate
// over the whole in-scope item graph at once.
type Store interface {
	// WithTx runs fn inside a single exclusive write transaction. fn's
	// error (if any) rolls the transaction back; fn's returned error is
	// propagated unchanged. A panic inside fn also rolls back.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Reader exposes the read-only bulk/point accessors used by view
	// builders and by WithTx's Tx (which embeds Reader) for read-your-writes
	// visibility inside a transaction.
	Reader

	// Close releases the underlying connection(s).
	Close() error
}

// Reader is the read-only surface shared by Store and Tx.
type Reader interface {
	AllItems(ctx context.Context) ([]*types.Item, error)
	GetItem(ctx context.Context, id string) (*types.Item, error)
	AllDependencies(ctx context.Context) ([]*types.Dependency, error)
	AllBlockers(ctx context.Context) ([]*types.Blocker, error)
	AllScheduledBlocks(ctx context.Context) ([]*types.ScheduledBlock, error)
	AllTimeEntries(ctx context.Context) ([]*types.TimeEntry, error)
	AllRunningTimers(ctx context.Context) ([]*types.RunningTimer, error)
	AllAssignees(ctx context.Context) ([]*types.ItemAssignee, error)
	AllTags(ctx context.Context) ([]*types.ItemTag, error)
	AllSettings(ctx context.Context) ([]*types.Setting, error)
	GetSetting(ctx context.Context, key string) (*types.Setting, error)
	ListAuditLog(ctx context.Context, limit int, opName string) ([]*types.AuditLogEntry, error)
}

// Tx is the transactional write surface available inside WithTx.
type Tx interface {
	Reader

	InsertItem(ctx context.Context, it *types.Item) error
	UpdateItem(ctx context.Context, it *types.Item) error
	DeleteItems(ctx context.Context, ids []string) error

	UpsertDependency(ctx context.Context, d *types.Dependency) (inserted bool, err error)
	DeleteDependency(ctx context.Context, successorID, predecessorID string) error
	DeleteDependenciesForItems(ctx context.Context, ids []string) error

	InsertBlocker(ctx context.Context, b *types.Blocker) error
	ClearBlocker(ctx context.Context, blockerID string, clearedAt int64) error
	DeleteBlockersForItems(ctx context.Context, ids []string) error

	InsertScheduledBlock(ctx context.Context, b *types.ScheduledBlock) error
	UpdateScheduledBlock(ctx context.Context, b *types.ScheduledBlock) error
	DeleteScheduledBlock(ctx context.Context, blockID string) error
	DeleteScheduledBlocksForItem(ctx context.Context, itemID string) error
	DeleteScheduledBlocksForItems(ctx context.Context, ids []string) error

	InsertTimeEntry(ctx context.Context, e *types.TimeEntry) error
	DeleteTimeEntriesForItems(ctx context.Context, ids []string) error

	UpsertRunningTimer(ctx context.Context, t *types.RunningTimer) error
	DeleteRunningTimer(ctx context.Context, itemID string) error
	DeleteRunningTimersForItems(ctx context.Context, ids []string) error

	SetAssignee(ctx context.Context, itemID, assigneeID string) error
	ClearAssignee(ctx context.Context, itemID string) error
	DeleteAssigneesForItems(ctx context.Context, ids []string) error

	SetTags(ctx context.Context, itemID string, tags []string) error
	DeleteTagsForItems(ctx context.Context, ids []string) error

	SetSetting(ctx context.Context, key, valueJSON string) error

	AppendAuditLog(ctx context.Context, e *types.AuditLogEntry) error

	// TruncateAll removes every row from every domain table, used by
	// import_data's snapshot-replace semantics. Settings are included;
	// the audit log is kept.
	TruncateAll(ctx context.Context) error
}
