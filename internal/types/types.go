// Package types defines the core data model of the planning kernel: items,
// dependencies, blockers, scheduled blocks, time entries, running timers,
// assignees, tags, settings, and audit log entries.
package types

import "strings"

// ItemType is the tag distinguishing project/milestone/task nodes in the
// item hierarchy. Immutable after creation.
type ItemType string

const (
	ItemProject   ItemType = "project"
	ItemMilestone ItemType = "milestone"
	ItemTask      ItemType = "task"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemProject, ItemMilestone, ItemTask:
		return true
	}
	return false
}

// Status is the lifecycle state of an item.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusCanceled   Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusReady, StatusInProgress, StatusBlocked, StatusReview, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether the status counts as complete for accounting
// purposes (completion/overdue calculations): done and canceled both
// count as terminal here.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// EstimateMode controls whether an item's estimate_minutes is an authored
// value or a derived rollup of its subtree.
type EstimateMode string

const (
	EstimateManual EstimateMode = "manual"
	EstimateRollup EstimateMode = "rollup"
)

func (m EstimateMode) Valid() bool {
	return m == EstimateManual || m == EstimateRollup
}

// Health is the traffic-light indicator shown for a project/milestone.
type Health string

const (
	HealthUnknown  Health = "unknown"
	HealthOnTrack  Health = "on_track"
	HealthAtRisk   Health = "at_risk"
	HealthBehind   Health = "behind"
	HealthAhead    Health = "ahead"
)

func (h Health) Valid() bool {
	switch h {
	case HealthUnknown, HealthOnTrack, HealthAtRisk, HealthBehind, HealthAhead:
		return true
	}
	return false
}

// HealthMode controls whether Health is authored or computed per the
// auto-health formula.
type HealthMode string

const (
	HealthAuto   HealthMode = "auto"
	HealthManual HealthMode = "manual"
)

func (m HealthMode) Valid() bool {
	return m == HealthAuto || m == HealthManual
}

// DependencyType is one of the four supported link types.
type DependencyType string

const (
	DepFS DependencyType = "FS" // finish-to-start
	DepSS DependencyType = "SS" // start-to-start
	DepFF DependencyType = "FF" // finish-to-finish
	DepSF DependencyType = "SF" // start-to-finish
)

// NormalizeDependencyType uppercases and validates a dependency type,
// defaulting to FS when empty.
func NormalizeDependencyType(raw string) (DependencyType, bool) {
	if raw == "" {
		return DepFS, true
	}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(DepFS):
		return DepFS, true
	case string(DepSS):
		return DepSS, true
	case string(DepFF):
		return DepFF, true
	case string(DepSF):
		return DepSF, true
	}
	return "", false
}

// ArchiveFilter is the active|archived|all filter accepted by every view.
type ArchiveFilter string

const (
	ArchiveActive   ArchiveFilter = "active"
	ArchiveArchived ArchiveFilter = "archived"
	ArchiveAll      ArchiveFilter = "all"
)

// NormalizeArchiveFilter validates/defaults an archive filter.
func NormalizeArchiveFilter(raw string) (ArchiveFilter, bool) {
	if raw == "" {
		return ArchiveActive, true
	}
	switch ArchiveFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case ArchiveActive, ArchiveArchived, ArchiveAll:
		return ArchiveFilter(strings.ToLower(raw)), true
	}
	return "", false
}

// Item is a unit of work: a project, milestone, or task. All timestamps are
// milliseconds since the Unix epoch; nil means unset/null.
type Item struct {
	ID               string
	Type             ItemType
	Title            string
	ParentID         *string
	Status           Status
	Priority         int // 0..5
	DueAt            *int64
	EstimateMode     EstimateMode
	EstimateMinutes  int
	Health           Health
	HealthMode       HealthMode
	Notes            *string
	SortOrder        int
	CompletedAt      *int64
	ArchivedAt       *int64
	CreatedAt        int64
	UpdatedAt        int64
}

// Dependency is a directed edge successor -> predecessor with a type and
// lag. Composite key (SuccessorID, PredecessorID).
type Dependency struct {
	SuccessorID   string
	PredecessorID string
	Type          DependencyType
	LagMinutes    int
}

// EdgeID formats an edge id as "<successor>-><predecessor>".
func EdgeID(successorID, predecessorID string) string {
	return successorID + "->" + predecessorID
}

// Blocker is a manually recorded obstacle on an item. Active iff ClearedAt
// is nil.
type Blocker struct {
	BlockerID string
	ItemID    string
	Kind      string
	Text      string
	CreatedAt int64
	ClearedAt *int64
}

func (b Blocker) Active() bool { return b.ClearedAt == nil }

// ScheduledBlock is a planned time block for a task item. Invariant: at most
// one per item at any time.
type ScheduledBlock struct {
	BlockID         string
	ItemID          string
	StartAt         int64
	DurationMinutes int
	Locked          bool
	Source          string
}

// EndAt is the block's end instant in epoch milliseconds.
func (b ScheduledBlock) EndAt() int64 {
	return b.StartAt + int64(b.DurationMinutes)*60000
}

// TimeEntry is a completed span of logged work.
type TimeEntry struct {
	EntryID         string
	ItemID          string
	StartAt         int64
	EndAt           int64
	DurationMinutes int
	Note            *string
	Source          string
}

// RunningTimer is the (at most one, globally) currently running timer.
type RunningTimer struct {
	ItemID  string
	StartAt int64
	Note    *string
}

// ItemAssignee records the at-most-one assignee of an item.
type ItemAssignee struct {
	ItemID     string
	AssigneeID string
}

// ItemTag is one tag on an item; multi-valued per item.
type ItemTag struct {
	ItemID string
	Tag    string
}

// Setting is an opaque JSON-valued configuration key.
type Setting struct {
	Key       string
	ValueJSON string
}

// Recognized setting keys.
const (
	SettingCapacityMinutesPerDay  = "capacity_minutes_per_day"
	SettingAutoArchiveOnComplete  = "ui.auto_archive_on_complete"
	SettingUsersRegistry          = "users_registry"
	SettingCurrentUserID          = "current_user_id"
)

// User is one entry of the users_registry setting.
type User struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// AuditLogEntry is one append-only record of a committed or failed
// operation.
type AuditLogEntry struct {
	LogID      string
	OpID       string
	OpName     string
	Actor      string
	TS         int64
	ArgsJSON   string
	ResultJSON string
}
