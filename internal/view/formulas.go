package view

import (
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

const dayMillis = 24 * 60 * 60 * 1000

// DueMetricsResult is the {overdue, days_until_due, days_overdue} triple
// for one item as of now.
type DueMetricsResult struct {
	IsOverdue    bool
	DaysUntilDue int
	DaysOverdue  int
}

// DueMetrics computes the due-metrics triple. dueSoonDays is unused here;
// it only scopes the due_overdue view's "due soon" bucket.
func DueMetrics(it *types.Item, nowMillis int64, _ int) DueMetricsResult {
	if it.DueAt == nil {
		return DueMetricsResult{}
	}
	d := *it.DueAt
	overdue := d < nowMillis && it.Status != types.StatusDone && it.Status != types.StatusCanceled
	if overdue {
		return DueMetricsResult{IsOverdue: true, DaysUntilDue: 0, DaysOverdue: ceilDivDays(nowMillis - d)}
	}
	return DueMetricsResult{IsOverdue: false, DaysUntilDue: ceilDivDays(d - nowMillis), DaysOverdue: 0}
}

func ceilDivDays(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + dayMillis - 1) / dayMillis)
}

// floorDivInt64 is integer division that floors toward negative infinity
// instead of Go's default truncation toward zero, so a negative offset
// (e.g. a timestamp just before a bucket range's start) lands one bucket
// earlier rather than being pulled back up into bucket 0.
func floorDivInt64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AutoHealth implements the auto-health formula for health_mode=auto.
func AutoHealth(due DueMetricsResult, remainingMinutes int64, capacityPerDay *int) types.Health {
	if due.IsOverdue {
		return types.HealthBehind
	}
	if capacityPerDay == nil || remainingMinutes <= 0 {
		return types.HealthOnTrack
	}
	daysUntilDue := due.DaysUntilDue
	if daysUntilDue < 1 {
		daysUntilDue = 1
	}
	required := float64(remainingMinutes) / float64(daysUntilDue)
	capacity := float64(*capacityPerDay)
	switch {
	case required > capacity:
		return types.HealthBehind
	case required >= 0.8*capacity:
		return types.HealthAtRisk
	default:
		return types.HealthOnTrack
	}
}

// SequenceRank implements the "what to work on next" ordering scalar.
// Lower sorts first.
func SequenceRank(it *types.Item, due DueMetricsResult, isBlocked bool, dependentsCount int) float64 {
	overduePenalty := 1.0
	if due.IsOverdue {
		overduePenalty = 0
	}
	blockedPenalty := 0.0
	if isBlocked {
		blockedPenalty = 1
	}
	dueKey := float64(maxInt64)
	if it.DueAt != nil {
		dueKey = float64(*it.DueAt) / 60000
	}
	return overduePenalty*1e15 +
		blockedPenalty*1e14 +
		dueKey*1e4 +
		float64(5-it.Priority)*1e2 -
		float64(dependentsCount)
}

const maxInt64 = int64(1) << 62
