// Package rollup implements the post-order aggregation of estimate,
// actual, schedule-span, blocked-count, and overdue-count over an item
// tree.
package rollup

import (
	"github.com/Taj-Howe/planner-kernel/internal/hierarchy"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// Inputs bundles the per-item facts the rollup needs, each already
// computed by its owning component (schedule summary, blocked deriver,
// due-metrics, time-entry totals).
type Inputs struct {
	Index          *hierarchy.Index
	Items          map[string]*types.Item
	ActualMinutes  map[string]int  // from time entries, per item (own, not rolled up)
	ScheduleStart  map[string]*int64
	ScheduleEnd    map[string]*int64
	IsBlocked      map[string]bool
	IsOverdue      map[string]bool
}

// Result is the rollup tuple for one item.
type Result struct {
	TotalEstimate int64
	TotalActual   int64
	Start         *int64
	End           *int64
	BlockedCount  int
	OverdueCount  int
}

// Remaining is max(0, total_estimate - total_actual).
func (r Result) Remaining() int64 {
	if r.TotalEstimate > r.TotalActual {
		return r.TotalEstimate - r.TotalActual
	}
	return 0
}

// Engine memoizes rollup results across repeated queries for the same
// Inputs snapshot.
type Engine struct {
	in      Inputs
	memo    map[string]Result
	onStack map[string]bool
}

// New builds a rollup Engine. Call Compute for every id you need; results
// are memoized within the Engine's lifetime (one per request/view call).
func New(in Inputs) *Engine {
	return &Engine{
		in:      in,
		memo:    make(map[string]Result),
		onStack: make(map[string]bool),
	}
}

// Compute returns the rollup tuple for id, running the post-order DFS on
// first access and serving the memoized value thereafter.
//
// Cycle safety: if id is re-entered while already on the active DFS path
// (corrupted parent pointers forming a cycle), the recursive call
// contributes zeros instead of recursing forever.
func (e *Engine) Compute(id string) Result {
	if r, ok := e.memo[id]; ok {
		return r
	}
	if e.onStack[id] {
		return Result{}
	}
	e.onStack[id] = true
	defer delete(e.onStack, id)

	it, ok := e.in.Items[id]
	if !ok {
		return Result{}
	}

	var r Result
	r.TotalEstimate = int64(it.EstimateMinutes)
	r.TotalActual = int64(e.in.ActualMinutes[id])
	r.Start = e.in.ScheduleStart[id]
	r.End = e.in.ScheduleEnd[id]
	if e.in.IsBlocked[id] {
		r.BlockedCount = 1
	}
	if e.in.IsOverdue[id] {
		r.OverdueCount = 1
	}

	rollupEstimate := it.EstimateMode == types.EstimateRollup

	for _, childID := range e.in.Index.Children(id) {
		child := e.Compute(childID)
		r.TotalActual += child.TotalActual
		if rollupEstimate {
			r.TotalEstimate += child.TotalEstimate
		}
		r.Start = minPtr(r.Start, child.Start)
		r.End = maxPtr(r.End, child.End)
		r.BlockedCount += child.BlockedCount
		r.OverdueCount += child.OverdueCount
	}

	e.memo[id] = r
	return r
}

func minPtr(a, b *int64) *int64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a < *b {
		return a
	}
	return b
}

func maxPtr(a, b *int64) *int64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a > *b {
		return a
	}
	return b
}
