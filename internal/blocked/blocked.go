// Package blocked derives the has_active_blocker / has_unmet_dep /
// is_blocked triple for each item from its blockers and dependency edges.
package blocked

import (
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// State is the derived blocked-ness of one item.
type State struct {
	StatusBlocked    bool
	HasActiveBlocker bool
	HasUnmetDep      bool
}

// IsBlocked is status=blocked OR has_active_blocker OR has_unmet_dep.
func (s State) IsBlocked() bool { return s.StatusBlocked || s.HasActiveBlocker || s.HasUnmetDep }

// Deriver computes State for every item in one items/blockers/dependencies
// snapshot.
type Deriver struct {
	itemsByID     map[string]*types.Item
	blockersByItem map[string][]*types.Blocker
	depsBySucc    map[string][]*types.Dependency
}

// New indexes blockers by item and dependency edges by successor.
func New(items []*types.Item, blockers []*types.Blocker, deps []*types.Dependency) *Deriver {
	d := &Deriver{
		itemsByID:      make(map[string]*types.Item, len(items)),
		blockersByItem: make(map[string][]*types.Blocker),
		depsBySucc:     make(map[string][]*types.Dependency),
	}
	for _, it := range items {
		d.itemsByID[it.ID] = it
	}
	for _, b := range blockers {
		d.blockersByItem[b.ItemID] = append(d.blockersByItem[b.ItemID], b)
	}
	for _, dep := range deps {
		d.depsBySucc[dep.SuccessorID] = append(d.depsBySucc[dep.SuccessorID], dep)
	}
	return d
}

// Derive computes the blocked State for itemID: has_unmet_dep is true iff
// some dependency (itemID -> p) has p missing or p.status != done — a
// simple completion check, distinct from the schedule-envelope
// satisfaction evaluation depengine.Evaluate performs for view display.
func (d *Deriver) Derive(itemID string) State {
	var s State
	if it, ok := d.itemsByID[itemID]; ok {
		s.StatusBlocked = it.Status == types.StatusBlocked
	}
	for _, b := range d.blockersByItem[itemID] {
		if b.Active() {
			s.HasActiveBlocker = true
			break
		}
	}
	for _, dep := range d.depsBySucc[itemID] {
		pred, ok := d.itemsByID[dep.PredecessorID]
		if !ok || pred.Status != types.StatusDone {
			s.HasUnmetDep = true
		}
	}
	return s
}

// DeriveAll computes State for every item known to the Deriver.
func (d *Deriver) DeriveAll() map[string]State {
	out := make(map[string]State, len(d.itemsByID))
	for id := range d.itemsByID {
		out[id] = d.Derive(id)
	}
	return out
}
