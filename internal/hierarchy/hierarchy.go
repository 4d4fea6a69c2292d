// Package hierarchy computes item-tree structure (depth, nearest enclosing
// project, subtrees) and resolves scope descriptors to item-id sets. It is
// a small stateless resolver type with one "resolve everything, then
// filter/score" method, covering a three-axis scope model
// (project/user/all).
package hierarchy

import (
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

const ungroupedSentinel = "__ungrouped__"

// Index is a precomputed view over a flat item set: parent/child
// adjacency, depth, and nearest-enclosing-project.
type Index struct {
	byID     map[string]*types.Item
	children map[string][]string
	depth    map[string]int
	project  map[string]string
}

// Build constructs an Index from the full set of item rows in scope.
// Depth and project_of are computed once for every id reachable from the
// given rows: depth(id) = 0 for a null-parented item, depth(parent)+1
// otherwise; project_of(id) is the nearest ancestor whose type is
// project, or id itself if none exists.
func Build(items []*types.Item) *Index {
	idx := &Index{
		byID:     make(map[string]*types.Item, len(items)),
		children: make(map[string][]string),
		depth:    make(map[string]int, len(items)),
		project:  make(map[string]string, len(items)),
	}
	for _, it := range items {
		idx.byID[it.ID] = it
		if it.ParentID != nil {
			idx.children[*it.ParentID] = append(idx.children[*it.ParentID], it.ID)
		}
	}
	for _, it := range items {
		idx.depth[it.ID] = idx.computeDepth(it.ID, make(map[string]bool))
		idx.project[it.ID] = idx.computeProjectOf(it.ID, make(map[string]bool))
	}
	return idx
}

func (idx *Index) computeDepth(id string, visiting map[string]bool) int {
	it, ok := idx.byID[id]
	if !ok || it.ParentID == nil || visiting[id] {
		return 0
	}
	visiting[id] = true
	return idx.computeDepth(*it.ParentID, visiting) + 1
}

func (idx *Index) computeProjectOf(id string, visiting map[string]bool) string {
	it, ok := idx.byID[id]
	if !ok || visiting[id] {
		return id
	}
	visiting[id] = true
	if it.Type == types.ItemProject {
		return id
	}
	if it.ParentID == nil {
		return id
	}
	return idx.computeProjectOf(*it.ParentID, visiting)
}

// Depth returns the precomputed depth of id, or 0 if unknown.
func (idx *Index) Depth(id string) int { return idx.depth[id] }

// ProjectOf returns the nearest enclosing project id for id, or id itself
// if none exists.
func (idx *Index) ProjectOf(id string) string {
	if p, ok := idx.project[id]; ok {
		return p
	}
	return id
}

// Children returns the direct children of id in no particular order.
func (idx *Index) Children(id string) []string { return idx.children[id] }

// SubtreeOf returns the union of the transitive closure under parent_id
// for every seed, duplicates removed.
func (idx *Index) SubtreeOf(seeds []string) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, c := range idx.children[id] {
			walk(c)
		}
	}
	for _, s := range seeds {
		walk(s)
	}
	return out
}

// ScopeKind is the discriminant of a Scope descriptor.
type ScopeKind string

const (
	ScopeProject ScopeKind = "project"
	ScopeUser    ScopeKind = "user"
	ScopeAll     ScopeKind = "all"
)

// Scope is the {kind, projectId?, userId?} descriptor accepted by every view.
// ProjectID may additionally be the ungrouped sentinel "__ungrouped__".
type Scope struct {
	Kind      ScopeKind
	ProjectID string
	UserID    string
}

// Resolve returns the set of item ids in scope, before the archive filter
// is applied (callers apply ArchiveFilter separately since several views
// need both the archived and unarchived view of the same scope).
//
// Resolution rules:
//   - user: items assigned to that user.
//   - project = "__ungrouped__": every item whose lineage has no project
//     ancestor (ProjectOf(id) == id and the item itself is not a project).
//   - project = <id>: the subtree rooted at id.
//   - all: every item.
func Resolve(idx *Index, items []*types.Item, assignees map[string]string, scope Scope) []string {
	switch scope.Kind {
	case ScopeUser:
		var out []string
		for _, it := range items {
			if assignees[it.ID] == scope.UserID {
				out = append(out, it.ID)
			}
		}
		return out
	case ScopeProject:
		if scope.ProjectID == ungroupedSentinel {
			var out []string
			for _, it := range items {
				if it.Type != types.ItemProject && idx.ProjectOf(it.ID) == it.ID {
					out = append(out, it.ID)
				}
			}
			return out
		}
		return idx.SubtreeOf([]string{scope.ProjectID})
	default: // ScopeAll
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}
}

// UngroupedSentinel is the magic project id meaning "no project ancestor".
func UngroupedSentinel() string { return ungroupedSentinel }
