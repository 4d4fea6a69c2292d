// Package depengine implements cycle detection, cycle enumeration, and the
// four-type dependency satisfaction evaluator that back dependency.create,
// debug.verify_integrity, and the per-edge status shown by the views.
package depengine

import (
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// Graph is an adjacency view over a dependency edge set: for each
// successor, the set of its direct predecessors.
type Graph struct {
	predecessorsOf map[string][]string
}

// Build indexes edges by successor for reachability queries.
func Build(edges []*types.Dependency) *Graph {
	g := &Graph{predecessorsOf: make(map[string][]string)}
	for _, e := range edges {
		g.predecessorsOf[e.SuccessorID] = append(g.predecessorsOf[e.SuccessorID], e.PredecessorID)
	}
	return g
}

// WouldCycle reports whether adding an edge successorID -> predecessorID
// (successor depends on predecessor) would close a cycle: true iff
// predecessorID can already reach successorID by following existing
// successor-to-predecessor edges, i.e. predecessor already (transitively)
// depends on successor.
func (g *Graph) WouldCycle(successorID, predecessorID string) bool {
	if successorID == predecessorID {
		return true
	}
	return g.reaches(predecessorID, successorID, make(map[string]bool))
}

func (g *Graph) reaches(from, to string, visited map[string]bool) bool {
	if from == to {
		return true
	}
	if visited[from] {
		return false
	}
	visited[from] = true
	for _, pred := range g.predecessorsOf[from] {
		if g.reaches(pred, to, visited) {
			return true
		}
	}
	return false
}

// FindCycles enumerates up to maxExamples distinct cycles present in the
// graph, for debug.verify_integrity. Each cycle is the ordered list of ids
// walked, ending with the start id repeated. A well-formed graph (every insert
// passed through WouldCycle) yields none; this exists to surface
// corruption from direct data edits or import_data.
func (g *Graph) FindCycles(maxExamples int) [][]string {
	var found [][]string
	visitedGlobal := make(map[string]bool)

	var ids []string
	for succ := range g.predecessorsOf {
		ids = append(ids, succ)
	}

	var stack []string
	onStack := make(map[string]bool)

	var walk func(id string)
	walk = func(id string) {
		if len(found) >= maxExamples {
			return
		}
		if onStack[id] {
			// Found a cycle: the portion of stack from id's first
			// occurrence onward.
			start := 0
			for i, s := range stack {
				if s == id {
					start = i
					break
				}
			}
			cycle := append([]string{}, stack[start:]...)
			cycle = append(cycle, id)
			found = append(found, cycle)
			return
		}
		if visitedGlobal[id] {
			return
		}
		visitedGlobal[id] = true
		onStack[id] = true
		stack = append(stack, id)
		for _, pred := range g.predecessorsOf[id] {
			walk(pred)
			if len(found) >= maxExamples {
				break
			}
		}
		stack = stack[:len(stack)-1]
		onStack[id] = false
	}

	for _, id := range ids {
		if len(found) >= maxExamples {
			break
		}
		walk(id)
	}
	return found
}

// Status is the tri-state result of evaluating a dependency edge against
// schedule envelopes.
type Status string

const (
	StatusSatisfied Status = "satisfied"
	StatusViolated  Status = "violated"
	StatusUnknown   Status = "unknown"
)

// Endpoints is the four candidate schedule instants an edge is evaluated
// against; any may be nil.
type Endpoints struct {
	PredStart *int64
	PredEnd   *int64
	SuccStart *int64
	SuccEnd   *int64
}

// Evaluate implements the dependency-status table: each type requires two
// of the four instants; if either required input is nil the status is
// unknown, otherwise satisfied or violated depending on whether the
// inequality holds once lag (in minutes) is applied.
func Evaluate(depType types.DependencyType, lagMinutes int, ep Endpoints) Status {
	lagMs := int64(lagMinutes) * 60000
	switch depType {
	case types.DepFS:
		return compare(ep.SuccStart, ep.PredEnd, lagMs)
	case types.DepSS:
		return compare(ep.SuccStart, ep.PredStart, lagMs)
	case types.DepFF:
		return compare(ep.SuccEnd, ep.PredEnd, lagMs)
	case types.DepSF:
		return compare(ep.SuccEnd, ep.PredStart, lagMs)
	default:
		return StatusUnknown
	}
}

func compare(lhs, rhs *int64, lagMs int64) Status {
	if lhs == nil || rhs == nil {
		return StatusUnknown
	}
	if *lhs >= *rhs+lagMs {
		return StatusSatisfied
	}
	return StatusViolated
}
