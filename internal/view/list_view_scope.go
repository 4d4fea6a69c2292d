package view

import (
	"context"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// ListViewScopeRow is one row of list_view_complete/list_view_scope.
type ListViewScopeRow struct {
	Item      *types.Item             `json:"item"`
	Blocks    []*types.ScheduledBlock `json:"blocks"`
	BlockedBy []DependencyEdgeView    `json:"blocked_by"`
	Blocking  []DependencyEdgeView    `json:"blocking"`
}

// ListViewScope implements list_view_complete/list_view_scope: a flat
// scope-aware listing with each item's own scheduled blocks and its
// dependency neighbours in both directions, each annotated with
// satisfaction status.
func (e *Engine) ListViewScope(ctx context.Context, raw map[string]any) ([]ListViewScopeRow, error) {
	d, err := loadDataset(ctx, e.Store, e.nowMillis())
	if err != nil {
		return nil, err
	}
	scope := parseScope(raw)
	inScope := d.resolveScope(scope)
	archiveFilter := parseArchiveFilter(raw)
	items := d.filterArchive(inScope, archiveFilter)

	rows := make([]ListViewScopeRow, 0, len(items))
	for _, it := range items {
		var blocks []*types.ScheduledBlock
		for _, b := range d.blocks {
			if b.ItemID == it.ID {
				blocks = append(blocks, b)
			}
		}
		var blockedBy []DependencyEdgeView
		for _, dep := range d.depsBySucc[it.ID] {
			blockedBy = append(blockedBy, d.edgeView(dep))
		}
		var blocking []DependencyEdgeView
		for _, dep := range d.depsByPred[it.ID] {
			blocking = append(blocking, d.edgeView(dep))
		}
		rows = append(rows, ListViewScopeRow{Item: it, Blocks: blocks, BlockedBy: blockedBy, Blocking: blocking})
	}
	return rows, nil
}
