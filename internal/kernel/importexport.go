package kernel

import (
	"context"
	"encoding/json"

	"github.com/Taj-Howe/planner-kernel/internal/ie"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/validation"
)

func handleExportData(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	snap, err := ie.Export(ctx, tx, k.nowMillis())
	if err != nil {
		return nil, nil, err
	}
	return snap, nil, nil
}

func handleImportData(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	raw, err := json.Marshal(env.Args["payload"])
	if err != nil {
		return nil, nil, &validation.Error{Field: "payload", Message: "must be a valid snapshot object"}
	}
	var snap ie.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, nil, &validation.Error{Field: "payload", Message: "must be a valid snapshot object"}
	}
	if err := ie.Import(ctx, tx, &snap); err != nil {
		return nil, nil, err
	}
	return map[string]any{"imported": true}, []string{"items", "blocks", "settings", "running_timers"}, nil
}
