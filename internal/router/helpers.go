package router

import (
	"context"
	"encoding/json"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// getRunningTimer implements get_running_timer: the single running timer,
// if any. Timers are global; the result is not filtered by user.
func (rt *Router) getRunningTimer(ctx context.Context) QueryResult {
	timers, err := rt.View.Store.AllRunningTimers(ctx)
	if err != nil {
		return queryFail(err)
	}
	if len(timers) == 0 {
		return queryOK(nil)
	}
	return queryOK(timers[0])
}

// settingsDump is the flattened key->value result of getSettings.
type settingsDump map[string]any

// getSettings implements getSettings: every stored setting, JSON-decoded.
func (rt *Router) getSettings(ctx context.Context) (settingsDump, error) {
	all, err := rt.View.Store.AllSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(settingsDump, len(all))
	for _, s := range all {
		var v any
		if err := json.Unmarshal([]byte(s.ValueJSON), &v); err != nil {
			v = s.ValueJSON
		}
		out[s.Key] = v
	}
	return out, nil
}

// listAuditLog implements the supplemented debug.list_audit_log query: a
// bounded, optionally op-name-filtered view of the audit trail.
func (rt *Router) listAuditLog(ctx context.Context, args map[string]any) ([]*types.AuditLogEntry, error) {
	limit := argIntDefault(args, "limit", 100)
	opName := stringArg(args, "opName")
	return rt.View.Store.ListAuditLog(ctx, limit, opName)
}

func argIntDefault(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
