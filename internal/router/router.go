// Package router implements the single entry point that dispatches
// requests by kind and name: ops run through the kernel's operation
// executor inside a write transaction, queries run through the view
// engine's pure read functions. Unknown names return a uniform
// "Unknown query|operation: <name>" error; ops and queries never
// interleave within a single call.
package router

import (
	"context"
	"fmt"

	"github.com/Taj-Howe/planner-kernel/internal/kernel"
	"github.com/Taj-Howe/planner-kernel/internal/view"
)

// QueryResult is the uniform {ok, result?, error?} query response.
type QueryResult struct {
	OK     bool `json:"ok"`
	Result any  `json:"result,omitempty"`
	Error  any  `json:"error,omitempty"`
}

func queryOK(result any) QueryResult  { return QueryResult{OK: true, Result: result} }
func queryFail(err error) QueryResult { return QueryResult{OK: false, Error: err.Error()} }

// Router is the kernel's single entry point.
type Router struct {
	Kernel *kernel.Kernel
	View   *view.Engine
}

// New builds a Router over one kernel and view Engine pair sharing the
// same store.
func New(k *kernel.Kernel, v *view.Engine) *Router {
	return &Router{Kernel: k, View: v}
}

// ExecuteOp dispatches a {kind:"op", ...} envelope to the kernel.
func (rt *Router) ExecuteOp(ctx context.Context, env kernel.Envelope) kernel.Result {
	return rt.Kernel.Execute(ctx, env)
}

// Query dispatches a {kind:"query", name, args} request to the view
// Engine. Any error surfaces wrapped as {ok:false, error:<string>}.
func (rt *Router) Query(ctx context.Context, name string, args map[string]any) QueryResult {
	if args == nil {
		args = map[string]any{}
	}
	switch name {
	case "getItemDetails":
		res, err := rt.View.GetItemDetails(ctx, stringArg(args, "itemId"))
		return wrap(res, err)
	case "get_running_timer":
		return rt.getRunningTimer(ctx)
	case "getProjectTree":
		res, err := rt.View.GetProjectTree(ctx, stringArg(args, "projectId"))
		return wrap(res, err)
	case "listItems", "listByUser":
		res, _, err := rt.View.ListItems(ctx, args)
		return wrap(res, err)
	case "listKanban", "kanban_view":
		res, err := rt.View.ListKanban(ctx, args)
		return wrap(res, err)
	case "list_view_complete", "list_view_scope":
		res, err := rt.View.ListViewScope(ctx, args)
		return wrap(res, err)
	case "execution_window", "listExecution":
		res, err := rt.View.ExecutionWindow(ctx, args)
		return wrap(res, err)
	case "blocked_view", "listBlocked":
		res, err := rt.View.BlockedView(ctx, args)
		return wrap(res, err)
	case "due_overdue":
		res, err := rt.View.DueOverdue(ctx, args)
		return wrap(res, err)
	case "listOverdue":
		res, err := rt.View.DueOverdue(ctx, args)
		if err != nil {
			return queryFail(err)
		}
		return queryOK(res.Overdue)
	case "listDueSoon":
		res, err := rt.View.DueOverdue(ctx, args)
		if err != nil {
			return queryFail(err)
		}
		return queryOK(res.DueSoon)
	case "contributions_range":
		res, err := rt.View.ContributionsRange(ctx, args)
		return wrap(res, err)
	case "searchItems":
		res, err := rt.View.SearchItems(ctx, args)
		return wrap(res, err)
	case "listGantt", "gantt_range":
		res, err := rt.View.ListGantt(ctx, args)
		return wrap(res, err)
	case "listCalendarBlocks", "calendar_range", "calendar_range_user", "calendar_range_users":
		res, err := rt.View.ListCalendarBlocks(ctx, args)
		return wrap(res, err)
	case "users_list":
		res, err := rt.View.UsersList(ctx)
		return wrap(res, err)
	case "getSettings":
		res, err := rt.getSettings(ctx)
		return wrap(res, err)
	case "debug.verify_integrity":
		res, err := rt.View.VerifyIntegrity(ctx)
		return wrap(res, err)
	case "debug.list_audit_log":
		res, err := rt.listAuditLog(ctx, args)
		return wrap(res, err)
	default:
		return queryFail(fmt.Errorf("Unknown query|operation: %s", name))
	}
}

func wrap(res any, err error) QueryResult {
	if err != nil {
		return queryFail(err)
	}
	return queryOK(res)
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
