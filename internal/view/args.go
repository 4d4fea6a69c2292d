package view

import (
	"github.com/Taj-Howe/planner-kernel/internal/hierarchy"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt(args map[string]any, key string, def int) int {
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

func argInt64(args map[string]any, key string, def int64) int64 {
	switch v := args[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return def
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// parseScope reads the optional {kind, projectId, userId, parentId}
// scope descriptor; parentId is accepted as an alias for
// projectId for callers that scope by container rather than literal
// project.
func parseScope(args map[string]any) hierarchy.Scope {
	raw, _ := args["scope"].(map[string]any)
	if raw == nil {
		return hierarchy.Scope{Kind: hierarchy.ScopeAll}
	}
	switch argString(raw, "kind") {
	case "project":
		projectID := argString(raw, "projectId")
		if projectID == "" {
			projectID = argString(raw, "parentId")
		}
		return hierarchy.Scope{Kind: hierarchy.ScopeProject, ProjectID: projectID}
	case "user":
		return hierarchy.Scope{Kind: hierarchy.ScopeUser, UserID: argString(raw, "userId")}
	default:
		return hierarchy.Scope{Kind: hierarchy.ScopeAll}
	}
}

func parseArchiveFilter(args map[string]any) types.ArchiveFilter {
	f, ok := types.NormalizeArchiveFilter(argString(args, "archiveFilter"))
	if !ok {
		return types.ArchiveActive
	}
	return f
}
