package view

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Taj-Howe/planner-kernel/internal/ie"
	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// SearchResult is one row of searchItems.
type SearchResult struct {
	Item *types.Item `json:"item"`
}

// SearchItems implements a two-phase prefix-then-substring, case
// insensitive title search, excluding projects. q="" returns
// an empty list.
func (e *Engine) SearchItems(ctx context.Context, raw map[string]any) ([]SearchResult, error) {
	q := argString(raw, "q")
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	limit := argInt(raw, "limit", 20)
	scopeID := argString(raw, "scopeId")

	d, err := loadDataset(ctx, e.Store, e.nowMillis())
	if err != nil {
		return nil, err
	}
	qLower := strings.ToLower(q)

	type scored struct {
		it       *types.Item
		prefix   bool
		sameScope bool
	}
	var matches []scored
	for _, it := range d.items {
		if it.Type == types.ItemProject {
			continue
		}
		title := strings.ToLower(it.Title)
		if !strings.Contains(title, qLower) {
			continue
		}
		matches = append(matches, scored{
			it:        it,
			prefix:    strings.HasPrefix(title, qLower),
			sameScope: scopeID != "" && d.idx.ProjectOf(it.ID) == scopeID,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.sameScope != b.sameScope {
			return a.sameScope
		}
		if len(a.it.Title) != len(b.it.Title) {
			return len(a.it.Title) < len(b.it.Title)
		}
		if a.it.UpdatedAt != b.it.UpdatedAt {
			return a.it.UpdatedAt > b.it.UpdatedAt
		}
		return a.it.Title < b.it.Title
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, SearchResult{Item: m.it})
	}
	return out, nil
}

// UsersListResult is the result of users_list.
type UsersListResult struct {
	Users         []types.User `json:"users"`
	CurrentUserID string       `json:"current_user_id"`
}

// UsersList is the union of registered users and assignee ids referenced
// by items, synthesizing placeholder display names for unregistered ids.
func (e *Engine) UsersList(ctx context.Context) (*UsersListResult, error) {
	r := e.Store
	settingRow, err := r.GetSetting(ctx, types.SettingUsersRegistry)
	var registered []types.User
	if err == nil {
		_ = json.Unmarshal([]byte(settingRow.ValueJSON), &registered)
	}
	byID := make(map[string]types.User, len(registered))
	for _, u := range registered {
		byID[u.UserID] = u
	}

	assignees, err := r.AllAssignees(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range assignees {
		if _, ok := byID[a.AssigneeID]; !ok {
			placeholder := a.AssigneeID
			if len(placeholder) > 6 {
				placeholder = placeholder[:6]
			}
			byID[a.AssigneeID] = types.User{UserID: a.AssigneeID, DisplayName: "User " + placeholder}
		}
	}

	out := make([]types.User, 0, len(byID))
	for _, u := range byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })

	currentUserID := ""
	if cur, err := r.GetSetting(ctx, types.SettingCurrentUserID); err == nil {
		_ = json.Unmarshal([]byte(cur.ValueJSON), &currentUserID)
	}
	return &UsersListResult{Users: out, CurrentUserID: currentUserID}, nil
}

// VerifyIntegrity implements debug.verify_integrity.
func (e *Engine) VerifyIntegrity(ctx context.Context) ([]ie.Finding, error) {
	return ie.VerifyIntegrity(ctx, e.Store)
}
