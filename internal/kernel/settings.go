package kernel

import (
	"context"
	"encoding/json"

	"github.com/Taj-Howe/planner-kernel/internal/idgen"
	"github.com/Taj-Howe/planner-kernel/internal/store"
	"github.com/Taj-Howe/planner-kernel/internal/types"
	"github.com/Taj-Howe/planner-kernel/internal/validation"
)

func handleSetSetting(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	key, err := validation.NonEmptyString("key", argString(env.Args, "key"))
	if err != nil {
		return nil, nil, err
	}
	valueJSON, err := json.Marshal(env.Args["value"])
	if err != nil {
		return nil, nil, &validation.Error{Field: "value", Message: "must be JSON-serializable"}
	}
	if err := tx.SetSetting(ctx, key, string(valueJSON)); err != nil {
		return nil, nil, err
	}
	return map[string]any{"key": key, "value": env.Args["value"]}, []string{"settings"}, nil
}

func loadUsersRegistry(ctx context.Context, tx store.Tx) ([]types.User, error) {
	s, err := tx.GetSetting(ctx, types.SettingUsersRegistry)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var users []types.User
	if jerr := json.Unmarshal([]byte(s.ValueJSON), &users); jerr != nil {
		return nil, jerr
	}
	return users, nil
}

func saveUsersRegistry(ctx context.Context, tx store.Tx, users []types.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return tx.SetSetting(ctx, types.SettingUsersRegistry, string(data))
}

func handleUserCreate(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	displayName, err := validation.NonEmptyString("display_name", argString(env.Args, "display_name"))
	if err != nil {
		return nil, nil, err
	}
	users, err := loadUsersRegistry(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	u := types.User{
		UserID:      idgen.New(),
		DisplayName: displayName,
		AvatarURL:   argStringPtr(env.Args, "avatar_url"),
	}
	users = append(users, u)
	if err := saveUsersRegistry(ctx, tx, users); err != nil {
		return nil, nil, err
	}
	return u, []string{"users"}, nil
}

func handleUserUpdate(ctx context.Context, k *Kernel, tx store.Tx, env Envelope) (any, []string, error) {
	userID, err := validation.NonEmptyString("user_id", argString(env.Args, "user_id"))
	if err != nil {
		return nil, nil, err
	}
	users, err := loadUsersRegistry(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	idx := -1
	for i, u := range users {
		if u.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, store.ErrNotFound
	}
	if v := argString(env.Args, "display_name"); v != "" {
		users[idx].DisplayName = v
	}
	if _, present := env.Args["avatar_url"]; present {
		users[idx].AvatarURL = argStringPtr(env.Args, "avatar_url")
	}
	if err := saveUsersRegistry(ctx, tx, users); err != nil {
		return nil, nil, err
	}
	return users[idx], []string{"users"}, nil
}
