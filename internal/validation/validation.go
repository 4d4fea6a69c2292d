// Package validation holds the small set of input predicates shared by
// every operation handler and view builder. Every failure raises an
// *Error naming the offending field, one focused predicate per concern.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

// Error is the single validation-error kind. It names the offending field
// so callers can render "<field> must ..." without string-matching.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func fail(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// NonEmptyString validates that s is non-empty after trimming.
func NonEmptyString(field, s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fail(field, "must not be empty")
	}
	return trimmed, nil
}

// OptionalString trims s; an all-whitespace value normalizes to nil.
func OptionalString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// FiniteInt validates that v is present (non-nil) and returns it; this
// exists to give pointer-typed integer args a uniform validation path.
func FiniteInt(field string, v *int64) (int64, error) {
	if v == nil {
		return 0, fail(field, "must be a finite integer")
	}
	return *v, nil
}

// PositiveInt validates v > 0.
func PositiveInt(field string, v int) (int, error) {
	if v <= 0 {
		return 0, fail(field, "must be a positive integer")
	}
	return v, nil
}

// NonNegativeInt validates v >= 0.
func NonNegativeInt(field string, v int) (int, error) {
	if v < 0 {
		return 0, fail(field, "must be non-negative")
	}
	return v, nil
}

// OptionalPositiveInt validates v (if non-nil) is > 0.
func OptionalPositiveInt(field string, v *int) error {
	if v == nil {
		return nil
	}
	if *v <= 0 {
		return fail(field, "must be a positive integer")
	}
	return nil
}

// Priority validates 0..5.
func Priority(p int) (int, error) {
	if p < 0 || p > 5 {
		return 0, fail("priority", "must be between 0 and 5")
	}
	return p, nil
}

// ItemType validates against the three recognized item types.
func ItemType(raw string) (types.ItemType, error) {
	t := types.ItemType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fail("type", "must be one of project, milestone, task")
	}
	return t, nil
}

// ItemStatus validates against the seven recognized statuses.
func ItemStatus(raw string) (types.Status, error) {
	s := types.Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fail("status", "must be a recognized status")
	}
	return s, nil
}

// EstimateMode validates manual|rollup, defaulting to manual when empty.
func EstimateMode(raw string) (types.EstimateMode, error) {
	if raw == "" {
		return types.EstimateManual, nil
	}
	m := types.EstimateMode(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", fail("estimate_mode", "must be manual or rollup")
	}
	return m, nil
}

// HealthValue validates the five recognized health values, defaulting to
// unknown when empty.
func HealthValue(raw string) (types.Health, error) {
	if raw == "" {
		return types.HealthUnknown, nil
	}
	h := types.Health(strings.ToLower(strings.TrimSpace(raw)))
	if !h.Valid() {
		return "", fail("health", "must be a recognized health value")
	}
	return h, nil
}

// HealthModeValue validates auto|manual, defaulting to auto when empty.
func HealthModeValue(raw string) (types.HealthMode, error) {
	if raw == "" {
		return types.HealthAuto, nil
	}
	m := types.HealthMode(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", fail("health_mode", "must be auto or manual")
	}
	return m, nil
}

// DependencyType normalizes and validates a dependency type string,
// case-insensitively, defaulting to FS.
func DependencyType(raw string) (types.DependencyType, error) {
	t, ok := types.NormalizeDependencyType(raw)
	if !ok {
		return "", fail("type", "must be one of FS, SS, FF, SF")
	}
	return t, nil
}

// ArchiveFilterValue normalizes and validates active|archived|all,
// defaulting to active.
func ArchiveFilterValue(raw string) (types.ArchiveFilter, error) {
	f, ok := types.NormalizeArchiveFilter(raw)
	if !ok {
		return "", fail("archiveFilter", "must be one of active, archived, all")
	}
	return f, nil
}

// ISODay parses a "YYYY-MM-DD" string to local-midnight epoch
// milliseconds.
func ISODay(field, raw string) (int64, error) {
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return 0, fail(field, "must be an ISO day (YYYY-MM-DD)")
	}
	return t.UnixMilli(), nil
}

// LagMinutes validates a non-negative lag, defaulting to 0 when nil.
func LagMinutes(v *int) (int, error) {
	if v == nil {
		return 0, nil
	}
	if *v < 0 {
		return 0, fail("lag_minutes", "must be non-negative")
	}
	return *v, nil
}
