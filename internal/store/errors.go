// Package store defines the persistence-substrate interface the kernel
// transacts against — a transactional relational store supporting
// recursive traversals — and its sqlite implementation.
package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors shared across store implementations.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrCycle    = errors.New("dependency cycle detected")
)

// WrapDBError wraps a database error with operation context, converting
// sql.ErrNoRows to ErrNotFound.
func WrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
func IsCycle(err error) bool    { return errors.Is(err, ErrCycle) }
