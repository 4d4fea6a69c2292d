// Package idgen generates the opaque 128-bit unique ids used for every
// entity in the planning kernel, resting on github.com/google/uuid since
// no human-typed compact prefix scheme is required here.
package idgen

import (
	"github.com/google/uuid"
)

// New returns a fresh opaque 128-bit id in the canonical hyphenated UUID
// form (8-4-4-4-12 hex digits).
// Used for item ids, blocker ids, block ids, entry ids, and log ids
// (dependencies key on their two endpoints, not an id of their own).
func New() string {
	return uuid.New().String()
}

// NewWithPrefix returns a fresh id namespaced with a short kind tag, purely
// for readability in logs and exports (e.g. "blk_<uuid>"); the kernel never
// parses the prefix back out.
func NewWithPrefix(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Valid reports whether s looks like an id this package could have minted:
// a UUID, optionally prefixed with "<tag>_".
func Valid(s string) bool {
	if s == "" {
		return false
	}
	if i := lastUnderscore(s); i >= 0 {
		s = s[i+1:]
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func lastUnderscore(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '_' {
			return i
		}
	}
	return -1
}
