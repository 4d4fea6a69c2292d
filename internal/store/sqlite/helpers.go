package sqlite

import "strings"

// placeholders returns "?,?,...,?" (n copies) and the matching []any of args,
// for building dynamic IN (...) clauses against a slice of ids.
func placeholders(ids []string) (string, []any) {
	qs := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		qs[i] = "?"
		args[i] = id
	}
	return strings.Join(qs, ","), args
}
