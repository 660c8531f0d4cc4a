package domain

import "sort"

// LockOrder returns the account identifiers in the canonical order in which
// their locks must be acquired. Every multi-account operation goes through
// this so two concurrent transfers over the same pair always lock in the
// same relative order, which rules out circular wait.
func LockOrder(ids ...string) []string {
	ordered := make([]string, len(ids))
	copy(ordered, ids)
	sort.Strings(ordered)

	return ordered
}
