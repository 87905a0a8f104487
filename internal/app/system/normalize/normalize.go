// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email normalizes an email address for storage and lookup: trimmed and
// lowercased. Gmail-style dot/plus folding is deliberately not applied;
// the address the user typed is the address we keep.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Space collapses interior runs of whitespace to single spaces and trims
// the ends. Used on names before folding.
func Space(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
