// Package strings holds small string-slice helpers shared by services.
package strings

import "strings"

// Distinct trims each value and returns the non-empty ones once each, in
// first-seen order. Used to build IN lists from ledgers where one member
// appears on many rows.
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
