// Package strings provides the text normalization shared by field-name and
// document-title matching.
package strings

import "strings"

// DedupeAndTrimLower lowercases and trims each value, dropping blanks and
// repeats. Order of first occurrence is preserved.
//
//	DedupeAndTrimLower([]string{"  U.S. Passport ", "u.s. passport", ""})
//	// []string{"u.s. passport"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
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
