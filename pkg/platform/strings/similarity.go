package strings

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio is the edit-distance similarity of a and b in [0,1]: one minus the
// Levenshtein distance over the longer length. Two empty strings score 1.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// ContainsPhrase reports whether phrase occurs in text on token boundaries.
// Both arguments must already be normalized with the same separator.
func ContainsPhrase(text, phrase string, sep string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(sep+text+sep, sep+phrase+sep)
}
