package decision

import (
	"strings"

	pstrings "i9score/pkg/platform/strings"
)

const (
	weightSequence  = 0.4
	weightSubstring = 0.3
	weightTokens    = 0.3

	// substringBase is the similarity floor granted when one key contains the other.
	substringBase = 0.8
)

// Similarity blends edit distance, substring containment and token overlap
// for two normalized keys. Identical keys score 1.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	seq := pstrings.Ratio(a, b)

	sub := seq
	if strings.Contains(a, b) || strings.Contains(b, a) {
		sub = substringBase + (1-substringBase)*seq
	}

	tok := tokenOverlap(pstrings.Tokens(a), pstrings.Tokens(b))

	return min(1, weightSequence*seq+weightSubstring*sub+weightTokens*tok)
}

func tokenOverlap(a, b []string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	common := 0
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			common++
		}
	}
	return float64(common) / float64(longest)
}
