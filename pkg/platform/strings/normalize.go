package strings

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// KeySeparator joins tokens in a normalized field key.
const KeySeparator = "_"

// NormalizeKey canonicalizes an extracted field name: NFKC, lowercase, runs of
// spaces, hyphens and underscores folded to one "_", everything outside
// [a-z0-9_] dropped, and no leading or trailing "_".
func NormalizeKey(s string) string {
	return fold(s, '_')
}

// NormalizeText canonicalizes free text such as page and document titles.
// Any non-alphanumeric run becomes a single space.
func NormalizeText(s string) string {
	return fold(s, ' ')
}

// Tokens splits a normalized key into its "_"-separated parts.
func Tokens(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, KeySeparator)
}

func fold(s string, sep rune) string {
	s = strings.ToLower(norm.NFKC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteRune(sep)
			}
			pending = false
			b.WriteRune(r)
		case sep == '_' && (r == '_' || r == '-' || unicode.IsSpace(r)):
			pending = true
		case sep == ' ' && !unicode.IsLetter(r) && !unicode.IsDigit(r):
			pending = true
		}
	}
	return b.String()
}
