package taxonomy

import (
	"strings"

	pstrings "i9score/pkg/platform/strings"
)

// Strategy names the rule that produced a document match.
type Strategy string

const (
	StrategyExact   Strategy = "exact"
	StrategyPattern Strategy = "form_number"
	StrategyFuzzy   Strategy = "fuzzy"
	StrategyKeyword Strategy = "keyword"
)

// Level buckets a match confidence.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
	LevelNone   Level = "none"
)

const (
	fuzzyFloor       = 0.75
	fuzzyScale       = 0.85
	containmentFloor = 0.8
	patternScore     = 0.9
	keywordScore     = 0.75
	keywordMinCommon = 2
)

// Match is a resolved document identity.
type Match struct {
	Entry      Entry
	Confidence float64
	Strategy   Strategy
}

// Level classifies the match confidence.
func (m Match) Level() Level {
	switch {
	case m.Confidence >= 0.9:
		return LevelHigh
	case m.Confidence >= 0.7:
		return LevelMedium
	case m.Confidence >= 0.5:
		return LevelLow
	default:
		return LevelNone
	}
}

// MatchDocument resolves free text (a document title or page title) to its
// canonical document. Strategies are tried strongest first: exact name,
// form number, fuzzy ratio, then shared keywords.
func (t *Taxonomy) MatchDocument(text string) (Match, bool) {
	norm := pstrings.NormalizeText(text)
	if norm == "" {
		return Match{}, false
	}

	if idx, ok := t.exact[norm]; ok {
		return Match{Entry: t.entries[idx], Confidence: 1, Strategy: StrategyExact}, true
	}

	for _, p := range t.patterns {
		if p.re.MatchString(norm) {
			return Match{Entry: t.entries[p.entry], Confidence: patternScore, Strategy: StrategyPattern}, true
		}
	}

	if m, ok := t.fuzzy(norm); ok {
		return m, true
	}
	return t.keyword(norm)
}

func (t *Taxonomy) fuzzy(norm string) (Match, bool) {
	best, bestIdx := 0.0, -1
	for _, tm := range t.terms {
		score := pstrings.Ratio(norm, tm.text)
		if score < containmentFloor &&
			(pstrings.ContainsPhrase(norm, tm.text, " ") || pstrings.ContainsPhrase(tm.text, norm, " ")) {
			score = containmentFloor
		}
		if score > best {
			best, bestIdx = score, tm.entry
		}
	}
	if bestIdx < 0 || best < fuzzyFloor {
		return Match{}, false
	}
	return Match{Entry: t.entries[bestIdx], Confidence: best * fuzzyScale, Strategy: StrategyFuzzy}, true
}

func (t *Taxonomy) keyword(norm string) (Match, bool) {
	words := splitWords(norm)
	bestCommon, bestIdx := 0, -1
	for _, tm := range t.terms {
		common := 0
		for _, w := range words {
			if _, ok := tm.words[w]; ok {
				common++
			}
		}
		if common > bestCommon {
			bestCommon, bestIdx = common, tm.entry
		}
	}
	if bestIdx < 0 || bestCommon < keywordMinCommon {
		return Match{}, false
	}
	return Match{Entry: t.entries[bestIdx], Confidence: keywordScore, Strategy: StrategyKeyword}, true
}

// splitWords keeps the words that carry meaning; short fillers such as "of"
// and "us" never count toward keyword overlap.
func splitWords(text string) []string {
	var out []string
	for _, w := range strings.Fields(text) {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}
