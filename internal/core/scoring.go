package core

import (
	"math"
	"strings"
)

// PatternScorer turns raw model output into a category and confidence by
// counting signal words. Matching is presence-based per signal and uses
// plain substring containment, so PRODUTIVO also matches inside
// IMPRODUTIVO; both sides score and the strictly higher one wins.
type PatternScorer struct {
	productive   []string
	unproductive []string
	tiebreak     []string
}

// NewPatternScorer creates a scorer over the given signal word tables.
// Productive and unproductive signals are matched uppercase, tiebreak
// keywords lowercase.
func NewPatternScorer(productive, unproductive, tiebreak []string) *PatternScorer {
	return &PatternScorer{
		productive:   productive,
		unproductive: unproductive,
		tiebreak:     tiebreak,
	}
}

// Score classifies raw model output. Ties, including output with no signal
// words at all, fall through to the tiebreak keywords at confidence 0.5.
func (ps *PatternScorer) Score(raw string) (Category, float64) {
	upper := strings.ToUpper(raw)

	productiveScore := countPresent(upper, ps.productive)
	unproductiveScore := countPresent(upper, ps.unproductive)

	if productiveScore > unproductiveScore {
		return CategoryProductive, signalConfidence(productiveScore)
	}
	if unproductiveScore > productiveScore {
		return CategoryUnproductive, signalConfidence(unproductiveScore)
	}

	lower := strings.ToLower(raw)
	for _, keyword := range ps.tiebreak {
		if strings.Contains(lower, keyword) {
			return CategoryProductive, 0.5
		}
	}
	return CategoryUnproductive, 0.5
}

// signalConfidence maps a winning signal score to confidence, capped at 0.9
func signalConfidence(score int) float64 {
	return math.Min(0.9, 0.6+0.1*float64(score))
}

// FallbackScorer is the deterministic keyword heuristic used when the
// model is unavailable or returned unusable output. It scores the
// lowercased original text, not the normalized form.
type FallbackScorer struct {
	productive   []string
	unproductive []string
}

// NewFallbackScorer creates a scorer over the given keyword tables
func NewFallbackScorer(productive, unproductive []string) *FallbackScorer {
	return &FallbackScorer{
		productive:   productive,
		unproductive: unproductive,
	}
}

// Score classifies text by keyword presence. Productive must strictly
// outscore unproductive to win; confidence is capped at 0.7, and text
// matching nothing at all lands on the unproductive floor of 0.3.
func (fs *FallbackScorer) Score(text string) (Category, float64) {
	lower := strings.ToLower(text)

	productiveScore := countPresent(lower, fs.productive)
	unproductiveScore := countPresent(lower, fs.unproductive)

	if productiveScore > unproductiveScore {
		return CategoryProductive, keywordConfidence(productiveScore)
	}
	if unproductiveScore > 0 {
		return CategoryUnproductive, keywordConfidence(unproductiveScore)
	}
	return CategoryUnproductive, 0.3
}

// keywordConfidence maps a keyword score to confidence, capped at 0.7
func keywordConfidence(score int) float64 {
	return math.Min(0.7, 0.4+0.1*float64(score))
}

// countPresent counts how many of the words occur in text, at most once
// per word
func countPresent(text string, words []string) int {
	count := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			count++
		}
	}
	return count
}
