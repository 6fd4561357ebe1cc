// Package match implements approximate string matching over noisy OCR text.
// OCR introduces character-level noise (dropped or substituted glyphs) and
// word-level truncation, so keyword lookup combines three independent
// strategies: exact substring, per-token edit distance, and partial
// multi-word matching.
package match

import (
	"math"
	"strings"

	"github.com/arbovm/levenshtein"
)

// DefaultThreshold is the similarity threshold used when callers have no
// reason to pick their own. Observed useful range is 0.70-0.75.
const DefaultThreshold = 0.75

// partMinLength is the minimum rune length for a keyword part to count in
// the multi-word partial strategy; shorter parts (de, la, en) match too
// freely to carry signal.
const partMinLength = 3

// partMatchRatio is the fraction of keyword parts that must appear in the
// text for a multi-word keyword to count as found.
const partMatchRatio = 0.6

// Similarity returns a normalized, case-insensitive similarity in [0,1]
// between a and b: 1 - editDistance/max(len). Two empty strings are
// identical by definition.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}

	distance := levenshtein.Distance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

// FuzzySearch reports whether keyword occurs in text, tolerating OCR noise.
// It succeeds if any strategy holds:
//
//  1. keyword is an exact case-insensitive substring of text;
//  2. some whitespace-delimited token of text, no more than two runes
//     shorter than keyword, has Similarity >= threshold;
//  3. for multi-word keywords, parts longer than three runes that appear
//     verbatim in text account for at least 60% of all parts.
func FuzzySearch(text, keyword string, threshold float64) bool {
	lowerText := strings.ToLower(text)
	lowerKeyword := strings.ToLower(keyword)

	if strings.Contains(lowerText, lowerKeyword) {
		return true
	}

	keywordLen := len([]rune(lowerKeyword))
	for _, token := range strings.Fields(lowerText) {
		if len([]rune(token)) < keywordLen-2 {
			continue
		}
		if Similarity(token, lowerKeyword) >= threshold {
			return true
		}
	}

	parts := strings.Fields(lowerKeyword)
	if len(parts) > 1 {
		matched := 0
		for _, part := range parts {
			if len([]rune(part)) > partMinLength && strings.Contains(lowerText, part) {
				matched++
			}
		}
		required := int(math.Ceil(partMatchRatio * float64(len(parts))))
		if matched >= required {
			return true
		}
	}

	return false
}

// FuzzySearchAny reports whether any keyword matches text at threshold.
func FuzzySearchAny(text string, keywords []string, threshold float64) bool {
	for _, keyword := range keywords {
		if FuzzySearch(text, keyword, threshold) {
			return true
		}
	}
	return false
}

// FuzzySearchCount returns how many of the keywords match text at threshold.
func FuzzySearchCount(text string, keywords []string, threshold float64) int {
	count := 0
	for _, keyword := range keywords {
		if FuzzySearch(text, keyword, threshold) {
			count++
		}
	}
	return count
}
