// Package similarity implements the token-set scorer behind the duplicate
// guard. The algorithm is intentionally simple and fully deterministic:
// lowercase, strip punctuation, split into a set of tokens, then take the
// Jaccard ratio (shared tokens over the token union).
package similarity

import (
	"strings"
	"unicode"

	"github.com/doeshing/adpost-go/internal/ports"
)

// TokenSetScorer scores text overlap on normalized word sets.
type TokenSetScorer struct{}

// NewTokenSetScorer creates the default scorer.
func NewTokenSetScorer() *TokenSetScorer {
	return &TokenSetScorer{}
}

// Score implements ports.Scorer.
//
// Identical inputs (including two empties) score 1.0; exactly one empty
// input scores 0.0; everything else lands on the Jaccard ratio of the two
// token sets.
func (s *TokenSetScorer) Score(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)

	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 1.0
	}
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	shared := 0
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			shared++
		}
	}
	union := len(tokensA) + len(tokensB) - shared
	return float64(shared) / float64(union)
}

// tokenize lowercases the input, replaces every non-alphanumeric rune with a
// space and collects the remaining words into a set.
func tokenize(text string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

var _ ports.Scorer = (*TokenSetScorer)(nil)
