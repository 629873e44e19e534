// Package similarity scores near-duplicate questions by token overlap.
package similarity

import (
	"strings"
	"unicode"
)

const (
	// DefaultThreshold is the minimum Jaccard score treated as a match.
	DefaultThreshold = 0.85

	// maxTokens caps the token list used for scoring. Longer lists are
	// down-sampled by an even stride so comparison cost stays bounded.
	maxTokens = 200

	// maxLengthRatio rejects grossly mismatched pairs before tokenizing.
	maxLengthRatio = 3.0

	// minTokenLen drops short glue words during tokenization.
	minTokenLen = 3
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "in": {}, "is": {},
	"it": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"to": {}, "will": {}, "with": {},
}

// Tokenize splits text into lowercase words of at least three characters,
// excluding stop words. Token order follows the input.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minTokenLen {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// TokenSet is the deduplicated token membership of one question.
type TokenSet map[string]struct{}

// NewTokenSet down-samples tokens to the scoring cap and builds a set.
func NewTokenSet(tokens []string) TokenSet {
	tokens = downsample(tokens)
	set := make(TokenSet, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// downsample keeps at most maxTokens tokens, picked at an even stride so
// the same input always yields the same subset.
func downsample(tokens []string) []string {
	if len(tokens) <= maxTokens {
		return tokens
	}
	stride := (len(tokens) + maxTokens - 1) / maxTokens
	out := make([]string, 0, maxTokens)
	for i := 0; i < len(tokens); i += stride {
		out = append(out, tokens[i])
	}
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when either set is empty.
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	union := len(b)
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

// Scorer scores candidate questions against one fixed query.
type Scorer struct {
	queryLen int
	set      TokenSet
}

// NewScorer tokenizes the query once for repeated candidate scoring.
func NewScorer(query string) *Scorer {
	return &Scorer{
		queryLen: len(query),
		set:      NewTokenSet(Tokenize(query)),
	}
}

// Empty reports whether the query produced no usable tokens.
func (s *Scorer) Empty() bool {
	return len(s.set) == 0
}

// Score returns the Jaccard similarity between the query and candidate,
// or 0 when the raw length ratio exceeds 3:1.
func (s *Scorer) Score(candidate string) float64 {
	if !lengthRatioOK(s.queryLen, len(candidate)) {
		return 0
	}
	return Jaccard(s.set, NewTokenSet(Tokenize(candidate)))
}

// Score is the one-shot form for a single pair of questions.
func Score(a, b string) float64 {
	return NewScorer(a).Score(b)
}

func lengthRatioOK(a, b int) bool {
	if a == 0 || b == 0 {
		return false
	}
	if a > b {
		a, b = b, a
	}
	return float64(b) <= maxLengthRatio*float64(a)
}
