// Package match implements the fuzzy scoring shared by customer and product
// resolution. Scores are on a 0..100 scale; the weights below are tuned
// against real pasted messages and must not drift.
package match

import (
	"strings"

	"freshops/internal/util"
)

const (
	// ScoreExact is awarded when both normalized strings are identical.
	ScoreExact = 100.0
	// ScoreContain is awarded when one normalized string fully contains
	// the other.
	ScoreContain = 80.0
	// PartialCeiling caps the token-overlap partial score.
	PartialCeiling = 60.0

	// SubstringCredit is the fraction of a token's length credited when it
	// only matches a candidate token as a substring.
	SubstringCredit = 0.8
	// SubstringMinLen is the shortest token eligible for substring credit.
	SubstringMinLen = 3

	// HistoryBoostFloor is the minimum raw score before a history boost
	// may apply; the boost breaks ties, it does not rescue noise.
	HistoryBoostFloor = 20.0

	// BranchBonusWeight and BranchBonusCap shape the bonus added when the
	// input also matches a customer's branch on its own.
	BranchBonusWeight = 0.5
	BranchBonusCap    = 20.0
)

// Scorer scores a normalized input against a normalized candidate. Both
// strings must already be passed through util.Normalize. Implementations are
// stateless and safe for concurrent use.
type Scorer interface {
	Score(input, candidate string) float64
}

// TokenScorer counts overlapping tokens: each input token found in the
// candidate's token set, exactly or as a substring in either direction,
// contributes equally.
type TokenScorer struct{}

func (TokenScorer) Score(input, candidate string) float64 {
	if base, ok := exactOrContain(input, candidate); ok {
		return base
	}

	inputTokens := tokens(input)
	if len(inputTokens) == 0 {
		return 0
	}
	candidateTokens := tokens(candidate)

	matched := 0
	for _, tok := range inputTokens {
		if tokenMatches(tok, candidateTokens) {
			matched++
		}
	}
	return float64(matched) / float64(len(inputTokens)) * PartialCeiling
}

// LengthScorer weights overlap by character length, so a long distinctive
// token counts for more than a short filler. Verbatim token matches credit
// their full length; substring matches of tokens longer than two characters
// credit SubstringCredit of it.
type LengthScorer struct{}

func (LengthScorer) Score(input, candidate string) float64 {
	if base, ok := exactOrContain(input, candidate); ok {
		return base
	}

	inputTokens := strings.Fields(input)
	if len(inputTokens) == 0 {
		return 0
	}
	candidateSet := map[string]struct{}{}
	candidateTokens := strings.Fields(candidate)
	for _, tok := range candidateTokens {
		candidateSet[tok] = struct{}{}
	}

	total := 0.0
	matchedLen := 0.0
	for _, tok := range inputTokens {
		total += float64(len(tok))
		if _, ok := candidateSet[tok]; ok {
			matchedLen += float64(len(tok))
			continue
		}
		if len(tok) >= SubstringMinLen && tokenMatches(tok, candidateTokens) {
			matchedLen += SubstringCredit * float64(len(tok))
		}
	}
	if total == 0 {
		return 0
	}
	return matchedLen / total * PartialCeiling
}

func exactOrContain(input, candidate string) (float64, bool) {
	if input == "" || candidate == "" {
		return 0, true
	}
	if input == candidate {
		return ScoreExact, true
	}
	if strings.Contains(candidate, input) || strings.Contains(input, candidate) {
		return ScoreContain, true
	}
	return 0, false
}

func tokens(s string) []string {
	return util.Tokenize(s)
}

func tokenMatches(tok string, candidates []string) bool {
	for _, c := range candidates {
		if tok == c || strings.Contains(c, tok) || strings.Contains(tok, c) {
			return true
		}
	}
	return false
}
