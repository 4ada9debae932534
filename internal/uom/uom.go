// Package uom holds the closed unit-of-measure vocabulary both tokenizers
// anchor on. The vocabulary is configuration-supplied and matched
// case-insensitively.
package uom

import (
	"regexp"
	"sort"
	"strings"
)

type Vocabulary struct {
	set     map[string]struct{}
	pattern string
}

func New(tokens []string) Vocabulary {
	cleaned := make([]string, 0, len(tokens))
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if _, ok := set[tok]; ok {
			continue
		}
		set[tok] = struct{}{}
		cleaned = append(cleaned, tok)
	}

	// Longest token first so "kg" is never shadowed by "g" inside the
	// compiled alternation.
	ordered := append([]string(nil), cleaned...)
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })
	quoted := make([]string, 0, len(ordered))
	for _, tok := range ordered {
		quoted = append(quoted, regexp.QuoteMeta(tok))
	}

	return Vocabulary{
		set:     set,
		pattern: "(?:" + strings.Join(quoted, "|") + ")",
	}
}

// Pattern returns a non-capturing regexp alternation over the vocabulary,
// for embedding into larger line patterns.
func (v Vocabulary) Pattern() string {
	return v.pattern
}

// Canonical returns the vocabulary form of a recognized token, or "" when
// the token is outside the vocabulary.
func (v Vocabulary) Canonical(token string) string {
	tok := strings.ToLower(strings.TrimSpace(token))
	if _, ok := v.set[tok]; ok {
		return tok
	}
	return ""
}
