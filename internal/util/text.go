package util

import (
	"regexp"
	"strings"
)

var (
	rePunct  = regexp.MustCompile(`[^a-z0-9]+`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases the input and collapses every punctuation run into a
// single space. Both sides of a fuzzy comparison must pass through here.
func Normalize(input string) string {
	s := strings.ToLower(input)
	s = rePunct.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize normalizes and splits on whitespace, dropping single-character
// tokens which carry no matching signal.
func Tokenize(input string) []string {
	parts := strings.Fields(Normalize(input))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) > 1 {
			out = append(out, p)
		}
	}
	return out
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
