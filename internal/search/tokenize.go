package search

import (
	"regexp"
	"strings"
)

// punctPattern matches the sentence punctuation the word-level modes
// ignore when comparing tokens.
var punctPattern = regexp.MustCompile(`[.?!,:"]+`)

// Fold lowercases a token for case-insensitive comparison.
func Fold(token string) string {
	return strings.ToLower(token)
}

// Normalize strips sentence punctuation and folds. This is the
// comparison form mash equality and whole-word matching reduce to:
// "Hello," and "hello" are the same token.
func Normalize(token string) string {
	return Fold(punctPattern.ReplaceAllString(token, ""))
}

// queryTokens splits a query into comparison tokens, dropping tokens
// that normalize to nothing.
func queryTokens(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if Normalize(f) == "" {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
