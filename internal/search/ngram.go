package search

import (
	"fmt"
	"sort"
	"strings"

	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// DefaultIgnoredWords are the function words the n-gram analyzer skips
// unless the caller opts out. Any gram containing one is dropped.
var DefaultIgnoredWords = []string{
	"a", "an", "the", "and", "or", "but", "of", "to", "in", "on", "at",
	"for", "with", "is", "it", "that", "this", "i", "you", "he", "she",
	"we", "they", "was", "were", "be", "been", "are", "as", "by", "from",
}

// NGram is one ranked entry: the gram text and how often it occurs.
type NGram struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// NGrams counts n-grams over a word stream and ranks them by
// frequency, most common first; ties order lexicographically so equal
// inputs always rank identically. Tokens reduce to the same comparison
// form the matcher uses: punctuation-insensitive by default, surface
// tokens kept distinct when exact is set. Grams containing any ignored
// word are dropped. The input is never mutated, so repeated calls with
// different ignore sets see the same corpus.
func NGrams(words []transcript.Word, n int, ignore []string, exact bool) ([]NGram, error) {
	if n < 1 || n > 3 {
		return nil, services.Wrap(services.ErrValidation, "search", "ngrams",
			fmt.Sprintf("n must be 1, 2, or 3, got %d", n), nil)
	}

	reduce := Normalize
	if exact {
		reduce = Fold
	}

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tok := reduce(w.Text)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}

	ignored := make(map[string]struct{}, len(ignore))
	for _, w := range ignore {
		ignored[reduce(w)] = struct{}{}
	}

	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		gram := tokens[i : i+n]
		if gramIgnored(gram, ignored) {
			continue
		}
		counts[strings.Join(gram, " ")]++
	}

	ranked := make([]NGram, 0, len(counts))
	for text, count := range counts {
		ranked = append(ranked, NGram{Text: text, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Text < ranked[j].Text
	})
	return ranked, nil
}

func gramIgnored(gram []string, ignored map[string]struct{}) bool {
	if len(ignored) == 0 {
		return false
	}
	for _, tok := range gram {
		if _, ok := ignored[tok]; ok {
			return true
		}
	}
	return false
}
