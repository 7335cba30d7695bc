package search

import (
	"context"

	"voxcut/internal/transcript"
)

// searchMash collects every occurrence of each query word across the
// corpus as a single-word match, then shuffles the whole set. Queries
// with several words contribute all occurrences of each. Comparison is
// punctuation-insensitive, so "word," in a transcript matches the
// query "word".
func searchMash(ctx context.Context, docs []Document, query string, opts Options) ([]Match, error) {
	targets := make(map[string]struct{})
	for _, token := range queryTokens(query) {
		targets[Normalize(token)] = struct{}{}
	}

	var matches []Match
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, word := range transcript.Words(doc.Segments) {
			if _, ok := targets[Normalize(word.Text)]; !ok {
				continue
			}
			matches = append(matches, Match{
				File:    doc.File,
				Start:   word.Start,
				End:     word.End,
				Text:    word.Text,
				Speaker: word.Speaker,
			})
		}
	}

	opts.shuffle(len(matches), func(i, j int) {
		matches[i], matches[j] = matches[j], matches[i]
	})
	return matches, nil
}
