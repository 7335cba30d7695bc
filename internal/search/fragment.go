package search

import (
	"context"
	"regexp"
	"strings"

	"voxcut/internal/transcript"
)

// searchFragment slides a window of len(patterns) words over each
// file's word stream and emits a match wherever every window word
// matches its pattern. The span runs from the first word's start to
// the last word's end, so clips carry only the matched phrase.
// Overlapping windows each produce their own match.
func searchFragment(ctx context.Context, docs []Document, patterns []*regexp.Regexp) ([]Match, error) {
	width := len(patterns)
	var matches []Match
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		words := transcript.Words(doc.Segments)
		if len(words) < width {
			continue
		}
		for i := 0; i+width <= len(words); i++ {
			if !windowMatches(words[i:i+width], patterns) {
				continue
			}
			window := words[i : i+width]
			texts := make([]string, width)
			for j, w := range window {
				texts[j] = w.Text
			}
			matches = append(matches, Match{
				File:    doc.File,
				Start:   window[0].Start,
				End:     window[width-1].End,
				Text:    strings.Join(texts, " "),
				Speaker: window[0].Speaker,
			})
		}
	}
	return matches, nil
}

func windowMatches(window []transcript.Word, patterns []*regexp.Regexp) bool {
	for j, re := range patterns {
		if !re.MatchString(window[j].Text) {
			return false
		}
	}
	return true
}
