package search

import (
	"context"
	"regexp"
	"sort"
)

// searchSentence emits one match per segment whose text matches the
// pattern, spanning the whole segment. Matches keep corpus order:
// files in input order, segments by start time within each file.
func searchSentence(ctx context.Context, docs []Document, re *regexp.Regexp) ([]Match, error) {
	var matches []Match
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := len(matches)
		for _, seg := range doc.Segments {
			if !re.MatchString(seg.Text) {
				continue
			}
			matches = append(matches, Match{
				File:    doc.File,
				Start:   seg.Start,
				End:     seg.End,
				Text:    seg.Text,
				Speaker: seg.Speaker,
			})
		}
		fileMatches := matches[start:]
		sort.SliceStable(fileMatches, func(i, j int) bool {
			return fileMatches[i].Start < fileMatches[j].Start
		})
	}
	return matches, nil
}
