package search

import (
	"context"
	"sort"

	"voxcut/internal/embed"
	"voxcut/internal/services"
)

// searchSemantic embeds the query and every segment, then returns
// segments whose cosine similarity reaches the threshold, highest
// first. Ties keep corpus order.
func searchSemantic(ctx context.Context, docs []Document, query string, opts Options) ([]Match, error) {
	if opts.Embedder == nil {
		return nil, services.Wrap(services.ErrEmbeddingUnavailable, "search", "semantic",
			"no embedder configured", nil)
	}

	var (
		texts      []string
		candidates []Match
	)
	for _, doc := range docs {
		for _, seg := range doc.Segments {
			texts = append(texts, seg.Text)
			candidates = append(candidates, Match{
				File:    doc.File,
				Start:   seg.Start,
				End:     seg.End,
				Text:    seg.Text,
				Speaker: seg.Speaker,
			})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVec, err := opts.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	segmentVecs, err := opts.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(segmentVecs) != len(candidates) {
		return nil, services.Wrap(services.ErrEmbeddingUnavailable, "search", "semantic",
			"embedder returned wrong vector count", nil)
	}

	threshold := opts.threshold()
	var matches []Match
	for i, cand := range candidates {
		score := embed.Cosine(queryVec, segmentVecs[i])
		if score < threshold {
			continue
		}
		cand.Score = score
		matches = append(matches, cand)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}
