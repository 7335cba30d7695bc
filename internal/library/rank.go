package library

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"voxcut/internal/textutil"
)

// MediaScore pairs a library entry with its relevance to a query.
type MediaScore struct {
	Media Media
	Score float64
}

// RankMedia orders library entries by how well their transcript text
// matches the query, using IDF-weighted token overlap across the whole
// library. Entries with no overlap are dropped; limit > 0 caps the
// result.
func (s *Store) RankMedia(ctx context.Context, query string, limit int) ([]MediaScore, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	entries, err := s.ListMedia(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	corpus := textutil.NewCorpus()
	prints := make([]*textutil.Fingerprint, len(entries))
	for i, media := range entries {
		text, err := s.mediaText(ctx, media.ID)
		if err != nil {
			return nil, err
		}
		prints[i] = textutil.NewFingerprint(text)
		corpus.Add(prints[i])
	}

	// Terms present in every entry carry zero IDF. When that zeroes
	// the whole query, as it does on a one-entry library, fall back
	// to raw term overlap instead of ranking nothing.
	idf := corpus.IDF()
	queryPrint := textutil.NewFingerprint(query).WithIDF(idf)
	if queryPrint == nil {
		idf = nil
		queryPrint = textutil.NewFingerprint(query)
	}

	scores := make([]MediaScore, 0, len(entries))
	for i, media := range entries {
		score := textutil.CosineSimilarity(queryPrint, prints[i].WithIDF(idf))
		if score <= 0 {
			continue
		}
		scores = append(scores, MediaScore{Media: *media, Score: score})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	return scores, nil
}

// mediaText concatenates a media entry's segment text for corpus
// fingerprinting.
func (s *Store) mediaText(ctx context.Context, mediaID string) (string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text FROM segments WHERE media_id = ? ORDER BY idx`, mediaID)
	if err != nil {
		return "", fmt.Errorf("collect media text: %w", err)
	}
	defer rows.Close()

	var builder strings.Builder
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return "", err
		}
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(text)
	}
	return builder.String(), rows.Err()
}
