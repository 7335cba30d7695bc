package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"voxcut/internal/transcript"
)

// SaveTranscript replaces the stored transcript for a media entry. The
// delete and inserts run in one transaction so readers never see a
// half-written transcript.
func (s *Store) SaveTranscript(ctx context.Context, mediaID string, segments []transcript.Segment) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transcript tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE media_id = ?`, mediaID); err != nil {
			return fmt.Errorf("clear segments: %w", err)
		}
		for idx, seg := range segments {
			var wordsJSON any
			if len(seg.Words) > 0 {
				data, err := json.Marshal(seg.Words)
				if err != nil {
					return fmt.Errorf("marshal words: %w", err)
				}
				wordsJSON = string(data)
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO segments (media_id, idx, start_seconds, end_seconds, text, speaker, words_json)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				mediaID,
				idx,
				seg.Start,
				seg.End,
				seg.Text,
				nullableString(seg.Speaker),
				wordsJSON,
			); err != nil {
				return fmt.Errorf("insert segment %d: %w", idx, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transcript: %w", err)
		}
		return nil
	})
}

// LoadTranscript returns the stored transcript for a media entry in
// segment order. A media id with no transcript returns an empty slice.
func (s *Store) LoadTranscript(ctx context.Context, mediaID string) ([]transcript.Segment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT start_seconds, end_seconds, text, speaker, words_json
         FROM segments WHERE media_id = ? ORDER BY idx`,
		mediaID,
	)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	defer rows.Close()

	var segments []transcript.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// TextHit is one segment matched by a library text search.
type TextHit struct {
	MediaID   string
	MediaPath string
	Title     string
	Segment   transcript.Segment
}

// SearchText scans stored segment text for a literal substring,
// case-insensitively, across the whole library. Results are ordered by
// media path and segment position, capped at limit when limit > 0.
func (s *Store) SearchText(ctx context.Context, query string, limit int) ([]TextHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	sqlQuery := `SELECT m.id, m.path, m.title, s.start_seconds, s.end_seconds, s.text, s.speaker, s.words_json
         FROM segments s JOIN media m ON m.id = s.media_id
         WHERE s.text LIKE ? ESCAPE '\'
         ORDER BY m.path, s.idx`
	args := []any{"%" + escapeLike(query) + "%"}
	if limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search text: %w", err)
	}
	defer rows.Close()

	var hits []TextHit
	for rows.Next() {
		var (
			hit       TextHit
			title     sql.NullString
			speaker   sql.NullString
			wordsJSON sql.NullString
		)
		if err := rows.Scan(&hit.MediaID, &hit.MediaPath, &title, &hit.Segment.Start, &hit.Segment.End, &hit.Segment.Text, &speaker, &wordsJSON); err != nil {
			return nil, err
		}
		hit.Title = title.String
		hit.Segment.Speaker = speaker.String
		if wordsJSON.Valid {
			if err := json.Unmarshal([]byte(wordsJSON.String), &hit.Segment.Words); err != nil {
				return nil, fmt.Errorf("decode words: %w", err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func scanSegment(scanner interface{ Scan(dest ...any) error }) (transcript.Segment, error) {
	var (
		seg       transcript.Segment
		speaker   sql.NullString
		wordsJSON sql.NullString
	)
	if err := scanner.Scan(&seg.Start, &seg.End, &seg.Text, &speaker, &wordsJSON); err != nil {
		return transcript.Segment{}, err
	}
	seg.Speaker = speaker.String
	if wordsJSON.Valid {
		if err := json.Unmarshal([]byte(wordsJSON.String), &seg.Words); err != nil {
			return transcript.Segment{}, fmt.Errorf("decode words: %w", err)
		}
	}
	return seg, nil
}

// escapeLike neutralizes LIKE wildcards so user queries match literally.
func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
