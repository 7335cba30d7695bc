package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media is one library entry: a media file with an optional stored
// transcript and embedding cache.
type Media struct {
	ID       string
	Path     string
	Title    string
	Duration float64
	AddedAt  time.Time
}

// AddMedia inserts a media file, or refreshes its title and duration
// when the path is already in the library. The row id is stable across
// refreshes so transcripts and embeddings stay attached.
func (s *Store) AddMedia(ctx context.Context, path, title string, duration float64) (*Media, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("media path is required")
	}
	if strings.TrimSpace(title) == "" {
		title = inferTitleFromPath(path)
	}

	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO media (id, path, title, duration_seconds, added_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET title = excluded.title, duration_seconds = excluded.duration_seconds`,
		uuid.NewString(),
		path,
		title,
		duration,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}
	return s.GetMediaByPath(ctx, path)
}

// GetMedia fetches a media row by id. A missing id returns nil, nil.
func (s *Store) GetMedia(ctx context.Context, id string) (*Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	media, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return media, nil
}

// GetMediaByPath fetches a media row by file path. A missing path
// returns nil, nil.
func (s *Store) GetMediaByPath(ctx context.Context, path string) (*Media, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE path = ?`, path)
	media, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media by path: %w", err)
	}
	return media, nil
}

// ListMedia returns every library entry ordered by when it was added.
func (s *Store) ListMedia(ctx context.Context) ([]*Media, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY added_at, path`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []*Media
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, media)
	}
	return items, rows.Err()
}

// RemoveMedia deletes a media entry and, through cascade, its segments
// and embeddings. It reports whether a row was removed.
func (s *Store) RemoveMedia(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete media: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const mediaColumns = "id, path, title, duration_seconds, added_at"

func scanMedia(scanner interface{ Scan(dest ...any) error }) (*Media, error) {
	var (
		id       string
		path     string
		title    sql.NullString
		duration sql.NullFloat64
		addedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &path, &title, &duration, &addedRaw); err != nil {
		return nil, err
	}
	media := &Media{
		ID:       id,
		Path:     path,
		Title:    title.String,
		Duration: duration.Float64,
	}
	if added, err := parseTimeString(addedRaw.String); err == nil {
		media.AddedAt = added
	}
	return media, nil
}

func inferTitleFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	base = strings.TrimSpace(strings.TrimSuffix(base, ext))
	if base == "" {
		return "Untitled"
	}
	return base
}
