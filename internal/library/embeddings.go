package library

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// PutEmbeddings stores one vector per transcript segment for a media
// entry, replacing any previous cache. Every vector must have exactly
// dim components.
func (s *Store) PutEmbeddings(ctx context.Context, mediaID string, dim int, vectors [][]float32) error {
	if dim <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	for idx, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("vector %d has %d components, want %d", idx, len(vec), dim)
		}
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin embeddings tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings WHERE media_id = ?`, mediaID); err != nil {
			return fmt.Errorf("clear embeddings: %w", err)
		}
		for idx, vec := range vectors {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO embeddings (media_id, idx, dim, vector) VALUES (?, ?, ?, ?)`,
				mediaID,
				idx,
				dim,
				encodeVector(vec),
			); err != nil {
				return fmt.Errorf("insert embedding %d: %w", idx, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit embeddings: %w", err)
		}
		return nil
	})
}

// LoadEmbeddings returns the cached vectors for a media entry in
// segment order, along with their dimension. No cache returns a nil
// slice and dimension zero.
func (s *Store) LoadEmbeddings(ctx context.Context, mediaID string) ([][]float32, int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT dim, vector FROM embeddings WHERE media_id = ? ORDER BY idx`,
		mediaID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("load embeddings: %w", err)
	}
	defer rows.Close()

	var (
		vectors [][]float32
		dim     int
	)
	for rows.Next() {
		var (
			rowDim int
			blob   []byte
		)
		if err := rows.Scan(&rowDim, &blob); err != nil {
			return nil, 0, err
		}
		if dim == 0 {
			dim = rowDim
		} else if rowDim != dim {
			return nil, 0, fmt.Errorf("inconsistent embedding dimensions %d and %d", dim, rowDim)
		}
		vec, err := decodeVector(blob, rowDim)
		if err != nil {
			return nil, 0, err
		}
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return vectors, dim, nil
}

// encodeVector packs a vector as little-endian IEEE 754 float32 values.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dim int) ([]float32, error) {
	if len(blob) != 4*dim {
		return nil, fmt.Errorf("embedding blob is %d bytes, want %d for dim %d", len(blob), 4*dim, dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec, nil
}
