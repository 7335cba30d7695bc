package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// vectorEmbedder returns canned vectors per text so similarity scores
// are exact.
type vectorEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (v vectorEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v.err != nil {
		return nil, v.err
	}
	vec, ok := v.vectors[text]
	if !ok {
		return []float32{0, 0}, nil
	}
	return vec, nil
}

func (v vectorEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := v.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func semanticCorpus() []Document {
	return []Document{{
		File: "talk.mp4",
		Segments: []transcript.Segment{
			{Text: "pure joy", Start: 0, End: 1},
			{Text: "tax forms", Start: 2, End: 3},
			{Text: "mostly happy", Start: 4, End: 5},
		},
	}}
}

func semanticEmbedder() vectorEmbedder {
	return vectorEmbedder{vectors: map[string][]float32{
		"happiness":    {1, 0},
		"pure joy":     {1, 0},
		"tax forms":    {0, 1},
		"mostly happy": {0.8, 0.6},
	}}
}

func TestSearchSemanticThresholdAndOrder(t *testing.T) {
	matches, err := Search(context.Background(), semanticCorpus(), "happiness", Options{
		Mode:     ModeSemantic,
		Embedder: semanticEmbedder(),
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches above threshold, got %+v", matches)
	}
	if matches[0].Text != "pure joy" || math.Abs(matches[0].Score-1) > 1e-6 {
		t.Fatalf("expected best match first, got %+v", matches[0])
	}
	if matches[1].Text != "mostly happy" || math.Abs(matches[1].Score-0.8) > 1e-6 {
		t.Fatalf("expected second match scored 0.8, got %+v", matches[1])
	}
}

func TestSearchSemanticCustomThreshold(t *testing.T) {
	matches, err := Search(context.Background(), semanticCorpus(), "happiness", Options{
		Mode:      ModeSemantic,
		Embedder:  semanticEmbedder(),
		Threshold: 0.9,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Text != "pure joy" {
		t.Fatalf("expected only the exact match, got %+v", matches)
	}
}

func TestSearchSemanticWithoutEmbedder(t *testing.T) {
	_, err := Search(context.Background(), semanticCorpus(), "happiness", Options{Mode: ModeSemantic})
	if !errors.Is(err, services.ErrEmbeddingUnavailable) {
		t.Fatalf("expected embedding unavailable, got %v", err)
	}
}

func TestSearchSemanticEmbedderFailure(t *testing.T) {
	broken := vectorEmbedder{err: services.Wrap(services.ErrEmbeddingUnavailable, "embed", "batch", "helper gone", nil)}
	_, err := Search(context.Background(), semanticCorpus(), "happiness", Options{
		Mode:     ModeSemantic,
		Embedder: broken,
	})
	if !errors.Is(err, services.ErrEmbeddingUnavailable) {
		t.Fatalf("expected embedding unavailable, got %v", err)
	}
}

func TestSearchSemanticEmptyCorpus(t *testing.T) {
	matches, err := Search(context.Background(), nil, "happiness", Options{
		Mode:     ModeSemantic,
		Embedder: semanticEmbedder(),
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %+v", matches)
	}
}
