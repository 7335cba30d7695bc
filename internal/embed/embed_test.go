package embed

import (
	"context"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "mismatched length", a: []float32{1, 2}, b: []float32{1, 2, 3}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tc := range cases {
		got := Cosine(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestLexicalEmbedsConsistentDimensions(t *testing.T) {
	corpus := []string{
		"the quick brown fox jumps over the lazy dog",
		"machine learning models process natural language",
		"the dog barks at the mailman every morning",
	}
	lex := NewLexical(corpus)
	if lex.Dimension() == 0 {
		t.Fatalf("expected non-empty vocabulary")
	}

	vectors, err := lex.EmbedBatch(context.Background(), corpus)
	if err != nil {
		t.Fatalf("embed batch: %v", err)
	}
	for i, vec := range vectors {
		if len(vec) != lex.Dimension() {
			t.Fatalf("vector %d has dimension %d, expected %d", i, len(vec), lex.Dimension())
		}
	}
}

func TestLexicalRanksRelatedTextHigher(t *testing.T) {
	corpus := []string{
		"the dog chased the ball across the yard",
		"stock markets closed higher after the announcement",
	}
	lex := NewLexical(corpus)

	ctx := context.Background()
	query, err := lex.Embed(ctx, "dog playing with a ball")
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}
	docs, err := lex.EmbedBatch(ctx, corpus)
	if err != nil {
		t.Fatalf("embed corpus: %v", err)
	}

	related := Cosine(query, docs[0])
	unrelated := Cosine(query, docs[1])
	if related <= unrelated {
		t.Fatalf("expected related text to score higher: related=%v unrelated=%v", related, unrelated)
	}
}

func TestLexicalEmptyCorpus(t *testing.T) {
	lex := NewLexical(nil)
	vec, err := lex.Embed(context.Background(), "anything")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 0 {
		t.Fatalf("expected zero-dimension vector, got %d", len(vec))
	}
}
