package embed

import (
	"context"
	"math"
	"sort"

	"voxcut/internal/textutil"
)

// Lexical is a model-free embedder: TF-IDF vectors over a vocabulary
// fixed at construction from the caller's corpus. It keeps semantic
// mode usable when the embedding helper is not installed, trading
// concept matching for term matching. IDF weights are smoothed by one
// so terms present in every document still contribute.
type Lexical struct {
	vocab map[string]int
	idf   []float64
}

// NewLexical builds the vocabulary and document frequencies from
// corpus. Vectors embed into one dimension per vocabulary term.
func NewLexical(corpus []string) *Lexical {
	c := textutil.NewCorpus()
	for _, text := range corpus {
		c.Add(textutil.NewFingerprint(text))
	}
	weights := c.IDF()
	terms := make([]string, 0, len(weights))
	for term := range weights {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = weights[term] + 1
	}
	return &Lexical{vocab: vocab, idf: idf}
}

// Dimension returns the vector length this embedder produces.
func (l *Lexical) Dimension() int {
	return len(l.idf)
}

// Embed projects text onto the corpus vocabulary, L2-normalized.
// Out-of-vocabulary terms contribute nothing.
func (l *Lexical) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(l.idf))
	counts := make(map[int]float64)
	for _, token := range textutil.Tokenize(text) {
		if idx, ok := l.vocab[token]; ok {
			counts[idx]++
		}
	}
	var norm float64
	for idx, tf := range counts {
		w := tf * l.idf[idx]
		vec[idx] = float32(w)
		norm += w * w
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (l *Lexical) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := l.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

var _ Embedder = (*Lexical)(nil)
