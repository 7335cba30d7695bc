package embed

import (
	"context"
	"sync"
)

// Lazy defers embedder construction until first use. The factory runs
// at most once even under concurrent first callers; its outcome,
// success or failure, is kept for every later call.
type Lazy struct {
	factory func(context.Context) (Embedder, error)

	once sync.Once
	emb  Embedder
	err  error
}

// NewLazy wraps a factory that builds the real embedder on demand.
func NewLazy(factory func(context.Context) (Embedder, error)) *Lazy {
	return &Lazy{factory: factory}
}

func (l *Lazy) get(ctx context.Context) (Embedder, error) {
	l.once.Do(func() {
		l.emb, l.err = l.factory(ctx)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.emb, nil
}

// Embed initializes the underlying embedder if needed and delegates.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return emb.Embed(ctx, text)
}

// EmbedBatch initializes the underlying embedder if needed and
// delegates.
func (l *Lazy) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	emb, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return emb.EmbedBatch(ctx, texts)
}

var _ Embedder = (*Lazy)(nil)
