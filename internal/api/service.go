package api

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os/exec"

	"voxcut/internal/config"
	"voxcut/internal/embed"
	"voxcut/internal/logging"
	"voxcut/internal/search"
	"voxcut/internal/services"
)

// Service bundles the configuration and logger every operation shares.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewService wires a facade around the loaded configuration.
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new", "configuration is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{cfg: cfg, logger: logger}, nil
}

// Config exposes the wired configuration for read-only callers.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// embedder picks the vector source for semantic search: the configured
// helper binary when it resolves on PATH, otherwise a lexical fallback
// built from the documents themselves. The choice is deferred to first
// use so assembling search options stays free of subprocess probing.
func (s *Service) embedder(docs []search.Document) embed.Embedder {
	return embed.NewLazy(func(context.Context) (embed.Embedder, error) {
		binary := s.cfg.Search.EmbedBinary
		if _, err := exec.LookPath(binary); err == nil {
			return embed.NewCLI(embed.WithBinary(binary), embed.WithModel(s.cfg.Search.EmbedModel)), nil
		}
		s.logger.Debug("embedding helper unavailable, using lexical vectors",
			logging.String("binary", binary))
		corpus := make([]string, 0, 256)
		for _, doc := range docs {
			for _, seg := range doc.Segments {
				corpus = append(corpus, seg.Text)
			}
		}
		return embed.NewLexical(corpus), nil
	})
}

// randFor returns a seeded source for reproducible shuffles, or nil so
// downstream code falls back to the process-wide source.
func randFor(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}
