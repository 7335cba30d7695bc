package api

import (
	"context"
	"sort"

	"voxcut/internal/logging"
	"voxcut/internal/search"
	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// SearchRequest selects inputs and a query for one search call.
type SearchRequest struct {
	Inputs    []string
	Query     string
	Mode      string
	WholeWord bool

	// Threshold overrides the configured semantic threshold when
	// positive.
	Threshold float64

	// Seed makes mash word picks reproducible when non-zero.
	Seed int64
}

// SearchResult carries the matches plus the documents they came from,
// so follow-up operations reuse the parse work.
type SearchResult struct {
	Documents []search.Document
	Matches   []search.Match
	Mode      search.Mode
}

// Search parses transcripts for the inputs and runs the query.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	ctx = services.WithOperation(ctx, "search")

	mode := search.ModeSentence
	if req.Mode != "" {
		parsed, err := search.ParseMode(req.Mode)
		if err != nil {
			return SearchResult{}, err
		}
		mode = parsed
	}

	docs, err := s.LoadDocuments(req.Inputs)
	if err != nil {
		return SearchResult{}, err
	}

	opts := search.Options{
		Mode:      mode,
		WholeWord: req.WholeWord,
		Threshold: req.Threshold,
		Rand:      randFor(req.Seed),
	}
	if mode == search.ModeSemantic {
		if opts.Threshold <= 0 {
			opts.Threshold = s.cfg.Search.SemanticThreshold
		}
		opts.Embedder = s.embedder(docs)
	}

	matches, err := search.Search(ctx, docs, req.Query, opts)
	if err != nil {
		return SearchResult{}, err
	}
	logging.WithContext(ctx, s.logger).Info("search finished",
		logging.String("query", req.Query),
		logging.String("mode", string(mode)),
		logging.Int("inputs", len(docs)),
		logging.Int("matches", len(matches)))
	return SearchResult{Documents: docs, Matches: matches, Mode: mode}, nil
}

// NGramsRequest selects inputs for frequency analysis.
type NGramsRequest struct {
	Inputs []string

	// N is the gram length, 1 through 3.
	N int

	// Ignore replaces search.DefaultIgnoredWords when NoDefaultIgnores
	// is set, and extends it otherwise.
	Ignore           []string
	NoDefaultIgnores bool

	// Exact keeps surface tokens distinct instead of folding
	// punctuation and case together.
	Exact bool
}

// NGrams ranks word sequences across every input transcript. Word
// streams concatenate in input order so cross-file grams never form.
func (s *Service) NGrams(ctx context.Context, req NGramsRequest) ([]search.NGram, error) {
	docs, err := s.LoadDocuments(req.Inputs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ignore := req.Ignore
	if !req.NoDefaultIgnores {
		ignore = append(append([]string(nil), search.DefaultIgnoredWords...), req.Ignore...)
	}

	merged := make([]search.NGram, 0, 64)
	counts := make(map[string]int)
	for _, doc := range docs {
		grams, err := search.NGrams(transcript.Words(doc.Segments), req.N, ignore, req.Exact)
		if err != nil {
			return nil, err
		}
		for _, gram := range grams {
			counts[gram.Text] += gram.Count
		}
	}
	for text, count := range counts {
		merged = append(merged, search.NGram{Text: text, Count: count})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Count != merged[j].Count {
			return merged[i].Count > merged[j].Count
		}
		return merged[i].Text < merged[j].Text
	})
	return merged, nil
}
