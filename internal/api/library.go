package api

import (
	"context"
	"os/exec"

	"voxcut/internal/embed"
	"voxcut/internal/library"
	"voxcut/internal/logging"
	"voxcut/internal/media/ffprobe"
	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// OpenLibrary opens the transcript library. Callers own the returned
// store and must Close it.
func (s *Service) OpenLibrary() (*library.Store, error) {
	if !s.cfg.Library.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "api", "library",
			"library is disabled; set enabled = true under [library]", nil)
	}
	return library.Open(s.cfg.LibraryDBPath())
}

// LibraryAddResult reports one completed library ingest.
type LibraryAddResult struct {
	Media    *library.Media
	Segments int
	Embedded bool
}

// LibraryAdd ingests a media file: its transcript is parsed and stored
// with the media row, and segment embeddings are cached when the
// embedding helper is available. Missing transcripts are an error
// here, unlike search, because an empty library row is useless.
func (s *Service) LibraryAdd(ctx context.Context, store *library.Store, mediaPath string) (LibraryAddResult, error) {
	ctx = services.WithOperation(ctx, "library add")
	ctx = services.WithMedia(ctx, mediaPath)

	doc, ok := s.loadDocument(mediaPath)
	if !ok {
		return LibraryAddResult{}, services.Wrap(services.ErrNotFound, "api", "library add",
			"no transcript found for "+mediaPath+"; run \"voxcut transcribe\" first", nil)
	}

	var duration float64
	if result, err := ffprobe.Inspect(ctx, s.cfg.Render.FFprobeBinary, doc.File); err == nil {
		duration = result.DurationSeconds()
	}

	media, err := store.AddMedia(ctx, doc.File, "", duration)
	if err != nil {
		return LibraryAddResult{}, err
	}
	if err := store.SaveTranscript(ctx, media.ID, doc.Segments); err != nil {
		return LibraryAddResult{}, err
	}

	result := LibraryAddResult{Media: media, Segments: len(doc.Segments)}
	result.Embedded = s.cacheEmbeddings(ctx, store, media.ID, doc.Segments)
	return result, nil
}

// cacheEmbeddings stores segment vectors when the embedding helper is
// on PATH. Failures only cost the cache, never the ingest.
func (s *Service) cacheEmbeddings(ctx context.Context, store *library.Store, mediaID string, segments []transcript.Segment) bool {
	binary := s.cfg.Search.EmbedBinary
	if _, err := exec.LookPath(binary); err != nil {
		return false
	}
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	client := embed.NewCLI(embed.WithBinary(binary), embed.WithModel(s.cfg.Search.EmbedModel))
	logger := logging.WithContext(ctx, s.logger)
	vectors, err := client.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		logger.Warn("embedding cache skipped", logging.Error(err))
		return false
	}
	if err := store.PutEmbeddings(ctx, mediaID, len(vectors[0]), vectors); err != nil {
		logger.Warn("embedding cache write failed", logging.Error(err))
		return false
	}
	return true
}

// LibrarySearch scans stored segment text.
func (s *Service) LibrarySearch(ctx context.Context, store *library.Store, query string, limit int) ([]library.TextHit, error) {
	return store.SearchText(ctx, query, limit)
}

// LibraryRank orders stored media by lexical similarity to the query.
func (s *Service) LibraryRank(ctx context.Context, store *library.Store, query string, limit int) ([]library.MediaScore, error) {
	return store.RankMedia(ctx, query, limit)
}
