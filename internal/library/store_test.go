package library_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"voxcut/internal/library"
	"voxcut/internal/testsupport"
	"voxcut/internal/transcript"
)

func openStore(t *testing.T) *library.Store {
	t.Helper()
	return testsupport.MustOpenLibrary(t, testsupport.NewConfig(t))
}

func sampleSegments() []transcript.Segment {
	return []transcript.Segment{
		{
			Text:    "the weather today is cold",
			Start:   0,
			End:     2.5,
			Speaker: "SPEAKER_00",
			Words: []transcript.Word{
				{Text: "the", Start: 0, End: 0.2},
				{Text: "weather", Start: 0.2, End: 0.8},
				{Text: "today", Start: 0.8, End: 1.3},
				{Text: "is", Start: 1.3, End: 1.5},
				{Text: "cold", Start: 1.5, End: 2.5},
			},
		},
		{Text: "bring a warm coat", Start: 3, End: 4.8},
	}
}

func TestOpenCreatesSchemaAndRoundTrips(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")
	store, err := library.Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ctx := context.Background()
	media, err := store.AddMedia(ctx, "/media/forecast.mp4", "Forecast", 120.5)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	if media.ID == "" {
		t.Fatal("expected media ID to be assigned")
	}
	if media.Title != "Forecast" || media.Duration != 120.5 {
		t.Fatalf("unexpected media row: %+v", media)
	}
	if media.AddedAt.IsZero() {
		t.Fatal("added_at not recorded")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := library.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	fetched, err := reopened.GetMediaByPath(ctx, "/media/forecast.mp4")
	if err != nil {
		t.Fatalf("GetMediaByPath failed: %v", err)
	}
	if fetched == nil || fetched.ID != media.ID {
		t.Fatalf("media lost across reopen: %#v", fetched)
	}
}

func TestAddMediaRefreshesExistingPath(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.AddMedia(ctx, "/media/talk.mp4", "", 60)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	if first.Title != "talk" {
		t.Fatalf("title should fall back to the file stem, got %q", first.Title)
	}

	second, err := store.AddMedia(ctx, "/media/talk.mp4", "Conference Talk", 61.5)
	if err != nil {
		t.Fatalf("second AddMedia failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("refresh must keep the row id: %q vs %q", second.ID, first.ID)
	}
	if second.Title != "Conference Talk" || second.Duration != 61.5 {
		t.Fatalf("refresh did not update fields: %+v", second)
	}

	entries, err := store.ListMedia(ctx)
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
}

func TestSaveAndLoadTranscript(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	media, err := store.AddMedia(ctx, "/media/forecast.mp4", "Forecast", 120)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	if err := store.SaveTranscript(ctx, media.ID, sampleSegments()); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	segments, err := store.LoadTranscript(ctx, media.ID)
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != "the weather today is cold" || segments[0].Speaker != "SPEAKER_00" {
		t.Fatalf("segment fields lost: %+v", segments[0])
	}
	if len(segments[0].Words) != 5 || segments[0].Words[1].Text != "weather" {
		t.Fatalf("word timings lost: %+v", segments[0].Words)
	}
	if segments[1].Start != 3 || segments[1].End != 4.8 {
		t.Fatalf("timings lost: %+v", segments[1])
	}

	// Re-saving replaces rather than appends.
	if err := store.SaveTranscript(ctx, media.ID, sampleSegments()[:1]); err != nil {
		t.Fatalf("re-save failed: %v", err)
	}
	segments, err = store.LoadTranscript(ctx, media.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("re-save should replace, got %d segments", len(segments))
	}
}

func TestSearchText(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	forecast, err := store.AddMedia(ctx, "/media/forecast.mp4", "Forecast", 120)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	cooking, err := store.AddMedia(ctx, "/media/cooking.mp4", "Cooking", 90)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	if err := store.SaveTranscript(ctx, forecast.ID, sampleSegments()); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}
	if err := store.SaveTranscript(ctx, cooking.ID, []transcript.Segment{
		{Text: "whisk until 100% combined", Start: 1, End: 3},
		{Text: "rest for 100 minutes", Start: 4, End: 6},
	}); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	hits, err := store.SearchText(ctx, "WEATHER", 0)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected one hit, got %d", len(hits))
	}
	if hits[0].MediaPath != "/media/forecast.mp4" || hits[0].Segment.Start != 0 {
		t.Fatalf("unexpected hit: %+v", hits[0])
	}
	if len(hits[0].Segment.Words) != 5 {
		t.Fatalf("hit should carry word timings: %+v", hits[0].Segment)
	}

	// LIKE wildcards in the query match literally.
	hits, err = store.SearchText(ctx, "100%", 0)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Segment.Text != "whisk until 100% combined" {
		t.Fatalf("percent sign should not act as a wildcard: %+v", hits)
	}

	hits, err = store.SearchText(ctx, "  ", 0)
	if err != nil || hits != nil {
		t.Fatalf("blank query should return nothing, got %v, %v", hits, err)
	}
}

func TestSearchTextLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	media, err := store.AddMedia(ctx, "/media/loop.mp4", "Loop", 60)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	segments := make([]transcript.Segment, 10)
	for i := range segments {
		segments[i] = transcript.Segment{Text: "again and again", Start: float64(i), End: float64(i) + 0.5}
	}
	if err := store.SaveTranscript(ctx, media.ID, segments); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	hits, err := store.SearchText(ctx, "again", 3)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("limit ignored: got %d hits", len(hits))
	}
}

func TestRemoveMediaCascades(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	media, err := store.AddMedia(ctx, "/media/forecast.mp4", "Forecast", 120)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	if err := store.SaveTranscript(ctx, media.ID, sampleSegments()); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}
	if err := store.PutEmbeddings(ctx, media.ID, 3, [][]float32{{1, 0, 0}, {0, 1, 0}}); err != nil {
		t.Fatalf("PutEmbeddings failed: %v", err)
	}

	removed, err := store.RemoveMedia(ctx, media.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveMedia = %v, %v", removed, err)
	}

	if got, err := store.GetMedia(ctx, media.ID); err != nil || got != nil {
		t.Fatalf("media should be gone, got %#v, %v", got, err)
	}
	segments, err := store.LoadTranscript(ctx, media.ID)
	if err != nil || len(segments) != 0 {
		t.Fatalf("segments should cascade away, got %d, %v", len(segments), err)
	}
	vectors, _, err := store.LoadEmbeddings(ctx, media.ID)
	if err != nil || len(vectors) != 0 {
		t.Fatalf("embeddings should cascade away, got %d, %v", len(vectors), err)
	}

	removed, err = store.RemoveMedia(ctx, media.ID)
	if err != nil || removed {
		t.Fatalf("second remove should report nothing deleted, got %v, %v", removed, err)
	}
}

func TestEmbeddingsRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	media, err := store.AddMedia(ctx, "/media/forecast.mp4", "Forecast", 120)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}

	vectors := [][]float32{
		{0.25, -1.5, 3.75, 0},
		{1e-6, 42.5, -0.125, 2},
	}
	if err := store.PutEmbeddings(ctx, media.ID, 4, vectors); err != nil {
		t.Fatalf("PutEmbeddings failed: %v", err)
	}

	loaded, dim, err := store.LoadEmbeddings(ctx, media.ID)
	if err != nil {
		t.Fatalf("LoadEmbeddings failed: %v", err)
	}
	if dim != 4 || len(loaded) != 2 {
		t.Fatalf("unexpected shape: dim=%d rows=%d", dim, len(loaded))
	}
	for i := range vectors {
		for j := range vectors[i] {
			if loaded[i][j] != vectors[i][j] {
				t.Fatalf("vector[%d][%d] = %v, want %v", i, j, loaded[i][j], vectors[i][j])
			}
		}
	}

	if err := store.PutEmbeddings(ctx, media.ID, 3, [][]float32{{1, 2}}); err == nil {
		t.Fatal("dimension mismatch should be rejected")
	}

	// Replacing shrinks the cache to the new set.
	if err := store.PutEmbeddings(ctx, media.ID, 2, [][]float32{{9, 9}}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	loaded, dim, err = store.LoadEmbeddings(ctx, media.ID)
	if err != nil || dim != 2 || len(loaded) != 1 {
		t.Fatalf("replace result: dim=%d rows=%d err=%v", dim, len(loaded), err)
	}
}

func TestRankMedia(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	forecast, err := store.AddMedia(ctx, "/media/forecast.mp4", "Forecast", 120)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	cooking, err := store.AddMedia(ctx, "/media/cooking.mp4", "Cooking", 90)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	if err := store.SaveTranscript(ctx, forecast.ID, []transcript.Segment{
		{Text: "the weather forecast calls for heavy snowfall tonight", Start: 0, End: 3},
		{Text: "bundle up before heading outside", Start: 3, End: 5},
	}); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}
	if err := store.SaveTranscript(ctx, cooking.ID, []transcript.Segment{
		{Text: "fold the butter into the dough gently", Start: 0, End: 3},
		{Text: "bake until golden brown", Start: 3, End: 5},
	}); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	scores, err := store.RankMedia(ctx, "weather forecast snowfall", 0)
	if err != nil {
		t.Fatalf("RankMedia failed: %v", err)
	}
	if len(scores) == 0 {
		t.Fatal("expected at least one ranked entry")
	}
	if scores[0].Media.Path != "/media/forecast.mp4" {
		t.Fatalf("forecast should rank first, got %+v", scores[0])
	}
	for _, score := range scores {
		if score.Media.Path == "/media/cooking.mp4" && score.Score >= scores[0].Score {
			t.Fatalf("cooking should not outrank forecast: %+v", scores)
		}
	}

	scores, err = store.RankMedia(ctx, "", 0)
	if err != nil || scores != nil {
		t.Fatalf("empty query should return nothing, got %v, %v", scores, err)
	}
}

func TestRankMediaSingleEntry(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	only, err := store.AddMedia(ctx, "/media/only.mp4", "Only", 60)
	if err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}
	if err := store.SaveTranscript(ctx, only.ID, []transcript.Segment{
		{Text: "the weather forecast calls for snow", Start: 0, End: 3},
	}); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	// One entry means every matching term has zero IDF; ranking must
	// still surface the obvious hit.
	scores, err := store.RankMedia(ctx, "weather forecast", 0)
	if err != nil {
		t.Fatalf("RankMedia failed: %v", err)
	}
	if len(scores) != 1 || scores[0].Media.Path != "/media/only.mp4" {
		t.Fatalf("expected the only entry ranked, got %+v", scores)
	}
	if scores[0].Score <= 0 {
		t.Fatalf("score = %v, want positive", scores[0].Score)
	}
}

func TestOpenRejectsFutureSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")
	store, err := library.Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("raw open failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("raw close failed: %v", err)
	}

	_, err = library.Open(dbPath)
	if !errors.Is(err, library.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
