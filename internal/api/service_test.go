package api

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"voxcut/internal/search"
	"voxcut/internal/services"
	"voxcut/internal/testsupport"
	"voxcut/internal/transcript"
)

func newTestService(t *testing.T, opts ...testsupport.ConfigOption) *Service {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	svc, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// fixtureMedia writes a fake media file with a transcript sidecar and
// returns the media path.
func fixtureMedia(t *testing.T, dir, stem string, segments []transcript.Segment) string {
	t.Helper()
	media := filepath.Join(dir, stem+".mp4")
	testsupport.WriteFile(t, media, 1024)
	testsupport.WriteTranscriptJSON(t, filepath.Join(dir, stem+".json"), segments)
	return media
}

func TestNewServiceRequiresConfig(t *testing.T) {
	if _, err := NewService(nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestLoadDocumentsMediaAndTranscriptInputs(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	media := fixtureMedia(t, dir, "talk", testsupport.SampleSegments())

	// A media path resolves through its sidecar.
	docs, err := svc.LoadDocuments([]string{media})
	if err != nil {
		t.Fatalf("LoadDocuments(media): %v", err)
	}
	if len(docs) != 1 || docs[0].File != media || len(docs[0].Segments) != 2 {
		t.Fatalf("unexpected documents: %+v", docs)
	}

	// The transcript path itself resolves back to the media sibling.
	docs, err = svc.LoadDocuments([]string{filepath.Join(dir, "talk.json")})
	if err != nil {
		t.Fatalf("LoadDocuments(transcript): %v", err)
	}
	if len(docs) != 1 || docs[0].File != media {
		t.Fatalf("expected media sibling %s, got %+v", media, docs)
	}
}

func TestLoadDocumentsSkipsInputsWithoutTranscripts(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	bare := filepath.Join(dir, "untranscribed.mp4")
	testsupport.WriteFile(t, bare, 1024)
	good := fixtureMedia(t, dir, "talk", testsupport.SampleSegments())

	docs, err := svc.LoadDocuments([]string{bare, good})
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].File != good {
		t.Fatalf("expected only the transcribed input, got %+v", docs)
	}
}

func TestLoadDocumentsAllMissing(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	bare := filepath.Join(dir, "untranscribed.mp4")
	testsupport.WriteFile(t, bare, 1024)

	if _, err := svc.LoadDocuments([]string{bare}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.LoadDocuments(nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for empty input list", err)
	}
}

func TestSearchSentenceMode(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	media := fixtureMedia(t, dir, "talk", testsupport.SampleSegments())

	result, err := svc.Search(context.Background(), SearchRequest{
		Inputs: []string{media},
		Query:  "weather",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Mode != search.ModeSentence {
		t.Fatalf("mode = %q, want sentence", result.Mode)
	}
	if len(result.Matches) != 1 || result.Matches[0].Text != "the weather today is cold" {
		t.Fatalf("unexpected matches: %+v", result.Matches)
	}
	if result.Matches[0].File != media {
		t.Fatalf("match file = %q, want %q", result.Matches[0].File, media)
	}
}

func TestSearchRejectsUnknownMode(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Search(context.Background(), SearchRequest{
		Inputs: []string{"whatever.mp4"},
		Query:  "x",
		Mode:   "telepathic",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestNGramsMergesAcrossInputs(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	first := fixtureMedia(t, dir, "one", testsupport.SampleSegments())
	second := fixtureMedia(t, dir, "two", testsupport.SampleSegments())

	grams, err := svc.NGrams(context.Background(), NGramsRequest{
		Inputs: []string{first, second},
		N:      1,
	})
	if err != nil {
		t.Fatalf("NGrams: %v", err)
	}
	counts := make(map[string]int, len(grams))
	for _, gram := range grams {
		counts[gram.Text] = gram.Count
	}
	if counts["weather"] != 2 {
		t.Fatalf("weather count = %d, want 2 (one per input): %+v", counts["weather"], grams)
	}
	if _, ok := counts["the"]; ok {
		t.Fatalf("default ignore list not applied: %+v", grams)
	}

	grams, err = svc.NGrams(context.Background(), NGramsRequest{
		Inputs:           []string{first},
		N:                1,
		NoDefaultIgnores: true,
	})
	if err != nil {
		t.Fatalf("NGrams without ignores: %v", err)
	}
	counts = make(map[string]int, len(grams))
	for _, gram := range grams {
		counts[gram.Text] = gram.Count
	}
	if counts["the"] != 1 {
		t.Fatalf("expected \"the\" kept without default ignores: %+v", grams)
	}
}

func TestAssembleClipsPadsAndCaps(t *testing.T) {
	svc := newTestService(t)
	pad := 0.2
	matches := []search.Match{
		{File: "a.mp4", Start: 1, End: 2, Text: "one"},
		{File: "a.mp4", Start: 10, End: 11, Text: "two"},
		{File: "a.mp4", Start: 20, End: 21, Text: "three"},
	}

	clips, err := svc.AssembleClips(context.Background(), AssembleRequest{
		Matches:  matches,
		Mode:     search.ModeSentence,
		Padding:  &pad,
		MaxClips: 2,
	})
	if err != nil {
		t.Fatalf("AssembleClips: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("clip count = %d, want 2", len(clips))
	}
	if clips[0].Start != 0.8 || clips[0].End != 2.2 {
		t.Fatalf("padding not applied: %+v", clips[0])
	}
}

func TestSupercutNoMatches(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()
	media := fixtureMedia(t, dir, "talk", testsupport.SampleSegments())

	_, err := svc.Supercut(context.Background(), SupercutRequest{
		Inputs:     []string{media},
		Query:      "unicorn",
		OutputPath: filepath.Join(dir, "out.mp4"),
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
