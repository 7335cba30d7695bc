package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"voxcut/internal/transcript"
)

// SampleSegments returns a tiny transcript with word timings suitable
// for search and assembly tests.
func SampleSegments() []transcript.Segment {
	return []transcript.Segment{
		{
			Text:  "the weather today is cold",
			Start: 0,
			End:   2.5,
			Words: []transcript.Word{
				{Text: "the", Start: 0, End: 0.2},
				{Text: "weather", Start: 0.2, End: 0.8},
				{Text: "today", Start: 0.8, End: 1.3},
				{Text: "is", Start: 1.3, End: 1.5},
				{Text: "cold", Start: 1.5, End: 2.5},
			},
		},
		{
			Text:  "bring a warm coat",
			Start: 3,
			End:   4.8,
			Words: []transcript.Word{
				{Text: "bring", Start: 3, End: 3.4},
				{Text: "a", Start: 3.4, End: 3.5},
				{Text: "warm", Start: 3.5, End: 4},
				{Text: "coat", Start: 4, End: 4.8},
			},
		},
	}
}

// WriteTranscriptJSON writes segments to path as the aligner JSON
// envelope, creating parent directories as needed.
func WriteTranscriptJSON(t testing.TB, path string, segments []transcript.Segment) {
	t.Helper()

	envelope := struct {
		Segments []transcript.Segment `json:"segments"`
	}{Segments: segments}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write transcript %s: %v", path, err)
	}
}
