package transcript

import "testing"

func TestShiftMovesAllTimings(t *testing.T) {
	segments := []Segment{{
		Text:  "hello world",
		Start: 1.0,
		End:   3.0,
		Words: []Word{
			{Text: "hello", Start: 1.0, End: 2.0},
			{Text: "world", Start: 2.0, End: 3.0},
		},
	}}

	shifted := Shift(segments, 0.5)
	if !almostEqual(shifted[0].Start, 1.5) || !almostEqual(shifted[0].End, 3.5) {
		t.Fatalf("unexpected segment timing: %+v", shifted[0])
	}
	if !almostEqual(shifted[0].Words[1].Start, 2.5) {
		t.Fatalf("expected words shifted with segment, got %+v", shifted[0].Words[1])
	}
	if !almostEqual(segments[0].Start, 1.0) {
		t.Fatalf("expected input untouched, got %+v", segments[0])
	}
}

func TestShiftClampsNegativeStartToZero(t *testing.T) {
	segments := []Segment{{Text: "early", Start: 1.0, End: 3.0}}

	shifted := Shift(segments, -2.0)
	if !almostEqual(shifted[0].Start, 0) {
		t.Fatalf("expected start clamped to 0, got %v", shifted[0].Start)
	}
	if !almostEqual(shifted[0].End, 1.0) {
		t.Fatalf("expected end to keep the full offset, got %v", shifted[0].End)
	}
}

func TestWordsUsesExistingSpans(t *testing.T) {
	segments := []Segment{{
		Text:  "hi there",
		Start: 0,
		End:   2,
		Words: []Word{
			{Text: "hi", Start: 0, End: 0.7},
			{Text: "there", Start: 0.9, End: 2},
		},
	}}

	words := Words(segments)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if !almostEqual(words[0].End, 0.7) {
		t.Fatalf("expected original span preserved, got %+v", words[0])
	}
}

func TestWordsSynthesizesEvenSpans(t *testing.T) {
	segments := []Segment{{Text: "one two three", Start: 3.0, End: 6.0}}

	words := Words(segments)
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	for i, want := range []struct{ start, end float64 }{{3, 4}, {4, 5}, {5, 6}} {
		if !almostEqual(words[i].Start, want.start) || !almostEqual(words[i].End, want.end) {
			t.Fatalf("word %d: expected [%v, %v], got %+v", i, want.start, want.end, words[i])
		}
	}
}
