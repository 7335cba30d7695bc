package transcript

import (
	"sort"
	"strings"
)

// Word is one spoken word with its timing in seconds from the start of
// the source media.
type Word struct {
	Text    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// Duration returns the word span length in seconds.
func (w Word) Duration() float64 {
	return w.End - w.Start
}

// Segment is one utterance: contiguous speech with segment-level timing
// and, when the source format carries them, per-word spans.
type Segment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Words   []Word  `json:"words,omitempty"`
}

// Duration returns the segment span length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// HasWords reports whether the segment carries per-word timing.
func (s Segment) HasWords() bool {
	return len(s.Words) > 0
}

// normalize trims text, drops empty segments, repairs inverted or stray
// word timings, and orders segments by start time. Every parser funnels
// through here so downstream code can rely on the invariants.
func normalize(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" && len(seg.Words) == 0 {
			continue
		}
		if seg.End < seg.Start {
			seg.Start, seg.End = seg.End, seg.Start
		}
		seg.Words = normalizeWords(seg)
		if seg.Text == "" {
			seg.Text = joinWords(seg.Words)
		}
		out = append(out, seg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// normalizeWords clamps word spans into the parent segment. Aligners
// occasionally emit words with zeroed or out-of-range timings; those
// collapse onto the nearest segment boundary instead of poisoning
// downstream clip math.
func normalizeWords(seg Segment) []Word {
	if len(seg.Words) == 0 {
		return nil
	}
	words := make([]Word, 0, len(seg.Words))
	for _, w := range seg.Words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" {
			continue
		}
		if w.End < w.Start {
			w.Start, w.End = w.End, w.Start
		}
		if w.Start < seg.Start {
			w.Start = seg.Start
		}
		if w.Start > seg.End {
			w.Start = seg.End
		}
		if w.End > seg.End || w.End < w.Start {
			w.End = seg.End
		}
		if w.Speaker == "" {
			w.Speaker = seg.Speaker
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil
	}
	return words
}

func joinWords(words []Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}
