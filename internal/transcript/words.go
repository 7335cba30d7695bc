package transcript

import "strings"

// Words flattens segments into a single time-ordered word stream.
// Segments that carry per-word timing contribute their words directly.
// Segments with only utterance-level timing get synthesized spans: the
// segment duration is divided evenly across its whitespace-split
// tokens, which keeps word-precision search usable on plain subtitle
// sources.
func Words(segments []Segment) []Word {
	var out []Word
	for _, seg := range segments {
		if seg.HasWords() {
			out = append(out, seg.Words...)
			continue
		}
		out = append(out, SynthesizeWords(seg)...)
	}
	return out
}

// SynthesizeWords distributes a segment's duration evenly over its
// tokens. Returns nil when the segment has no text.
func SynthesizeWords(seg Segment) []Word {
	tokens := strings.Fields(seg.Text)
	if len(tokens) == 0 {
		return nil
	}
	perWord := seg.Duration() / float64(len(tokens))
	words := make([]Word, len(tokens))
	for i, token := range tokens {
		words[i] = Word{
			Text:    token,
			Start:   seg.Start + float64(i)*perWord,
			End:     seg.Start + float64(i+1)*perWord,
			Speaker: seg.Speaker,
		}
	}
	return words
}
