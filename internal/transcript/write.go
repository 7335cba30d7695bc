package transcript

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// WriteVTT renders segments as WebVTT cues on a continuous timeline
// starting at zero, the shape a compilation of the segments plays back
// in. Segments carrying word spans emit inline word timestamps, so the
// output parses back with per-word timing intact.
func WriteVTT(w io.Writer, segments []Segment) error {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	cursor := 0.0
	for i, seg := range segments {
		start := cursor
		end := start + seg.Duration()
		fmt.Fprintf(&b, "\n%d\n%s --> %s\n%s\n",
			i, FormatVTTTimestamp(start), FormatVTTTimestamp(end), cueText(seg, start))
		cursor = end
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSRT renders segments as SubRip blocks on the same continuous
// timeline WriteVTT uses. Word spans are dropped; SubRip has no word
// cue syntax.
func WriteSRT(w io.Writer, segments []Segment) error {
	var b strings.Builder
	cursor := 0.0
	for i, seg := range segments {
		start := cursor
		end := start + seg.Duration()
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n",
			i+1, FormatSRTTimestamp(start), FormatSRTTimestamp(end), seg.Text)
		cursor = end
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// cueText renders a segment's cue body. With word spans present the
// words are interleaved with remapped timestamps: the first word rides
// the cue start, each later word is introduced by its own tag.
func cueText(seg Segment, cueStart float64) string {
	if !seg.HasWords() {
		return seg.Text
	}
	offset := cueStart - seg.Start
	var b strings.Builder
	for i, word := range seg.Words {
		if i > 0 {
			fmt.Fprintf(&b, "<%s> ", FormatVTTTimestamp(word.Start+offset))
		}
		b.WriteString(word.Text)
	}
	return b.String()
}

// FormatVTTTimestamp renders seconds as a WebVTT clock value.
func FormatVTTTimestamp(secs float64) string {
	h, m, s, ms := splitClock(secs)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// FormatSRTTimestamp renders seconds as a SubRip clock value.
func FormatSRTTimestamp(secs float64) string {
	h, m, s, ms := splitClock(secs)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func splitClock(secs float64) (int, int, int, int) {
	if secs < 0 {
		secs = 0
	}
	total := int(math.Round(secs * 1000))
	ms := total % 1000
	rest := total / 1000
	return rest / 3600, (rest / 60) % 60, rest % 60, ms
}
