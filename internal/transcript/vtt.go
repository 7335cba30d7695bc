package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// wordCuePattern matches inline word timestamps such as <00:00:01.240>.
// Auto-generated captions interleave these with the cue text to give
// per-word timing.
var (
	wordCuePattern = regexp.MustCompile(`<(\d\d:\d\d:\d\d(?:\.\d+)?)>`)
	markupPattern  = regexp.MustCompile(`<[^>]*>`)
	clockPattern   = regexp.MustCompile(`\d\d:\d\d:\d\d`)
)

const cueArrowMarker = " --> "

// parseVTT reads WebVTT data. Files whose cue text carries inline word
// timestamps parse into word-cued segments; plain files parse into
// segment-level cues only.
func parseVTT(data []byte) ([]Segment, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	type cuedLine struct {
		timing string
		text   string
	}
	var (
		cued       []cuedLine
		lastTiming string
	)
	for _, line := range strings.Split(content, "\n") {
		if !clockPattern.MatchString(line) {
			continue
		}
		if wordCuePattern.MatchString(line) {
			if lastTiming != "" {
				cued = append(cued, cuedLine{timing: lastTiming, text: line})
			}
			continue
		}
		if strings.Contains(line, cueArrowMarker) {
			lastTiming = line
		}
	}

	if len(cued) == 0 {
		return parseUncuedVTT(content)
	}

	segments := make([]Segment, 0, len(cued))
	for _, line := range cued {
		segStart, segEnd, err := parseCueTiming(line.timing)
		if err != nil {
			return nil, err
		}

		// Split the text on word timestamps. The split yields one more
		// text chunk than timestamps: text before the first tag, then a
		// chunk after each tag.
		tags := wordCuePattern.FindAllStringSubmatchIndex(line.text, -1)
		chunks := make([]string, 0, len(tags)+1)
		times := make([]float64, 0, len(tags))
		prev := 0
		for _, m := range tags {
			chunks = append(chunks, line.text[prev:m[0]])
			secs, err := parseVTTTimestamp(line.text[m[2]:m[3]])
			if err != nil {
				return nil, err
			}
			times = append(times, secs)
			prev = m[1]
		}
		chunks = append(chunks, line.text[prev:])

		seg := Segment{Start: segStart, End: segEnd}
		current := segStart
		for i, chunk := range chunks {
			next := segEnd
			if i < len(times) {
				next = times[i]
			}
			chunk = markupPattern.ReplaceAllString(chunk, "")
			for _, token := range strings.Fields(chunk) {
				seg.Words = append(seg.Words, Word{Text: token, Start: current, End: next})
			}
			if i < len(times) {
				current = times[i]
			}
		}
		if len(seg.Words) == 0 {
			continue
		}
		segments = append(segments, seg)
	}
	return normalize(segments), nil
}

// parseUncuedVTT reads plain WebVTT cue blocks: a timing line followed
// by one or more text lines. Header material before the first timing
// line and numeric cue identifiers are dropped.
func parseUncuedVTT(content string) ([]Segment, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	var segments []Segment
	for i, line := range lines {
		if strings.Contains(line, cueArrowMarker) {
			start, end, err := parseCueTiming(line)
			if err != nil {
				return nil, err
			}
			segments = append(segments, Segment{Start: start, End: end})
			continue
		}
		if len(segments) == 0 {
			continue
		}
		if isDigits(line) && i+1 < len(lines) && strings.Contains(lines[i+1], cueArrowMarker) {
			continue
		}
		seg := &segments[len(segments)-1]
		text := markupPattern.ReplaceAllString(line, "")
		if seg.Text == "" {
			seg.Text = text
		} else {
			seg.Text += " " + text
		}
	}
	return normalize(segments), nil
}

// parseCueTiming splits a "start --> end" line. Cue settings after the
// end timestamp are ignored.
func parseCueTiming(line string) (float64, float64, error) {
	parts := strings.SplitN(strings.TrimSpace(line), cueArrowMarker, 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cue timing %q", line)
	}
	start, err := parseVTTTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("invalid cue timing %q", line)
	}
	end, err := parseVTTTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseVTTTimestamp converts HH:MM:SS.mmm (or MM:SS.mmm) to seconds.
func parseVTTTimestamp(value string) (float64, error) {
	fields := strings.Split(value, ":")
	if len(fields) != 2 && len(fields) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	var seconds float64
	for _, field := range fields {
		n, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		seconds = seconds*60 + n
	}
	return seconds, nil
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
