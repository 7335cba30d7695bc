package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// parseSRT reads SubRip data: blank-line separated blocks of an index
// line, a timing line, and one or more text lines. The index line is
// optional; some tools omit it.
func parseSRT(data []byte) ([]Segment, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var segments []Segment
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		idx := 0
		if isDigits(strings.TrimSpace(lines[idx])) {
			idx++
		}
		if idx >= len(lines) {
			continue
		}
		timing := strings.TrimSpace(lines[idx])
		if !strings.Contains(timing, "-->") {
			return nil, fmt.Errorf("srt block missing timing line: %q", block)
		}
		parts := strings.SplitN(timing, "-->", 2)
		start, err := parseSRTTimestamp(parts[0])
		if err != nil {
			return nil, err
		}
		endField := strings.Fields(parts[1])
		if len(endField) == 0 {
			return nil, fmt.Errorf("srt block missing end timestamp: %q", timing)
		}
		end, err := parseSRTTimestamp(endField[0])
		if err != nil {
			return nil, err
		}

		var text []string
		for _, line := range lines[idx+1:] {
			line = strings.TrimSpace(markupPattern.ReplaceAllString(line, ""))
			if line != "" {
				text = append(text, line)
			}
		}
		segments = append(segments, Segment{
			Text:  strings.Join(text, " "),
			Start: start,
			End:   end,
		})
	}
	return normalize(segments), nil
}

// parseSRTTimestamp converts HH:MM:SS,mmm to seconds. A period before
// the milliseconds is accepted since several tools emit it.
func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millisText := timeParts[1]
	for len(millisText) < 3 {
		millisText += "0"
	}
	millis, errMS := strconv.Atoi(millisText[:3])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
