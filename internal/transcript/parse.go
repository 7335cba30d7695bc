package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voxcut/internal/services"
)

// Extensions lists the transcript formats Parse understands, in the
// order sidecar discovery prefers them.
var Extensions = []string{".json", ".vtt", ".srt"}

// Parse reads a transcript file and returns its segments ordered by
// start time. The format is chosen by file extension: .json for
// per-word aligner output, .vtt for WebVTT, .srt for SubRip.
func Parse(path string) ([]Segment, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".vtt", ".srt":
	default:
		return nil, services.Wrap(services.ErrUnsupportedFormat, "transcript", "parse",
			fmt.Sprintf("no parser for %q files", ext), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "transcript", "parse",
			fmt.Sprintf("read %s", path), err)
	}
	segments, err := ParseBytes(data, ext)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "transcript", "parse", path, err)
	}
	return segments, nil
}

// ParseBytes parses transcript data already in memory. The ext argument
// selects the format exactly as Parse does for files.
func ParseBytes(data []byte, ext string) ([]Segment, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return parseJSON(data)
	case ".vtt":
		return parseVTT(data)
	case ".srt":
		return parseSRT(data)
	default:
		return nil, services.Wrap(services.ErrUnsupportedFormat, "transcript", "parse",
			fmt.Sprintf("no parser for %q files", ext), nil)
	}
}

type wireWord struct {
	Word    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type wireSegment struct {
	Text    string     `json:"text"`
	Content string     `json:"content"`
	Start   float64    `json:"start"`
	End     float64    `json:"end"`
	Speaker string     `json:"speaker"`
	Words   []wireWord `json:"words"`
}

type wirePayload struct {
	Segments []wireSegment `json:"segments"`
}

// parseJSON accepts the aligner envelope {"segments": [...]} as well as
// a bare top-level array of segments, which older transcript caches
// used. Segment text may live under "text" or "content".
func parseJSON(data []byte) ([]Segment, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty json transcript")
	}

	var raw []wireSegment
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("parse json transcript: %w", err)
		}
	case '{':
		var payload wirePayload
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("parse json transcript: %w", err)
		}
		if payload.Segments == nil {
			return nil, fmt.Errorf("json transcript has no segments field")
		}
		raw = payload.Segments
	default:
		return nil, fmt.Errorf("json transcript must be an object or array")
	}

	segments := make([]Segment, 0, len(raw))
	for _, ws := range raw {
		text := ws.Text
		if strings.TrimSpace(text) == "" {
			text = ws.Content
		}
		seg := Segment{
			Text:    text,
			Start:   ws.Start,
			End:     ws.End,
			Speaker: ws.Speaker,
		}
		for _, ww := range ws.Words {
			seg.Words = append(seg.Words, Word{
				Text:    ww.Word,
				Start:   ww.Start,
				End:     ww.End,
				Speaker: ww.Speaker,
			})
		}
		segments = append(segments, seg)
	}
	return normalize(segments), nil
}
