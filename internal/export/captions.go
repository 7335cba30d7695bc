package export

import (
	"bytes"

	"voxcut/internal/assemble"
	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// Segments converts clips to transcript segments in playlist order.
// The caption writers re-time them onto a continuous output timeline,
// so only the clip durations and text survive.
func Segments(clips []assemble.Clip) []transcript.Segment {
	segments := make([]transcript.Segment, 0, len(clips))
	for _, clip := range clips {
		segments = append(segments, transcript.Segment{
			Start: clip.Start,
			End:   clip.End,
			Text:  clip.Text,
		})
	}
	return segments
}

// WriteVTT writes WebVTT captions matching the rendered supercut.
func WriteVTT(path string, clips []assemble.Clip) error {
	var b bytes.Buffer
	if err := transcript.WriteVTT(&b, Segments(clips)); err != nil {
		return services.Wrap(services.ErrExportFailed, "export", "vtt", "render captions", err)
	}
	return write(path, "vtt", b.Bytes())
}

// WriteSRT writes SubRip captions matching the rendered supercut.
func WriteSRT(path string, clips []assemble.Clip) error {
	var b bytes.Buffer
	if err := transcript.WriteSRT(&b, Segments(clips)); err != nil {
		return services.Wrap(services.ErrExportFailed, "export", "srt", "render captions", err)
	}
	return write(path, "srt", b.Bytes())
}
