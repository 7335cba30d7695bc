package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voxcut/internal/assemble"
	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// buildCaptions maps clip texts onto the fused output timeline.
// Crossfading transitions shorten the timeline at every join, so
// caption starts slide forward by the clamped overlap. Clips without
// text advance the cursor but emit no cue.
func buildCaptions(clips []assemble.Clip, transition Transition, transitionDuration float64) []transcript.Segment {
	segments := make([]transcript.Segment, 0, len(clips))
	cursor := 0.0
	for i, clip := range clips {
		if i > 0 && transition.overlapping() {
			cursor -= boundaryDuration(transitionDuration, clips[i-1].Duration(), clip.Duration())
		}
		end := cursor + clip.Duration()
		if clip.Text != "" {
			segments = append(segments, transcript.Segment{
				Start: cursor,
				End:   end,
				Text:  clip.Text,
			})
		}
		cursor = end
	}
	return segments
}

// writeCaptions renders the burn-in subtitle file into the scratch
// directory and returns its path. Unlike transcript.WriteSRT, which
// lays segments out back to back for sidecar exports, cues here keep
// the exact positions buildCaptions computed.
func (j *job) writeCaptions(clips []assemble.Clip) (string, error) {
	segments := buildCaptions(clips, j.spec.Transition, j.spec.TransitionDuration)

	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n",
			i+1,
			transcript.FormatSRTTimestamp(seg.Start),
			transcript.FormatSRTTimestamp(seg.End),
			seg.Text)
	}

	path := filepath.Join(j.workDir, "captions.srt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", services.Wrap(services.ErrExportFailed, "render", "captions", "write subtitle file", err)
	}
	return path, nil
}
