package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"voxcut/internal/assemble"
)

var commandContext = exec.CommandContext

const (
	videoBitrate   = "8000k"
	audioBitrate   = "192k"
	audioSmoothing = 0.05
)

// audioCodecs maps audio-only output extensions to their ffmpeg
// encoder. A bitrate is applied only to the lossy entries.
var audioCodecs = map[string]string{
	".mp3":  "libmp3lame",
	".m4a":  "aac",
	".aac":  "aac",
	".wav":  "pcm_s16le",
	".flac": "flac",
	".ogg":  "libvorbis",
	".opus": "libopus",
}

var losslessAudio = map[string]bool{
	"pcm_s16le": true,
	"flac":      true,
}

// IsAudioOutput reports whether the output path names an audio-only
// container, which drops the video stream from the supercut.
func IsAudioOutput(path string) bool {
	_, ok := audioCodecs[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (j *job) audioCodec() string {
	if codec, ok := audioCodecs[j.ext]; ok {
		return codec
	}
	return "aac"
}

// fusedInput is one already-encoded piece handed to a fuse step.
type fusedInput struct {
	path     string
	duration float64
}

// extractClip re-encodes one clip span into dest, normalized to the
// job canvas so later fuse steps can join without stream mismatches.
func (j *job) extractClip(ctx context.Context, clip assemble.Clip, dest string) error {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-ss", formatSeconds(clip.Start),
		"-to", formatSeconds(clip.End),
		"-i", clip.File,
	}

	duration := clip.Duration()
	fade := 0.0
	if j.spec.Transition == TransitionFadeToBlack {
		fade = boundaryDuration(j.spec.TransitionDuration, duration, duration)
	}

	if j.audioOnly {
		args = append(args, "-vn")
	} else {
		filters := []string{
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", j.canvas.width, j.canvas.height),
			fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", j.canvas.width, j.canvas.height),
			"setsar=1",
			"fps=" + j.canvas.frameRate,
		}
		if fade > 0 {
			filters = append(filters,
				fmt.Sprintf("fade=t=in:st=0:d=%s", formatSeconds(fade)),
				fmt.Sprintf("fade=t=out:st=%s:d=%s", formatSeconds(duration-fade), formatSeconds(fade)))
		}
		args = append(args, "-vf", strings.Join(filters, ","))
		args = append(args, "-c:v", j.spec.Encoder, "-b:v", videoBitrate, "-pix_fmt", "yuv420p")
		if j.spec.Encoder == "libx264" {
			args = append(args, "-preset", "medium")
		}
	}

	if j.hasAudio {
		if af := j.audioFilters(duration, fade); len(af) > 0 {
			args = append(args, "-af", strings.Join(af, ","))
		}
		codec := j.audioCodec()
		args = append(args, "-c:a", codec)
		if !losslessAudio[codec] {
			args = append(args, "-b:a", audioBitrate)
		}
		args = append(args, "-ar", "48000", "-ac", "2")
	} else {
		args = append(args, "-an")
	}

	args = append(args, "-y", dest)
	return j.renderer.runFFmpeg(ctx, args, nil)
}

// audioFilters returns the afade chain for one clip. Fade-to-black
// mirrors the video fade; cut joins get a short smoothing fade so
// concatenation does not pop.
func (j *job) audioFilters(duration, fade float64) []string {
	if fade <= 0 && j.spec.Transition == TransitionCut && duration > 2*audioSmoothing {
		fade = audioSmoothing
	}
	if fade <= 0 {
		return nil
	}
	return []string{
		fmt.Sprintf("afade=t=in:st=0:d=%s", formatSeconds(fade)),
		fmt.Sprintf("afade=t=out:st=%s:d=%s", formatSeconds(duration-fade), formatSeconds(fade)),
	}
}

// fuse joins the inputs into dest. Cut and fade-to-black use the
// concat demuxer with stream copy; crossfade and dissolve build an
// xfade filter graph and re-encode. A non-empty burn path forces a
// re-encode with the subtitles filter applied.
func (j *job) fuse(ctx context.Context, inputs []fusedInput, dest, burn string, onProgress func(float64)) error {
	if len(inputs) == 0 {
		return fmt.Errorf("nothing to fuse")
	}
	if j.spec.Transition.overlapping() && len(inputs) > 1 {
		return j.fuseCrossfade(ctx, inputs, dest, burn, onProgress)
	}
	return j.fuseConcat(ctx, inputs, dest, burn, onProgress)
}

func (j *job) fuseConcat(ctx context.Context, inputs []fusedInput, dest, burn string, onProgress func(float64)) error {
	list := filepath.Join(j.workDir, filepath.Base(dest)+".txt")
	if err := writeConcatList(list, inputs); err != nil {
		return err
	}

	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", list,
	}
	if burn != "" {
		args = append(args, "-vf", "subtitles="+filterPath(burn))
		args = append(args, "-c:v", j.spec.Encoder, "-b:v", videoBitrate, "-pix_fmt", "yuv420p")
		if j.spec.Encoder == "libx264" {
			args = append(args, "-preset", "medium")
		}
		args = append(args, "-c:a", "copy")
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, "-y", dest)
	return j.renderer.runFFmpeg(ctx, args, onProgress)
}

func (j *job) fuseCrossfade(ctx context.Context, inputs []fusedInput, dest, burn string, onProgress func(float64)) error {
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	for _, in := range inputs {
		args = append(args, "-i", in.path)
	}

	graph, videoLabel, audioLabel := j.crossfadeGraph(inputs, burn)
	args = append(args, "-filter_complex", graph)
	if videoLabel != "" {
		args = append(args, "-map", "["+videoLabel+"]")
		args = append(args, "-c:v", j.spec.Encoder, "-b:v", videoBitrate, "-pix_fmt", "yuv420p")
		if j.spec.Encoder == "libx264" {
			args = append(args, "-preset", "medium")
		}
	}
	if audioLabel != "" {
		args = append(args, "-map", "["+audioLabel+"]")
		codec := j.audioCodec()
		args = append(args, "-c:a", codec)
		if !losslessAudio[codec] {
			args = append(args, "-b:a", audioBitrate)
		}
	}
	args = append(args, "-y", dest)
	return j.renderer.runFFmpeg(ctx, args, onProgress)
}

// crossfadeGraph chains xfade and acrossfade across the inputs.
// Offsets accumulate on the fused timeline, each join shortened by the
// clamped transition length.
func (j *job) crossfadeGraph(inputs []fusedInput, burn string) (graph, videoLabel, audioLabel string) {
	curve := "fade"
	if j.spec.Transition == TransitionDissolve {
		curve = "dissolve"
	}

	var b strings.Builder
	video := !j.audioOnly
	audio := j.hasAudio

	if video {
		label := "0:v"
		timeline := inputs[0].duration
		for i := 1; i < len(inputs); i++ {
			d := boundaryDuration(j.spec.TransitionDuration, inputs[i-1].duration, inputs[i].duration)
			next := fmt.Sprintf("v%d", i)
			fmt.Fprintf(&b, "[%s][%d:v]xfade=transition=%s:duration=%s:offset=%s[%s];",
				label, i, curve, formatSeconds(d), formatSeconds(timeline-d), next)
			timeline += inputs[i].duration - d
			label = next
		}
		if burn != "" {
			fmt.Fprintf(&b, "[%s]subtitles=%s[vout];", label, filterPath(burn))
			label = "vout"
		}
		videoLabel = label
	}

	if audio {
		label := "0:a"
		for i := 1; i < len(inputs); i++ {
			d := boundaryDuration(j.spec.TransitionDuration, inputs[i-1].duration, inputs[i].duration)
			next := fmt.Sprintf("a%d", i)
			fmt.Fprintf(&b, "[%s][%d:a]acrossfade=d=%s[%s];", label, i, formatSeconds(d), next)
			label = next
		}
		audioLabel = label
	}

	graph = strings.TrimSuffix(b.String(), ";")
	return graph, videoLabel, audioLabel
}

// writeConcatList writes a concat demuxer list file. Single quotes in
// paths use the shell-style quote escape the demuxer expects.
func writeConcatList(path string, inputs []fusedInput) error {
	var b strings.Builder
	for _, in := range inputs {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(in.path, "'", `'\''`))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// filterPath quotes a path for use inside a filter argument.
func filterPath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `\'`) + "'"
}

func formatSeconds(value float64) string {
	if value < 0 {
		value = 0
	}
	return strconv.FormatFloat(value, 'f', 3, 64)
}

// runFFmpeg executes ffmpeg with machine-readable progress on stdout.
// onProgress receives the output position in seconds as encoding
// advances.
func (r *Renderer) runFFmpeg(ctx context.Context, args []string, onProgress func(float64)) error {
	full := append([]string{"-progress", "pipe:1"}, args...)
	cmd := commandContext(ctx, r.ffmpeg, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found || key != "out_time_us" {
			continue
		}
		us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || us < 0 {
			continue
		}
		if onProgress != nil {
			onProgress(float64(us) / 1e6)
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, condenseOutput(stderr.String()))
	}
	return nil
}

// condenseOutput keeps the tail of ffmpeg's stderr for error messages.
func condenseOutput(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	kept := make([]string, 0, 3)
	for i := len(lines) - 1; i >= 0 && len(kept) < 3; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append([]string{line}, kept...)
	}
	if len(kept) == 0 {
		return "no detail"
	}
	return strings.Join(kept, "; ")
}
