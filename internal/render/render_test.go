package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"voxcut/internal/assemble"
	"voxcut/internal/media/ffprobe"
	"voxcut/internal/services"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func stubProbe(t *testing.T, result ffprobe.Result, probeErr error) {
	t.Helper()
	previous := inspectMedia
	inspectMedia = func(context.Context, string, string) (ffprobe.Result, error) {
		return result, probeErr
	}
	t.Cleanup(func() { inspectMedia = previous })
}

func defaultProbe() ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", Width: 1920, Height: 1080, RFrameRate: "30000/1001"},
			{CodecType: "audio", Channels: 2},
		},
		Format: ffprobe.Format{Duration: "600"},
	}
}

// stubFFmpeg reroutes ffmpeg invocations to the helper process and
// records every argument list. When failSubstr is non-empty any
// invocation whose arguments contain it exits non-zero.
func stubFFmpeg(t *testing.T, failSubstr string) *[][]string {
	t.Helper()
	var captured [][]string
	previous := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append(captured, args)
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"RENDER_STUB_FAIL_SUBSTR="+failSubstr,
		)
		return cmd
	}
	t.Cleanup(func() { commandContext = previous })
	return &captured
}

func testClips(n int) []assemble.Clip {
	clips := make([]assemble.Clip, 0, n)
	for i := 0; i < n; i++ {
		clips = append(clips, assemble.Clip{
			File:  "/media/source.mp4",
			Start: float64(i * 10),
			End:   float64(i*10 + 2),
			Text:  fmt.Sprintf("line %d", i),
		})
	}
	return clips
}

func TestPartition(t *testing.T) {
	clips := testClips(45)
	batches := partition(clips, 20)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 20 || len(batches[1]) != 20 || len(batches[2]) != 5 {
		t.Fatalf("unexpected batch sizes: %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	if batches[2][4].Text != "line 44" {
		t.Fatalf("batch order broken: %+v", batches[2][4])
	}
}

func TestParseTransition(t *testing.T) {
	tests := []struct {
		input   string
		want    Transition
		wantErr bool
	}{
		{"cut", TransitionCut, false},
		{"  Crossfade ", TransitionCrossfade, false},
		{"fade_to_black", TransitionFadeToBlack, false},
		{"dissolve", TransitionDissolve, false},
		{"", TransitionCut, false},
		{"wipe", "", true},
	}
	for _, tc := range tests {
		got, err := ParseTransition(tc.input)
		if tc.wantErr {
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("ParseTransition(%q) err = %v, want validation error", tc.input, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseTransition(%q) = %q, %v; want %q", tc.input, got, err, tc.want)
		}
	}
}

func TestBoundaryDuration(t *testing.T) {
	if got := boundaryDuration(0.5, 2, 2); !almostEqual(got, 0.5) {
		t.Fatalf("expected full transition, got %v", got)
	}
	// A 0.6s clip can only give up half of itself.
	if got := boundaryDuration(0.5, 0.6, 2); !almostEqual(got, 0.3) {
		t.Fatalf("expected clamped transition, got %v", got)
	}
}

func TestFusedDuration(t *testing.T) {
	inputs := []fusedInput{{duration: 2}, {duration: 2}, {duration: 2}}
	if got := fusedDuration(inputs, TransitionCut, 0.5); !almostEqual(got, 6) {
		t.Fatalf("cut should not shrink: %v", got)
	}
	if got := fusedDuration(inputs, TransitionCrossfade, 0.5); !almostEqual(got, 5) {
		t.Fatalf("expected two joins subtracted: %v", got)
	}
}

func TestIsAudioOutput(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"out.mp3", true},
		{"out.M4A", true},
		{"out.wav", true},
		{"out.mp4", false},
		{"out.mkv", false},
		{"out", false},
	}
	for _, tc := range tests {
		if got := IsAudioOutput(tc.path); got != tc.want {
			t.Fatalf("IsAudioOutput(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestRenderAllBatchesSucceed(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	stubFFmpeg(t, "")

	work := t.TempDir()
	out := filepath.Join(t.TempDir(), "super.mp4")
	r := NewRenderer()
	report, err := r.Render(context.Background(), testClips(45), Spec{
		OutputPath: out,
		BatchSize:  20,
		WorkDir:    work,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if report.Attempted != 3 || report.Succeeded != 3 || len(report.Failed) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !almostEqual(report.Duration, 90) {
		t.Fatalf("expected 90s output, got %v", report.Duration)
	}
	if report.Partial() {
		t.Fatalf("full success should not be partial")
	}

	// Scratch space is removed in all paths.
	entries, readErr := os.ReadDir(work)
	if readErr != nil {
		t.Fatalf("read workdir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch cleanup, found %v", entries)
	}
}

func TestRenderFoldsPartialFailure(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	stubFFmpeg(t, ".batch1")

	out := filepath.Join(t.TempDir(), "super.mp4")
	r := NewRenderer()
	report, err := r.Render(context.Background(), testClips(45), Spec{
		OutputPath: out,
		BatchSize:  20,
		WorkDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("partial failure must not error: %v", err)
	}
	if report.Attempted != 3 || report.Succeeded != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Failed) != 1 || report.Failed[0].Batch != 1 {
		t.Fatalf("expected batch 1 recorded as failed: %+v", report.Failed)
	}
	if !report.Partial() {
		t.Fatalf("expected partial report")
	}
	// 40 surviving clips of 2s each.
	if !almostEqual(report.Duration, 80) {
		t.Fatalf("expected 80s output, got %v", report.Duration)
	}
}

func TestRenderFailsWhenEveryBatchFails(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	stubFFmpeg(t, ".batch")

	out := filepath.Join(t.TempDir(), "super.mp4")
	r := NewRenderer()
	report, err := r.Render(context.Background(), testClips(45), Spec{
		OutputPath: out,
		BatchSize:  20,
		WorkDir:    t.TempDir(),
	})
	if !errors.Is(err, services.ErrExportFailed) {
		t.Fatalf("expected export failure, got %v", err)
	}
	if report.Succeeded != 0 || len(report.Failed) != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRenderCancelled(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	stubFFmpeg(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(t.TempDir(), "super.mp4")
	r := NewRenderer()
	_, err := r.Render(ctx, testClips(5), Spec{OutputPath: out, WorkDir: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRenderRejectsEmptyInput(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(context.Background(), nil, Spec{OutputPath: "out.mp4"}); !errors.Is(err, services.ErrExportFailed) {
		t.Fatalf("expected export failure for empty clips, got %v", err)
	}
	if _, err := r.Render(context.Background(), testClips(1), Spec{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing output, got %v", err)
	}
}

func TestRenderRejectsVideoOutputForAudioSource(t *testing.T) {
	stubProbe(t, ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio", Channels: 2}},
	}, nil)
	stubFFmpeg(t, "")

	r := NewRenderer()
	_, err := r.Render(context.Background(), testClips(2), Spec{
		OutputPath: filepath.Join(t.TempDir(), "super.mp4"),
		WorkDir:    t.TempDir(),
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractArgsVideo(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	captured := stubFFmpeg(t, "")

	out := filepath.Join(t.TempDir(), "super.mp4")
	r := NewRenderer()
	clips := []assemble.Clip{{File: "/media/source.mp4", Start: 1.5, End: 3.7, Text: "hi"}}
	if _, err := r.Render(context.Background(), clips, Spec{OutputPath: out, WorkDir: t.TempDir()}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(*captured) < 2 {
		t.Fatalf("expected extraction and fuse invocations, got %d", len(*captured))
	}
	extraction := strings.Join((*captured)[0], " ")
	for _, want := range []string{
		"-ss 1.500",
		"-to 3.700",
		"scale=1920:1080:force_original_aspect_ratio=decrease",
		"fps=30000/1001",
		"-c:v libx264",
		"-preset medium",
		"-c:a aac",
		"-b:a 192k",
	} {
		if !strings.Contains(extraction, want) {
			t.Fatalf("extraction args missing %q:\n%s", want, extraction)
		}
	}
	// Short clips still smooth their audio edges on cut joins.
	if !strings.Contains(extraction, "afade=t=in:st=0:d=0.050") {
		t.Fatalf("expected audio smoothing, got:\n%s", extraction)
	}
}

func TestExtractArgsAudioOnly(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	captured := stubFFmpeg(t, "")

	out := filepath.Join(t.TempDir(), "compilation.mp3")
	r := NewRenderer()
	clips := []assemble.Clip{{File: "/media/source.mp4", Start: 0, End: 2}}
	if _, err := r.Render(context.Background(), clips, Spec{OutputPath: out, WorkDir: t.TempDir()}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	extraction := strings.Join((*captured)[0], " ")
	if !strings.Contains(extraction, "-vn") {
		t.Fatalf("expected video dropped, got:\n%s", extraction)
	}
	if !strings.Contains(extraction, "-c:a libmp3lame") {
		t.Fatalf("expected mp3 encoder, got:\n%s", extraction)
	}
	if strings.Contains(extraction, "-c:v") {
		t.Fatalf("audio-only extraction must not set a video codec:\n%s", extraction)
	}
}

func TestExtractArgsFadeToBlack(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	captured := stubFFmpeg(t, "")

	out := filepath.Join(t.TempDir(), "super.mp4")
	r := NewRenderer()
	clips := []assemble.Clip{{File: "/media/source.mp4", Start: 0, End: 2}}
	spec := Spec{OutputPath: out, WorkDir: t.TempDir(), Transition: TransitionFadeToBlack, TransitionDuration: 0.5}
	if _, err := r.Render(context.Background(), clips, spec); err != nil {
		t.Fatalf("Render: %v", err)
	}

	extraction := strings.Join((*captured)[0], " ")
	for _, want := range []string{
		"fade=t=in:st=0:d=0.500",
		"fade=t=out:st=1.500:d=0.500",
		"afade=t=out:st=1.500:d=0.500",
	} {
		if !strings.Contains(extraction, want) {
			t.Fatalf("fade args missing %q:\n%s", want, extraction)
		}
	}
}

func TestCrossfadeGraph(t *testing.T) {
	j := &job{
		spec:     Spec{Transition: TransitionCrossfade, TransitionDuration: 0.5, Encoder: "libx264"},
		hasAudio: true,
	}
	inputs := []fusedInput{{path: "a", duration: 2}, {path: "b", duration: 2}, {path: "c", duration: 2}}
	graph, videoLabel, audioLabel := j.crossfadeGraph(inputs, "")

	if videoLabel != "v2" || audioLabel != "a2" {
		t.Fatalf("unexpected labels %q/%q", videoLabel, audioLabel)
	}
	for _, want := range []string{
		"[0:v][1:v]xfade=transition=fade:duration=0.500:offset=1.500[v1]",
		"[v1][2:v]xfade=transition=fade:duration=0.500:offset=3.000[v2]",
		"[0:a][1:a]acrossfade=d=0.500[a1]",
		"[a1][2:a]acrossfade=d=0.500[a2]",
	} {
		if !strings.Contains(graph, want) {
			t.Fatalf("graph missing %q:\n%s", want, graph)
		}
	}
}

func TestCrossfadeGraphDissolve(t *testing.T) {
	j := &job{spec: Spec{Transition: TransitionDissolve, TransitionDuration: 0.5}}
	inputs := []fusedInput{{duration: 2}, {duration: 2}}
	graph, _, _ := j.crossfadeGraph(inputs, "")
	if !strings.Contains(graph, "xfade=transition=dissolve") {
		t.Fatalf("expected dissolve curve:\n%s", graph)
	}
}

func TestBuildCaptions(t *testing.T) {
	clips := []assemble.Clip{
		{File: "a", Start: 10, End: 11.3, Text: "first"},
		{File: "a", Start: 40, End: 41.6, Text: ""},
		{File: "a", Start: 70, End: 72, Text: "third"},
	}

	cut := buildCaptions(clips, TransitionCut, 0.5)
	if len(cut) != 2 {
		t.Fatalf("expected untexted clip skipped, got %+v", cut)
	}
	if !almostEqual(cut[0].Start, 0) || !almostEqual(cut[0].End, 1.3) {
		t.Fatalf("unexpected first caption: %+v", cut[0])
	}
	// Cursor still advances across the untexted clip.
	if !almostEqual(cut[1].Start, 2.9) || !almostEqual(cut[1].End, 4.9) {
		t.Fatalf("unexpected second caption: %+v", cut[1])
	}

	faded := buildCaptions(clips, TransitionCrossfade, 0.5)
	if !almostEqual(faded[1].Start, 1.9) {
		t.Fatalf("expected crossfade overlap applied twice, got %+v", faded[1])
	}
}

func TestExportIndividual(t *testing.T) {
	stubProbe(t, defaultProbe(), nil)
	stubFFmpeg(t, "")

	dir := t.TempDir()
	out := filepath.Join(dir, "clips.mp4")
	r := NewRenderer()
	paths, err := r.ExportIndividual(context.Background(), testClips(3), Spec{OutputPath: out, WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("ExportIndividual: %v", err)
	}
	want := []string{
		filepath.Join(dir, "clips_00000.mp4"),
		filepath.Join(dir, "clips_00001.mp4"),
		filepath.Join(dir, "clips_00002.mp4"),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("path %d = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestRunFFmpegParsesProgress(t *testing.T) {
	stubFFmpeg(t, "")

	var seen []float64
	r := NewRenderer()
	out := filepath.Join(t.TempDir(), "out.mp4")
	err := r.runFFmpeg(context.Background(), []string{"-i", "x", "-y", out}, func(seconds float64) {
		seen = append(seen, seconds)
	})
	if err != nil {
		t.Fatalf("runFFmpeg: %v", err)
	}
	if len(seen) == 0 || !almostEqual(seen[0], 0.5) {
		t.Fatalf("expected progress callback at 0.5s, got %v", seen)
	}
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	inputs := []fusedInput{{path: "/media/it's here.mp4"}}
	if err := writeConcatList(path, inputs); err != nil {
		t.Fatalf("writeConcatList: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	want := "file '/media/it'\\''s here.mp4'\n"
	if string(data) != want {
		t.Fatalf("list = %q, want %q", string(data), want)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	if substr := os.Getenv("RENDER_STUB_FAIL_SUBSTR"); substr != "" {
		for _, arg := range os.Args {
			if strings.Contains(arg, substr) {
				fmt.Fprintln(os.Stderr, "stub ffmpeg failure")
				os.Exit(1)
			}
		}
	}
	// Like the real tool, leave a file at the output path (the final
	// argument) so callers that move it into place find something there.
	if err := os.WriteFile(os.Args[len(os.Args)-1], []byte("stub"), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("out_time_us=500000")
	fmt.Println("progress=end")
}
