package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"voxcut/internal/assemble"
	"voxcut/internal/fileutil"
	"voxcut/internal/logging"
	"voxcut/internal/media/ffprobe"
	"voxcut/internal/services"
	"voxcut/internal/textutil"
)

// Transition identifies how consecutive clips are joined.
type Transition string

const (
	TransitionCut         Transition = "cut"
	TransitionCrossfade   Transition = "crossfade"
	TransitionFadeToBlack Transition = "fade_to_black"
	TransitionDissolve    Transition = "dissolve"
)

// ParseTransition validates a user-supplied transition name. The empty
// string resolves to the cut transition.
func ParseTransition(value string) (Transition, error) {
	switch t := Transition(strings.ToLower(strings.TrimSpace(value))); t {
	case "":
		return TransitionCut, nil
	case TransitionCut, TransitionCrossfade, TransitionFadeToBlack, TransitionDissolve:
		return t, nil
	default:
		return "", services.Wrap(services.ErrValidation, "render", "transition", fmt.Sprintf("unknown transition %q", value), nil)
	}
}

// overlapping reports whether the transition shortens the joined
// timeline by overlapping neighbouring clips.
func (t Transition) overlapping() bool {
	return t == TransitionCrossfade || t == TransitionDissolve
}

const (
	// DefaultBatchSize bounds how many clips one ffmpeg fuse handles.
	DefaultBatchSize = 20
	// DefaultTransitionDuration is the fade length in seconds.
	DefaultTransitionDuration = 0.5

	defaultEncoder = "libx264"
)

// Spec describes one rendering job.
type Spec struct {
	OutputPath         string
	Transition         Transition
	TransitionDuration float64
	BatchSize          int
	Concurrency        int
	// Encoder is the ffmpeg video encoder name. Hardware encoders come
	// from deps.ProbeEncoders; the zero value means libx264.
	Encoder string
	// BurnSubtitles renders each clip's transcript text into the frame.
	BurnSubtitles bool
	// WorkDir hosts per-clip scratch files. Defaults to the system
	// temp directory.
	WorkDir string
}

func (s Spec) normalized() Spec {
	if s.Transition == "" {
		s.Transition = TransitionCut
	}
	if s.TransitionDuration <= 0 {
		s.TransitionDuration = DefaultTransitionDuration
	}
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
	if strings.TrimSpace(s.Encoder) == "" {
		s.Encoder = defaultEncoder
	}
	if strings.TrimSpace(s.WorkDir) == "" {
		s.WorkDir = os.TempDir()
	}
	return s
}

// BatchError records one failed batch by position.
type BatchError struct {
	Batch int
	Err   error
}

// Report summarizes a finished render. Partial failure is reported
// here rather than through the error return.
type Report struct {
	OutputPath string
	Clips      int
	Attempted  int
	Succeeded  int
	Failed     []BatchError
	// Duration is the output length in seconds, transition overlap
	// subtracted.
	Duration float64
}

// Partial reports whether some batches failed while others survived.
func (r Report) Partial() bool {
	return r.Succeeded > 0 && len(r.Failed) > 0
}

// inspectMedia is the ffprobe function used by this package.
// It is a package-level variable so tests can override it.
var inspectMedia = ffprobe.Inspect

// Renderer drives ffmpeg to cut clips out of source media and join
// them into supercuts.
type Renderer struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFFmpeg overrides the ffmpeg binary name.
func WithFFmpeg(binary string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(binary) != "" {
			r.ffmpeg = binary
		}
	}
}

// WithFFprobe overrides the ffprobe binary name.
func WithFFprobe(binary string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(binary) != "" {
			r.ffprobe = binary
		}
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "render")
		}
	}
}

// NewRenderer constructs a Renderer using defaults.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// batchOutput is one fused batch intermediate awaiting final concat.
type batchOutput struct {
	index    int
	path     string
	clips    []assemble.Clip
	duration float64
}

// Render produces spec.OutputPath from the clips. Batches that fail
// are logged and folded into the Report; the error return is reserved
// for invalid input, cancellation, and the case where nothing at all
// could be rendered.
func (r *Renderer) Render(ctx context.Context, clips []assemble.Clip, spec Spec) (Report, error) {
	spec = spec.normalized()
	report := Report{OutputPath: spec.OutputPath, Clips: len(clips)}

	if strings.TrimSpace(spec.OutputPath) == "" {
		return report, services.Wrap(services.ErrValidation, "render", "render", "output path required", nil)
	}
	if len(clips) == 0 {
		return report, services.Wrap(services.ErrExportFailed, "render", "render", "no clips to render", nil)
	}

	job, err := r.newJob(ctx, clips, spec)
	if err != nil {
		return report, err
	}
	defer job.cleanup()

	batches := partition(clips, spec.BatchSize)
	job.batchTotal = len(batches)
	report.Attempted = len(batches)
	r.logger.Info("rendering supercut",
		logging.String("output", spec.OutputPath),
		logging.Int("clips", len(clips)),
		logging.Int("batches", len(batches)),
		logging.String("mode", textutil.Ternary(job.audioOnly, "audio", "video")),
		logging.String("transition", string(spec.Transition)))

	outputs := make([]batchOutput, len(batches))
	failures := make([]error, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(spec.Concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			out, err := job.renderBatch(gctx, i, batch)
			if err != nil {
				failures[i] = err
				return nil
			}
			outputs[i] = out
			return nil
		})
	}
	// Batch errors are folded into the report, so Wait only surfaces
	// context failure.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("render cancelled: %w", err)
	}

	survivors := make([]batchOutput, 0, len(batches))
	for i := range batches {
		if failures[i] != nil {
			report.Failed = append(report.Failed, BatchError{Batch: i, Err: failures[i]})
			r.logger.Warn("batch failed",
				logging.Int("batch", i),
				logging.Error(failures[i]))
			continue
		}
		report.Succeeded++
		survivors = append(survivors, outputs[i])
	}

	if report.Succeeded == 0 {
		first := report.Failed[0].Err
		return report, services.Wrap(services.ErrExportFailed, "render", "render", "every batch failed", first)
	}

	duration, err := job.fuseFinal(ctx, survivors)
	if err != nil {
		return report, services.Wrap(services.ErrExportFailed, "render", "concat", "join batches", err)
	}
	report.Duration = duration

	if report.Partial() {
		r.logger.Warn("supercut rendered with missing batches",
			logging.Int("attempted", report.Attempted),
			logging.Int("succeeded", report.Succeeded))
	} else {
		r.logger.Info("supercut rendered",
			logging.String("output", spec.OutputPath),
			logging.Float64("duration_seconds", report.Duration))
	}
	return report, nil
}

// partition splits clips into fixed-size batches preserving order.
func partition(clips []assemble.Clip, size int) [][]assemble.Clip {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make([][]assemble.Clip, 0, (len(clips)+size-1)/size)
	for start := 0; start < len(clips); start += size {
		end := start + size
		if end > len(clips) {
			end = len(clips)
		}
		batches = append(batches, clips[start:end])
	}
	return batches
}

// canvas is the normalized frame geometry every extracted clip is
// scaled to before joining.
type canvas struct {
	width     int
	height    int
	frameRate string
}

// job carries the per-render state shared by batch workers.
type job struct {
	renderer   *Renderer
	spec       Spec
	workDir    string
	stem       string
	ext        string
	canvas     canvas
	audioOnly  bool
	hasAudio   bool
	batchTotal int
}

func (r *Renderer) newJob(ctx context.Context, clips []assemble.Clip, spec Spec) (*job, error) {
	ext := strings.ToLower(filepath.Ext(spec.OutputPath))
	if ext == "" {
		return nil, services.Wrap(services.ErrValidation, "render", "render", "output path needs an extension", nil)
	}
	j := &job{
		renderer:  r,
		spec:      spec,
		stem:      strings.TrimSuffix(spec.OutputPath, filepath.Ext(spec.OutputPath)),
		ext:       ext,
		canvas:    canvas{width: 1280, height: 720, frameRate: "30"},
		audioOnly: IsAudioOutput(spec.OutputPath),
	}

	probe, err := inspectMedia(ctx, r.ffprobe, clips[0].File)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "render", "probe", "inspect "+clips[0].File, err)
	}
	j.hasAudio = probe.HasAudio()
	if j.audioOnly && !j.hasAudio {
		return nil, services.Wrap(services.ErrValidation, "render", "probe", "source has no audio stream", nil)
	}
	if !j.audioOnly {
		video, ok := probe.VideoStream()
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "render", "probe", "source has no video stream, use an audio output extension", nil)
		}
		if video.Width > 0 && video.Height > 0 {
			j.canvas.width = video.Width
			j.canvas.height = video.Height
		}
		if rate := strings.TrimSpace(video.RFrameRate); rate != "" && rate != "0/0" {
			j.canvas.frameRate = rate
		}
	}

	workDir := filepath.Join(spec.WorkDir, "voxcut-render-"+uuid.NewString())
	if err := fileutil.EnsureDir(workDir); err != nil {
		return nil, services.Wrap(services.ErrExportFailed, "render", "workdir", "create scratch directory", err)
	}
	j.workDir = workDir
	return j, nil
}

func (j *job) batchPath(index int) string {
	return fmt.Sprintf("%s.batch%d%s", j.stem, index, j.ext)
}

// cleanup removes scratch files and batch intermediates. It runs on
// success and failure alike.
func (j *job) cleanup() {
	if j.workDir != "" {
		if err := os.RemoveAll(j.workDir); err != nil {
			j.renderer.logger.Warn("scratch cleanup failed", logging.Error(err))
		}
	}
	for i := 0; i < j.batchTotal; i++ {
		path := j.batchPath(i)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			j.renderer.logger.Warn("batch cleanup failed",
				logging.String("path", path),
				logging.Error(err))
		}
	}
}

// renderBatch extracts each clip and fuses the batch into its
// intermediate file.
func (j *job) renderBatch(ctx context.Context, index int, clips []assemble.Clip) (batchOutput, error) {
	inputs := make([]fusedInput, 0, len(clips))
	for k, clip := range clips {
		dest := filepath.Join(j.workDir, fmt.Sprintf("b%03d_c%05d%s", index, k, j.ext))
		if err := j.extractClip(ctx, clip, dest); err != nil {
			return batchOutput{}, fmt.Errorf("clip %d (%s at %ss): %w", k, filepath.Base(clip.File), formatSeconds(clip.Start), err)
		}
		inputs = append(inputs, fusedInput{path: dest, duration: clip.Duration()})
	}

	dest := j.batchPath(index)
	duration := fusedDuration(inputs, j.spec.Transition, j.spec.TransitionDuration)
	if err := j.fuse(ctx, inputs, dest, "", j.progressFor(fmt.Sprintf("batch %d", index+1), duration)); err != nil {
		return batchOutput{}, err
	}
	return batchOutput{
		index:    index,
		path:     dest,
		clips:    clips,
		duration: duration,
	}, nil
}

// fuseFinal joins surviving batch files into the output and returns
// the resulting duration. The join runs against a staging file in the
// scratch directory so the destination never holds a half-written cut.
func (j *job) fuseFinal(ctx context.Context, survivors []batchOutput) (float64, error) {
	inputs := make([]fusedInput, 0, len(survivors))
	var clips []assemble.Clip
	for _, out := range survivors {
		inputs = append(inputs, fusedInput{path: out.path, duration: out.duration})
		clips = append(clips, out.clips...)
	}

	burn := ""
	if j.spec.BurnSubtitles && !j.audioOnly {
		path, err := j.writeCaptions(clips)
		if err != nil {
			return 0, err
		}
		burn = path
	}

	total := fusedDuration(inputs, j.spec.Transition, j.spec.TransitionDuration)
	staged := filepath.Join(j.workDir, "final"+j.ext)
	if err := j.fuse(ctx, inputs, staged, burn, j.progressFor("concat", total)); err != nil {
		return 0, err
	}
	if err := fileutil.MoveFile(staged, j.spec.OutputPath); err != nil {
		return 0, fmt.Errorf("move output into place: %w", err)
	}
	return total, nil
}

// progressFor builds a sampled progress logger for one fuse step.
func (j *job) progressFor(phase string, totalSeconds float64) func(float64) {
	sampler := logging.NewProgressSampler(25)
	return func(seconds float64) {
		percent := -1.0
		if totalSeconds > 0 {
			percent = math.Min(seconds/totalSeconds*100, 100)
		}
		if sampler.ShouldLog(percent, phase) {
			j.renderer.logger.Debug("render progress",
				logging.String("phase", phase),
				logging.Float64("percent", math.Max(percent, 0)))
		}
	}
}

// fusedDuration computes the joined length of the inputs, accounting
// for overlap when the transition crossfades.
func fusedDuration(inputs []fusedInput, transition Transition, transitionDuration float64) float64 {
	var total float64
	for _, in := range inputs {
		total += in.duration
	}
	if transition.overlapping() {
		for i := 1; i < len(inputs); i++ {
			total -= boundaryDuration(transitionDuration, inputs[i-1].duration, inputs[i].duration)
		}
	}
	return total
}

// boundaryDuration clamps the transition length at one join so a fade
// never consumes more than half of either neighbour.
func boundaryDuration(transitionDuration, prev, next float64) float64 {
	limit := math.Min(prev, next) / 2
	if transitionDuration > limit {
		return limit
	}
	return transitionDuration
}
