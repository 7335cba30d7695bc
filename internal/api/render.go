package api

import (
	"context"

	"voxcut/internal/assemble"
	"voxcut/internal/deps"
	"voxcut/internal/logging"
	"voxcut/internal/render"
	"voxcut/internal/services"
)

// RenderRequest drives one supercut render.
type RenderRequest struct {
	Clips      []assemble.Clip
	OutputPath string

	// Transition overrides the configured transition when non-empty.
	Transition         string
	TransitionDuration float64

	BatchSize     int
	Concurrency   int
	BurnSubtitles bool
}

// Render joins clips into the output file. Partial batch failure is
// reported through the render.Report, not the error return.
func (s *Service) Render(ctx context.Context, req RenderRequest) (render.Report, error) {
	ctx = services.WithOperation(ctx, "render")
	spec, err := s.renderSpec(ctx, req)
	if err != nil {
		return render.Report{}, err
	}
	return s.renderer(ctx).Render(ctx, req.Clips, spec)
}

// renderer builds a Renderer whose log lines carry the operation and
// correlation fields from ctx.
func (s *Service) renderer(ctx context.Context) *render.Renderer {
	return render.NewRenderer(
		render.WithFFmpeg(s.cfg.Render.FFmpegBinary),
		render.WithFFprobe(s.cfg.Render.FFprobeBinary),
		render.WithLogger(logging.WithContext(ctx, s.logger)),
	)
}

// renderSpec folds request overrides over the configured rendering
// defaults and resolves the encoder.
func (s *Service) renderSpec(ctx context.Context, req RenderRequest) (render.Spec, error) {
	transitionName := req.Transition
	if transitionName == "" {
		transitionName = s.cfg.Render.Transition
	}
	transition, err := render.ParseTransition(transitionName)
	if err != nil {
		return render.Spec{}, err
	}

	duration := req.TransitionDuration
	if duration <= 0 {
		duration = s.cfg.Render.TransitionDuration
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.Render.BatchSize
	}
	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = s.cfg.Render.Concurrency
	}

	return render.Spec{
		OutputPath:         req.OutputPath,
		Transition:         transition,
		TransitionDuration: duration,
		BatchSize:          batchSize,
		Concurrency:        concurrency,
		Encoder:            s.encoder(ctx),
		BurnSubtitles:      req.BurnSubtitles,
		WorkDir:            s.cfg.Paths.StagingDir,
	}, nil
}

// encoder resolves the H.264 encoder, probing hardware support when
// the config opts in. Probe failures fall back to software quietly.
func (s *Service) encoder(ctx context.Context) string {
	if !s.cfg.Render.HardwareAccel {
		return ""
	}
	encoders, err := deps.ProbeEncoders(ctx, s.cfg.Render.FFmpegBinary)
	if err != nil {
		s.logger.Debug("encoder probe failed, using software encoding", logging.Error(err))
		return ""
	}
	best := encoders.BestH264()
	if encoders.HardwareH264() {
		s.logger.Info("hardware encoder selected", logging.String("encoder", best))
	}
	return best
}
