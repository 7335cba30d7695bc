package api

import (
	"context"
	"os/exec"

	"voxcut/internal/assemble"
	"voxcut/internal/export"
	"voxcut/internal/logging"
	"voxcut/internal/media/ffprobe"
	"voxcut/internal/render"
	"voxcut/internal/search"
	"voxcut/internal/services"
)

// AssembleRequest shapes matches into renderable clips.
type AssembleRequest struct {
	Matches []search.Match
	Mode    search.Mode

	// Padding overrides the mode default on both sides when non-nil.
	Padding *float64

	MaxClips  int
	Randomize bool
	Seed      int64
}

// AssembleClips pads, merges, and orders matches into a clip list.
// Source durations are probed through ffprobe when available so
// padding never runs past the end of the media.
func (s *Service) AssembleClips(ctx context.Context, req AssembleRequest) ([]assemble.Clip, error) {
	opts := assemble.Options{
		MaxClips:  req.MaxClips,
		Randomize: req.Randomize,
		Rand:      randFor(req.Seed),
		Durations: s.probeDurations(ctx, req.Matches),
	}
	if req.Padding != nil {
		opts.Padding = &assemble.Padding{Lead: *req.Padding, Tail: *req.Padding}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return assemble.Assemble(req.Matches, req.Mode, opts), nil
}

// probeDurations inspects each distinct source once. Probe failures
// degrade to no clamping for that file rather than failing the
// assembly.
func (s *Service) probeDurations(ctx context.Context, matches []search.Match) map[string]float64 {
	binary := s.cfg.Render.FFprobeBinary
	if _, err := exec.LookPath(binary); err != nil {
		return nil
	}

	files := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		files[m.File] = struct{}{}
	}
	durations := make(map[string]float64, len(files))
	for file := range files {
		result, err := ffprobe.Inspect(ctx, binary, file)
		if err != nil {
			s.logger.Debug("duration probe failed",
				logging.String(logging.FieldMedia, file), logging.Error(err))
			continue
		}
		if d := result.DurationSeconds(); d > 0 {
			durations[file] = d
		}
	}
	if len(durations) == 0 {
		return nil
	}
	return durations
}

// ExportFormat names a clip-list output format.
type ExportFormat string

const (
	FormatEDL   ExportFormat = "edl"
	FormatM3U   ExportFormat = "m3u"
	FormatVTT   ExportFormat = "vtt"
	FormatSRT   ExportFormat = "srt"
	FormatClips ExportFormat = "clips"
)

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(value string) (ExportFormat, error) {
	switch format := ExportFormat(value); format {
	case FormatEDL, FormatM3U, FormatVTT, FormatSRT, FormatClips:
		return format, nil
	}
	return "", services.Wrap(services.ErrValidation, "api", "export",
		"unsupported export format "+value, nil)
}

// ExportRequest writes a clip list in a playback or editing format.
type ExportRequest struct {
	Clips      []assemble.Clip
	Format     ExportFormat
	OutputPath string
}

// Export dispatches to the playlist and caption writers, or to the
// per-clip renderer for FormatClips. It returns every path written.
func (s *Service) Export(ctx context.Context, req ExportRequest) ([]string, error) {
	if len(req.Clips) == 0 {
		return nil, services.Wrap(services.ErrValidation, "api", "export", "no clips to export", nil)
	}
	if req.OutputPath == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "export", "output path required", nil)
	}

	var err error
	switch req.Format {
	case FormatEDL:
		err = export.WriteMPVEDL(req.OutputPath, req.Clips)
	case FormatM3U:
		err = export.WriteM3U(req.OutputPath, req.Clips)
	case FormatVTT:
		err = export.WriteVTT(req.OutputPath, req.Clips)
	case FormatSRT:
		err = export.WriteSRT(req.OutputPath, req.Clips)
	case FormatClips:
		return s.renderer(ctx).ExportIndividual(ctx, req.Clips, render.Spec{OutputPath: req.OutputPath})
	default:
		return nil, services.Wrap(services.ErrValidation, "api", "export",
			"unsupported export format "+string(req.Format), nil)
	}
	if err != nil {
		return nil, err
	}
	return []string{req.OutputPath}, nil
}
