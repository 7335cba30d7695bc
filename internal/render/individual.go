package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"voxcut/internal/assemble"
	"voxcut/internal/logging"
	"voxcut/internal/services"
)

// ExportIndividual writes one file per clip instead of a joined
// supercut. Names derive from spec.OutputPath: `out.mp4` produces
// `out_00000.mp4`, `out_00001.mp4` and so on. Clips that fail are
// skipped and logged; the error return fires only when every clip
// failed.
func (r *Renderer) ExportIndividual(ctx context.Context, clips []assemble.Clip, spec Spec) ([]string, error) {
	spec = spec.normalized()
	// Individual clips never fade into each other.
	spec.Transition = TransitionCut

	if strings.TrimSpace(spec.OutputPath) == "" {
		return nil, services.Wrap(services.ErrValidation, "render", "export clips", "output path required", nil)
	}
	if len(clips) == 0 {
		return nil, services.Wrap(services.ErrExportFailed, "render", "export clips", "no clips to export", nil)
	}

	job, err := r.newJob(ctx, clips, spec)
	if err != nil {
		return nil, err
	}
	defer job.cleanup()

	base := strings.TrimSuffix(spec.OutputPath, filepath.Ext(spec.OutputPath))
	written := make([]string, 0, len(clips))
	var firstErr error
	for i, clip := range clips {
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("export cancelled: %w", err)
		}
		dest := fmt.Sprintf("%s_%05d%s", base, i, job.ext)
		if err := job.extractClip(ctx, clip, dest); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			r.logger.Warn("clip export failed",
				logging.Int("clip", i),
				logging.String("source", clip.File),
				logging.Error(err))
			continue
		}
		written = append(written, dest)
	}

	if len(written) == 0 {
		return nil, services.Wrap(services.ErrExportFailed, "render", "export clips", "every clip failed", firstErr)
	}
	return written, nil
}
