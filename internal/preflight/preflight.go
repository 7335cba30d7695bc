package preflight

import (
	"context"

	"voxcut/internal/config"
	"voxcut/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Needs selects which feature areas the upcoming run touches so
// irrelevant checks are skipped.
type Needs struct {
	Transcribe bool
	Render     bool
	Embed      bool
}

// RunAll executes the applicable checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, needs Needs) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	if needs.Render {
		results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
		results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, cfg.Render.MinFreeGiB))
	}

	for _, status := range CheckSystemDeps(ctx, cfg, needs) {
		results = append(results, fromDepStatus(status))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries the selected feature
// areas shell out to.
func CheckSystemDeps(_ context.Context, cfg *config.Config, needs Needs) []deps.Status {
	var requirements []deps.Requirement
	if needs.Render {
		requirements = append(requirements,
			deps.Requirement{
				Name:        "FFmpeg",
				Command:     cfg.Render.FFmpegBinary,
				Description: "Required for clip extraction and rendering",
			},
			deps.Requirement{
				Name:        "FFprobe",
				Command:     cfg.Render.FFprobeBinary,
				Description: "Required for media inspection",
			},
		)
	}
	if needs.Transcribe {
		requirements = append(requirements, deps.Requirement{
			Name:        "Whisper helper",
			Command:     cfg.Transcription.Binary,
			Description: "Required for speech-to-text transcription",
		})
	}
	if needs.Embed {
		requirements = append(requirements, deps.Requirement{
			Name:        "Embedding helper",
			Command:     cfg.Search.EmbedBinary,
			Description: "Improves semantic search; lexical fallback used when absent",
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}

// Blockers filters results down to the hard failures that should stop
// the run. Optional findings never block.
func Blockers(results []Result) []Result {
	var blockers []Result
	for _, result := range results {
		if !result.Passed && !result.Optional {
			blockers = append(blockers, result)
		}
	}
	return blockers
}

func fromDepStatus(status deps.Status) Result {
	result := Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   status.Detail,
	}
	if status.Available {
		result.Detail = status.Command
	}
	return result
}
