package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"voxcut/internal/assemble"
	"voxcut/internal/render"
	"voxcut/internal/services"
)

// SupercutRequest runs search, assembly, and render in one call.
type SupercutRequest struct {
	Inputs    []string
	Query     string
	Mode      string
	WholeWord bool
	Threshold float64

	Padding   *float64
	MaxClips  int
	Randomize bool
	Seed      int64

	OutputPath         string
	Transition         string
	TransitionDuration float64
	BatchSize          int
	Concurrency        int
	BurnSubtitles      bool
}

// SupercutResult reports what was found, cut, and rendered.
type SupercutResult struct {
	Matches int
	Clips   []assemble.Clip
	Report  render.Report
}

// Supercut is the end-to-end operation: search the inputs, assemble
// the matches into clips, and render them to the output path. One
// correlation id ties together the log lines of all three stages.
func (s *Service) Supercut(ctx context.Context, req SupercutRequest) (SupercutResult, error) {
	ctx = services.WithRequestID(ctx, uuid.NewString())

	found, err := s.Search(ctx, SearchRequest{
		Inputs:    req.Inputs,
		Query:     req.Query,
		Mode:      req.Mode,
		WholeWord: req.WholeWord,
		Threshold: req.Threshold,
		Seed:      req.Seed,
	})
	if err != nil {
		return SupercutResult{}, err
	}
	if len(found.Matches) == 0 {
		return SupercutResult{}, services.Wrap(services.ErrNotFound, "api", "supercut",
			fmt.Sprintf("no matches for %q", req.Query), nil)
	}

	clips, err := s.AssembleClips(ctx, AssembleRequest{
		Matches:   found.Matches,
		Mode:      found.Mode,
		Padding:   req.Padding,
		MaxClips:  req.MaxClips,
		Randomize: req.Randomize,
		Seed:      req.Seed,
	})
	if err != nil {
		return SupercutResult{}, err
	}

	report, err := s.Render(ctx, RenderRequest{
		Clips:              clips,
		OutputPath:         req.OutputPath,
		Transition:         req.Transition,
		TransitionDuration: req.TransitionDuration,
		BatchSize:          req.BatchSize,
		Concurrency:        req.Concurrency,
		BurnSubtitles:      req.BurnSubtitles,
	})
	if err != nil {
		return SupercutResult{Matches: len(found.Matches), Clips: clips}, err
	}
	return SupercutResult{Matches: len(found.Matches), Clips: clips, Report: report}, nil
}
