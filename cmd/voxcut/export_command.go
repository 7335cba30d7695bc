package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voxcut/internal/api"
	"voxcut/internal/preflight"
	"voxcut/internal/search"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		inputs    []string
		mode      string
		wholeWord bool
		threshold float64

		padding   float64
		maxClips  int
		randomize bool
		seed      int64

		output string
	)

	cmd := &cobra.Command{
		Use:   "export <edl|m3u|vtt|srt|clips> <query>",
		Short: "Write matches as a playlist, captions, or per-clip files",
		Long: `Export runs the search and clip assembly steps and writes the result
in a playback or editing format instead of rendering one video:

  edl    mpv edit decision list playing the clips in sequence
  m3u    VLC playlist with start/stop times per clip
  vtt    WebVTT captions laid out on the supercut timeline
  srt    SubRip captions laid out on the supercut timeline
  clips  one media file per clip, cut with ffmpeg

Only the clips format shells out to ffmpeg; the rest are plain files.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := api.ParseExportFormat(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			needs := preflight.Needs{
				Render: format == api.FormatClips,
				Embed:  strings.EqualFold(strings.TrimSpace(mode), string(search.ModeSemantic)),
			}
			if needs.Render || needs.Embed {
				results := preflight.RunAll(runCtx, svc.Config(), needs)
				if err := printPreflight(cmd.ErrOrStderr(), results); err != nil {
					return err
				}
			}

			query := args[1]
			found, err := svc.Search(runCtx, api.SearchRequest{
				Inputs:    inputs,
				Query:     query,
				Mode:      mode,
				WholeWord: wholeWord,
				Threshold: threshold,
				Seed:      seed,
			})
			if err != nil {
				return err
			}
			if len(found.Matches) == 0 {
				return fmt.Errorf("no matches for %q", query)
			}

			req := api.AssembleRequest{
				Matches:   found.Matches,
				Mode:      found.Mode,
				MaxClips:  maxClips,
				Randomize: randomize,
				Seed:      seed,
			}
			if cmd.Flags().Changed("padding") {
				req.Padding = &padding
			}
			clips, err := svc.AssembleClips(runCtx, req)
			if err != nil {
				return err
			}

			paths, err := svc.Export(runCtx, api.ExportRequest{
				Clips:      clips,
				Format:     format,
				OutputPath: output,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(paths) == 1 {
				fmt.Fprintf(out, "Exported %d clips to %s\n", len(clips), paths[0])
				return nil
			}
			fmt.Fprintf(out, "Exported %d clip files:\n", len(paths))
			for _, path := range paths {
				fmt.Fprintf(out, "  %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Media or transcript file to search (repeatable)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Match mode: sentence, fragment, mash, or semantic (default sentence)")
	cmd.Flags().BoolVar(&wholeWord, "whole-word", false, "Treat the query as whole words rather than a substring pattern")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity for semantic mode (default from configuration)")
	cmd.Flags().Float64Var(&padding, "padding", 0, "Seconds added before and after each clip (default from configuration)")
	cmd.Flags().IntVar(&maxClips, "max-clips", 0, "Keep at most this many clips (0 keeps all)")
	cmd.Flags().BoolVar(&randomize, "randomize", false, "Shuffle clip order instead of keeping timeline order")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for shuffling and mash picks (0 uses a random seed)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (base path for the clips format)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
