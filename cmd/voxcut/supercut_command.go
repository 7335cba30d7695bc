package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voxcut/internal/api"
	"voxcut/internal/preflight"
	"voxcut/internal/search"
	"voxcut/internal/textutil"
)

func newSupercutCommand(ctx *commandContext) *cobra.Command {
	var (
		inputs    []string
		mode      string
		wholeWord bool
		threshold float64

		padding   float64
		maxClips  int
		randomize bool
		seed      int64

		output             string
		transition         string
		transitionDuration float64
		batchSize          int
		concurrency        int
		burnSubtitles      bool

		skipChecks bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "supercut <query>",
		Short: "Search, cut, and render the matches into one video",
		Long: `Supercut runs the full pipeline: search the input transcripts, pad and
merge the matching spans into clips, and render the clips into a single
output file. When some clips fail to extract the rest are still joined
and the failures are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			if !skipChecks {
				results := preflight.RunAll(runCtx, svc.Config(), preflight.Needs{
					Render: true,
					Embed:  strings.EqualFold(strings.TrimSpace(mode), string(search.ModeSemantic)),
				})
				if err := printPreflight(cmd.ErrOrStderr(), results); err != nil {
					return err
				}
			}

			if output == "" {
				output = defaultSupercutOutput(args[0])
			}
			req := api.SupercutRequest{
				Inputs:             inputs,
				Query:              args[0],
				Mode:               mode,
				WholeWord:          wholeWord,
				Threshold:          threshold,
				MaxClips:           maxClips,
				Randomize:          randomize,
				Seed:               seed,
				OutputPath:         output,
				Transition:         transition,
				TransitionDuration: transitionDuration,
				BatchSize:          batchSize,
				Concurrency:        concurrency,
				BurnSubtitles:      burnSubtitles,
			}
			if cmd.Flags().Changed("padding") {
				req.Padding = &padding
			}

			result, err := svc.Supercut(runCtx, req)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"matches":           result.Matches,
					"clips":             result.Report.Clips,
					"batches_attempted": result.Report.Attempted,
					"batches_succeeded": result.Report.Succeeded,
					"batches_failed":    len(result.Report.Failed),
					"duration":          result.Report.Duration,
					"output":            result.Report.OutputPath,
				})
			}
			printSupercutResult(cmd.OutOrStdout(), result)
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
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default derives from the query)")
	cmd.Flags().StringVar(&transition, "transition", "", "Join transition: cut, crossfade, fade_to_black, or dissolve (default from configuration)")
	cmd.Flags().Float64Var(&transitionDuration, "transition-duration", 0, "Transition length in seconds (default from configuration)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Clips joined per intermediate batch (default from configuration)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel clip extractions (default from configuration)")
	cmd.Flags().BoolVar(&burnSubtitles, "burn-subtitles", false, "Burn each clip's transcript text into the frame")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip the environment checks before rendering")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a summary")
	return cmd
}

// defaultSupercutOutput names the output after the query so repeated
// runs with different queries do not overwrite each other.
func defaultSupercutOutput(query string) string {
	return "supercut_" + textutil.SanitizeToken(query) + ".mp4"
}

func printSupercutResult(out io.Writer, result api.SupercutResult) {
	report := result.Report
	length := time.Duration(report.Duration * float64(time.Second)).Round(time.Second)
	fmt.Fprintf(out, "Supercut written: %s (matches: %d, clips: %d, length: %s)\n",
		report.OutputPath, result.Matches, report.Clips, length)
	if len(report.Failed) == 0 {
		return
	}
	fmt.Fprintf(out, "Warning: %d of %d batches failed; output contains the %d clips that rendered\n",
		len(report.Failed), report.Attempted, report.Succeeded)
	for _, failure := range report.Failed {
		fmt.Fprintf(out, "  batch %d: %v\n", failure.Batch, failure.Err)
	}
}
