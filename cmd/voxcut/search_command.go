package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"voxcut/internal/api"
	"voxcut/internal/search"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		inputs     []string
		mode       string
		wholeWord  bool
		threshold  float64
		seed       int64
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find where a phrase is spoken",
		Long: `Search runs a query against the transcripts of the given inputs and
prints the matching spans without rendering anything. Inputs may be
media files with transcript sidecars or the transcript files themselves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			result, err := svc.Search(runCtx, api.SearchRequest{
				Inputs:    inputs,
				Query:     args[0],
				Mode:      mode,
				WholeWord: wholeWord,
				Threshold: threshold,
				Seed:      seed,
			})
			if err != nil {
				return err
			}

			matches := result.Matches
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"query":   args[0],
					"mode":    string(result.Mode),
					"matches": matches,
				})
			}

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No matches for %q\n", args[0])
				return nil
			}
			headers, rows, aligns := matchTableColumns(matches, result.Mode == search.ModeSemantic)
			fmt.Fprint(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "\n%d matches across %d transcripts\n", len(matches), len(result.Documents))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Media or transcript file to search (repeatable)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Match mode: sentence, fragment, mash, or semantic (default sentence)")
	cmd.Flags().BoolVar(&wholeWord, "whole-word", false, "Treat the query as whole words rather than a substring pattern")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity for semantic mode (default from configuration)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for mash word selection (0 uses a random seed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many matches (0 shows all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func matchTableColumns(matches []search.Match, withScore bool) ([]string, [][]string, []columnAlignment) {
	headers := []string{"#", "File", "Start", "End", "Text"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft}
	if withScore {
		headers = append(headers, "Score")
		aligns = append(aligns, alignRight)
	}

	rows := make([][]string, 0, len(matches))
	for i, match := range matches {
		row := []string{
			strconv.Itoa(i + 1),
			baseName(match.File),
			formatClock(match.Start),
			formatClock(match.End),
			truncate(match.Text, 64),
		}
		if withScore {
			row = append(row, fmt.Sprintf("%.2f", match.Score))
		}
		rows = append(rows, row)
	}
	return headers, rows, aligns
}
