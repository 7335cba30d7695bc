package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"voxcut/internal/api"
)

func newNGramsCommand(ctx *commandContext) *cobra.Command {
	var (
		inputs           []string
		size             int
		ignore           []string
		noDefaultIgnores bool
		exact            bool
		top              int
		jsonOutput       bool
	)

	cmd := &cobra.Command{
		Use:   "ngrams",
		Short: "Rank the most frequent word sequences",
		Long: `Ngrams counts word sequences across the transcripts of the given
inputs and prints the most frequent ones. Useful for discovering what a
speaker actually says before writing supercut queries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			grams, err := svc.NGrams(runCtx, api.NGramsRequest{
				Inputs:           inputs,
				N:                size,
				Ignore:           ignore,
				NoDefaultIgnores: noDefaultIgnores,
				Exact:            exact,
			})
			if err != nil {
				return err
			}
			if top > 0 && len(grams) > top {
				grams = grams[:top]
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{"n": size, "ngrams": grams})
			}

			out := cmd.OutOrStdout()
			if len(grams) == 0 {
				fmt.Fprintln(out, "No word sequences found")
				return nil
			}
			rows := make([][]string, 0, len(grams))
			for _, gram := range grams {
				rows = append(rows, []string{gram.Text, strconv.Itoa(gram.Count)})
			}
			table := renderTable([]string{"N-gram", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			fmt.Fprint(out, table)
			fmt.Fprintf(out, "\n%d distinct sequences\n", len(grams))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Media or transcript file to analyze (repeatable)")
	cmd.Flags().IntVarP(&size, "number", "n", 1, "Sequence length, 1 through 3")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Additional words to exclude (repeatable)")
	cmd.Flags().BoolVar(&noDefaultIgnores, "no-default-ignores", false, "Count common function words instead of skipping them")
	cmd.Flags().BoolVar(&exact, "exact", false, "Keep case and punctuation distinct when counting")
	cmd.Flags().IntVar(&top, "top", 100, "Show at most this many sequences (0 shows all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}
