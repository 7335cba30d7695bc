package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"voxcut/internal/api"
	"voxcut/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the persistent transcript library",
	}

	libraryCmd.AddCommand(newLibraryAddCommand(ctx))
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibrarySearchCommand(ctx))
	libraryCmd.AddCommand(newLibraryRemoveCommand(ctx))

	return libraryCmd
}

func newLibraryAddCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <media>...",
		Short: "Store media transcripts in the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			store, err := svc.OpenLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			out := cmd.OutOrStdout()
			failed := 0
			for _, media := range args {
				result, err := svc.LibraryAdd(runCtx, store, media)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", media, err)
					if runCtx.Err() != nil {
						break
					}
					continue
				}
				note := ""
				if result.Embedded {
					note = ", embeddings cached"
				}
				fmt.Fprintf(out, "%s: stored %d segments%s (id %s)\n",
					result.Media.Path, result.Segments, note, result.Media.ID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			store, err := svc.OpenLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListMedia(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{"entries": entries})
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Library is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					shortID(entry.ID),
					entry.Path,
					formatClock(entry.Duration),
					entry.AddedAt.Format(time.DateOnly),
				})
			}
			table := renderTable(
				[]string{"ID", "Path", "Duration", "Added"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			)
			fmt.Fprint(out, table)
			fmt.Fprintf(out, "\n%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newLibrarySearchCommand(ctx *commandContext) *cobra.Command {
	var (
		rank       bool
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored transcripts",
		Long: `Search scans the stored transcript text for the query and prints the
matching segments. With --rank it instead orders whole library entries
by how well their transcripts match, which suits picking source files
for a supercut.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			store, err := svc.OpenLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			if rank {
				return runLibraryRank(cmd, svc, store, args[0], limit, jsonOutput)
			}

			hits, err := svc.LibrarySearch(cmd.Context(), store, args[0], limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{"query": args[0], "hits": hits})
			}

			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintf(out, "No stored segments match %q\n", args[0])
				return nil
			}
			rows := make([][]string, 0, len(hits))
			for _, hit := range hits {
				rows = append(rows, []string{
					baseName(hit.MediaPath),
					formatClock(hit.Segment.Start),
					truncate(hit.Segment.Text, 64),
				})
			}
			table := renderTable(
				[]string{"File", "Start", "Text"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			)
			fmt.Fprint(out, table)
			fmt.Fprintf(out, "\n%d segments\n", len(hits))
			return nil
		},
	}

	cmd.Flags().BoolVar(&rank, "rank", false, "Rank whole entries instead of listing matching segments")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many results (0 shows all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func runLibraryRank(cmd *cobra.Command, svc *api.Service, store *library.Store, query string, limit int, jsonOutput bool) error {
	scores, err := svc.LibraryRank(cmd.Context(), store, query, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, map[string]any{"query": query, "entries": scores})
	}

	out := cmd.OutOrStdout()
	if len(scores) == 0 {
		fmt.Fprintf(out, "No library entries match %q\n", query)
		return nil
	}
	rows := make([][]string, 0, len(scores))
	for i, score := range scores {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			score.Media.Path,
			fmt.Sprintf("%.3f", score.Score),
		})
	}
	table := renderTable(
		[]string{"#", "Path", "Score"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	)
	fmt.Fprint(out, table)
	return nil
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id-or-path>...",
		Short: "Remove entries from the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			store, err := svc.OpenLibrary()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			for _, arg := range args {
				id := arg
				if media, err := store.GetMediaByPath(cmd.Context(), arg); err == nil && media != nil {
					id = media.ID
				}
				removed, err := store.RemoveMedia(cmd.Context(), id)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(out, "Removed %s\n", arg)
				} else {
					fmt.Fprintf(out, "No library entry for %s\n", arg)
				}
			}
			return nil
		},
	}
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
