package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"voxcut/internal/api"
	"voxcut/internal/preflight"
	"voxcut/internal/transcribe"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		model      string
		device     string
		lang       string
		force      bool
		onStale    string
		skipChecks bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <media>...",
		Short: "Generate transcript sidecars for media files",
		Long: `Transcribe runs the configured speech-to-text helper over each media
file and writes a transcript sidecar next to it. A cached transcript is
reused when the file and settings are unchanged; --on-stale picks what
happens when the settings differ, and an interactive prompt asks
instead when stdin is a terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			if !skipChecks {
				results := preflight.RunAll(runCtx, svc.Config(), preflight.Needs{Transcribe: true})
				if err := printPreflight(cmd.ErrOrStderr(), results); err != nil {
					return err
				}
			}

			var onConflict transcribe.ConflictFunc
			if isatty.IsTerminal(os.Stdin.Fd()) {
				onConflict = promptConflict(cmd)
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, media := range args {
				result, err := svc.GetOrCreateTranscript(runCtx, api.TranscribeRequest{
					MediaPath:  media,
					Model:      model,
					Device:     device,
					Language:   lang,
					Force:      force,
					OnStale:    onStale,
					OnConflict: onConflict,
				})
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", media, err)
					if runCtx.Err() != nil {
						break
					}
					continue
				}
				fmt.Fprintf(out, "%s: %s (%d segments) -> %s\n",
					media, transcribeOutcome(result), len(result.Segments), result.TranscriptPath)
				if result.Partial || runCtx.Err() != nil {
					break
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Whisper model name (default from configuration)")
	cmd.Flags().StringVar(&device, "device", "", "Inference device, e.g. cpu or cuda (default from configuration)")
	cmd.Flags().StringVar(&lang, "language", "", "Spoken language name or tag (default autodetect)")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even when a matching transcript is cached")
	cmd.Flags().StringVar(&onStale, "on-stale", "", "Policy when cached settings differ: reuse, regenerate, or fail")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip the environment checks before transcribing")
	return cmd
}

func transcribeOutcome(result transcribe.Result) string {
	switch {
	case result.Partial:
		return "partial transcript"
	case result.Reused:
		return "reused"
	default:
		return "generated"
	}
}

// promptConflict asks on the terminal what to do about a transcript
// generated with different settings.
func promptConflict(cmd *cobra.Command) transcribe.ConflictFunc {
	reader := bufio.NewReader(cmd.InOrStdin())
	return func(conflict transcribe.Conflict) (transcribe.Decision, error) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Transcript for %s was generated with different settings (%s).\n",
			baseName(conflict.MediaPath), strings.Join(conflict.Changed, "; "))
		fmt.Fprint(out, "Regenerate it? [y/N/q] ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return transcribe.DecisionCancel, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return transcribe.DecisionRegenerate, nil
		case "q", "quit":
			return transcribe.DecisionCancel, nil
		default:
			return transcribe.DecisionReuse, nil
		}
	}
}
