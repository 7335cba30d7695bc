package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"voxcut/internal/preflight"
)

// writeJSON encodes v as indented JSON to the command's stdout. HTML
// escaping is off so file paths and queries stay readable.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const statusLabelWidth = 22

func renderStatusLine(label string, kind statusKind, detail string, colorize bool) string {
	statusText := "[" + statusKindLabel(kind) + "]"
	if detail != "" {
		statusText += " " + detail
	}
	base := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	default:
		return ansiRed
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printPreflight renders environment check results and returns an
// error when any non-optional check failed.
func printPreflight(out io.Writer, results []preflight.Result) error {
	colorize := shouldColorize(out)
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
			if result.Optional {
				kind = statusWarn
			}
		}
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	blockers := preflight.Blockers(results)
	if len(blockers) == 0 {
		return nil
	}
	names := make([]string, 0, len(blockers))
	for _, blocker := range blockers {
		names = append(names, blocker.Name)
	}
	return fmt.Errorf("environment not ready: %s", strings.Join(names, ", "))
}

// formatClock renders seconds as m:ss.cc for table output.
func formatClock(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	minutes := int(secs) / 60
	return fmt.Sprintf("%d:%05.2f", minutes, secs-float64(minutes*60))
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// truncate shortens long transcript text so tables stay readable.
func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 3 || len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
