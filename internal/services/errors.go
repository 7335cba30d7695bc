package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse                = errors.New("parse error")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrInvalidPattern       = errors.New("invalid pattern")
	ErrEmptyQuery           = errors.New("empty query")
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrExportFailed         = errors.New("export failed")
	ErrStaleTranscript      = errors.New("stale transcript settings")
	ErrExternalTool         = errors.New("external tool error")
	ErrValidation           = errors.New("validation error")
	ErrConfiguration        = errors.New("configuration error")
	ErrNotFound             = errors.New("not found")
	ErrTransient            = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit status the CLI should report.
// Caller mistakes (bad queries, bad config, unknown formats) exit 2 so shell
// scripts can distinguish them from runtime failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrInvalidPattern),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrConfiguration):
		return 2
	default:
		return 1
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
