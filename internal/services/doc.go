// Package services defines shared utilities consumed across the supercut
// pipeline and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp media paths, operation names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     consistently (parse vs pattern vs tool vs configuration) and map them to
//     CLI exit codes.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across components.
package services
