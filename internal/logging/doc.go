// Package logging assembles structured slog loggers and formatting helpers
// used across voxcut.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can automatically tag
// log lines with media paths, operation names, and correlation IDs. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail, plus a sampler that keeps encoder progress from flooding the output.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
