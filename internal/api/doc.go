// Package api exposes the operations the CLI is built from. Service
// wires configuration, logging, the transcription guard, the renderer,
// and the embedding bridge into one facade so commands stay thin.
//
// # Operations
//
// Search: parse transcripts for the inputs and run a query in one of
// the four match modes.
//
// NGrams: frequency-ranked word sequences across the inputs.
//
// AssembleClips: pad, merge, shuffle, and cap matches into a renderable
// clip list, clamped to probed media durations when ffprobe is around.
//
// Render: drive the batch renderer; partial batch failure surfaces in
// the report, not the error.
//
// Export: playlist and caption rewrites of a clip list (mpv EDL, M3U,
// WebVTT, SubRip) plus per-clip files.
//
// GetOrCreateTranscript: run the transcription guard for one media
// file, honoring the fingerprint reuse policy.
//
// OpenLibrary, LibraryAdd, LibrarySearch, LibraryRank: ingest and
// query the persistent transcript library.
//
// Supercut: search, assemble, render end to end.
//
// # Design Notes
//
// Each operation takes a request struct and returns a result struct so
// callers never touch the wiring. Transcripts are accepted directly or
// discovered as media sidecars; inputs without transcripts are skipped
// with a warning, matching interactive expectations, and only a fully
// empty input set is an error.
package api
