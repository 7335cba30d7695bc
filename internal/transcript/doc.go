// Package transcript parses and renders time-aligned spoken-word
// transcripts. It reads per-word JSON, WebVTT (with or without inline
// word cues), and SubRip files into a common segment model, and writes
// that model back out as subtitle sidecars for rendered compilations.
package transcript
