// Package render turns assembled clips into finished supercut files.
//
// Rendering runs in fixed-size batches. Each batch extracts its clips
// with ffmpeg into scratch intermediates, fuses them with the chosen
// transition into a `<output>.batch<N>` file, and the surviving batch
// files are joined in batch order into the final output. A failed
// batch is dropped from the supercut instead of aborting the run; the
// returned Report carries attempted and succeeded counts so callers
// can warn about partial output. Zero surviving batches is the only
// fatal outcome.
package render
