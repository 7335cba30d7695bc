// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The renderer probes source media before cutting clips: container
// duration bounds clip padding, the first video stream's dimensions
// pick the supercut canvas, and stream presence decides whether a file
// can feed a video or audio-only export. The library stores the raw
// probe payload alongside ingested media.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
