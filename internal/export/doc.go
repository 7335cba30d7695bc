// Package export writes clip selections in player and editor friendly
// formats without invoking ffmpeg: mpv EDL and VLC M3U playlists that
// play the cut straight from the source media, and WebVTT/SubRip
// caption files laid out on the supercut timeline.
package export
