package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"voxcut/internal/assemble"
	"voxcut/internal/fileutil"
	"voxcut/internal/services"
)

// MPVEDL renders clips as an mpv EDL v0 playlist. Source paths are
// absolutized so the playlist plays from any working directory.
func MPVEDL(clips []assemble.Clip) []byte {
	var b strings.Builder
	b.WriteString("# mpv EDL v0\n")
	for _, clip := range clips {
		fmt.Fprintf(&b, "%s,%s,%s\n",
			absolutize(clip.File), formatSeconds(clip.Start), formatSeconds(clip.Duration()))
	}
	return []byte(b.String())
}

// M3U renders clips as a VLC playlist using per-entry start/stop
// options.
func M3U(clips []assemble.Clip) []byte {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, clip := range clips {
		b.WriteString("#EXTINF:\n")
		fmt.Fprintf(&b, "#EXTVLCOPT:start-time=%s\n", formatSeconds(clip.Start))
		fmt.Fprintf(&b, "#EXTVLCOPT:stop-time=%s\n", formatSeconds(clip.End))
		b.WriteString(absolutize(clip.File))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// WriteMPVEDL writes the mpv playlist to path.
func WriteMPVEDL(path string, clips []assemble.Clip) error {
	return write(path, "edl", MPVEDL(clips))
}

// WriteM3U writes the VLC playlist to path.
func WriteM3U(path string, clips []assemble.Clip) error {
	return write(path, "m3u", M3U(clips))
}

func write(path, operation string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrExportFailed, "export", operation, "write "+path, err)
	}
	return nil
}

func absolutize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// formatSeconds keeps playlist floats short: whole seconds have no
// fraction, fractional ones carry only the digits they need.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
