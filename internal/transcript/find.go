package transcript

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Find locates a transcript sidecar for a media file. It tries an
// exact base-name swap first (video.mp4 -> video.json), then a prefix
// match that tolerates language tags (video.en.srt), walking the
// preferred extension order from Extensions. The prefer argument, when
// non-empty, promotes one extension to the front.
func Find(mediaPath, prefer string) (string, bool) {
	exts := append([]string(nil), Extensions...)
	if prefer != "" {
		if !strings.HasPrefix(prefer, ".") {
			prefer = "." + prefer
		}
		exts = append([]string{strings.ToLower(prefer)}, exts...)
	}

	dir := filepath.Dir(mediaPath)
	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	for _, ext := range exts {
		candidate := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, ext := range exts {
		for _, name := range names {
			if strings.HasPrefix(name, stem) && strings.EqualFold(filepath.Ext(name), ext) {
				return filepath.Join(dir, name), true
			}
		}
	}
	return "", false
}

// IsTranscript reports whether path has one of the transcript
// extensions Parse understands.
func IsTranscript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// FindMedia is the inverse of Find: given a transcript path it looks
// for a sibling media file sharing the stem. The first same-stem,
// non-transcript sibling in name order wins.
func FindMedia(transcriptPath string) (string, bool) {
	dir := filepath.Dir(transcriptPath)
	stem := strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		ext := filepath.Ext(name)
		if strings.TrimSuffix(name, ext) != stem {
			continue
		}
		candidate := filepath.Join(dir, name)
		if candidate == transcriptPath || IsTranscript(candidate) || ext == ".lock" {
			continue
		}
		return candidate, true
	}
	return "", false
}
