package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voxcut/internal/config"
)

// Settings are the knobs forwarded to the speech-to-text backend.
// Every field participates in the transcript fingerprint.
type Settings struct {
	Model          string `json:"model"`
	Device         string `json:"device"`
	Language       string `json:"language,omitempty"`
	ComputeType    string `json:"compute_type"`
	BeamSize       int    `json:"beam_size"`
	BestOf         int    `json:"best_of"`
	VADFilter      bool   `json:"vad_filter"`
	NormalizeAudio bool   `json:"normalize_audio"`
}

// FromConfig maps the transcription config section onto Settings.
func FromConfig(t config.Transcription) Settings {
	return Settings{
		Model:          t.Model,
		Device:         t.Device,
		Language:       t.Language,
		ComputeType:    t.ComputeType,
		BeamSize:       t.BeamSize,
		BestOf:         t.BestOf,
		VADFilter:      t.VADFilter,
		NormalizeAudio: t.NormalizeAudio,
	}
}

// Diff names the fields where other differs from s, oldest value
// first, for conflict prompts and strict-mode errors.
func (s Settings) Diff(other Settings) []string {
	var changed []string
	record := func(field, from, to string) {
		if from != to {
			changed = append(changed, fmt.Sprintf("%s: %s -> %s", field, from, to))
		}
	}
	record("model", s.Model, other.Model)
	record("device", s.Device, other.Device)
	record("language", s.Language, other.Language)
	record("compute_type", s.ComputeType, other.ComputeType)
	record("beam_size", fmt.Sprint(s.BeamSize), fmt.Sprint(other.BeamSize))
	record("best_of", fmt.Sprint(s.BestOf), fmt.Sprint(other.BestOf))
	record("vad_filter", fmt.Sprint(s.VADFilter), fmt.Sprint(other.VADFilter))
	record("normalize_audio", fmt.Sprint(s.NormalizeAudio), fmt.Sprint(other.NormalizeAudio))
	return changed
}

// Fingerprint is the persisted record of the settings a transcript was
// generated with. It is written beside the transcript only after the
// transcript itself landed, so a fingerprint always describes a real
// file.
type Fingerprint struct {
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptPath returns the cached transcript location for a media file.
func TranscriptPath(mediaPath string) string {
	return mediaStem(mediaPath) + ".json"
}

// MetaPath returns the fingerprint location for a media file.
func MetaPath(mediaPath string) string {
	return mediaStem(mediaPath) + ".transcript_meta.json"
}

func lockPath(mediaPath string) string {
	return mediaStem(mediaPath) + ".lock"
}

func mediaStem(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	if ext == "" {
		return mediaPath
	}
	return strings.TrimSuffix(mediaPath, ext)
}

// loadFingerprint reads a persisted fingerprint. A missing file is
// reported via os.IsNotExist on the returned error.
func loadFingerprint(path string) (Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fingerprint{}, err
	}
	var fp Fingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		return Fingerprint{}, fmt.Errorf("parse fingerprint: %w", err)
	}
	return fp, nil
}
