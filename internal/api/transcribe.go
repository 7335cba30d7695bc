package api

import (
	"context"

	"voxcut/internal/language"
	"voxcut/internal/logging"
	"voxcut/internal/services"
	"voxcut/internal/transcribe"
)

// TranscribeRequest runs the transcription guard over one media file.
type TranscribeRequest struct {
	MediaPath string

	// Model, Device, and Language override the configured settings
	// when non-empty. Language accepts anything language.Normalize
	// understands.
	Model    string
	Device   string
	Language string

	// Force regenerates even when the cached fingerprint matches.
	Force bool

	// OnStale overrides the configured stale-transcript policy.
	OnStale string

	// OnConflict resolves fingerprint mismatches interactively. Nil
	// falls back to the policy.
	OnConflict transcribe.ConflictFunc
}

// GetOrCreateTranscript returns a transcript for the media file,
// reusing a cached one when its fingerprint still matches.
func (s *Service) GetOrCreateTranscript(ctx context.Context, req TranscribeRequest) (transcribe.Result, error) {
	ctx = services.WithOperation(ctx, "transcribe")
	ctx = services.WithMedia(ctx, req.MediaPath)

	settings, err := s.transcribeSettings(req)
	if err != nil {
		return transcribe.Result{}, err
	}
	guard, err := s.guard(ctx, req.OnStale)
	if err != nil {
		return transcribe.Result{}, err
	}
	if req.Force {
		return guard.Regenerate(ctx, req.MediaPath, settings)
	}
	return guard.GetOrCreate(ctx, req.MediaPath, settings, req.OnConflict)
}

func (s *Service) transcribeSettings(req TranscribeRequest) (transcribe.Settings, error) {
	settings := transcribe.FromConfig(s.cfg.Transcription)
	if req.Model != "" {
		settings.Model = req.Model
	}
	if req.Device != "" {
		settings.Device = req.Device
	}
	if req.Language != "" {
		settings.Language = req.Language
	}
	normalized, err := language.Normalize(settings.Language)
	if err != nil {
		return transcribe.Settings{}, err
	}
	settings.Language = normalized
	return settings, nil
}

func (s *Service) guard(ctx context.Context, onStale string) (*transcribe.Guard, error) {
	if onStale == "" {
		onStale = s.cfg.Transcription.OnStale
	}
	policy, err := transcribe.ParsePolicy(onStale)
	if err != nil {
		return nil, err
	}
	backend := transcribe.NewCLI(transcribe.WithBinary(s.cfg.Transcription.Binary))
	return transcribe.NewGuard(backend,
		transcribe.WithPolicy(policy),
		transcribe.WithLogger(logging.WithContext(ctx, s.logger)),
	), nil
}
