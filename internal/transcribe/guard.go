package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"voxcut/internal/fileutil"
	"voxcut/internal/logging"
	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// Decision is a conflict resolver's answer when cached settings differ
// from the requested ones.
type Decision int

const (
	// DecisionCancel aborts without touching the cached transcript.
	DecisionCancel Decision = iota
	// DecisionReuse keeps the cached transcript despite the mismatch.
	DecisionReuse
	// DecisionRegenerate discards the cache and runs the backend.
	DecisionRegenerate
)

// Conflict describes a fingerprint mismatch handed to a resolver.
type Conflict struct {
	MediaPath      string
	TranscriptPath string
	Existing       Fingerprint
	Requested      Settings
	Changed        []string
}

// ConflictFunc resolves a settings mismatch. Returning an error aborts
// the operation with that error.
type ConflictFunc func(Conflict) (Decision, error)

// Policy is the non-interactive conflict default.
type Policy string

const (
	PolicyReuse      Policy = "reuse"
	PolicyRegenerate Policy = "regenerate"
	PolicyFail       Policy = "fail"
)

// ParsePolicy validates a policy name from config or a CLI flag.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case PolicyReuse, "":
		return PolicyReuse, nil
	case PolicyRegenerate:
		return PolicyRegenerate, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", services.Wrap(services.ErrValidation, "transcribe", "policy",
			fmt.Sprintf("unknown stale-transcript policy %q (want reuse, regenerate, or fail)", raw), nil)
	}
}

// Result reports where the transcript came from.
type Result struct {
	TranscriptPath string
	Segments       []transcript.Segment
	Reused         bool
	Generated      bool
	// Partial marks a transcript cut short by cancellation. The file on
	// disk is still valid and covers the media up to the last finished
	// chunk.
	Partial bool
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithPolicy sets the non-interactive conflict policy.
func WithPolicy(policy Policy) GuardOption {
	return func(g *Guard) { g.policy = policy }
}

// WithLogger routes guard diagnostics to the given logger.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logging.NewComponentLogger(logger, "transcribe")
		}
	}
}

// Guard gates transcript generation behind the settings fingerprint so
// a cached transcript is reused when nothing changed, and never silently
// reused when something did.
type Guard struct {
	backend Backend
	logger  *slog.Logger
	policy  Policy
}

// NewGuard builds a guard around a backend.
func NewGuard(backend Backend, opts ...GuardOption) *Guard {
	g := &Guard{
		backend: backend,
		logger:  logging.NewNop(),
		policy:  PolicyReuse,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetOrCreate returns the transcript for mediaPath, generating it when
// no cache exists or when a settings conflict resolves to regenerate.
// onConflict may be nil, in which case the guard's policy decides.
func (g *Guard) GetOrCreate(ctx context.Context, mediaPath string, settings Settings, onConflict ConflictFunc) (Result, error) {
	if strings.TrimSpace(mediaPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "transcribe", "guard", "media path required", nil)
	}
	if _, err := os.Stat(mediaPath); err != nil {
		return Result{}, services.Wrap(services.ErrNotFound, "transcribe", "guard", "media file "+mediaPath, err)
	}

	unlock, err := g.acquire(mediaPath)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	transcriptPath := TranscriptPath(mediaPath)
	if _, err := os.Stat(transcriptPath); err == nil {
		return g.resolveExisting(ctx, mediaPath, transcriptPath, settings, onConflict)
	}
	return g.generate(ctx, mediaPath, settings)
}

// Regenerate ignores any cached transcript and runs the backend. It is
// the code path behind a force flag.
func (g *Guard) Regenerate(ctx context.Context, mediaPath string, settings Settings) (Result, error) {
	if strings.TrimSpace(mediaPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "transcribe", "guard", "media path required", nil)
	}
	if _, err := os.Stat(mediaPath); err != nil {
		return Result{}, services.Wrap(services.ErrNotFound, "transcribe", "guard", "media file "+mediaPath, err)
	}
	unlock, err := g.acquire(mediaPath)
	if err != nil {
		return Result{}, err
	}
	defer unlock()
	return g.generate(ctx, mediaPath, settings)
}

// acquire takes the per-file advisory lock. A held lock means another
// job is working on the same media file right now, so the caller should
// retry later rather than queue behind it.
func (g *Guard) acquire(mediaPath string) (func(), error) {
	path := lockPath(mediaPath)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcribe", "lock", "acquire "+path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "transcribe", "lock",
			"another job is already processing "+mediaPath, nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			g.logger.Warn("failed to release transcript lock", logging.String("path", path), logging.Error(err))
		}
		_ = os.Remove(path)
	}, nil
}

func (g *Guard) resolveExisting(ctx context.Context, mediaPath, transcriptPath string, settings Settings, onConflict ConflictFunc) (Result, error) {
	existing, err := loadFingerprint(MetaPath(mediaPath))
	changed := settingsDiff(existing, err, settings)
	if len(changed) == 0 {
		return g.reuse(ctx, mediaPath, transcriptPath, settings)
	}

	conflict := Conflict{
		MediaPath:      mediaPath,
		TranscriptPath: transcriptPath,
		Existing:       existing,
		Requested:      settings,
		Changed:        changed,
	}
	decision, err := g.decide(conflict, onConflict)
	if err != nil {
		return Result{}, err
	}
	switch decision {
	case DecisionReuse:
		g.logger.Warn("reusing transcript generated with different settings",
			logging.String("media", mediaPath),
			logging.String("changed", strings.Join(changed, "; ")))
		return g.reuse(ctx, mediaPath, transcriptPath, settings)
	case DecisionRegenerate:
		return g.generate(ctx, mediaPath, settings)
	default:
		return Result{}, services.Wrap(services.ErrStaleTranscript, "transcribe", "guard",
			"cancelled: "+strings.Join(changed, "; "), nil)
	}
}

// settingsDiff folds fingerprint load failures into the diff so a
// missing or corrupt fingerprint surfaces as a conflict instead of a
// silent reuse.
func settingsDiff(existing Fingerprint, loadErr error, requested Settings) []string {
	if loadErr != nil {
		if os.IsNotExist(loadErr) {
			return []string{"fingerprint missing"}
		}
		return []string{"fingerprint unreadable"}
	}
	return existing.Settings.Diff(requested)
}

func (g *Guard) decide(conflict Conflict, onConflict ConflictFunc) (Decision, error) {
	if onConflict != nil {
		return onConflict(conflict)
	}
	switch g.policy {
	case PolicyRegenerate:
		return DecisionRegenerate, nil
	case PolicyFail:
		return DecisionCancel, services.Wrap(services.ErrStaleTranscript, "transcribe", "guard",
			"transcript settings changed: "+strings.Join(conflict.Changed, "; "), nil)
	default:
		return DecisionReuse, nil
	}
}

// reuse loads the cached transcript. An unreadable cache falls through
// to regeneration rather than failing the whole operation.
func (g *Guard) reuse(ctx context.Context, mediaPath, transcriptPath string, settings Settings) (Result, error) {
	segments, err := transcript.Parse(transcriptPath)
	if err != nil {
		g.logger.Warn("cached transcript unreadable, regenerating",
			logging.String("path", transcriptPath), logging.Error(err))
		return g.generate(ctx, mediaPath, settings)
	}
	g.logger.Debug("reusing cached transcript",
		logging.String("path", transcriptPath),
		logging.Int("segments", len(segments)))
	return Result{TranscriptPath: transcriptPath, Segments: segments, Reused: true}, nil
}

func (g *Guard) generate(ctx context.Context, mediaPath string, settings Settings) (Result, error) {
	if g.backend == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "transcribe", "guard", "no backend configured", nil)
	}

	transcriptPath := TranscriptPath(mediaPath)
	var collected []transcript.Segment
	started := time.Now()
	backendErr := g.backend.Transcribe(ctx, Request{MediaPath: mediaPath, Settings: settings}, func(seg transcript.Segment) error {
		collected = append(collected, seg)
		return nil
	})

	partial := false
	if backendErr != nil {
		if ctx.Err() == nil || len(collected) == 0 {
			return Result{}, backendErr
		}
		// Cancellation after at least one finished chunk: the chunks in
		// hand form a valid transcript for the media up to that point,
		// so persist them instead of throwing the work away.
		partial = true
	}
	if len(collected) == 0 {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "guard",
			"backend produced no segments for "+mediaPath, nil)
	}

	if err := writeTranscript(transcriptPath, collected); err != nil {
		return Result{}, err
	}
	if err := writeFingerprint(MetaPath(mediaPath), settings); err != nil {
		return Result{}, err
	}

	// Round-trip through the parser so callers see the same normalized
	// segments a later cache hit would.
	segments, err := transcript.Parse(transcriptPath)
	if err != nil {
		return Result{}, err
	}

	g.logger.Info("transcript generated",
		logging.String("path", transcriptPath),
		logging.Int("segments", len(segments)),
		logging.Bool("partial", partial),
		logging.Duration("elapsed", time.Since(started)))
	return Result{TranscriptPath: transcriptPath, Segments: segments, Generated: true, Partial: partial}, nil
}

func writeTranscript(path string, segments []transcript.Segment) error {
	envelope := struct {
		Segments []transcript.Segment `json:"segments"`
	}{Segments: segments}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", path, err)
	}
	return nil
}

func writeFingerprint(path string, settings Settings) error {
	fp := Fingerprint{Settings: settings, CreatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fingerprint: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fingerprint %s: %w", path, err)
	}
	return nil
}
