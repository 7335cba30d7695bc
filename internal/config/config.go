package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"voxcut/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Transcription contains settings forwarded to the speech-to-text backend.
// These fields feed the persisted fingerprint that decides transcript reuse.
type Transcription struct {
	Binary         string `toml:"binary"`
	Model          string `toml:"model"`
	Device         string `toml:"device"`
	Language       string `toml:"language"`
	ComputeType    string `toml:"compute_type"`
	BeamSize       int    `toml:"beam_size"`
	BestOf         int    `toml:"best_of"`
	VADFilter      bool   `toml:"vad_filter"`
	NormalizeAudio bool   `toml:"normalize_audio"`
	OnStale        string `toml:"on_stale"`
}

// Search contains query matching configuration.
type Search struct {
	SemanticThreshold float64  `toml:"semantic_threshold"`
	EmbedBinary       string   `toml:"embed_binary"`
	EmbedModel        string   `toml:"embed_model"`
	IgnoredWords      []string `toml:"ignored_words"`
}

// Render contains supercut rendering configuration.
type Render struct {
	FFmpegBinary       string  `toml:"ffmpeg_binary"`
	FFprobeBinary      string  `toml:"ffprobe_binary"`
	BatchSize          int     `toml:"batch_size"`
	Concurrency        int     `toml:"concurrency"`
	Transition         string  `toml:"transition"`
	TransitionDuration float64 `toml:"transition_duration"`
	HardwareAccel      bool    `toml:"hardware_accel"`
	MinFreeGiB         int     `toml:"min_free_gib"`
}

// Library contains configuration for the transcript library database.
type Library struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for voxcut.
//
// Configuration sections by subsystem:
//   - Paths: data, staging, and log directories
//   - Transcription: speech-to-text backend settings (fingerprinted)
//   - Search: match thresholds, embedding bridge, ignored words
//   - Render: ffmpeg binaries, batching, transitions, encoder selection
//   - Library: sqlite transcript library
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Search        Search        `toml:"search"`
	Render        Render        `toml:"render"`
	Library       Library       `toml:"library"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voxcut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/voxcut/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voxcut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if err := fileutil.EnsureDir(dir); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LibraryDBPath returns the sqlite database path for the transcript library.
func (c *Config) LibraryDBPath() string {
	if strings.TrimSpace(c.Library.DBPath) != "" {
		return c.Library.DBPath
	}
	return filepath.Join(c.Paths.DataDir, "library.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
