package config

const (
	defaultDataDir    = "~/.local/share/voxcut"
	defaultStagingDir = "~/.local/share/voxcut/staging"
	defaultLogDir     = "~/.local/share/voxcut/logs"

	defaultWhisperBinary = "voxcut-whisper"
	defaultWhisperModel  = "large-v3"
	defaultDevice        = "auto"
	defaultComputeType   = "auto"
	defaultBeamSize      = 5
	defaultBestOf        = 5
	defaultOnStale       = "reuse"

	defaultSemanticThreshold = 0.45
	defaultEmbedBinary       = "voxcut-embed"
	defaultEmbedModel        = "all-MiniLM-L6-v2"

	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultBatchSize          = 20
	defaultConcurrency        = 1
	defaultTransition         = "cut"
	defaultTransitionDuration = 0.5
	defaultMinFreeGiB         = 2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Transcription: Transcription{
			Binary:      defaultWhisperBinary,
			Model:       defaultWhisperModel,
			Device:      defaultDevice,
			ComputeType: defaultComputeType,
			BeamSize:    defaultBeamSize,
			BestOf:      defaultBestOf,
			VADFilter:   true,
			OnStale:     defaultOnStale,
		},
		Search: Search{
			SemanticThreshold: defaultSemanticThreshold,
			EmbedBinary:       defaultEmbedBinary,
			EmbedModel:        defaultEmbedModel,
		},
		Render: Render{
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			BatchSize:          defaultBatchSize,
			Concurrency:        defaultConcurrency,
			Transition:         defaultTransition,
			TransitionDuration: defaultTransitionDuration,
			HardwareAccel:      true,
			MinFreeGiB:         defaultMinFreeGiB,
		},
		Library: Library{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
