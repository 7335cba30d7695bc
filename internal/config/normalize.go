package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeSearch()
	c.normalizeRender()
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Binary = strings.TrimSpace(c.Transcription.Binary)
	if c.Transcription.Binary == "" {
		c.Transcription.Binary = defaultWhisperBinary
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.Device = strings.ToLower(strings.TrimSpace(c.Transcription.Device))
	if c.Transcription.Device == "" {
		c.Transcription.Device = defaultDevice
	}
	c.Transcription.ComputeType = strings.ToLower(strings.TrimSpace(c.Transcription.ComputeType))
	if c.Transcription.ComputeType == "" {
		c.Transcription.ComputeType = defaultComputeType
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.BeamSize == 0 {
		c.Transcription.BeamSize = defaultBeamSize
	}
	if c.Transcription.BestOf == 0 {
		c.Transcription.BestOf = defaultBestOf
	}
	c.Transcription.OnStale = strings.ToLower(strings.TrimSpace(c.Transcription.OnStale))
	if c.Transcription.OnStale == "" {
		c.Transcription.OnStale = defaultOnStale
	}
}

func (c *Config) normalizeSearch() {
	if c.Search.SemanticThreshold == 0 {
		c.Search.SemanticThreshold = defaultSemanticThreshold
	}
	c.Search.EmbedBinary = strings.TrimSpace(c.Search.EmbedBinary)
	if c.Search.EmbedBinary == "" {
		c.Search.EmbedBinary = defaultEmbedBinary
	}
	c.Search.EmbedModel = strings.TrimSpace(c.Search.EmbedModel)
	if c.Search.EmbedModel == "" {
		c.Search.EmbedModel = defaultEmbedModel
	}
	words := make([]string, 0, len(c.Search.IgnoredWords))
	for _, w := range c.Search.IgnoredWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	c.Search.IgnoredWords = words
}

func (c *Config) normalizeRender() {
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Render.BatchSize == 0 {
		c.Render.BatchSize = defaultBatchSize
	}
	if c.Render.Concurrency == 0 {
		c.Render.Concurrency = defaultConcurrency
	}
	c.Render.Transition = strings.ToLower(strings.TrimSpace(c.Render.Transition))
	if c.Render.Transition == "" {
		c.Render.Transition = defaultTransition
	}
	if c.Render.TransitionDuration == 0 {
		c.Render.TransitionDuration = defaultTransitionDuration
	}
	if c.Render.MinFreeGiB == 0 {
		c.Render.MinFreeGiB = defaultMinFreeGiB
	}
}

func (c *Config) normalizeLibrary() error {
	c.Library.DBPath = strings.TrimSpace(c.Library.DBPath)
	if c.Library.DBPath != "" {
		expanded, err := expandPath(c.Library.DBPath)
		if err != nil {
			return fmt.Errorf("library.db_path: %w", err)
		}
		c.Library.DBPath = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
