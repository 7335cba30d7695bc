package config

import (
	"errors"
	"fmt"
)

var validTransitions = map[string]struct{}{
	"cut":           {},
	"crossfade":     {},
	"fade_to_black": {},
	"dissolve":      {},
}

var validOnStale = map[string]struct{}{
	"reuse":      {},
	"regenerate": {},
	"fail":       {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.BeamSize < 1 {
		return errors.New("transcription.beam_size must be positive")
	}
	if c.Transcription.BestOf < 1 {
		return errors.New("transcription.best_of must be positive")
	}
	if _, ok := validOnStale[c.Transcription.OnStale]; !ok {
		return fmt.Errorf("transcription.on_stale must be one of reuse, regenerate, fail; got %q", c.Transcription.OnStale)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.SemanticThreshold < 0 || c.Search.SemanticThreshold > 1 {
		return errors.New("search.semantic_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.BatchSize < 1 {
		return errors.New("render.batch_size must be positive")
	}
	if c.Render.Concurrency < 1 {
		return errors.New("render.concurrency must be positive")
	}
	if _, ok := validTransitions[c.Render.Transition]; !ok {
		return fmt.Errorf("render.transition must be one of cut, crossfade, fade_to_black, dissolve; got %q", c.Render.Transition)
	}
	if c.Render.TransitionDuration < 0 {
		return errors.New("render.transition_duration must not be negative")
	}
	if c.Render.MinFreeGiB < 0 {
		return errors.New("render.min_free_gib must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}
