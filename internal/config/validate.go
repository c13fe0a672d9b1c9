package config

import (
	"errors"
	"fmt"
	"math"

	"tvcut/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCutting(); err != nil {
		return err
	}
	if err := c.validateStreams(); err != nil {
		return err
	}
	if err := c.validateChapters(); err != nil {
		return err
	}
	if err := c.validatePreflight(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateCutting() error {
	if math.IsNaN(c.Cutting.EdgeThreshold) || c.Cutting.EdgeThreshold < 0 {
		return errors.New("cutting.edge_threshold must be zero or positive (seconds)")
	}
	switch c.Cutting.Strategy {
	case "time", "byte":
	default:
		return fmt.Errorf("cutting.strategy: unsupported value %q (want time or byte)", c.Cutting.Strategy)
	}
	switch c.Cutting.CutlistFormat {
	case "auto", "comskip", "edl", "seconds":
	default:
		return fmt.Errorf("cutting.cutlist_format: unsupported value %q", c.Cutting.CutlistFormat)
	}
	if c.Cutting.ComskipFPS <= 0 {
		return errors.New("cutting.comskip_fps must be positive")
	}
	return nil
}

func (c *Config) validateStreams() error {
	if language.Code(c.Streams.Language) == "" {
		return fmt.Errorf("streams.language: unrecognized language %q", c.Streams.Language)
	}
	return nil
}

func (c *Config) validateChapters() error {
	switch c.Chapters.Format {
	case "mkv", "ttxt", "mp4", "xml", "none":
	default:
		return fmt.Errorf("chapters.format: unsupported value %q", c.Chapters.Format)
	}
	return nil
}

func (c *Config) validatePreflight() error {
	if c.Preflight.FreeSpaceFactor < 0 {
		return errors.New("preflight.free_space_factor must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if err := validateLevel("logging.level", c.Logging.Level); err != nil {
		return err
	}
	for stage, level := range c.Logging.StageOverrides {
		if err := validateLevel("logging.stage_overrides."+stage, level); err != nil {
			return err
		}
	}
	return nil
}

func validateLevel(key, level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("%s: unsupported level %q", key, level)
	}
}
