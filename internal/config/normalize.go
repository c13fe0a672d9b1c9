package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCutting()
	c.normalizeStreams()
	c.normalizeCaptions()
	c.normalizeChapters()
	c.normalizeTools()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCutting() {
	c.Cutting.Strategy = strings.ToLower(strings.TrimSpace(c.Cutting.Strategy))
	if c.Cutting.Strategy == "" {
		c.Cutting.Strategy = defaultStrategy
	}
	c.Cutting.CutlistFormat = strings.ToLower(strings.TrimSpace(c.Cutting.CutlistFormat))
	if c.Cutting.CutlistFormat == "" {
		c.Cutting.CutlistFormat = defaultCutlistFormat
	}
	if c.Cutting.ComskipFPS == 0 {
		c.Cutting.ComskipFPS = defaultComskipFPS
	}
}

func (c *Config) normalizeStreams() {
	if value, ok := os.LookupEnv("TVCUT_LANGUAGE"); ok && strings.TrimSpace(value) != "" {
		c.Streams.Language = value
	}
	c.Streams.Language = strings.ToLower(strings.TrimSpace(c.Streams.Language))
	if c.Streams.Language == "" {
		c.Streams.Language = defaultLanguage
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.Suffix = strings.TrimSpace(c.Captions.Suffix)
	if c.Captions.Suffix == "" {
		c.Captions.Suffix = defaultCaptionSuffix
	}
}

func (c *Config) normalizeChapters() {
	c.Chapters.Format = strings.ToLower(strings.TrimSpace(c.Chapters.Format))
	if c.Chapters.Format == "" {
		c.Chapters.Format = defaultChapterFormat
	}
	if strings.TrimSpace(c.Chapters.Label) == "" {
		c.Chapters.Label = defaultChapterLabel
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	c.Tools.CCExtractor = strings.TrimSpace(c.Tools.CCExtractor)
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.TextfilePath, err = expandPath(strings.TrimSpace(c.Metrics.TextfilePath)); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("TVCUT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if len(c.Logging.StageOverrides) > 0 {
		overrides := make(map[string]string, len(c.Logging.StageOverrides))
		for stage, level := range c.Logging.StageOverrides {
			stage = strings.ToLower(strings.TrimSpace(stage))
			if stage == "" {
				continue
			}
			overrides[stage] = strings.ToLower(strings.TrimSpace(level))
		}
		c.Logging.StageOverrides = overrides
	}
}
