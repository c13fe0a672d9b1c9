package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tvcut/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives terminal output; defaults to stderr so stdout stays
	// free for command results.
	Writer io.Writer
	// FilePath, when set, receives a JSON copy of every record.
	FilePath       string
	StageOverrides map[string]string
	Development    bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	base := parseLevel(opts.Level)
	lowest := base
	overrides := make(map[string]slog.Level, len(opts.StageOverrides))
	for stage, value := range opts.StageOverrides {
		level := parseLevel(value)
		overrides[strings.ToLower(strings.TrimSpace(stage))] = level
		if level < lowest {
			lowest = level
		}
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(lowest)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	addSource := opts.Development || base <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var terminal slog.Handler
	switch format {
	case "json":
		terminal = newJSONHandler(writer, levelVar, addSource)
	case "console":
		terminal = newConsoleHandler(writer, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	handler := terminal
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		handler = TeeHandler(terminal, newJSONHandler(file, levelVar, true))
	}

	return slog.New(newStageLevelHandler(handler, base, overrides)), nil
}

// NewFromConfig creates a logger using application config defaults.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}
	opts := Options{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		StageOverrides: cfg.Logging.StageOverrides,
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.FilePath = filepath.Join(dir, "tvcut.log")
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
