package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working, state, and log directories.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Cutting contains cutlist planning and segment locating settings.
type Cutting struct {
	// EdgeThreshold is the number of seconds at either end of a recording in
	// which cuts and trailing segments are ignored.
	EdgeThreshold float64 `toml:"edge_threshold"`
	// Strategy selects segment locating: "time" or "byte".
	Strategy      string  `toml:"strategy"`
	CutlistFormat string  `toml:"cutlist_format"`
	ComskipFPS    float64 `toml:"comskip_fps"`
	// CalibrationCache stores byte-offset calibrations in the state database.
	CalibrationCache bool `toml:"calibration_cache"`
}

// Streams contains elementary stream selection settings.
type Streams struct {
	Language string `toml:"language"`
}

// Captions contains caption resynchronization settings.
type Captions struct {
	Enabled bool   `toml:"enabled"`
	Suffix  string `toml:"suffix"`
}

// Chapters contains chapter file settings.
type Chapters struct {
	Format string `toml:"format"`
	Label  string `toml:"label"`
}

// Tools names the external binaries invoked by the pipeline.
type Tools struct {
	FFmpeg      string `toml:"ffmpeg"`
	FFprobe     string `toml:"ffprobe"`
	CCExtractor string `toml:"ccextractor"`
}

// Preflight contains pre-run checks.
type Preflight struct {
	Enabled bool `toml:"enabled"`
	// FreeSpaceFactor scales the estimated kept bytes when checking the work
	// directory's free space.
	FreeSpaceFactor float64 `toml:"free_space_factor"`
}

// Metrics contains Prometheus textfile export settings.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for tvcut.
//
// Configuration sections by subsystem:
//   - Paths: work, state, and log directories
//   - Cutting: edge threshold, locating strategy, cutlist parsing
//   - Streams: preferred audio language
//   - Captions: caption resync output
//   - Chapters: chapter file format and labels
//   - Tools: external binaries
//   - Preflight: access and free space checks
//   - Metrics: node-exporter textfile output
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Cutting   Cutting   `toml:"cutting"`
	Streams   Streams   `toml:"streams"`
	Captions  Captions  `toml:"captions"`
	Chapters  Chapters  `toml:"chapters"`
	Tools     Tools     `toml:"tools"`
	Preflight Preflight `toml:"preflight"`
	Metrics   Metrics   `toml:"metrics"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
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

// decodeFile strictly decodes a TOML file over cfg. Unknown keys are errors
// so a misspelled setting cannot silently fall back to its default.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	err = decoder.Decode(cfg)
	var (
		strict *toml.StrictMissingError
		syntax *toml.DecodeError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &strict):
		return fmt.Errorf("parse config %s: %s", path, strict.String())
	case errors.As(err, &syntax):
		row, col := syntax.Position()
		return fmt.Errorf("parse config %s:%d:%d: %s", path, row, col, syntax.Error())
	default:
		return fmt.Errorf("parse config %s: %w", path, err)
	}
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tvcut.toml")
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

// EnsureDirectories creates the work, state, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the location of the SQLite state database.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.StateDir, "tvcut.db")
}

// LockDir returns the directory holding per-recording lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
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

// ErrSampleExists reports that CreateSample found a file it may not replace.
var ErrSampleExists = errors.New("config file already exists")

// CreateSample writes the sample configuration to path. An existing file is
// only replaced when overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrSampleExists, path)
	}
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := file.WriteString(sampleConfig); err != nil {
		_ = file.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return file.Close()
}
