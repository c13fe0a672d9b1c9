package config

const (
	defaultConfigPath      = "~/.config/tvcut/config.toml"
	defaultWorkDir         = "~/.local/share/tvcut/work"
	defaultStateDir        = "~/.local/share/tvcut/state"
	defaultLogDir          = "~/.local/share/tvcut/logs"
	defaultEdgeThreshold   = 5.0
	defaultStrategy        = "time"
	defaultCutlistFormat   = "auto"
	defaultComskipFPS      = 29.97
	defaultLanguage        = "en"
	defaultCaptionSuffix   = ".fixed.srt"
	defaultChapterFormat   = "mkv"
	defaultChapterLabel    = "Scene %d"
	defaultFFmpeg          = "ffmpeg"
	defaultFFprobe         = "ffprobe"
	defaultCCExtractor     = "ccextractor"
	defaultFreeSpaceFactor = 1.1
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Cutting: Cutting{
			EdgeThreshold:    defaultEdgeThreshold,
			Strategy:         defaultStrategy,
			CutlistFormat:    defaultCutlistFormat,
			ComskipFPS:       defaultComskipFPS,
			CalibrationCache: true,
		},
		Streams: Streams{
			Language: defaultLanguage,
		},
		Captions: Captions{
			Enabled: true,
			Suffix:  defaultCaptionSuffix,
		},
		Chapters: Chapters{
			Format: defaultChapterFormat,
			Label:  defaultChapterLabel,
		},
		Tools: Tools{
			FFmpeg:      defaultFFmpeg,
			FFprobe:     defaultFFprobe,
			CCExtractor: defaultCCExtractor,
		},
		Preflight: Preflight{
			Enabled:         true,
			FreeSpaceFactor: defaultFreeSpaceFactor,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
