package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"tvcut/internal/config"
	"tvcut/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSourceReadable verifies the recording exists and can be read.
func CheckSourceReadable(path string) Result {
	const name = "Recording"
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, formatBytes(uint64(info.Size())))}
}

// CheckFreeSpace verifies that dir's filesystem has at least required bytes
// available to unprivileged users.
func CheckFreeSpace(name, dir string, required uint64) Result {
	available, err := availableBytes(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", dir, err)}
	}
	detail := fmt.Sprintf("%s free, %s needed", formatBytes(available), formatBytes(required))
	if available < required {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

var availableBytes = func(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}

// EstimateRequiredBytes scales the bytes expected to survive the cut by
// factor. keptFraction is clamped to [0,1].
func EstimateRequiredBytes(sourceBytes int64, keptFraction, factor float64) uint64 {
	if sourceBytes <= 0 {
		return 0
	}
	switch {
	case keptFraction < 0:
		keptFraction = 0
	case keptFraction > 1:
		keptFraction = 1
	}
	if factor <= 0 {
		factor = 1
	}
	return uint64(float64(sourceBytes) * keptFraction * factor)
}

// Requirements lists the external binaries used by the pipeline.
// CCExtractor is optional; captions are skipped without it.
func Requirements(cfg *config.Config) []deps.Requirement {
	ffprobe := cfg.Tools.FFprobe
	if ffprobe == "ffprobe" {
		ffprobe = deps.ResolveSibling(cfg.Tools.FFmpeg, "ffprobe", ffprobe)
	}
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for byte-offset measurement and demuxing",
			VersionArg:  "-version",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobe,
			Description: "Required for stream inspection",
			VersionArg:  "-version",
		},
	}
	if cfg.Captions.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "CCExtractor",
			Command:     cfg.Tools.CCExtractor,
			Description: "Extracts closed captions for resync",
			Optional:    true,
			VersionArg:  "--version",
		})
	}
	return requirements
}

// CheckTools evaluates the configured binaries.
func CheckTools(ctx context.Context, cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(ctx, Requirements(cfg))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Command
		if status.Version != "" {
			detail = fmt.Sprintf("%s (%s)", status.Command, status.Version)
		}
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}
	return results
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
