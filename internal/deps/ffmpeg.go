package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveSibling returns the path of tool when it sits next to the resolved
// primary binary, such as an ffprobe shipped beside a static ffmpeg build.
// It falls back to fallback when no sibling exists.
func ResolveSibling(primary, tool, fallback string) string {
	primary = strings.TrimSpace(primary)
	if primary == "" {
		return fallback
	}
	resolved, err := exec.LookPath(primary)
	if err != nil {
		return fallback
	}
	candidate := filepath.Join(filepath.Dir(resolved), executableName(tool))
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return fallback
	}
	return candidate
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
