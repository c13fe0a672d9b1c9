package logging

import (
	"path/filepath"
	"strings"
)

// FormatSubject builds the "recording · run · stage" prefix shown in console
// output. Recordings are reduced to their base name and run IDs to their
// first eight characters.
func FormatSubject(recording, runID, stage string) string {
	parts := make([]string, 0, 3)
	if recording = strings.TrimSpace(recording); recording != "" {
		parts = append(parts, filepath.Base(recording))
	}
	if runID = strings.TrimSpace(runID); runID != "" {
		if len(runID) > 8 {
			runID = runID[:8]
		}
		parts = append(parts, "run "+runID)
	}
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
