package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tvcut/internal/cutlist"
	"tvcut/internal/fileutil"
	"tvcut/internal/locate"
	"tvcut/internal/services"
	"tvcut/internal/streams"
)

// ManifestVersion is bumped whenever the manifest layout changes.
const ManifestVersion = 1

// Manifest is the JSON document a run leaves beside its outputs. It carries
// everything the external demuxer needs and the timeline the resync step
// consumes.
type Manifest struct {
	Version      int                 `json:"version"`
	RunID        string              `json:"run_id"`
	Source       string              `json:"source"`
	Cutlist      string              `json:"cutlist,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Strategy     locate.Mode         `json:"strategy"`
	FrameRate    float64             `json:"frame_rate,omitempty"`
	Streams      []streams.Selection `json:"streams"`
	Catalog      streams.Catalog     `json:"catalog"`
	Plan         cutlist.Plan        `json:"plan"`
	Extractions  []locate.Extraction `json:"extractions"`
	Calibration  *locate.Calibration `json:"calibration,omitempty"`
	ChaptersFile string              `json:"chapters_file,omitempty"`
}

// Timeline returns the cut-boundary timeline recorded in the manifest.
func (m Manifest) Timeline() cutlist.Timeline {
	return m.Plan.Timeline
}

// WriteManifest atomically writes m as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by WriteManifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, services.Wrap(services.ErrNotFound, "pipeline", "read manifest", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, services.Wrap(services.ErrValidation, "pipeline", "decode manifest", path, err)
	}
	if m.Version != ManifestVersion {
		return Manifest{}, services.Wrap(services.ErrValidation, "pipeline", "decode manifest",
			fmt.Sprintf("%s has version %d, expected %d", path, m.Version, ManifestVersion), nil)
	}
	return m, nil
}

// outputPaths names the files a run writes for source inside dir.
type outputPaths struct {
	Dir      string
	Manifest string
	Base     string
}

func newOutputPaths(dir, source string) outputPaths {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return outputPaths{
		Dir:      dir,
		Base:     filepath.Join(dir, base),
		Manifest: filepath.Join(dir, base+".manifest.json"),
	}
}
