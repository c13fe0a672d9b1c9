package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"tvcut/internal/captions"
	"tvcut/internal/chapters"
	"tvcut/internal/logging"
	"tvcut/internal/services"
)

// ResyncRequest names the inputs of a caption resync.
type ResyncRequest struct {
	Manifest string
	Captions string
	// Output defaults to the captions path with the configured suffix.
	Output string
}

// ResyncResult reports what the resync wrote.
type ResyncResult struct {
	Output string         `json:"output,omitempty"`
	Stats  captions.Stats `json:"stats"`
}

// Resync corrects captions extracted from the rejoined stream against the
// manifest's cut-boundary timeline.
func (r *Runner) Resync(ctx context.Context, req ResyncRequest) (ResyncResult, error) {
	if !r.cfg.Captions.Enabled {
		return ResyncResult{}, services.Wrap(services.ErrConfiguration, "resync", "captions", "caption resync is disabled", nil)
	}
	manifest, err := LoadManifest(req.Manifest)
	if err != nil {
		return ResyncResult{}, err
	}
	ctx = services.WithRunID(ctx, manifest.RunID)
	ctx = services.WithSource(ctx, filepath.Base(manifest.Source))

	output := req.Output
	if output == "" {
		output = CaptionOutputPath(req.Captions, r.cfg.Captions.Suffix)
	}

	var stats captions.Stats
	err = r.stage(ctx, "resync", func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var resyncErr error
		stats, resyncErr = captions.ResyncFile(req.Captions, output, manifest.Timeline())
		return resyncErr
	})
	if err != nil {
		return ResyncResult{}, err
	}

	logger := logging.WithContext(ctx, r.logger)
	if stats.Entries == 0 {
		logging.WarnWithContext(logger, "no captions to resync", "captions_empty",
			logging.String("captions", req.Captions),
			logging.String(logging.FieldImpact, "no corrected caption file written"),
		)
		output = ""
	} else {
		logger.Info("captions resynced",
			logging.Int("entries", stats.Entries),
			logging.Int("clipped", stats.Clipped),
			logging.Seconds("final_delay", stats.FinalDelay),
			logging.String("output", output),
		)
	}
	r.metrics.ObserveCaptions(manifest.Source, stats.Entries, stats.Clipped)
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.TextfilePath); err != nil {
		logging.WarnWithContext(logger, "metrics export failed", "metrics_error", logging.Error(err))
	}
	return ResyncResult{Output: output, Stats: stats}, nil
}

// CaptionOutputPath replaces the extension of captions with suffix.
func CaptionOutputPath(captionsPath, suffix string) string {
	if suffix == "" {
		suffix = ".fixed.srt"
	}
	return strings.TrimSuffix(captionsPath, filepath.Ext(captionsPath)) + suffix
}

// WriteChapters re-emits the chapter marks of a manifest in format.
func (r *Runner) WriteChapters(manifestPath string, format chapters.Format, out, label string) (string, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return "", err
	}
	if label == "" {
		label = r.cfg.Chapters.Label
	}
	if out == "" {
		out = strings.TrimSuffix(manifestPath, ".manifest.json") + format.Extension()
	}
	written, err := chapters.WriteFile(out, format, manifest.Plan.Chapters, label)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "chapters", "write", out, err)
	}
	if !written {
		return "", nil
	}
	return out, nil
}
