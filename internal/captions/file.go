package captions

import (
	"fmt"
	"io"
	"os"

	"tvcut/internal/cutlist"
	"tvcut/internal/fileutil"
	"tvcut/internal/services"
)

// ResyncFile reads SubRip captions from in, corrects them against the
// timeline, and atomically writes the result to out. A missing or empty
// input is not an error: it yields zero stats and out is not created.
func ResyncFile(in, out string, timeline cutlist.Timeline) (Stats, error) {
	present, err := fileutil.NonEmpty(in)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrExternalTool, "captions", "stat captions", in, err)
	}
	if !present {
		return Stats{}, nil
	}

	file, err := os.Open(in)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrNotFound, "captions", "open captions", in, err)
	}
	entries, err := ParseSRT(file)
	_ = file.Close()
	if err != nil {
		return Stats{}, services.Wrap(services.ErrValidation, "captions", "parse captions", in, err)
	}
	if len(entries) == 0 {
		return Stats{}, nil
	}

	corrected, stats := resync(entries, timeline)
	if err := fileutil.WriteAtomicFunc(out, 0o644, func(w io.Writer) error {
		return WriteSRT(w, corrected)
	}); err != nil {
		return Stats{}, fmt.Errorf("write corrected captions: %w", err)
	}
	return stats, nil
}
