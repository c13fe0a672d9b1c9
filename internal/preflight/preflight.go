package preflight

import (
	"context"
	"fmt"
	"strings"

	"tvcut/internal/config"
	"tvcut/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Blocking reports whether the result should stop a run.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Optional
}

// Request describes the recording a run is about to process. Zero values
// skip the checks that need them.
type Request struct {
	Source       string
	SourceBytes  int64
	KeptFraction float64
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, req Request) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if req.Source != "" {
		results = append(results, CheckSourceReadable(req.Source))
	}
	if req.SourceBytes > 0 {
		required := EstimateRequiredBytes(req.SourceBytes, req.KeptFraction, cfg.Preflight.FreeSpaceFactor)
		results = append(results, CheckFreeSpace("Work free space", cfg.Paths.WorkDir, required))
	}
	if ctx.Err() != nil {
		return results
	}
	results = append(results, CheckTools(ctx, cfg)...)
	return results
}

// Err summarizes blocking failures as a configuration error, or nil when
// every required check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Blocking() {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "run checks", strings.Join(failed, "; "), nil)
}
