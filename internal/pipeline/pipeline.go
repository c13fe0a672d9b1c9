package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tvcut/internal/chapters"
	"tvcut/internal/config"
	"tvcut/internal/cutlist"
	"tvcut/internal/locate"
	"tvcut/internal/logging"
	"tvcut/internal/media/ffprobe"
	"tvcut/internal/metrics"
	"tvcut/internal/preflight"
	"tvcut/internal/services"
	"tvcut/internal/store"
	"tvcut/internal/streams"
)

// Prober inspects a recording.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) (ffprobe.Result, error)

func (f ProberFunc) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return f(ctx, path)
}

// MeasurerFactory builds a byte-offset measurer for the selected streams.
type MeasurerFactory func(source string, selected []streams.Selection) locate.Measurer

// RunHistory records run outcomes.
type RunHistory interface {
	BeginRun(ctx context.Context, id, source string) error
	FinishRun(ctx context.Context, id string, outcome store.Outcome) error
}

// Runner executes pipeline runs against a single configuration.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	prober      Prober
	newMeasurer MeasurerFactory
	cache       CalibrationCache
	history     RunHistory
	metrics     *metrics.Recorder
	newRunID    func() string
	now         func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithProber replaces the ffprobe-backed prober.
func WithProber(p Prober) Option {
	return func(r *Runner) { r.prober = p }
}

// WithMeasurerFactory replaces the ffmpeg-backed measurer.
func WithMeasurerFactory(f MeasurerFactory) Option {
	return func(r *Runner) { r.newMeasurer = f }
}

// WithStore enables the calibration cache and run history.
func WithStore(s *store.Store) Option {
	return func(r *Runner) {
		if s == nil {
			return
		}
		r.cache = s
		r.history = s
	}
}

// WithRunHistory sets only the run history sink.
func WithRunHistory(h RunHistory) Option {
	return func(r *Runner) { r.history = h }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(f func() string) Option {
	return func(r *Runner) { r.newRunID = f }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner builds a Runner for cfg.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: nil config")
	}
	r := &Runner{
		cfg:      cfg,
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	r.prober = ProberFunc(func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, cfg.Tools.FFprobe, path)
	})
	r.newMeasurer = func(source string, selected []streams.Selection) locate.Measurer {
		return locate.NewFFmpegMeasurer(cfg.Tools.FFmpeg, source, streamMaps(selected))
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	r.logger = logging.NewComponentLogger(r.logger, "pipeline")
	if r.metrics == nil {
		r.metrics = metrics.NewRecorder()
	}
	return r, nil
}

// streamMaps converts selections to ffmpeg PID stream specifiers.
func streamMaps(selected []streams.Selection) []string {
	maps := make([]string, 0, len(selected))
	for _, sel := range selected {
		if strings.TrimSpace(sel.ID) == "" {
			continue
		}
		maps = append(maps, "0:#"+sel.ID)
	}
	return maps
}

// Request describes one run.
type Request struct {
	Source  string
	Cutlist string
	// CutlistFormat overrides the configured format when set.
	CutlistFormat cutlist.Format
	// OutputDir overrides the configured work directory when set.
	OutputDir string
	// Strategy overrides the configured locating strategy when set.
	Strategy locate.Mode
	// RefreshCalibration ignores cached calibrations.
	RefreshCalibration bool
}

// Planned is the outcome of probing and planning without locating.
type Planned struct {
	Probe     ffprobe.Result
	Catalog   streams.Catalog
	Plan      cutlist.Plan
	FrameRate float64
}

// Result reports what a run produced.
type Result struct {
	RunID        string
	Manifest     Manifest
	ManifestPath string
	ChaptersPath string
}

// Inspect probes source and builds its stream catalog.
func (r *Runner) Inspect(ctx context.Context, source string) (ffprobe.Result, streams.Catalog, error) {
	probe, err := r.prober.Inspect(ctx, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ffprobe.Result{}, streams.Catalog{}, ctxErr
		}
		return ffprobe.Result{}, streams.Catalog{}, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", source, err)
	}
	catalog, err := streams.Build(streams.RecordsFromProbe(probe), r.cfg.Streams.Language)
	if err != nil {
		return probe, streams.Catalog{}, err
	}
	if err := catalog.Validate(); err != nil {
		return probe, streams.Catalog{}, err
	}
	return probe, catalog, nil
}

// Plan probes source and plans its keep segments from the cutlist.
func (r *Runner) Plan(ctx context.Context, req Request) (Planned, error) {
	probe, catalog, err := r.Inspect(ctx, req.Source)
	if err != nil {
		return Planned{}, err
	}
	total := probe.DurationSeconds()
	if total <= 0 {
		return Planned{}, services.Wrap(services.ErrMeasurement, "probe", "duration",
			fmt.Sprintf("%s reports no duration", req.Source), nil)
	}

	format := req.CutlistFormat
	if format == "" {
		format, err = cutlist.ParseFormat(r.cfg.Cutting.CutlistFormat)
		if err != nil {
			return Planned{}, err
		}
	}
	var removes []cutlist.Interval
	if strings.TrimSpace(req.Cutlist) != "" {
		removes, err = cutlist.Load(req.Cutlist, format, r.cfg.Cutting.ComskipFPS)
		if err != nil {
			return Planned{}, err
		}
	}

	plan, err := cutlist.NewPlanner(r.cfg.Cutting.EdgeThreshold).Plan(total, removes)
	if err != nil {
		return Planned{}, err
	}

	fps := probe.FrameRate()
	if fps <= 0 {
		fps = r.cfg.Cutting.ComskipFPS
	}
	return Planned{Probe: probe, Catalog: catalog, Plan: plan, FrameRate: fps}, nil
}

// Run executes the full pipeline for req.
func (r *Runner) Run(ctx context.Context, req Request) (result Result, err error) {
	source, err := filepath.Abs(req.Source)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "pipeline", "resolve source", req.Source, err)
	}
	req.Source = source

	lock, err := acquireLock(r.cfg.LockDir(), source)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			r.logger.Debug("release lock failed", logging.Error(unlockErr))
		}
	}()

	runID := r.newRunID()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithSource(ctx, filepath.Base(source))
	logger := logging.WithContext(ctx, r.logger)
	started := r.now()

	if r.history != nil {
		if histErr := r.history.BeginRun(ctx, runID, source); histErr != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_error",
				logging.Error(histErr),
				logging.String(logging.FieldImpact, "run will not appear in history"),
			)
		}
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("cutlist", req.Cutlist),
	)

	var outcome store.Outcome
	defer func() {
		outcome.Err = err
		r.finish(ctx, logger, runID, source, started, outcome)
	}()

	if r.cfg.Preflight.Enabled {
		if err = r.stage(ctx, "preflight", func(ctx context.Context) error {
			return preflight.Err(preflight.RunAll(ctx, r.cfg, preflight.Request{Source: source}))
		}); err != nil {
			return Result{}, err
		}
	}

	var planned Planned
	if err = r.stage(ctx, "plan", func(ctx context.Context) error {
		var planErr error
		planned, planErr = r.Plan(ctx, req)
		if planErr != nil {
			return planErr
		}
		r.logPlan(logging.WithContext(ctx, r.logger), planned)
		return nil
	}); err != nil {
		return Result{}, err
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = r.cfg.Paths.WorkDir
	}
	if r.cfg.Preflight.Enabled {
		keptFraction := planned.Plan.FinalDuration() / planned.Plan.TotalDuration
		check := preflight.CheckFreeSpace("Work free space", outputDir,
			preflight.EstimateRequiredBytes(fileSize(planned.Probe, source), keptFraction, r.cfg.Preflight.FreeSpaceFactor))
		if err = preflight.Err([]preflight.Result{check}); err != nil {
			return Result{}, err
		}
	}

	mode := req.Strategy
	if mode == "" {
		if mode, err = locate.ParseMode(r.cfg.Cutting.Strategy); err != nil {
			return Result{}, err
		}
	}

	var (
		extractions []locate.Extraction
		calibration *locate.Calibration
	)
	if err = r.stage(ctx, "locate", func(ctx context.Context) error {
		strategy, stratErr := r.strategy(ctx, mode, source, planned, req.RefreshCalibration)
		if stratErr != nil {
			return stratErr
		}
		if byteStrategy, ok := strategy.(*locate.ByteOffset); ok {
			cal := byteStrategy.Calibration()
			calibration = &cal
			r.metrics.ObserveCalibration(source, cal.TotalFrames)
		}
		var locErr error
		extractions, locErr = locate.LocateAll(ctx, strategy, planned.Plan.Segments)
		return locErr
	}); err != nil {
		return Result{}, err
	}

	paths := newOutputPaths(outputDir, source)
	manifest := Manifest{
		Version:     ManifestVersion,
		RunID:       runID,
		Source:      source,
		Cutlist:     req.Cutlist,
		CreatedAt:   r.now().UTC(),
		Strategy:    mode,
		FrameRate:   planned.FrameRate,
		Streams:     planned.Catalog.Selected(),
		Catalog:     planned.Catalog,
		Plan:        planned.Plan,
		Extractions: extractions,
		Calibration: calibration,
	}

	var chaptersPath string
	if err = r.stage(ctx, "outputs", func(ctx context.Context) error {
		format, fmtErr := chapters.ParseFormat(r.cfg.Chapters.Format)
		if fmtErr != nil {
			return fmtErr
		}
		if format != chapters.FormatNone {
			candidate := paths.Base + format.Extension()
			written, writeErr := chapters.WriteFile(candidate, format, planned.Plan.Chapters, r.cfg.Chapters.Label)
			if writeErr != nil {
				return services.Wrap(services.ErrExternalTool, "outputs", "write chapters", candidate, writeErr)
			}
			if written {
				chaptersPath = candidate
				manifest.ChaptersFile = candidate
			}
		}
		return WriteManifest(paths.Manifest, manifest)
	}); err != nil {
		return Result{}, err
	}

	outcome = store.Outcome{
		Strategy:       string(mode),
		Segments:       len(planned.Plan.Segments),
		FinalDuration:  planned.Plan.FinalDuration(),
		RemovedSeconds: planned.Plan.Removed(),
		ManifestPath:   paths.Manifest,
	}
	r.metrics.ObservePlan(metrics.PlanSummary{
		Recording:     source,
		Strategy:      string(mode),
		Segments:      outcome.Segments,
		Removed:       outcome.RemovedSeconds,
		FinalDuration: outcome.FinalDuration,
	})

	return Result{
		RunID:        runID,
		Manifest:     manifest,
		ManifestPath: paths.Manifest,
		ChaptersPath: chaptersPath,
	}, nil
}

// Calibrate measures source once, refreshing the cache entry when a store
// is configured. The boolean reports a cache hit.
func (r *Runner) Calibrate(ctx context.Context, source string, refresh bool) (locate.Calibration, bool, error) {
	_, catalog, err := r.Inspect(ctx, source)
	if err != nil {
		return locate.Calibration{}, false, err
	}
	measurer := r.measurer(ctx, source, catalog.Selected(), refresh)
	cal, err := measurer.Calibrate(ctx)
	if err != nil {
		return locate.Calibration{}, false, err
	}
	if err := cal.Validate(); err != nil {
		return locate.Calibration{}, false, err
	}
	r.metrics.ObserveCalibration(source, cal.TotalFrames)
	cached := false
	if cm, ok := measurer.(*cachingMeasurer); ok {
		cached = cm.hit
	}
	return cal, cached, nil
}

func (r *Runner) strategy(ctx context.Context, mode locate.Mode, source string, planned Planned, refresh bool) (locate.Strategy, error) {
	var measurer locate.Measurer
	if mode == locate.ModeByte {
		measurer = r.measurer(ctx, source, planned.Catalog.Selected(), refresh)
	}
	strategy, err := locate.NewStrategy(ctx, mode, planned.FrameRate, measurer)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("locating strategy selected",
		logging.Args(logging.DecisionAttrs("locate_strategy", string(strategy.Name()), "configured")...)...)
	return strategy, nil
}

func (r *Runner) measurer(ctx context.Context, source string, selected []streams.Selection, refresh bool) locate.Measurer {
	base := r.newMeasurer(source, selected)
	if r.cache == nil || !r.cfg.Cutting.CalibrationCache {
		return base
	}
	logger := logging.WithContext(ctx, r.logger)
	key, err := store.KeyFor(source)
	if err != nil {
		logging.WarnWithContext(logger, "calibration cache key unavailable", "calibration_cache_error",
			logging.Error(err),
			logging.String(logging.FieldImpact, "calibration will not be cached"),
		)
		return base
	}
	return &cachingMeasurer{Measurer: base, cache: r.cache, key: key, refresh: refresh, logger: logger}
}

// stage runs fn with the stage name attached to ctx and logs its boundaries.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, r.logger)
	start := r.now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx); err != nil {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", r.now().Sub(start)),
			logging.Error(err),
		)
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", r.now().Sub(start)),
	)
	return nil
}

func (r *Runner) logPlan(logger *slog.Logger, planned Planned) {
	plan := planned.Plan
	for i, seg := range plan.Segments {
		logger.Debug("keep segment",
			logging.Int("segment", i+1),
			logging.Span("source", seg.Source.Start, seg.Source.End),
			logging.Clock("output_start", seg.ElapsedAtStart),
		)
	}
	if len(plan.Segments) == 0 {
		logging.WarnWithContext(logger, "plan keeps nothing", "empty_plan",
			logging.String(logging.FieldErrorHint, "check the cutlist against the recording length"),
			logging.String(logging.FieldImpact, "no extractions will be produced"),
		)
	}
	if video, ok := planned.Catalog.SelectedVideo(); ok {
		logger.Info("video stream selected", logging.String("stream_id", video.ID))
	}
	if audio, ok := planned.Catalog.SelectedAudio(); ok {
		logger.Info("audio stream selected",
			logging.String("stream_id", audio.ID),
			logging.String("language", audio.Language),
		)
	}
	logger.Info("plan computed",
		logging.Int("segments", len(plan.Segments)),
		logging.Clock("total", plan.TotalDuration),
		logging.Clock("final", plan.FinalDuration()),
		logging.Seconds("removed_seconds", plan.Removed()),
	)
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, runID, source string, started time.Time, outcome store.Outcome) {
	finished := r.now()
	if r.history != nil {
		if err := r.history.FinishRun(context.WithoutCancel(ctx), runID, outcome); err != nil {
			logging.WarnWithContext(logger, "run history update failed", "history_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run status may be stale in history"),
			)
		}
	}
	r.metrics.ObserveRun(source, finished, FailureClass(outcome.Err))
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.TextfilePath); err != nil {
		logging.WarnWithContext(logger, "metrics export failed", "metrics_error",
			logging.Error(err),
			logging.String(logging.FieldImpact, "textfile metrics are stale"),
		)
	}
	if outcome.Err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failure",
			logging.String("failure_class", FailureClass(outcome.Err)),
			logging.Duration("elapsed", finished.Sub(started)),
			logging.Error(outcome.Err),
		)
		return
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Duration("elapsed", finished.Sub(started)),
		logging.String("manifest", outcome.ManifestPath),
	)
}

// FailureClass names the error class used in metrics and history.
func FailureClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, services.ErrValidation):
		return "validation"
	case errors.Is(err, services.ErrNotFound):
		return "not_found"
	case errors.Is(err, services.ErrConfiguration):
		return "configuration"
	case errors.Is(err, services.ErrMeasurement):
		return "measurement"
	case errors.Is(err, services.ErrExternalTool):
		return "external_tool"
	default:
		return "other"
	}
}

func fileSize(probe ffprobe.Result, source string) int64 {
	if size := probe.SizeBytes(); size > 0 {
		return size
	}
	key, err := store.KeyFor(source)
	if err != nil {
		return 0
	}
	return key.Size
}
