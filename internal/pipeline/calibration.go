package pipeline

import (
	"context"
	"log/slog"

	"tvcut/internal/locate"
	"tvcut/internal/logging"
	"tvcut/internal/store"
)

// CalibrationCache persists calibrations between runs.
type CalibrationCache interface {
	LookupCalibration(ctx context.Context, key store.RecordingKey) (locate.Calibration, bool, error)
	SaveCalibration(ctx context.Context, key store.RecordingKey, cal locate.Calibration) error
}

// cachingMeasurer serves Calibrate from the cache when the recording is
// unchanged. Cache failures are logged and fall through to measuring.
type cachingMeasurer struct {
	locate.Measurer
	cache   CalibrationCache
	key     store.RecordingKey
	refresh bool
	logger  *slog.Logger

	hit bool
}

func (m *cachingMeasurer) Calibrate(ctx context.Context) (locate.Calibration, error) {
	if !m.refresh {
		cal, ok, err := m.cache.LookupCalibration(ctx, m.key)
		switch {
		case err != nil:
			logging.WarnWithContext(m.logger, "calibration cache lookup failed", "calibration_cache_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "recording will be measured again"),
			)
		case ok && cal.Validate() == nil:
			m.hit = true
			m.logger.Info("calibration cache hit",
				logging.Args(logging.DecisionAttrs("calibration_source", "cache", "recording unchanged since last calibration")...)...)
			return cal, nil
		}
	}

	cal, err := m.Measurer.Calibrate(ctx)
	if err != nil {
		return locate.Calibration{}, err
	}
	m.logger.Info("calibration measured",
		logging.Int64("total_frames", cal.TotalFrames),
		logging.Int64("extra_bytes", cal.ExtraBytes),
		logging.Bool("refresh", m.refresh),
	)
	if saveErr := m.cache.SaveCalibration(ctx, m.key, cal); saveErr != nil {
		logging.WarnWithContext(m.logger, "calibration cache save failed", "calibration_cache_error",
			logging.Error(saveErr),
			logging.String(logging.FieldImpact, "next run will measure again"),
		)
	}
	return cal, nil
}
