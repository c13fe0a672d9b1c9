package locate

import (
	"context"
	"fmt"
	"math"

	"tvcut/internal/cutlist"
	"tvcut/internal/services"
)

// ErrNoFrameCount reports a calibration pass that could not count frames.
var ErrNoFrameCount = fmt.Errorf("%w: no frame count", services.ErrMeasurement)

// Calibration is the whole-file measurement used to correct per-frame byte
// offsets.
type Calibration struct {
	TotalFrames int64 `json:"total_frames"`
	SourceBytes int64 `json:"source_bytes"`
	RemuxBytes  int64 `json:"remux_bytes"`
	// ExtraBytes is the ancillary data present in the source but not in the
	// audio/video remux.
	ExtraBytes int64 `json:"extra_bytes"`
}

// NewCalibration derives ExtraBytes from the source and remux sizes.
func NewCalibration(totalFrames, sourceBytes, remuxBytes int64) Calibration {
	return Calibration{
		TotalFrames: totalFrames,
		SourceBytes: sourceBytes,
		RemuxBytes:  remuxBytes,
		ExtraBytes:  sourceBytes - remuxBytes,
	}
}

// Validate rejects calibrations without a usable frame count.
func (c Calibration) Validate() error {
	if c.TotalFrames <= 0 {
		return fmt.Errorf("%w: calibration counted %d frames", ErrNoFrameCount, c.TotalFrames)
	}
	if c.RemuxBytes <= 0 {
		return services.Wrap(services.ErrMeasurement, "locate", "calibrate",
			fmt.Sprintf("calibration remux produced %d bytes", c.RemuxBytes), nil)
	}
	return nil
}

// Offset applies the proportional ancillary-data correction to a measured
// byte count at frame.
func (c Calibration) Offset(frame, measured int64) int64 {
	if c.TotalFrames <= 0 {
		return measured
	}
	correction := float64(c.ExtraBytes) * float64(frame) / float64(c.TotalFrames)
	return measured + int64(math.Round(correction))
}

// Measurer measures remux output sizes for a source recording.
type Measurer interface {
	// Calibrate remuxes the whole recording and reports frame and byte totals.
	Calibrate(ctx context.Context) (Calibration, error)
	// MeasureFrames remuxes the first frames video frames and reports the
	// number of bytes emitted.
	MeasureFrames(ctx context.Context, frames int64) (int64, error)
}

// ByteOffset locates segments as corrected byte ranges in the source.
type ByteOffset struct {
	fps         float64
	calibration Calibration
	measurer    Measurer
}

// NewByteOffset validates the inputs of a byte-offset strategy.
func NewByteOffset(fps float64, calibration Calibration, measurer Measurer) (*ByteOffset, error) {
	if math.IsNaN(fps) || fps <= 0 {
		return nil, services.Wrap(services.ErrValidation, "locate", "new byte strategy",
			fmt.Sprintf("frame rate %v must be positive", fps), nil)
	}
	if err := calibration.Validate(); err != nil {
		return nil, err
	}
	if measurer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "locate", "new byte strategy", "measurer required", nil)
	}
	return &ByteOffset{fps: fps, calibration: calibration, measurer: measurer}, nil
}

func (b *ByteOffset) Name() Mode { return ModeByte }

// Calibration returns the calibration the strategy corrects with.
func (b *ByteOffset) Calibration() Calibration { return b.calibration }

// FrameAt converts a source time to the nearest frame number.
func (b *ByteOffset) FrameAt(seconds float64) int64 {
	return int64(math.Round(seconds * b.fps))
}

func (b *ByteOffset) Locate(ctx context.Context, seg cutlist.KeepSegment) (Extraction, error) {
	startFrame := b.FrameAt(seg.Source.Start)
	endFrame := b.FrameAt(seg.Source.End)
	startByte, err := b.resolve(ctx, startFrame)
	if err != nil {
		return Extraction{}, err
	}
	endByte, err := b.resolve(ctx, endFrame)
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{
		Segment:    seg,
		Mode:       ModeByte,
		Start:      seg.Source.Start,
		Duration:   seg.Source.Duration(),
		StartFrame: startFrame,
		EndFrame:   endFrame,
		StartByte:  startByte,
		EndByte:    endByte,
	}, nil
}

func (b *ByteOffset) resolve(ctx context.Context, frame int64) (int64, error) {
	if frame <= 0 {
		return 0, nil
	}
	measured, err := b.measurer.MeasureFrames(ctx, frame)
	if err != nil {
		return 0, fmt.Errorf("measure frame %d: %w", frame, err)
	}
	return b.calibration.Offset(frame, measured), nil
}
