package locate

import (
	"context"
	"fmt"
	"strings"

	"tvcut/internal/cutlist"
	"tvcut/internal/services"
)

// Mode names a locating strategy.
type Mode string

const (
	ModeTime Mode = "time"
	ModeByte Mode = "byte"
)

// ParseMode validates a configured strategy name.
func ParseMode(value string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(value))); m {
	case "", ModeTime:
		return ModeTime, nil
	case ModeByte:
		return ModeByte, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "locate", "parse mode",
			fmt.Sprintf("unsupported strategy %q (want time or byte)", value), nil)
	}
}

// Extraction is the resolved request for one keep segment. Frame and byte
// fields are zero for time-based extraction.
type Extraction struct {
	Segment    cutlist.KeepSegment `json:"segment"`
	Mode       Mode                `json:"mode"`
	Start      float64             `json:"start"`
	Duration   float64             `json:"duration"`
	StartFrame int64               `json:"start_frame,omitempty"`
	EndFrame   int64               `json:"end_frame,omitempty"`
	StartByte  int64               `json:"start_byte,omitempty"`
	EndByte    int64               `json:"end_byte,omitempty"`
}

// ByteLength returns the number of source bytes the extraction spans.
func (e Extraction) ByteLength() int64 {
	return e.EndByte - e.StartByte
}

// Strategy resolves a keep segment into an extraction request.
type Strategy interface {
	Name() Mode
	Locate(ctx context.Context, seg cutlist.KeepSegment) (Extraction, error)
}

// TimeBased passes segment times straight through.
type TimeBased struct{}

func (TimeBased) Name() Mode { return ModeTime }

func (TimeBased) Locate(_ context.Context, seg cutlist.KeepSegment) (Extraction, error) {
	return Extraction{
		Segment:  seg,
		Mode:     ModeTime,
		Start:    seg.Source.Start,
		Duration: seg.Source.Duration(),
	}, nil
}

// NewStrategy returns the strategy for mode. Byte-offset locating calibrates
// once through measurer before any segment is resolved.
func NewStrategy(ctx context.Context, mode Mode, fps float64, measurer Measurer) (Strategy, error) {
	switch mode {
	case ModeTime, "":
		return TimeBased{}, nil
	case ModeByte:
		if measurer == nil {
			return nil, services.Wrap(services.ErrConfiguration, "locate", "new strategy", "byte strategy requires a measurer", nil)
		}
		calibration, err := measurer.Calibrate(ctx)
		if err != nil {
			return nil, err
		}
		return NewByteOffset(fps, calibration, measurer)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "locate", "new strategy",
			fmt.Sprintf("unsupported strategy %q", mode), nil)
	}
}

// LocateAll resolves segments in order and stops at the first failure.
func LocateAll(ctx context.Context, strategy Strategy, segments []cutlist.KeepSegment) ([]Extraction, error) {
	out := make([]Extraction, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		extraction, err := strategy.Locate(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("locate segment %d %s: %w", i+1, seg.Source, err)
		}
		out = append(out, extraction)
	}
	return out, nil
}
