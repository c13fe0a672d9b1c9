package cutlist

import (
	"fmt"
	"math"

	"tvcut/internal/services"
)

var (
	// ErrInvalidInterval reports an interval with a negative, non-finite, or
	// inverted range.
	ErrInvalidInterval = fmt.Errorf("%w: invalid interval", services.ErrValidation)
	// ErrUnsortedCutlist reports remove intervals that are not ordered by start.
	ErrUnsortedCutlist = fmt.Errorf("%w: cutlist not sorted", services.ErrValidation)
	// ErrOverlappingIntervals reports remove intervals that overlap.
	ErrOverlappingIntervals = fmt.Errorf("%w: overlapping intervals", services.ErrValidation)
	// ErrCutPastEnd reports a remove interval extending past the recording.
	ErrCutPastEnd = fmt.Errorf("%w: cut past end of recording", services.ErrValidation)
)

// Interval is a half-open time range [Start, End) in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the length of the interval.
func (i Interval) Duration() float64 {
	return i.End - i.Start
}

func (i Interval) String() string {
	return fmt.Sprintf("[%.3f, %.3f)", i.Start, i.End)
}

func (i Interval) valid() bool {
	if math.IsNaN(i.Start) || math.IsNaN(i.End) || math.IsInf(i.Start, 0) || math.IsInf(i.End, 0) {
		return false
	}
	return i.Start >= 0 && i.Start <= i.End
}

// Validate checks that removes form a usable cutlist: every interval is a
// finite, non-negative range with start <= end, intervals are sorted by
// start, and no two intervals overlap. Touching intervals are allowed.
func Validate(removes []Interval) error {
	for idx, cut := range removes {
		if !cut.valid() {
			return fmt.Errorf("%w: cut %d %s", ErrInvalidInterval, idx+1, cut)
		}
		if idx == 0 {
			continue
		}
		prev := removes[idx-1]
		if cut.Start < prev.Start {
			return fmt.Errorf("%w: cut %d %s starts before cut %d %s", ErrUnsortedCutlist, idx+1, cut, idx, prev)
		}
		if cut.Start < prev.End {
			return fmt.Errorf("%w: cut %d %s overlaps cut %d %s", ErrOverlappingIntervals, idx+1, cut, idx, prev)
		}
	}
	return nil
}
