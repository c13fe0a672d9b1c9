package cutlist

import (
	"encoding/json"
	"fmt"
	"math"

	"tvcut/internal/services"
)

// DefaultEdgeThreshold is the default number of seconds at either edge of a
// recording inside which cuts and trailing segments are ignored.
const DefaultEdgeThreshold = 5.0

// KeepSegment is a span of the source retained in the output.
type KeepSegment struct {
	Source Interval `json:"source"`
	// ElapsedAtStart is the position the segment occupies in the final
	// timeline: the summed duration of every earlier keep segment.
	ElapsedAtStart float64 `json:"elapsed_at_start"`
	Chapter        *int    `json:"chapter,omitempty"`
}

// ElapsedAtEnd returns the final-timeline position where the segment ends.
func (k KeepSegment) ElapsedAtEnd() float64 {
	return k.ElapsedAtStart + k.Source.Duration()
}

// ChapterMark places a chapter in the final timeline. The terminal mark that
// closes the last chapter has a nil Index.
type ChapterMark struct {
	Elapsed float64 `json:"elapsed"`
	Index   *int    `json:"index,omitempty"`
}

// Terminal reports whether the mark closes the last chapter.
func (m ChapterMark) Terminal() bool {
	return m.Index == nil
}

// Timeline is the ordered sequence of per-segment end positions in the final
// timeline. It is immutable once built and shared by chapter emission and
// caption resynchronization.
type Timeline struct {
	marks []float64
}

// NewTimeline copies marks into a Timeline. Marks must be non-decreasing.
func NewTimeline(marks []float64) (Timeline, error) {
	for i := 1; i < len(marks); i++ {
		if marks[i] < marks[i-1] {
			return Timeline{}, services.Wrap(services.ErrValidation, "cutlist", "build timeline",
				fmt.Sprintf("mark %d (%.3f) precedes mark %d (%.3f)", i+1, marks[i], i, marks[i-1]), nil)
		}
	}
	return Timeline{marks: append([]float64(nil), marks...)}, nil
}

// Marks returns a copy of the boundary marks.
func (t Timeline) Marks() []float64 {
	return append([]float64(nil), t.marks...)
}

// Len returns the number of boundary marks.
func (t Timeline) Len() int {
	return len(t.marks)
}

// At returns the i-th boundary mark.
func (t Timeline) At(i int) float64 {
	return t.marks[i]
}

// Total returns the final-timeline duration, or 0 for an empty timeline.
func (t Timeline) Total() float64 {
	if len(t.marks) == 0 {
		return 0
	}
	return t.marks[len(t.marks)-1]
}

// MarshalJSON encodes the timeline as an array of marks.
func (t Timeline) MarshalJSON() ([]byte, error) {
	if t.marks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.marks)
}

// UnmarshalJSON decodes an array of marks, rejecting decreasing sequences.
func (t *Timeline) UnmarshalJSON(data []byte) error {
	var marks []float64
	if err := json.Unmarshal(data, &marks); err != nil {
		return err
	}
	parsed, err := NewTimeline(marks)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimelineFromSegments rebuilds the timeline from planned keep segments.
func TimelineFromSegments(segments []KeepSegment) (Timeline, error) {
	marks := make([]float64, len(segments))
	for i, seg := range segments {
		marks[i] = seg.ElapsedAtEnd()
	}
	return NewTimeline(marks)
}

// Plan is the planner's output for one recording.
type Plan struct {
	TotalDuration float64       `json:"total_duration"`
	Threshold     float64       `json:"threshold"`
	Removes       []Interval    `json:"removes"`
	Segments      []KeepSegment `json:"segments"`
	Chapters      []ChapterMark `json:"chapters"`
	Timeline      Timeline      `json:"timeline"`
}

// FinalDuration returns the length of the output after cutting.
func (p Plan) FinalDuration() float64 {
	return p.Timeline.Total()
}

// Removed returns how much source content the plan excises, including
// micro-segments dropped at the recording edges.
func (p Plan) Removed() float64 {
	return p.TotalDuration - p.FinalDuration()
}

// Planner computes keep segments from a cutlist.
type Planner struct {
	threshold float64
}

// NewPlanner returns a planner using threshold seconds as the edge threshold.
func NewPlanner(threshold float64) *Planner {
	return &Planner{threshold: threshold}
}

// Plan computes the keep segments of a recording of total seconds with the
// given remove intervals. A remove interval is acted on only when it starts
// after the edge threshold and after the current cursor; a trailing segment
// is kept only when it begins more than threshold seconds before the end.
// An empty cutlist always keeps the whole recording. Remove intervals that
// end past total are rejected.
func (p *Planner) Plan(total float64, removes []Interval) (Plan, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return Plan{}, services.Wrap(services.ErrValidation, "cutlist", "plan",
			fmt.Sprintf("source duration %v must be positive", total), nil)
	}
	if math.IsNaN(p.threshold) || p.threshold < 0 {
		return Plan{}, services.Wrap(services.ErrValidation, "cutlist", "plan",
			fmt.Sprintf("edge threshold %v must be non-negative", p.threshold), nil)
	}
	if err := Validate(removes); err != nil {
		return Plan{}, err
	}
	for idx, cut := range removes {
		if cut.End > total {
			return Plan{}, fmt.Errorf("%w: cut %d %s ends after source duration %.3f", ErrCutPastEnd, idx+1, cut, total)
		}
	}

	plan := Plan{
		TotalDuration: total,
		Threshold:     p.threshold,
		Removes:       append([]Interval(nil), removes...),
	}
	var pos, elapsed float64
	emit := func(source Interval) {
		index := len(plan.Segments)
		chapter := index
		plan.Segments = append(plan.Segments, KeepSegment{
			Source:         source,
			ElapsedAtStart: elapsed,
			Chapter:        &chapter,
		})
		plan.Chapters = append(plan.Chapters, ChapterMark{Elapsed: elapsed, Index: &chapter})
		elapsed += source.Duration()
	}

	for _, cut := range removes {
		if cut.Start > p.threshold && cut.Start > pos {
			emit(Interval{Start: pos, End: cut.Start})
		}
		pos = cut.End
	}
	if len(removes) == 0 || pos < total-p.threshold {
		emit(Interval{Start: pos, End: total})
	}
	plan.Chapters = append(plan.Chapters, ChapterMark{Elapsed: elapsed})

	marks := make([]float64, len(plan.Segments))
	for i, seg := range plan.Segments {
		marks[i] = seg.ElapsedAtEnd()
	}
	plan.Timeline = Timeline{marks: marks}
	return plan, nil
}
