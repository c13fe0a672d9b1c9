package cutlist

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"tvcut/internal/services"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPlanEndToEndScenario(t *testing.T) {
	plan, err := NewPlanner(5).Plan(3600, []Interval{{600, 660}, {1800, 1830}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []struct {
		start, end, elapsed float64
	}{
		{0, 600, 0},
		{660, 1800, 600},
		{1830, 3600, 1740},
	}
	if len(plan.Segments) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(plan.Segments), plan.Segments)
	}
	for i, w := range want {
		seg := plan.Segments[i]
		if seg.Source.Start != w.start || seg.Source.End != w.end || seg.ElapsedAtStart != w.elapsed {
			t.Errorf("segment %d = %+v, want [%v,%v) at %v", i, seg, w.start, w.end, w.elapsed)
		}
		if seg.Chapter == nil || *seg.Chapter != i {
			t.Errorf("segment %d chapter = %v", i, seg.Chapter)
		}
	}
	if !almostEqual(plan.FinalDuration(), 3510) {
		t.Fatalf("final duration = %v, want 3510", plan.FinalDuration())
	}
	if !almostEqual(plan.Removed(), 90) {
		t.Fatalf("removed = %v, want 90", plan.Removed())
	}
	if got := plan.Timeline.Marks(); !reflect.DeepEqual(got, []float64{600, 1740, 3510}) {
		t.Fatalf("timeline = %v", got)
	}
}

func TestPlanEmptyCutlistKeepsWholeRecording(t *testing.T) {
	plan, err := NewPlanner(DefaultEdgeThreshold).Plan(1800.5, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(plan.Segments))
	}
	seg := plan.Segments[0]
	if seg.Source != (Interval{0, 1800.5}) || seg.ElapsedAtStart != 0 {
		t.Fatalf("unexpected segment %+v", seg)
	}
	terminal := 0
	for _, mark := range plan.Chapters {
		if mark.Terminal() {
			terminal++
			if mark.Elapsed != 1800.5 {
				t.Fatalf("terminal mark at %v", mark.Elapsed)
			}
		}
	}
	if terminal != 1 || len(plan.Chapters) != 2 {
		t.Fatalf("expected one labelled and one terminal mark, got %+v", plan.Chapters)
	}
}

func TestPlanEmptyCutlistShorterThanThreshold(t *testing.T) {
	plan, err := NewPlanner(5).Plan(3, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Segments) != 1 || plan.Segments[0].Source != (Interval{0, 3}) {
		t.Fatalf("expected whole recording kept, got %+v", plan.Segments)
	}
	if len(plan.Chapters) != 2 {
		t.Fatalf("expected two chapter marks, got %+v", plan.Chapters)
	}
	if got := plan.Timeline.Marks(); !reflect.DeepEqual(got, []float64{3}) {
		t.Fatalf("timeline = %v", got)
	}
	if plan.Removed() != 0 {
		t.Fatalf("removed = %v, want 0", plan.Removed())
	}
}

func TestPlanChapterMarks(t *testing.T) {
	plan, err := NewPlanner(5).Plan(3600, []Interval{{600, 660}, {1800, 1830}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Chapters) != 4 {
		t.Fatalf("expected 4 chapter marks, got %d", len(plan.Chapters))
	}
	for i, seg := range plan.Segments {
		mark := plan.Chapters[i]
		if mark.Elapsed != seg.ElapsedAtStart || mark.Index == nil || *mark.Index != i {
			t.Errorf("chapter %d = %+v, segment %+v", i, mark, seg)
		}
	}
	last := plan.Chapters[len(plan.Chapters)-1]
	if !last.Terminal() || !almostEqual(last.Elapsed, plan.FinalDuration()) {
		t.Fatalf("unexpected terminal mark %+v", last)
	}
}

func TestPlanEdgeThreshold(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		removes  []Interval
		segments []Interval
	}{
		{
			name:     "cut at start is skipped as keep",
			total:    100,
			removes:  []Interval{{0, 10}},
			segments: []Interval{{10, 100}},
		},
		{
			name:     "micro segment before early cut dropped",
			total:    100,
			removes:  []Interval{{3, 20}},
			segments: []Interval{{20, 100}},
		},
		{
			name:     "trailing micro segment dropped",
			total:    100,
			removes:  []Interval{{40, 97}},
			segments: []Interval{{0, 40}},
		},
		{
			name:     "cut ending exactly at the end",
			total:    100,
			removes:  []Interval{{50, 100}},
			segments: []Interval{{0, 50}},
		},
		{
			name:     "touching cuts",
			total:    100,
			removes:  []Interval{{20, 30}, {30, 40}},
			segments: []Interval{{0, 20}, {40, 100}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewPlanner(5).Plan(tt.total, tt.removes)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			got := make([]Interval, len(plan.Segments))
			for i, seg := range plan.Segments {
				got[i] = seg.Source
			}
			if !reflect.DeepEqual(got, tt.segments) {
				t.Fatalf("segments = %v, want %v", got, tt.segments)
			}
		})
	}
}

func TestPlanRejectsMalformedCutlists(t *testing.T) {
	tests := []struct {
		name    string
		removes []Interval
		want    error
	}{
		{"overlap", []Interval{{10, 30}, {20, 40}}, ErrOverlappingIntervals},
		{"unsorted", []Interval{{50, 60}, {10, 20}}, ErrUnsortedCutlist},
		{"inverted", []Interval{{30, 20}}, ErrInvalidInterval},
		{"negative", []Interval{{-1, 20}}, ErrInvalidInterval},
		{"nan", []Interval{{math.NaN(), 20}}, ErrInvalidInterval},
		{"past end", []Interval{{50, 150}}, ErrCutPastEnd},
		{"starts after end", []Interval{{20, 30}, {110, 120}}, ErrCutPastEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlanner(5).Plan(100, tt.removes)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation marker, got %v", err)
			}
		})
	}
}

func TestPlanRejectsBadDurationAndThreshold(t *testing.T) {
	if _, err := NewPlanner(5).Plan(0, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero duration, got %v", err)
	}
	if _, err := NewPlanner(-1).Plan(10, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative threshold, got %v", err)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	planner := NewPlanner(5)
	removes := []Interval{{120, 300}, {900, 1080.5}, {2000, 2100}}
	first, err := planner.Plan(2700, removes)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := planner.Plan(2700, removes)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("plans differ:\n%s\n%s", a, b)
	}
}

func TestPlanDurationAccounting(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		total := 600 + rng.Float64()*3000
		var removes []Interval
		cursor := 0.0
		for cursor < total {
			start := cursor + rng.Float64()*400
			end := start + rng.Float64()*200
			if end > total {
				break
			}
			removes = append(removes, Interval{start, end})
			cursor = end
		}
		threshold := rng.Float64() * 10
		plan, err := NewPlanner(threshold).Plan(total, removes)
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}

		kept := 0.0
		for i, seg := range plan.Segments {
			if !almostEqual(seg.ElapsedAtStart, kept) {
				t.Fatalf("iter %d segment %d elapsed %v, want %v", iter, i, seg.ElapsedAtStart, kept)
			}
			if seg.Source.Duration() < 0 {
				t.Fatalf("iter %d negative segment %+v", iter, seg)
			}
			kept += seg.Source.Duration()
		}
		if !almostEqual(kept, plan.FinalDuration()) {
			t.Fatalf("iter %d kept %v, final %v", iter, kept, plan.FinalDuration())
		}
		if !almostEqual(kept+plan.Removed(), total) {
			t.Fatalf("iter %d kept %v + removed %v != total %v", iter, kept, plan.Removed(), total)
		}
		// Every kept second lies outside every remove interval.
		for _, seg := range plan.Segments {
			for _, cut := range removes {
				if seg.Source.Start < cut.End-epsilon && cut.Start < seg.Source.End-epsilon {
					t.Fatalf("iter %d segment %v overlaps cut %v", iter, seg.Source, cut)
				}
			}
		}
	}
}

func TestTimelineJSONRoundTrip(t *testing.T) {
	plan, err := NewPlanner(5).Plan(3600, []Interval{{600, 660}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Plan
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded.Timeline.Marks(), plan.Timeline.Marks()) {
		t.Fatalf("timeline = %v, want %v", decoded.Timeline.Marks(), plan.Timeline.Marks())
	}
	rebuilt, err := TimelineFromSegments(decoded.Segments)
	if err != nil {
		t.Fatalf("TimelineFromSegments: %v", err)
	}
	if !reflect.DeepEqual(rebuilt.Marks(), plan.Timeline.Marks()) {
		t.Fatalf("rebuilt timeline = %v", rebuilt.Marks())
	}
}

func TestTimelineRejectsDecreasingMarks(t *testing.T) {
	if _, err := NewTimeline([]float64{10, 5}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var tl Timeline
	if err := json.Unmarshal([]byte(`[3, 1]`), &tl); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTimelineMarksIsACopy(t *testing.T) {
	tl, err := NewTimeline([]float64{1, 2})
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	marks := tl.Marks()
	marks[0] = 99
	if tl.At(0) != 1 {
		t.Fatal("timeline mutated through Marks")
	}
}
