package captions

import (
	"math"
	"reflect"
	"testing"

	"tvcut/internal/cutlist"
)

func mustTimeline(t *testing.T, marks ...float64) cutlist.Timeline {
	t.Helper()
	tl, err := cutlist.NewTimeline(marks)
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	return tl
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResyncWithoutBoundariesIsIdentity(t *testing.T) {
	entries := []Entry{
		{Index: 1, Start: 1, End: 2, Text: "one"},
		{Index: 2, Start: 5.5, End: 9.25, Text: "two\nlines"},
	}
	got := Resync(entries, cutlist.Timeline{})
	want := []Corrected{
		{Index: 1, Start: 1, End: 2, Text: "one"},
		{Index: 2, Start: 5.5, End: 9.25, Text: "two\nlines"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestResyncClipsStraddlingCaption(t *testing.T) {
	entries := []Entry{
		{Index: 1, Start: 2, End: 4, Text: "before"},
		{Index: 2, Start: 9, End: 12, Text: "straddles"},
		{Index: 3, Start: 13, End: 14, Text: "after"},
	}
	got := Resync(entries, mustTimeline(t, 10, 100))

	if got[0].Clipped || !near(got[0].Start, 2) || !near(got[0].End, 4) {
		t.Fatalf("caption before the boundary changed: %+v", got[0])
	}
	if !got[1].Clipped || !near(got[1].Start, 9) || !near(got[1].End, 10) {
		t.Fatalf("straddling caption = %+v, want 9..10 clipped", got[1])
	}
	if got[2].Clipped || !near(got[2].Start, 11) || !near(got[2].End, 12) {
		t.Fatalf("later caption = %+v, want shifted by 2 seconds", got[2])
	}
}

func TestResyncDoesNotRevisitConsumedBoundary(t *testing.T) {
	entries := []Entry{
		{Index: 1, Start: 9, End: 12, Text: "a"},
		// After the shift this caption starts past the consumed boundary
		// at 10 but still ends before the next one.
		{Index: 2, Start: 12.5, End: 14, Text: "b"},
		{Index: 3, Start: 21, End: 24, Text: "c"},
	}
	got := Resync(entries, mustTimeline(t, 10, 20))

	if !got[0].Clipped || !near(got[0].End, 10) {
		t.Fatalf("first caption = %+v", got[0])
	}
	if got[1].Clipped || !near(got[1].Start, 10.5) || !near(got[1].End, 12) {
		t.Fatalf("second caption = %+v", got[1])
	}
	// Delay is -2: 21..24 becomes 19..22 which straddles 20.
	if !got[2].Clipped || !near(got[2].Start, 19) || !near(got[2].End, 20) {
		t.Fatalf("third caption = %+v", got[2])
	}
}

func TestResyncCaptionBeyondLastBoundaryOnlyShifted(t *testing.T) {
	entries := []Entry{
		{Index: 1, Start: 8, End: 11, Text: "cut"},
		{Index: 2, Start: 50, End: 52, Text: "tail"},
	}
	got := Resync(entries, mustTimeline(t, 10))
	if got[1].Clipped || !near(got[1].Start, 49) || !near(got[1].End, 51) {
		t.Fatalf("tail caption = %+v", got[1])
	}
}

func TestResyncBoundaryBeforeCaptionStartIsConsumedWithoutClipping(t *testing.T) {
	entries := []Entry{{Index: 1, Start: 15, End: 18, Text: "x"}}
	got := Resync(entries, mustTimeline(t, 10, 30))
	if got[0].Clipped || !near(got[0].Start, 15) || !near(got[0].End, 18) {
		t.Fatalf("caption = %+v", got[0])
	}
}

func TestResyncEmptyInput(t *testing.T) {
	if got := Resync(nil, mustTimeline(t, 10)); len(got) != 0 {
		t.Fatalf("expected no output, got %+v", got)
	}
}

func TestResyncDoesNotMutateInput(t *testing.T) {
	entries := []Entry{{Index: 1, Start: 9, End: 12, Text: "a"}}
	original := append([]Entry(nil), entries...)
	_ = Resync(entries, mustTimeline(t, 10))
	if !reflect.DeepEqual(entries, original) {
		t.Fatalf("input mutated: %+v", entries)
	}
}

func TestResyncStats(t *testing.T) {
	entries := []Entry{
		{Index: 1, Start: 9, End: 12},
		{Index: 2, Start: 19, End: 25},
		{Index: 3, Start: 30, End: 31},
	}
	_, stats := resync(entries, mustTimeline(t, 10, 20))
	if stats.Entries != 3 || stats.Clipped != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	// -2 at the first boundary, then 17..23 clipped at 20 for another -3.
	if !near(stats.FinalDelay, -5) {
		t.Fatalf("final delay = %v, want -5", stats.FinalDelay)
	}
}

func TestResyncWithPlannerTimeline(t *testing.T) {
	plan, err := cutlist.NewPlanner(5).Plan(3600, []cutlist.Interval{{Start: 600, End: 660}, {Start: 1800, End: 1830}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	entries := []Entry{
		{Index: 1, Start: 100, End: 103, Text: "opening"},
		{Index: 2, Start: 599, End: 601.5, Text: "into the break"},
		{Index: 3, Start: 700, End: 702, Text: "back"},
	}
	got := Resync(entries, plan.Timeline)
	if !got[1].Clipped || !near(got[1].End, 600) {
		t.Fatalf("break caption = %+v", got[1])
	}
	if !near(got[2].Start, 698.5) {
		t.Fatalf("after-break caption = %+v", got[2])
	}
}
