package captions

import "tvcut/internal/cutlist"

// Entry is a caption as extracted from the rejoined stream.
type Entry struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Corrected is a caption rewritten into final-timeline coordinates.
type Corrected struct {
	Index   int
	Start   float64
	End     float64
	Text    string
	Clipped bool
}

// Stats summarizes one resync pass.
type Stats struct {
	Entries    int     `json:"entries"`
	Clipped    int     `json:"clipped"`
	FinalDelay float64 `json:"final_delay"`
}

// Resync shifts and clips entries against the cut boundaries. Each boundary
// is consumed at most once: a caption that straddles a boundary is clipped
// to it and every later caption moves earlier by the clipped amount. The
// input slice is never modified.
func Resync(entries []Entry, boundaries cutlist.Timeline) []Corrected {
	out, _ := resync(entries, boundaries)
	return out
}

func resync(entries []Entry, boundaries cutlist.Timeline) ([]Corrected, Stats) {
	stats := Stats{Entries: len(entries)}
	if len(entries) == 0 {
		return nil, stats
	}
	out := make([]Corrected, 0, len(entries))
	delay := 0.0
	cursor := 0
	for _, entry := range entries {
		c := Corrected{
			Index: entry.Index,
			Start: entry.Start + delay,
			End:   entry.End + delay,
			Text:  entry.Text,
		}
		for cursor < boundaries.Len() && boundaries.At(cursor) < c.End {
			mark := boundaries.At(cursor)
			if mark > c.Start {
				delay += mark - c.End
				c.End = mark
				c.Clipped = true
			}
			cursor++
		}
		if c.Clipped {
			stats.Clipped++
		}
		out = append(out, c)
	}
	stats.FinalDelay = delay
	return out, stats
}
