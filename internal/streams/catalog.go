package streams

import (
	"errors"
	"fmt"
	"strings"

	"tvcut/internal/language"
	"tvcut/internal/media/ffprobe"
	"tvcut/internal/services"
)

// Kind identifies the elementary stream type.
type Kind string

const (
	Video Kind = "video"
	Audio Kind = "audio"
)

// ErrNoStreamsFound reports a recording without any video or any audio
// candidate. There is nothing to encode, so callers must not continue.
var ErrNoStreamsFound = fmt.Errorf("%w: no streams found", services.ErrValidation)

// ProbeRecord is one elementary stream as reported by the prober.
type ProbeRecord struct {
	Kind     Kind
	ID       string
	Language string
	Main     bool
}

// Descriptor is a candidate stream in the catalog.
type Descriptor struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Selected bool   `json:"selected"`
	Language string `json:"language,omitempty"`
}

// Catalog holds the candidate streams of a recording in probe order.
type Catalog struct {
	Video []Descriptor `json:"video"`
	Audio []Descriptor `json:"audio"`
}

// Selection is the (kind, id) pair handed to the demuxer.
type Selection struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Build maps probe records to a catalog. The first video record flagged as
// main is selected, falling back to the first video record. The first audio
// record whose language matches lang is selected, falling back to the first
// audio record.
func Build(records []ProbeRecord, lang string) (Catalog, error) {
	var catalog Catalog
	for _, record := range records {
		desc := Descriptor{
			ID:       strings.TrimSpace(record.ID),
			Kind:     record.Kind,
			Language: strings.ToLower(strings.TrimSpace(record.Language)),
		}
		switch record.Kind {
		case Video:
			catalog.Video = append(catalog.Video, desc)
		case Audio:
			catalog.Audio = append(catalog.Audio, desc)
		}
	}
	if len(catalog.Video) == 0 {
		return Catalog{}, fmt.Errorf("%w: no video candidates among %d probe records", ErrNoStreamsFound, len(records))
	}
	if len(catalog.Audio) == 0 {
		return Catalog{}, fmt.Errorf("%w: no audio candidates among %d probe records", ErrNoStreamsFound, len(records))
	}

	catalog.Video[selectVideo(records)].Selected = true
	catalog.Audio[selectAudio(catalog.Audio, lang)].Selected = true
	return catalog, nil
}

func selectVideo(records []ProbeRecord) int {
	order := 0
	for _, record := range records {
		if record.Kind != Video {
			continue
		}
		if record.Main {
			return order
		}
		order++
	}
	return 0
}

func selectAudio(candidates []Descriptor, lang string) int {
	if strings.TrimSpace(lang) == "" {
		return 0
	}
	for i, cand := range candidates {
		if language.Matches(cand.Language, lang) {
			return i
		}
	}
	return 0
}

// SelectedVideo returns the selected video descriptor.
func (c Catalog) SelectedVideo() (Descriptor, bool) {
	return selected(c.Video)
}

// SelectedAudio returns the selected audio descriptor.
func (c Catalog) SelectedAudio() (Descriptor, bool) {
	return selected(c.Audio)
}

// Selected returns the selections to demux, video first.
func (c Catalog) Selected() []Selection {
	out := make([]Selection, 0, 2)
	if v, ok := c.SelectedVideo(); ok {
		out = append(out, Selection{Kind: Video, ID: v.ID})
	}
	if a, ok := c.SelectedAudio(); ok {
		out = append(out, Selection{Kind: Audio, ID: a.ID})
	}
	return out
}

// ErrDuplicateStreamID reports two candidates sharing a stream ID, which
// the demuxer could not tell apart.
var ErrDuplicateStreamID = fmt.Errorf("%w: duplicate stream id", services.ErrValidation)

// Validate checks that exactly one stream of each kind is selected and that
// stream IDs are unique across the catalog.
func (c Catalog) Validate() error {
	seen := make(map[string]Kind, len(c.Video)+len(c.Audio))
	for _, d := range append(append([]Descriptor(nil), c.Video...), c.Audio...) {
		if kind, ok := seen[d.ID]; ok {
			return fmt.Errorf("%w: %q used by %s and %s streams", ErrDuplicateStreamID, d.ID, kind, d.Kind)
		}
		seen[d.ID] = d.Kind
	}
	for _, group := range []struct {
		kind  Kind
		descs []Descriptor
	}{{Video, c.Video}, {Audio, c.Audio}} {
		if len(group.descs) == 0 {
			return fmt.Errorf("%w: no %s candidates", ErrNoStreamsFound, group.kind)
		}
		count := 0
		for _, d := range group.descs {
			if d.Selected {
				count++
			}
		}
		if count != 1 {
			return services.Wrap(services.ErrValidation, "streams", "validate catalog",
				fmt.Sprintf("%d %s streams selected, want exactly 1", count, group.kind), nil)
		}
	}
	return nil
}

func selected(descs []Descriptor) (Descriptor, bool) {
	for _, d := range descs {
		if d.Selected {
			return d, true
		}
	}
	return Descriptor{}, false
}

// RecordsFromProbe converts an ffprobe result into probe records. The stream
// id (the transport stream PID) is preferred over the ffprobe index. A video
// stream is flagged main when its codec profile is "Main" or it carries the
// default disposition.
func RecordsFromProbe(result ffprobe.Result) []ProbeRecord {
	records := make([]ProbeRecord, 0, len(result.Streams))
	for _, stream := range result.Streams {
		var kind Kind
		switch {
		case stream.IsVideo():
			kind = Video
		case stream.IsAudio():
			kind = Audio
		default:
			continue
		}
		id := strings.TrimSpace(stream.ID)
		if pid, ok := stream.PID(); ok {
			id = fmt.Sprintf("0x%x", pid)
		}
		if id == "" {
			id = fmt.Sprintf("%d", stream.Index)
		}
		record := ProbeRecord{
			Kind:     kind,
			ID:       id,
			Language: language.ExtractFromTags(stream.Tags),
		}
		if kind == Video {
			record.Main = strings.EqualFold(strings.TrimSpace(stream.Profile), "main") || stream.IsDefault()
		}
		records = append(records, record)
	}
	return records
}

// IsNoStreams reports whether err is a missing-stream failure.
func IsNoStreams(err error) bool {
	return errors.Is(err, ErrNoStreamsFound)
}
