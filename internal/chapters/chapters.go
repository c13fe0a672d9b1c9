package chapters

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"tvcut/internal/cutlist"
	"tvcut/internal/fileutil"
	"tvcut/internal/services"
	"tvcut/internal/timecode"
)

// DefaultLabel is the chapter title template; %d is the 1-based chapter number.
const DefaultLabel = "Scene %d"

// Format names a chapter file format.
type Format string

const (
	FormatMKV  Format = "mkv"
	FormatTTXT Format = "ttxt"
	FormatNone Format = "none"
)

// ParseFormat validates a configured format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "", FormatMKV:
		return FormatMKV, nil
	case FormatTTXT, "mp4", "xml":
		return FormatTTXT, nil
	case FormatNone:
		return FormatNone, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "chapters", "parse format",
			fmt.Sprintf("unsupported chapter format %q", value), nil)
	}
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatTTXT:
		return ".xml"
	case FormatMKV:
		return ".chap"
	default:
		return ""
	}
}

// Label renders the title of chapter index (0-based) from template.
func Label(template string, index int) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultLabel
	}
	if strings.Contains(template, "%d") {
		return fmt.Sprintf(template, index+1)
	}
	return fmt.Sprintf("%s %d", template, index+1)
}

// WriteMKV writes labelled marks in Matroska simple chapter format. The
// terminal mark is omitted because Matroska chapters are open-ended.
func WriteMKV(w io.Writer, marks []cutlist.ChapterMark, label string) error {
	for _, mark := range marks {
		if mark.Terminal() {
			continue
		}
		idx := *mark.Index
		if _, err := fmt.Fprintf(w, "CHAPTER%02d=%s\nCHAPTER%02dNAME=%s\n",
			idx, timecode.Fraction(mark.Elapsed), idx, Label(label, idx)); err != nil {
			return err
		}
	}
	return nil
}

type textStream struct {
	XMLName xml.Name     `xml:"TextStream"`
	Version string       `xml:"version,attr"`
	Header  streamHeader `xml:"TextStreamHeader"`
	Samples []textSample `xml:"TextSample"`
}

type streamHeader struct {
	Description sampleDescription `xml:"TextSampleDescription"`
}

type sampleDescription struct {
	FontTable struct{} `xml:"FontTable"`
}

type textSample struct {
	SampleTime string  `xml:"sampleTime,attr"`
	Text       *string `xml:"text,attr,omitempty"`
	Space      string  `xml:"xml:space,attr,omitempty"`
	Body       string  `xml:",chardata"`
}

// WriteTTXT writes marks as GPAC 3GPP timed text. Sample times are rounded
// to the whole second and the terminal mark becomes an empty sample that
// ends the last chapter.
func WriteTTXT(w io.Writer, marks []cutlist.ChapterMark, label string) error {
	doc := textStream{Version: "1.1"}
	for _, mark := range marks {
		sample := textSample{SampleTime: timecode.Fraction(math.Round(mark.Elapsed))}
		if mark.Terminal() {
			empty := ""
			sample.Text = &empty
		} else {
			sample.Space = "preserve"
			sample.Body = Label(label, *mark.Index)
		}
		doc.Samples = append(doc.Samples, sample)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString("<!-- GPAC 3GPP Text Stream -->\n")
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode chapter xml: %w", err)
	}
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// Write renders marks in format to w.
func Write(w io.Writer, format Format, marks []cutlist.ChapterMark, label string) error {
	switch format {
	case FormatMKV:
		return WriteMKV(w, marks, label)
	case FormatTTXT:
		return WriteTTXT(w, marks, label)
	case FormatNone:
		return nil
	default:
		return services.Wrap(services.ErrConfiguration, "chapters", "write",
			fmt.Sprintf("unsupported chapter format %q", format), nil)
	}
}

// WriteFile writes marks to path. It reports false without creating a file
// when the format is none or there are no labelled marks.
func WriteFile(path string, format Format, marks []cutlist.ChapterMark, label string) (bool, error) {
	if format == FormatNone || !hasLabelled(marks) {
		return false, nil
	}
	err := fileutil.WriteAtomicFunc(path, 0o644, func(w io.Writer) error {
		return Write(w, format, marks, label)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func hasLabelled(marks []cutlist.ChapterMark) bool {
	for _, mark := range marks {
		if !mark.Terminal() {
			return true
		}
	}
	return false
}
