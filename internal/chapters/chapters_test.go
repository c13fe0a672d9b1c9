package chapters

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvcut/internal/cutlist"
)

func planMarks(t *testing.T) []cutlist.ChapterMark {
	t.Helper()
	plan, err := cutlist.NewPlanner(5).Plan(3600, []cutlist.Interval{{Start: 600, End: 660}, {Start: 1800, End: 1830.4}})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return plan.Chapters
}

func TestWriteMKV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMKV(&buf, planMarks(t), ""); err != nil {
		t.Fatalf("WriteMKV: %v", err)
	}
	want := "CHAPTER00=00:00:00.0000\nCHAPTER00NAME=Scene 1\n" +
		"CHAPTER01=00:10:00.0000\nCHAPTER01NAME=Scene 2\n" +
		"CHAPTER02=00:29:00.0000\nCHAPTER02NAME=Scene 3\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteTTXT(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTTXT(&buf, planMarks(t), "Part %d"); err != nil {
		t.Fatalf("WriteTTXT: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("missing xml declaration:\n%s", out)
	}
	if !strings.Contains(out, "GPAC 3GPP Text Stream") {
		t.Fatalf("missing GPAC marker:\n%s", out)
	}

	var doc struct {
		Samples []struct {
			SampleTime string  `xml:"sampleTime,attr"`
			Text       *string `xml:"text,attr"`
			Body       string  `xml:",chardata"`
		} `xml:"TextSample"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(doc.Samples))
	}
	wantTimes := []string{"00:00:00.0000", "00:10:00.0000", "00:29:00.0000", "00:58:30.0000"}
	for i, sample := range doc.Samples {
		if sample.SampleTime != wantTimes[i] {
			t.Errorf("sample %d time = %s, want %s", i, sample.SampleTime, wantTimes[i])
		}
	}
	if doc.Samples[1].Body != "Part 2" {
		t.Fatalf("label = %q", doc.Samples[1].Body)
	}
	terminal := doc.Samples[3]
	if terminal.Text == nil || *terminal.Text != "" || strings.TrimSpace(terminal.Body) != "" {
		t.Fatalf("terminal sample = %+v", terminal)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		template string
		index    int
		want     string
	}{
		{"", 0, "Scene 1"},
		{"Scene %d", 4, "Scene 5"},
		{"Chapter", 1, "Chapter 2"},
	}
	for _, tt := range tests {
		if got := Label(tt.template, tt.index); got != tt.want {
			t.Errorf("Label(%q, %d) = %q, want %q", tt.template, tt.index, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMKV, false},
		{"MKV", FormatMKV, false},
		{"mp4", FormatTTXT, false},
		{"none", FormatNone, false},
		{"ogm", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "show"+FormatMKV.Extension())
	wrote, err := WriteFile(path, FormatMKV, planMarks(t), DefaultLabel)
	if err != nil || !wrote {
		t.Fatalf("WriteFile = %v, %v", wrote, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "CHAPTER00=") {
		t.Fatalf("unexpected file:\n%s", data)
	}

	onlyTerminal := []cutlist.ChapterMark{{Elapsed: 0}}
	skipped := filepath.Join(dir, "empty.chap")
	wrote, err = WriteFile(skipped, FormatMKV, onlyTerminal, "")
	if err != nil || wrote {
		t.Fatalf("WriteFile without labelled marks = %v, %v", wrote, err)
	}
	if _, err := os.Stat(skipped); !os.IsNotExist(err) {
		t.Fatal("file created without labelled marks")
	}
}
