package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvcut/internal/config"
	"tvcut/internal/logging"
	"tvcut/internal/services"
)

func TestConsoleLoggerFormatsSubjectAndComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "0123456789abcdef")
	ctx = services.WithStage(ctx, "plan")
	ctx = services.WithSource(ctx, "/recordings/show.ts")
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "cutlist"))
	log.Info("planned segments", logging.Int("segments", 3), logging.String("note", "two words"))

	line := buf.String()
	for _, want := range []string{"INFO", "[show.ts · run 01234567 · plan]", "cutlist: planned segments", "segments=3", `note="two words"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line missing %q: %q", want, line)
		}
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestJSONLoggerFileCopy(t *testing.T) {
	var terminal bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "tvcut.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &terminal, FilePath: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", logging.String(logging.FieldSource, "/rec/a.ts"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log file is not JSON: %v (%q)", err, data)
	}
	if record["msg"] != "hello" || record["level"] != "info" || record[logging.FieldSource] != "/rec/a.ts" {
		t.Fatalf("unexpected record %v", record)
	}
	if !strings.Contains(terminal.String(), `"msg":"hello"`) {
		t.Fatalf("terminal missing JSON record: %q", terminal.String())
	}
}

func TestStageOverridesRaiseAndLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		Level:          "info",
		Writer:         &buf,
		StageOverrides: map[string]string{"locate": "debug", "resync": "error"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("base debug hidden")
	logger.With(logging.String(logging.FieldStage, "locate")).Debug("locate debug shown")
	logger.With(logging.String(logging.FieldStage, "resync")).Warn("resync warn hidden")
	logger.With(logging.String(logging.FieldStage, "plan")).Info("plan info shown")

	out := buf.String()
	for _, hidden := range []string{"base debug hidden", "resync warn hidden"} {
		if strings.Contains(out, hidden) {
			t.Fatalf("unexpected %q in output:\n%s", hidden, out)
		}
	}
	for _, shown := range []string{"locate debug shown", "plan info shown"} {
		if !strings.Contains(out, shown) {
			t.Fatalf("missing %q in output:\n%s", shown, out)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Error("boom", logging.Error(errors.New("bad")))
	if _, err := os.Stat(filepath.Join(cfg.Paths.LogDir, "tvcut.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logging.WarnWithContext(logger, "captions missing", "captions_missing",
		logging.String(logging.FieldImpact, "output has no captions"))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "captions_missing" {
		t.Fatalf("event_type = %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("error_hint = %v", record[logging.FieldErrorHint])
	}
	if record[logging.FieldImpact] != "output has no captions" {
		t.Fatalf("impact = %v", record[logging.FieldImpact])
	}
}

func TestFormatSubject(t *testing.T) {
	tests := []struct {
		recording, run, stage, want string
	}{
		{"", "", "", ""},
		{"", "abc", "", "run abc"},
		{"", "", "resync", "resync"},
		{"", "0123456789", "plan", "run 01234567 · plan"},
		{"/srv/tv/show.ts", "0123456789", "locate", "show.ts · run 01234567 · locate"},
	}
	for _, tt := range tests {
		if got := logging.FormatSubject(tt.recording, tt.run, tt.stage); got != tt.want {
			t.Errorf("FormatSubject(%q, %q, %q) = %q, want %q", tt.recording, tt.run, tt.stage, got, tt.want)
		}
	}
}

func TestDomainAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("segment",
		logging.Span("source", 600.00049, 1800),
		logging.Clock("elapsed", 3510),
		logging.Seconds("removed", 90.1234),
	)
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	span, ok := record["source"].(map[string]any)
	if !ok || span["start"] != 600.0 || span["end"] != 1800.0 {
		t.Fatalf("source = %v", record["source"])
	}
	if record["elapsed"] != "00:58:30" {
		t.Fatalf("elapsed = %v", record["elapsed"])
	}
	if record["removed"] != 90.123 {
		t.Fatalf("removed = %v", record["removed"])
	}
}

func TestDecisionAttrs(t *testing.T) {
	attrs := logging.DecisionAttrs("audio_selection", "0x34", "language match")
	want := map[string]string{
		logging.FieldDecisionType:   "audio_selection",
		logging.FieldDecisionResult: "0x34",
		logging.FieldDecisionReason: "language match",
	}
	if len(attrs) != len(want) {
		t.Fatalf("got %d attrs", len(attrs))
	}
	for _, a := range attrs {
		if want[a.Key] != a.Value.String() {
			t.Fatalf("%s = %q", a.Key, a.Value.String())
		}
	}
}

func TestConsoleCollapsesSpansAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.WithGroup("locate").Debug("keep segment",
		logging.Span("source", 660, 1800),
		logging.Int64("frame", 19780),
	)
	line := buf.String()
	for _, want := range []string{"DEBUG", "locate.source=660-1800", "locate.frame=19780"} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line missing %q: %q", want, line)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no color codes for a non-terminal writer: %q", line)
	}
}
