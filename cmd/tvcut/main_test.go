package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvcut/internal/cutlist"
	"tvcut/internal/locate"
	"tvcut/internal/pipeline"
	"tvcut/internal/services"
	"tvcut/internal/store"
	"tvcut/internal/streams"
)

func TestPlanCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "plan", env.recording, "--cutlist", env.cutlist)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "00:58:30")
	requireContains(t, out, "Removed:")
	requireContains(t, out, "TOTAL")

	out, _, err = env.run(t, "--json", "plan", env.recording, "--cutlist", env.cutlist)
	if err != nil {
		t.Fatalf("plan --json: %v", err)
	}
	var plan cutlist.Plan
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("decode plan: %v\n%s", err, out)
	}
	if len(plan.Segments) != 3 || plan.FinalDuration() != 3510 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPlanCommandRejectsBadFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "plan", env.recording, "--cutlist", env.cutlist, "--cutlist-format", "vhs")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestStreamsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "--json", "streams", env.recording)
	if err != nil {
		t.Fatalf("streams: %v", err)
	}
	var catalog streams.Catalog
	if err := json.Unmarshal([]byte(out), &catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	audio, ok := catalog.SelectedAudio()
	if !ok || audio.ID != "0x34" {
		t.Fatalf("unexpected audio selection: %+v", catalog.Audio)
	}

	out, _, err = env.run(t, "streams", env.recording)
	if err != nil {
		t.Fatalf("streams table: %v", err)
	}
	requireContains(t, out, "0x35")
	requireContains(t, out, "French")
}

func TestRunHistoryResyncAndChapters(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "run", env.recording, "--cutlist", env.cutlist)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	manifest := filepath.Join(env.workDir, "show.manifest.json")
	requireContains(t, out, manifest)
	requireContains(t, out, filepath.Join(env.workDir, "show.chap"))

	out, _, err = env.run(t, "--json", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []store.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Status != store.StatusCompleted || runs[0].Segments != 3 {
		t.Fatalf("unexpected history: %+v", runs)
	}

	out, _, err = env.run(t, "history", "show", runs[0].ID[:8])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, runs[0].ID)
	requireContains(t, out, "completed")

	out, _, err = env.run(t, "history", env.recording)
	if err != nil {
		t.Fatalf("history for recording: %v", err)
	}
	requireContains(t, out, "show.ts")

	srt := filepath.Join(env.baseDir, "show.srt")
	captions := "1\n00:09:59,500 --> 00:10:00,500\nat the break\n\n2\n00:20:00,000 --> 00:20:02,000\nlater\n"
	if err := os.WriteFile(srt, []byte(captions), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err = env.run(t, "resync", manifest, srt)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	requireContains(t, out, "Clipped:")
	fixed, err := os.ReadFile(filepath.Join(env.baseDir, "show.fixed.srt"))
	if err != nil {
		t.Fatalf("read corrected captions: %v", err)
	}
	if !strings.Contains(string(fixed), "00:09:59,500 --> 00:10:00,000") ||
		!strings.Contains(string(fixed), "00:19:59,500 --> 00:20:01,500") {
		t.Fatalf("unexpected corrected captions:\n%s", fixed)
	}

	ttxt := filepath.Join(env.baseDir, "chapters.xml")
	out, _, err = env.run(t, "chapters", manifest, "--format", "mp4", "--output", ttxt)
	if err != nil {
		t.Fatalf("chapters: %v", err)
	}
	requireContains(t, out, ttxt)
	data, err := os.ReadFile(ttxt)
	if err != nil {
		t.Fatalf("read chapters: %v", err)
	}
	requireContains(t, string(data), "TextSample")
}

func TestRunCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := env.run(t, "--json", "run", env.recording, "--cutlist", env.cutlist, "--output-dir", filepath.Join(env.baseDir, "out"))
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}
	var manifest pipeline.Manifest
	if err := json.Unmarshal([]byte(out), &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if manifest.Version != pipeline.ManifestVersion || len(manifest.Extractions) != 3 {
		t.Fatalf("unexpected manifest: %+v", manifest)
	}
	if _, err := os.Stat(filepath.Join(env.baseDir, "out", "show.manifest.json")); err != nil {
		t.Fatalf("manifest not written to output dir: %v", err)
	}
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "history", "show", "deadbeef")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitValidation {
		t.Fatalf("exit code = %d", code)
	}
}

func TestHistoryEmptyAndPurge(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	out, _, err = env.run(t, "history", "purge-calibrations")
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	requireContains(t, out, "Removed 0 cached calibration(s)")
}

func TestDoctorReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", t.TempDir())

	out, _, err := env.run(t, "doctor")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "FAIL")
	requireContains(t, out, "Work directory")
}

func TestDoctorPassesWithStubbedTools(t *testing.T) {
	env := setupCLITestEnv(t)
	binDir := filepath.Join(env.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe", "ccextractor"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", binDir)

	out, _, err := env.run(t, "doctor", "--recording", env.recording)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Recording")
	requireContains(t, out, "Work free space")
}

type countingMeasurer struct {
	calibrations int
}

func (m *countingMeasurer) Calibrate(context.Context) (locate.Calibration, error) {
	m.calibrations++
	return locate.NewCalibration(107892, 4096, 3896), nil
}

func (m *countingMeasurer) MeasureFrames(_ context.Context, frames int64) (int64, error) {
	return frames / 30, nil
}

func TestCalibrateUsesCache(t *testing.T) {
	env := setupCLITestEnv(t)
	measurer := &countingMeasurer{}
	env.opts = append(env.opts, pipeline.WithMeasurerFactory(func(string, []streams.Selection) locate.Measurer {
		return measurer
	}))

	out, _, err := env.run(t, "calibrate", env.recording)
	if err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	requireContains(t, out, "107892")
	requireContains(t, out, "Extra bytes:     200")

	out, _, err = env.run(t, "--json", "calibrate", env.recording)
	if err != nil {
		t.Fatalf("calibrate again: %v", err)
	}
	requireContains(t, out, `"cached": true`)
	if measurer.calibrations != 1 {
		t.Fatalf("calibrations = %d, want 1", measurer.calibrations)
	}

	if _, _, err := env.run(t, "calibrate", "--refresh", env.recording); err != nil {
		t.Fatalf("calibrate --refresh: %v", err)
	}
	if measurer.calibrations != 2 {
		t.Fatalf("calibrations after refresh = %d, want 2", measurer.calibrations)
	}

	out, _, err = env.run(t, "run", env.recording, "--cutlist", env.cutlist, "--strategy", "byte")
	if err != nil {
		t.Fatalf("run --strategy byte: %v", err)
	}
	requireContains(t, out, "byte")
	if measurer.calibrations != 2 {
		t.Fatalf("byte run should reuse the cached calibration, got %d calibrations", measurer.calibrations)
	}
}
